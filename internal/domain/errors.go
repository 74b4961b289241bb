package domain

import "errors"

// Sentinel errors shared by repositories, services, and controllers.
var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSlotTaken          = errors.New("slot already booked")
	ErrInvalidStatus      = errors.New("invalid submission status")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidSlot        = errors.New("invalid event date or time")
)
