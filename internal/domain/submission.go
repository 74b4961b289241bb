package domain

import (
	"context"
	"fmt"
	"time"
)

// SubmissionStatus is the review state of a submission.
type SubmissionStatus string

const (
	StatusPending  SubmissionStatus = "pending"
	StatusApproved SubmissionStatus = "approved"
	StatusRejected SubmissionStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s SubmissionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// IsDecision reports whether s is a status an admin may set.
// Any decision may be applied from any prior status.
func (s SubmissionStatus) IsDecision() bool {
	return s == StatusApproved || s == StatusRejected
}

// Date and time layouts used for requested slots.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Submission is a speaker's talk proposal.
// RejectionReason is non-nil only while Status is rejected.
// swagger:model Submission
type Submission struct {
	ID string `json:"id"`
	SpeakerProfile
	TopicCategory   string           `json:"topic_category"`
	TopicTitle      string           `json:"topic_title"`
	Description     string           `json:"description"`
	EventDate       string           `json:"event_date"`
	EventTime       string           `json:"event_time"`
	Status          SubmissionStatus `json:"status"`
	RejectionReason *string          `json:"rejection_reason"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// StartsAt returns the requested start instant in UTC, interpreting the date and time in loc.
func (s *Submission) StartsAt(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, s.EventDate+" "+s.EventTime, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse event date/time: %w", err)
	}
	return t.UTC(), nil
}

// Slot is a requested (date, time) pair.
type Slot struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// GroupSlotsByDate maps each date to its booked times in input order.
func GroupSlotsByDate(slots []Slot) map[string][]string {
	out := make(map[string][]string, len(slots))
	for _, s := range slots {
		out[s.Date] = append(out[s.Date], s.Time)
	}
	return out
}

// StatusChange records one admin decision on a submission.
// swagger:model StatusChange
type StatusChange struct {
	ID           string           `json:"id"`
	SubmissionID string           `json:"submission_id"`
	OldStatus    SubmissionStatus `json:"old_status"`
	NewStatus    SubmissionStatus `json:"new_status"`
	ChangedBy    string           `json:"changed_by"`
	Reason       *string          `json:"reason"`
	CreatedAt    time.Time        `json:"created_at"`
}

// StatusUpdate carries the fields written by a status transition.
type StatusUpdate struct {
	Status          SubmissionStatus
	RejectionReason *string
	ChangedBy       string
	UpdatedAt       time.Time
}

// SubmissionRepository defines the interface for submission storage.
type SubmissionRepository interface {
	Create(ctx context.Context, s *Submission) error
	GetByID(ctx context.Context, id string) (*Submission, error)
	List(ctx context.Context) ([]*Submission, error)
	ListByEmail(ctx context.Context, email string) ([]*Submission, error)
	ListApproved(ctx context.Context) ([]*Submission, error)
	ListApprovedSlots(ctx context.Context) ([]Slot, error)
	ExistsApprovedAt(ctx context.Context, date, eventTime string) (bool, error)
	// UpdateStatus applies u atomically and appends a StatusChange.
	// Approving into a slot held by another approved submission returns ErrSlotTaken.
	UpdateStatus(ctx context.Context, id string, u StatusUpdate) (*Submission, error)
	ListHistory(ctx context.Context, submissionID string) ([]*StatusChange, error)
}

// SubmissionService defines the submission lifecycle.
type SubmissionService interface {
	CreateSubmission(ctx context.Context, s *Submission) (*Submission, error)
	GetAllSubmissions(ctx context.Context) ([]*Submission, error)
	GetSpeakerSubmissions(ctx context.Context, email string) ([]*Submission, error)
	GetApprovedSubmissions(ctx context.Context) ([]*Submission, error)
	GetBookedSlots(ctx context.Context) ([]Slot, error)
	IsSlotAvailable(ctx context.Context, date, eventTime string) (bool, error)
	UpdateSubmissionStatus(ctx context.Context, id string, status SubmissionStatus, rejectionReason *string, changedBy string) (*Submission, error)
	GetStatusHistory(ctx context.Context, id string) ([]*StatusChange, error)
}
