package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"techtalks/internal/domain"
)

// DefaultBcryptCost matches the cost used for existing accounts.
const DefaultBcryptCost = 10

type bcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a PasswordHasher backed by bcrypt, which embeds a random salt in every hash.
func NewBcryptHasher(cost int) domain.PasswordHasher {
	if cost < bcrypt.MinCost {
		cost = DefaultBcryptCost
	}
	return &bcryptHasher{cost: cost}
}

func (h *bcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (h *bcryptHasher) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
