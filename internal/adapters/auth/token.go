package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"techtalks/internal/domain"
)

// defaultTokenTTL applies when Issue is called without a positive expiry.
const defaultTokenTTL = 24 * time.Hour

type jwtClaims struct {
	jwt.RegisteredClaims
	ID    string      `json:"id"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
	Name  string      `json:"name"`
}

// JWTManager issues and verifies HS256 session tokens.
type JWTManager struct {
	secret []byte
	now    func() time.Time
}

// NewJWTManager returns a JWTManager signing with secret.
func NewJWTManager(secret string) *JWTManager {
	return &JWTManager{secret: []byte(secret), now: time.Now}
}

var (
	_ domain.TokenIssuer   = (*JWTManager)(nil)
	_ domain.TokenVerifier = (*JWTManager)(nil)
)

func (m *JWTManager) Issue(identity *domain.Identity, expiry time.Duration) (string, error) {
	if identity == nil {
		return "", errors.New("identity is nil")
	}
	if expiry <= 0 {
		expiry = defaultTokenTTL
	}
	now := m.now()
	claims := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
		ID:    identity.ID,
		Email: identity.Email,
		Role:  identity.Role,
		Name:  identity.Name,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

func (m *JWTManager) Verify(token string) (*domain.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("empty token")
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	parsed, err := parser.ParseWithClaims(token, &jwtClaims{}, func(*jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	claims, ok := parsed.Claims.(*jwtClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.ID == "" || !claims.Role.Valid() {
		return nil, errors.New("incomplete token claims")
	}
	return &domain.Identity{ID: claims.ID, Email: claims.Email, Role: claims.Role, Name: claims.Name}, nil
}
