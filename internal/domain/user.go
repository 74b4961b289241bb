package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for user operations.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// Role is the authorization tag carried by every account.
type Role string

const (
	RoleSpeaker    Role = "speaker"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSpeaker, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// IsAdmin reports whether r may use the admin dashboard.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// User represents a registered account. PasswordHash never leaves the server.
// swagger:model User
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewUser returns a new User with the given fields. ID is set by the repository on create.
func NewUser(email, passwordHash, name string, role Role, createdAt time.Time) *User {
	return &User{
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		Role:         role,
		CreatedAt:    createdAt,
	}
}

// Public returns the identity view of u that is safe to hand to clients.
func (u *User) Public() *Identity {
	return &Identity{ID: u.ID, Email: u.Email, Role: u.Role, Name: u.Name}
}

// Identity is the public view of a user and the exact claim set of a session token.
// swagger:model Identity
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
	Name  string `json:"name"`
}

// Session is the result of a successful registration or login.
type Session struct {
	Token string    `json:"token"`
	User  *Identity `json:"user"`
}

// PasswordHasher hashes and verifies passwords with a salted one-way function.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenIssuer issues signed session tokens for an identity.
type TokenIssuer interface {
	Issue(identity *Identity, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a session token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*Identity, error)
}

// UserRepository defines the interface for user storage.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	ListByRoles(ctx context.Context, roles ...Role) ([]*User, error)
	Delete(ctx context.Context, id string) error
}

// AuthService registers and authenticates users and manages admin accounts.
// CreateAdmin and DeleteUser do not check the caller; handlers must restrict them to superadmins.
type AuthService interface {
	RegisterSpeaker(ctx context.Context, email, password, name string) (*Session, error)
	CreateAdmin(ctx context.Context, email, password, name string, role Role) (*User, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	DeleteUser(ctx context.Context, id string) error
	GetUser(ctx context.Context, id string) (*User, error)
	ListAdmins(ctx context.Context) ([]*User, error)
	// VerifyToken returns nil for any invalid, expired, or tampered token.
	VerifyToken(token string) *Identity
}
