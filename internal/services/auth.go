package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"techtalks/internal/domain"
)

type authService struct {
	userRepo      domain.UserRepository
	hasher        domain.PasswordHasher
	tokenIssuer   domain.TokenIssuer
	tokenVerifier domain.TokenVerifier
	tokenTTL      time.Duration
	emailService  domain.EmailService
	logger        *slog.Logger
	now           func() time.Time
}

// NewAuthService creates an AuthService with the given repository and auth ports.
// emailService may be nil, in which case no welcome email is sent.
func NewAuthService(
	userRepo domain.UserRepository,
	hasher domain.PasswordHasher,
	tokenIssuer domain.TokenIssuer,
	tokenVerifier domain.TokenVerifier,
	tokenTTL time.Duration,
	emailService domain.EmailService,
	logger *slog.Logger,
) domain.AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &authService{
		userRepo:      userRepo,
		hasher:        hasher,
		tokenIssuer:   tokenIssuer,
		tokenVerifier: tokenVerifier,
		tokenTTL:      tokenTTL,
		emailService:  emailService,
		logger:        logger,
		now:           time.Now,
	}
}

func (s *authService) RegisterSpeaker(ctx context.Context, email, password, name string) (*domain.Session, error) {
	user, err := s.createUser(ctx, email, password, name, domain.RoleSpeaker)
	if err != nil {
		return nil, err
	}
	session, err := s.issueSession(user)
	if err != nil {
		return nil, err
	}
	if s.emailService != nil {
		data := &domain.WelcomeEmailData{Email: user.Email, Name: user.Name}
		if err := s.emailService.SendWelcome(ctx, data); err != nil {
			s.logger.WarnContext(ctx, "welcome email failed", "user_id", user.ID, "err", err)
		}
	}
	return session, nil
}

func (s *authService) CreateAdmin(ctx context.Context, email, password, name string, role domain.Role) (*domain.User, error) {
	if !role.IsAdmin() {
		return nil, fmt.Errorf("%w: %q is not an admin role", domain.ErrInvalidRole, role)
	}
	return s.createUser(ctx, email, password, name, role)
}

func (s *authService) createUser(ctx context.Context, email, password, name string, role domain.Role) (*domain.User, error) {
	email = strings.TrimSpace(email)
	_, err := s.userRepo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, domain.ErrDuplicateEmail
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	user := domain.NewUser(email, hash, strings.TrimSpace(name), role, s.now())
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return s.issueSession(user)
}

func (s *authService) issueSession(user *domain.User) (*domain.Session, error) {
	identity := user.Public()
	token, err := s.tokenIssuer.Issue(identity, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &domain.Session{Token: token, User: identity}, nil
}

func (s *authService) DeleteUser(ctx context.Context, id string) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

func (s *authService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// ListAdmins returns every admin and superadmin account.
func (s *authService) ListAdmins(ctx context.Context) ([]*domain.User, error) {
	users, err := s.userRepo.ListByRoles(ctx, domain.RoleAdmin, domain.RoleSuperAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}
	return users, nil
}

func (s *authService) VerifyToken(token string) *domain.Identity {
	if token == "" {
		return nil
	}
	identity, err := s.tokenVerifier.Verify(token)
	if err != nil {
		return nil
	}
	return identity
}
