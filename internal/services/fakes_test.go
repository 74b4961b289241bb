package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"techtalks/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeUserRepo implements domain.UserRepository for tests.
type fakeUserRepo struct {
	mu        sync.Mutex
	byID      map[string]*domain.User
	byEmail   map[string]*domain.User
	nextID    int
	getErr    error
	createErr error
	listErr   error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]*domain.User),
	}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.byEmail[u.Email]; ok {
		return domain.ErrDuplicateEmail
	}
	f.nextID++
	u.ID = fmt.Sprintf("user-%d", f.nextID)
	cp := *u
	f.byID[u.ID] = &cp
	f.byEmail[u.Email] = &cp
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.byEmail[email]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) ListByRoles(ctx context.Context, roles ...domain.Role) ([]*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*domain.User
	for _, u := range f.byID {
		if slices.Contains(roles, u.Role) {
			cp := *u
			out = append(out, &cp)
		}
	}
	slices.SortFunc(out, func(a, b *domain.User) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	delete(f.byID, id)
	delete(f.byEmail, u.Email)
	return nil
}

func (f *fakeUserRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byID)
}

// fakePasswordHasher implements domain.PasswordHasher for tests.
type fakePasswordHasher struct {
	err error
}

func (f *fakePasswordHasher) Hash(password string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "hash-" + password, nil
}

func (f *fakePasswordHasher) Compare(hash, password string) error {
	if hash != "hash-"+password {
		return errors.New("mismatch")
	}
	return nil
}

// fakeTokens implements domain.TokenIssuer and domain.TokenVerifier with an in-memory table.
type fakeTokens struct {
	mu       sync.Mutex
	issued   map[string]*domain.Identity
	lastTTL  time.Duration
	issueErr error
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{issued: make(map[string]*domain.Identity)}
}

func (f *fakeTokens) Issue(identity *domain.Identity, expiry time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.issueErr != nil {
		return "", f.issueErr
	}
	f.lastTTL = expiry
	token := "token-" + identity.ID
	cp := *identity
	f.issued[token] = &cp
	return token, nil
}

func (f *fakeTokens) Verify(token string) (*domain.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id, ok := f.issued[token]; ok {
		cp := *id
		return &cp, nil
	}
	return nil, errors.New("invalid token")
}

// fakeSubmissionRepo implements domain.SubmissionRepository in memory with the same slot rule as the database.
type fakeSubmissionRepo struct {
	mu        sync.Mutex
	subs      map[string]*domain.Submission
	order     []string
	history   map[string][]*domain.StatusChange
	nextID    int
	createErr error
	listErr   error
}

func newFakeSubmissionRepo() *fakeSubmissionRepo {
	return &fakeSubmissionRepo{
		subs:    make(map[string]*domain.Submission),
		history: make(map[string][]*domain.StatusChange),
	}
}

func (f *fakeSubmissionRepo) Create(ctx context.Context, s *domain.Submission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	s.ID = fmt.Sprintf("sub-%d", f.nextID)
	cp := *s
	f.subs[s.ID] = &cp
	f.order = append(f.order, s.ID)
	return nil
}

func (f *fakeSubmissionRepo) GetByID(ctx context.Context, id string) (*domain.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.subs[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeSubmissionRepo) filter(keep func(*domain.Submission) bool) ([]*domain.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*domain.Submission
	for i := len(f.order) - 1; i >= 0; i-- {
		s := f.subs[f.order[i]]
		if keep(s) {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeSubmissionRepo) List(ctx context.Context) ([]*domain.Submission, error) {
	return f.filter(func(*domain.Submission) bool { return true })
}

func (f *fakeSubmissionRepo) ListByEmail(ctx context.Context, email string) ([]*domain.Submission, error) {
	return f.filter(func(s *domain.Submission) bool { return s.Email == email })
}

func (f *fakeSubmissionRepo) ListApproved(ctx context.Context) ([]*domain.Submission, error) {
	out, err := f.filter(func(s *domain.Submission) bool { return s.Status == domain.StatusApproved })
	slices.SortStableFunc(out, func(a, b *domain.Submission) int {
		return strings.Compare(b.EventDate+b.EventTime, a.EventDate+a.EventTime)
	})
	return out, err
}

func (f *fakeSubmissionRepo) ListApprovedSlots(ctx context.Context) ([]domain.Slot, error) {
	approved, err := f.ListApproved(ctx)
	if err != nil {
		return nil, err
	}
	slots := make([]domain.Slot, 0, len(approved))
	for _, s := range approved {
		slots = append(slots, domain.Slot{Date: s.EventDate, Time: s.EventTime})
	}
	return slots, nil
}

func (f *fakeSubmissionRepo) ExistsApprovedAt(ctx context.Context, date, eventTime string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.subs {
		if s.Status == domain.StatusApproved && s.EventDate == date && s.EventTime == eventTime {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSubmissionRepo) UpdateStatus(ctx context.Context, id string, u domain.StatusUpdate) (*domain.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.subs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if u.Status == domain.StatusApproved {
		for otherID, other := range f.subs {
			if otherID != id && other.Status == domain.StatusApproved &&
				other.EventDate == s.EventDate && other.EventTime == s.EventTime {
				return nil, domain.ErrSlotTaken
			}
		}
	}
	f.history[id] = append(f.history[id], &domain.StatusChange{
		ID:           fmt.Sprintf("h-%d", len(f.history[id])+1),
		SubmissionID: id,
		OldStatus:    s.Status,
		NewStatus:    u.Status,
		ChangedBy:    u.ChangedBy,
		Reason:       u.RejectionReason,
		CreatedAt:    u.UpdatedAt,
	})
	s.Status = u.Status
	s.RejectionReason = u.RejectionReason
	s.UpdatedAt = u.UpdatedAt
	cp := *s
	return &cp, nil
}

func (f *fakeSubmissionRepo) ListHistory(ctx context.Context, submissionID string) ([]*domain.StatusChange, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.history[submissionID]), nil
}

// fakeEmailService records notifications.
type fakeEmailService struct {
	mu        sync.Mutex
	welcomes  []*domain.WelcomeEmailData
	received  []*domain.SubmissionEmailData
	decisions []domain.SubmissionStatus
	lastData  *domain.SubmissionEmailData
	err       error
}

func (f *fakeEmailService) SendWelcome(ctx context.Context, data *domain.WelcomeEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.welcomes = append(f.welcomes, data)
	return f.err
}

func (f *fakeEmailService) SendSubmissionReceived(ctx context.Context, data *domain.SubmissionEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.received = append(f.received, data)
	return f.err
}

func (f *fakeEmailService) SendSubmissionDecision(ctx context.Context, status domain.SubmissionStatus, data *domain.SubmissionEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.decisions = append(f.decisions, status)
	f.lastData = data
	return f.err
}
