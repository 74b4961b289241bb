package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"techtalks/internal/delivery/http/helpers"
	"techtalks/internal/delivery/http/middleware"
	"techtalks/internal/domain"

	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

var (
	speakerIdentity    = &domain.Identity{ID: "7d0c5e4a-1b2c-4d3e-8f90-123456789abc", Email: "ana@example.com", Role: domain.RoleSpeaker, Name: "Ana"}
	adminIdentity      = &domain.Identity{ID: "2a3b4c5d-6e7f-4a8b-9c0d-1e2f3a4b5c6d", Email: "admin@example.com", Role: domain.RoleAdmin, Name: "Admin"}
	superadminIdentity = &domain.Identity{ID: "9f8e7d6c-5b4a-4392-8170-6f5e4d3c2b1a", Email: "root@example.com", Role: domain.RoleSuperAdmin, Name: "Root"}
)

// withIdentity attaches identity to the request context, as the auth middleware does.
func withIdentity(r *http.Request, identity *domain.Identity) *http.Request {
	if identity == nil {
		return r
	}
	return r.WithContext(middleware.SetIdentity(r.Context(), identity))
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(v))
	return &buf
}

// decodeEnvelope decodes the response envelope, unmarshalling data into dest when dest is non-nil.
func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder, dest any) *helpers.APIError {
	t.Helper()
	var raw struct {
		Data  json.RawMessage   `json:"data"`
		Error *helpers.APIError `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&raw))
	if dest != nil && raw.Error == nil {
		require.NoError(t, json.Unmarshal(raw.Data, dest))
	}
	return raw.Error
}

// fakeAuthService implements domain.AuthService for handler tests.
type fakeAuthService struct {
	session   *domain.Session
	err       error
	user      *domain.User
	getErr    error
	deleteErr error
	admins    []*domain.User

	lastEmail    string
	lastPassword string
	lastName     string
	lastRole     domain.Role
	deletedID    string
}

func (f *fakeAuthService) RegisterSpeaker(ctx context.Context, email, password, name string) (*domain.Session, error) {
	f.lastEmail, f.lastPassword, f.lastName = email, password, name
	return f.session, f.err
}

func (f *fakeAuthService) CreateAdmin(ctx context.Context, email, password, name string, role domain.Role) (*domain.User, error) {
	f.lastEmail, f.lastPassword, f.lastName, f.lastRole = email, password, name, role
	if f.err != nil {
		return nil, f.err
	}
	return &domain.User{ID: "new-admin", Email: email, Name: name, Role: role}, nil
}

func (f *fakeAuthService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	f.lastEmail, f.lastPassword = email, password
	return f.session, f.err
}

func (f *fakeAuthService) DeleteUser(ctx context.Context, id string) error {
	f.deletedID = id
	return f.deleteErr
}

func (f *fakeAuthService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return f.user, f.getErr
}

func (f *fakeAuthService) ListAdmins(ctx context.Context) ([]*domain.User, error) {
	return f.admins, f.err
}

func (f *fakeAuthService) VerifyToken(token string) *domain.Identity {
	return nil
}

// fakeSubmissionService implements domain.SubmissionService for handler tests.
type fakeSubmissionService struct {
	subs         []*domain.Submission
	slots        []domain.Slot
	available    bool
	availableErr error
	createErr    error
	listErr      error
	updated      *domain.Submission
	updateErr    error
	history      []*domain.StatusChange
	historyErr   error

	created         *domain.Submission
	availabilityArg domain.Slot
	emailArg        string
	updateID        string
	updateStatus    domain.SubmissionStatus
	updateReason    *string
	updateBy        string
}

func (f *fakeSubmissionService) CreateSubmission(ctx context.Context, s *domain.Submission) (*domain.Submission, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = s
	out := *s
	out.ID = "b1c2d3e4-f5a6-4b7c-8d9e-0f1a2b3c4d5e"
	out.Status = domain.StatusPending
	return &out, nil
}

func (f *fakeSubmissionService) GetAllSubmissions(ctx context.Context) ([]*domain.Submission, error) {
	return f.subs, f.listErr
}

func (f *fakeSubmissionService) GetSpeakerSubmissions(ctx context.Context, email string) ([]*domain.Submission, error) {
	f.emailArg = email
	return f.subs, f.listErr
}

func (f *fakeSubmissionService) GetApprovedSubmissions(ctx context.Context) ([]*domain.Submission, error) {
	return f.subs, f.listErr
}

func (f *fakeSubmissionService) GetBookedSlots(ctx context.Context) ([]domain.Slot, error) {
	return f.slots, f.listErr
}

func (f *fakeSubmissionService) IsSlotAvailable(ctx context.Context, date, eventTime string) (bool, error) {
	f.availabilityArg = domain.Slot{Date: date, Time: eventTime}
	return f.available, f.availableErr
}

func (f *fakeSubmissionService) UpdateSubmissionStatus(ctx context.Context, id string, status domain.SubmissionStatus, rejectionReason *string, changedBy string) (*domain.Submission, error) {
	f.updateID, f.updateStatus, f.updateReason, f.updateBy = id, status, rejectionReason, changedBy
	return f.updated, f.updateErr
}

func (f *fakeSubmissionService) GetStatusHistory(ctx context.Context, id string) ([]*domain.StatusChange, error) {
	return f.history, f.historyErr
}

// fakeHomeService implements domain.HomeService for handler tests.
type fakeHomeService struct {
	page     *domain.HomePage
	calendar []*domain.CalendarEntry
	donation float64
	err      error
}

func (f *fakeHomeService) GetHomePage(ctx context.Context) (*domain.HomePage, error) {
	return f.page, f.err
}

func (f *fakeHomeService) GetCalendar(ctx context.Context) ([]*domain.CalendarEntry, error) {
	return f.calendar, f.err
}

func (f *fakeHomeService) GetDonationTotal(ctx context.Context) float64 {
	return f.donation
}

type fakePinger struct {
	err error
}

func (f fakePinger) PingContext(ctx context.Context) error {
	return f.err
}
