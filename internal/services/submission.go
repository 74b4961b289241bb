package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"techtalks/internal/domain"
)

type submissionService struct {
	repo         domain.SubmissionRepository
	emailService domain.EmailService
	logger       *slog.Logger
	now          func() time.Time
}

// NewSubmissionService creates a SubmissionService. emailService may be nil to disable notifications.
func NewSubmissionService(repo domain.SubmissionRepository, emailService domain.EmailService, logger *slog.Logger) domain.SubmissionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &submissionService{
		repo:         repo,
		emailService: emailService,
		logger:       logger,
		now:          time.Now,
	}
}

// validateSlot checks the "2006-01-02" date and "15:04" time formats.
func validateSlot(date, eventTime string) error {
	if _, err := time.Parse(domain.DateLayout, date); err != nil {
		return fmt.Errorf("%w: date %q", domain.ErrInvalidSlot, date)
	}
	if _, err := time.Parse(domain.TimeLayout, eventTime); err != nil {
		return fmt.Errorf("%w: time %q", domain.ErrInvalidSlot, eventTime)
	}
	return nil
}

// CreateSubmission stores s as pending, whatever status the caller set.
func (s *submissionService) CreateSubmission(ctx context.Context, sub *domain.Submission) (*domain.Submission, error) {
	if sub == nil {
		return nil, fmt.Errorf("submission is nil")
	}
	if err := validateSlot(sub.EventDate, sub.EventTime); err != nil {
		return nil, err
	}
	now := s.now()
	sub.ID = ""
	sub.Status = domain.StatusPending
	sub.RejectionReason = nil
	sub.CreatedAt = now
	sub.UpdatedAt = now
	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}
	s.notify(ctx, sub, func(data *domain.SubmissionEmailData) error {
		return s.emailService.SendSubmissionReceived(ctx, data)
	})
	return sub, nil
}

func (s *submissionService) GetAllSubmissions(ctx context.Context) ([]*domain.Submission, error) {
	subs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return subs, nil
}

func (s *submissionService) GetSpeakerSubmissions(ctx context.Context, email string) ([]*domain.Submission, error) {
	subs, err := s.repo.ListByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list speaker submissions: %w", err)
	}
	return subs, nil
}

func (s *submissionService) GetApprovedSubmissions(ctx context.Context) ([]*domain.Submission, error) {
	subs, err := s.repo.ListApproved(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved submissions: %w", err)
	}
	return subs, nil
}

func (s *submissionService) GetBookedSlots(ctx context.Context) ([]domain.Slot, error) {
	slots, err := s.repo.ListApprovedSlots(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list booked slots: %w", err)
	}
	return slots, nil
}

// IsSlotAvailable reports whether no approved submission holds date and eventTime.
// The answer is advisory; approval re-checks the slot atomically.
func (s *submissionService) IsSlotAvailable(ctx context.Context, date, eventTime string) (bool, error) {
	if err := validateSlot(date, eventTime); err != nil {
		return false, err
	}
	taken, err := s.repo.ExistsApprovedAt(ctx, date, eventTime)
	if err != nil {
		return false, fmt.Errorf("failed to check slot: %w", err)
	}
	return !taken, nil
}

// UpdateSubmissionStatus applies an admin decision. Rejection stores the trimmed reason,
// or an empty string when none is given; approval clears any previous reason.
func (s *submissionService) UpdateSubmissionStatus(ctx context.Context, id string, status domain.SubmissionStatus, rejectionReason *string, changedBy string) (*domain.Submission, error) {
	if !status.IsDecision() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}
	var reason *string
	if status == domain.StatusRejected {
		r := ""
		if rejectionReason != nil {
			r = strings.TrimSpace(*rejectionReason)
		}
		reason = &r
	}

	updated, err := s.repo.UpdateStatus(ctx, id, domain.StatusUpdate{
		Status:          status,
		RejectionReason: reason,
		ChangedBy:       changedBy,
		UpdatedAt:       s.now(),
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, updated, func(data *domain.SubmissionEmailData) error {
		return s.emailService.SendSubmissionDecision(ctx, status, data)
	})
	return updated, nil
}

func (s *submissionService) GetStatusHistory(ctx context.Context, id string) ([]*domain.StatusChange, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	changes, err := s.repo.ListHistory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list status history: %w", err)
	}
	return changes, nil
}

// notify sends a submission email. Failures are logged and never returned.
func (s *submissionService) notify(ctx context.Context, sub *domain.Submission, send func(*domain.SubmissionEmailData) error) {
	if s.emailService == nil || sub == nil {
		return
	}
	data := &domain.SubmissionEmailData{
		Email:      sub.Email,
		FullName:   sub.FullName,
		TopicTitle: sub.TopicTitle,
		EventDate:  sub.EventDate,
		EventTime:  sub.EventTime,
	}
	if sub.RejectionReason != nil {
		data.RejectionReason = *sub.RejectionReason
	}
	if err := send(data); err != nil {
		s.logger.WarnContext(ctx, "submission email failed", "submission_id", sub.ID, "err", err)
	}
}
