package services

import (
	"context"
	"fmt"
	"log/slog"

	"techtalks/internal/domain"
)

// Template names rendered by the email service.
const (
	templateWelcome            = "welcome"
	templateSubmissionReceived = "submission_received"
	templateSubmissionApproved = "submission_approved"
	templateSubmissionRejected = "submission_rejected"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.EmailService {
	if logger == nil {
		logger = slog.Default()
	}
	return &emailService{mailer: mailer, renderer: renderer, logger: logger}
}

// SendWelcome sends the welcome email to a newly registered speaker.
func (s *emailService) SendWelcome(ctx context.Context, data *domain.WelcomeEmailData) error {
	if data == nil {
		return fmt.Errorf("welcome email data is nil")
	}
	return s.send(ctx, templateWelcome, data.Email, data)
}

// SendSubmissionReceived confirms that a submission was stored and awaits review.
func (s *emailService) SendSubmissionReceived(ctx context.Context, data *domain.SubmissionEmailData) error {
	if data == nil {
		return fmt.Errorf("submission email data is nil")
	}
	return s.send(ctx, templateSubmissionReceived, data.Email, data)
}

// SendSubmissionDecision tells the speaker whether the submission was approved or rejected.
func (s *emailService) SendSubmissionDecision(ctx context.Context, status domain.SubmissionStatus, data *domain.SubmissionEmailData) error {
	if data == nil {
		return fmt.Errorf("submission email data is nil")
	}
	switch status {
	case domain.StatusApproved:
		return s.send(ctx, templateSubmissionApproved, data.Email, data)
	case domain.StatusRejected:
		return s.send(ctx, templateSubmissionRejected, data.Email, data)
	default:
		return fmt.Errorf("%w: no decision email for %q", domain.ErrInvalidStatus, status)
	}
}

func (s *emailService) send(ctx context.Context, template, to string, data any) error {
	subject, htmlBody, textBody, err := s.renderer.Render(template, data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", template, err)
	}
	if err := s.mailer.Send(ctx, to, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send %s email: %w", template, err)
	}
	s.logger.InfoContext(ctx, "email sent", "template", template, "to", to)
	return nil
}
