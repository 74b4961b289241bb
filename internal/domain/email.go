package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// WelcomeEmailData holds data for the welcome email sent after registration.
type WelcomeEmailData struct {
	Email string
	Name  string
}

// SubmissionEmailData holds data for submission receipt and decision emails.
type SubmissionEmailData struct {
	Email           string
	FullName        string
	TopicTitle      string
	EventDate       string
	EventTime       string
	RejectionReason string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendWelcome(ctx context.Context, data *WelcomeEmailData) error
	SendSubmissionReceived(ctx context.Context, data *SubmissionEmailData) error
	SendSubmissionDecision(ctx context.Context, status SubmissionStatus, data *SubmissionEmailData) error
}
