package email

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/wneessen/go-mail"

	"techtalks/internal/domain"
)

const defaultSESTimeout = 10 * time.Second

// SESConfig holds configuration for AWS SES.
type SESConfig struct {
	Region             string
	AccessKeyID        string
	SecretAccessKey    string
	InsecureSkipVerify bool
	// Endpoint overrides the regional SES endpoint, e.g. for LocalStack.
	Endpoint string
	// Timeout bounds a single Send including SDK retries. Zero means 10s.
	Timeout time.Duration
}

// SMTPConfig holds configuration for a plain SMTP relay.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Timeout  time.Duration
	// Insecure downgrades the TLS policy to opportunistic, for local relays such as MailHog.
	Insecure bool
}

// MailerConfig holds configuration for creating a mailer.
type MailerConfig struct {
	Provider    string
	FromAddress string
	FromName    string
	SES         SESConfig
	SMTP        SMTPConfig
}

// NewMailer creates a mailer from config. Provider "ses" uses AWS SES, "smtp" uses go-mail; "noop" or unknown uses a no-op mailer.
func NewMailer(config MailerConfig, logger *slog.Logger) (domain.Mailer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "mailer", "provider", config.Provider)

	switch config.Provider {
	case "ses":
		sesConfig := config.SES
		if sesConfig.Region == "" {
			return nil, errors.New("ses mailer requires AWS_REGION")
		}
		if sesConfig.InsecureSkipVerify {
			logger.Warn("TLS certificate verification is disabled for SES, use only in development")
		}
		timeout := sesConfig.Timeout
		if timeout <= 0 {
			timeout = defaultSESTimeout
		}
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSHandshakeTimeout = timeout
		transport.ResponseHeaderTimeout = timeout
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: sesConfig.InsecureSkipVerify,
			MinVersion:         tls.VersionTLS12,
		}
		httpClient := &http.Client{Transport: transport, Timeout: timeout}
		awsCfg := aws.Config{
			Region: sesConfig.Region,
			Credentials: aws.NewCredentialsCache(
				credentials.NewStaticCredentialsProvider(
					sesConfig.AccessKeyID,
					sesConfig.SecretAccessKey,
					"",
				),
			),
			HTTPClient: httpClient,
		}
		if sesConfig.Endpoint != "" {
			awsCfg.BaseEndpoint = aws.String(sesConfig.Endpoint)
		}
		return &sesMailer{
			client:      ses.NewFromConfig(awsCfg),
			timeout:     timeout,
			fromAddress: config.FromAddress,
			fromName:    config.FromName,
			logger:      logger,
		}, nil
	case "smtp":
		if config.SMTP.Host == "" {
			return nil, errors.New("smtp mailer requires SMTP_HOST")
		}
		return &smtpMailer{
			cfg:         config.SMTP,
			fromAddress: config.FromAddress,
			fromName:    config.FromName,
			logger:      logger,
		}, nil
	case "noop", "":
		return &noopMailer{logger: logger}, nil
	default:
		logger.Warn("unknown email provider, using noop")
		return &noopMailer{logger: logger}, nil
	}
}

func formatSource(name, address string) string {
	if name == "" {
		return address
	}
	return fmt.Sprintf("%s <%s>", name, address)
}

type sesMailer struct {
	client      *ses.Client
	timeout     time.Duration
	fromAddress string
	fromName    string
	logger      *slog.Logger
}

func (s *sesMailer) Send(ctx context.Context, to, subject, html, text string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	input := &ses.SendEmailInput{
		Source: aws.String(formatSource(s.fromName, s.fromAddress)),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{},
		},
	}
	if html != "" {
		input.Message.Body.Html = &types.Content{
			Data:    aws.String(html),
			Charset: aws.String("UTF-8"),
		}
	}
	if text != "" {
		input.Message.Body.Text = &types.Content{
			Data:    aws.String(text),
			Charset: aws.String("UTF-8"),
		}
	}
	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email via SES: %w", err)
	}
	s.logger.DebugContext(ctx, "ses accepted message", "message_id", aws.ToString(result.MessageId))
	return nil
}

type smtpMailer struct {
	cfg         SMTPConfig
	fromAddress string
	fromName    string
	logger      *slog.Logger
}

func (s *smtpMailer) Send(ctx context.Context, to, subject, html, text string) error {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	m, err := s.buildMessage(to, subject, html, text)
	if err != nil {
		return err
	}

	tlsPolicy := mail.TLSMandatory
	if s.cfg.Insecure {
		tlsPolicy = mail.TLSOpportunistic
	}
	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTLSPolicy(tlsPolicy),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}

	c, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client init failed: %w", err)
	}
	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("failed to send email via SMTP: %w", err)
	}
	s.logger.DebugContext(ctx, "smtp relay accepted message", "host", s.cfg.Host)
	return nil
}

func (s *smtpMailer) buildMessage(to, subject, html, text string) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.FromFormat(s.fromName, s.fromAddress); err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}
	if err := m.To(to); err != nil {
		return nil, fmt.Errorf("invalid to address: %w", err)
	}
	m.Subject(subject)
	switch {
	case text != "" && html != "":
		m.SetBodyString(mail.TypeTextPlain, text)
		m.AddAlternativeString(mail.TypeTextHTML, html)
	case html != "":
		m.SetBodyString(mail.TypeTextHTML, html)
	default:
		m.SetBodyString(mail.TypeTextPlain, text)
	}
	return m, nil
}

type noopMailer struct {
	logger *slog.Logger
}

func (n *noopMailer) Send(ctx context.Context, to, subject, html, text string) error {
	n.logger.DebugContext(ctx, "email would be sent (noop)", "to", to, "subject", subject)
	return nil
}
