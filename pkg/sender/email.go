package sender

import (
	"context"
	"fmt"

	"github.com/mrz1836/postmark"

	"github.com/notifykit/notifykit/pkg/notification"
)

// EmailConfig holds the Postmark credentials and sender identity.
type EmailConfig struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN,required"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN,required"`
	SenderEmail          string `env:"NOTIFY_SENDER_EMAIL,required"`
	ReplyToEmail         string `env:"NOTIFY_REPLY_TO_EMAIL"`
}

// AddressResolver maps a user ID to the email address on file.
type AddressResolver func(ctx context.Context, userID string) (string, error)

// emailAPI is the part of the Postmark client the sender uses. Narrowed to
// an interface so tests can swap the transport.
type emailAPI interface {
	SendEmail(ctx context.Context, email postmark.Email) (postmark.EmailResponse, error)
}

// Email delivers notifications through Postmark's transactional API.
type Email struct {
	client  emailAPI
	config  EmailConfig
	resolve AddressResolver
}

// NewEmail creates a Postmark-backed email channel sender. Opens and HTML
// link clicks are tracked; the delivery log consumes the resulting webhooks.
func NewEmail(cfg EmailConfig, resolve AddressResolver) (*Email, error) {
	if cfg.PostmarkServerToken == "" || cfg.PostmarkAccountToken == "" {
		return nil, fmt.Errorf("%w: postmark tokens are required", ErrInvalidConfig)
	}
	if cfg.SenderEmail == "" {
		return nil, fmt.Errorf("%w: sender email is required", ErrInvalidConfig)
	}
	if resolve == nil {
		return nil, ErrNilAddressResolver
	}

	return &Email{
		client:  postmark.NewClient(cfg.PostmarkServerToken, cfg.PostmarkAccountToken),
		config:  cfg,
		resolve: resolve,
	}, nil
}

func (s *Email) Channel() notification.Channel { return notification.ChannelEmail }

func (s *Email) Send(ctx context.Context, req Request) error {
	to, err := s.resolve(ctx, req.Notification.UserID)
	if err != nil {
		return fmt.Errorf("resolve recipient address: %w", err)
	}
	if to == "" {
		// No address on file is not fixable by retrying
		return fmt.Errorf("%w: user %s has no email address", ErrInvalidRecipient, req.Notification.UserID)
	}

	subject := req.Content.Subject
	if subject == "" {
		subject = req.Content.Title
	}
	body := req.Content.HTML
	textBody := ""
	if body == "" {
		textBody = req.Content.Body
	}

	resp, err := s.client.SendEmail(ctx, postmark.Email{
		From:       s.config.SenderEmail,
		ReplyTo:    s.config.ReplyToEmail,
		To:         to,
		Subject:    subject,
		Tag:        string(req.Notification.Type),
		HTMLBody:   body,
		TextBody:   textBody,
		TrackOpens: true,
		TrackLinks: "HtmlOnly",
	})
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	if resp.ErrorCode > 0 {
		return fmt.Errorf("%w: postmark error %d: %s", ErrSendFailed, resp.ErrorCode, resp.Message)
	}
	return nil
}
