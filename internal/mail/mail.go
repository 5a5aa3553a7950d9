// Package mail sends transactional emails.
package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mrz1836/postmark"
)

// Message is one plain-text email.
type Message struct {
	To      string
	Subject string
	Text    string
	Tag     string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Postmark sends through the Postmark API.
type Postmark struct {
	client *postmark.Client
	from   string
}

// NewPostmark creates a Postmark sender. Both tokens and a sender address are required.
func NewPostmark(serverToken, accountToken, from string) (*Postmark, error) {
	if serverToken == "" || accountToken == "" {
		return nil, errors.New("postmark tokens are required")
	}
	if from == "" {
		return nil, errors.New("mail sender address is required")
	}
	return &Postmark{client: postmark.NewClient(serverToken, accountToken), from: from}, nil
}

func (p *Postmark) Send(ctx context.Context, msg Message) error {
	resp, err := p.client.SendEmail(ctx, postmark.Email{
		From:     p.from,
		To:       msg.To,
		Subject:  msg.Subject,
		Tag:      msg.Tag,
		TextBody: msg.Text,
	})
	if err != nil {
		return goerr.Wrap(err, "send email", goerr.V("tag", msg.Tag))
	}
	if resp.ErrorCode > 0 {
		return goerr.New("postmark rejected email",
			goerr.V("tag", msg.Tag),
			goerr.V("code", resp.ErrorCode),
			goerr.V("message", resp.Message),
		)
	}
	return nil
}

// LogSender writes messages to a logger instead of delivering them. Used when
// Postmark is not configured.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.logger.InfoContext(ctx, "email not delivered",
		"to", msg.To,
		"subject", msg.Subject,
		"tag", msg.Tag,
		"body", msg.Text,
	)
	return nil
}

const (
	TagAccountActivation = "account-activation"
	TagPasswordReset     = "password-reset"
)

// AccountActivation asks a new user to confirm their account.
func AccountActivation(to, name, link string) Message {
	return Message{
		To:      to,
		Subject: "Activate your account",
		Tag:     TagAccountActivation,
		Text: fmt.Sprintf("Hi %s,\n\nConfirm your account by following this link:\n%s\n\n"+
			"If you did not sign up, ignore this email.\n", name, link),
	}
}

// PasswordReset sends a reset link.
func PasswordReset(to, name, link string) Message {
	return Message{
		To:      to,
		Subject: "Reset your password",
		Tag:     TagPasswordReset,
		Text: fmt.Sprintf("Hi %s,\n\nSomeone asked to reset your password. Set a new one here:\n%s\n\n"+
			"If it was not you, ignore this email.\n", name, link),
	}
}
