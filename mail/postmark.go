package mail

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrz1836/postmark"
)

// PostmarkConfig holds API tokens and sender identity for Postmark.
type PostmarkConfig struct {
	ServerToken  string
	AccountToken string
	From         string
	ReplyTo      string
}

type PostmarkSender struct {
	client *postmark.Client
	cfg    PostmarkConfig
}

func NewPostmarkSender(cfg PostmarkConfig) (*PostmarkSender, error) {
	if cfg.ServerToken == "" {
		return nil, fmt.Errorf("%w: Postmark server token is required", ErrInvalidConfig)
	}
	if cfg.From == "" || !validAddress(cfg.From) {
		return nil, fmt.Errorf("%w: Postmark from address must be a valid email address", ErrInvalidConfig)
	}
	if cfg.ReplyTo != "" && !validAddress(cfg.ReplyTo) {
		return nil, fmt.Errorf("%w: Postmark reply-to must be a valid email address", ErrInvalidConfig)
	}

	return &PostmarkSender{
		client: postmark.NewClient(cfg.ServerToken, cfg.AccountToken),
		cfg:    cfg,
	}, nil
}

// Send delivers msg through the transactional API. Tracking stays off; OTP
// mails carry no links worth tracking.
func (p *PostmarkSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	resp, err := p.client.SendEmail(ctx, postmark.Email{
		From:     p.cfg.From,
		ReplyTo:  p.cfg.ReplyTo,
		To:       msg.To,
		Subject:  msg.Subject,
		Tag:      msg.Tag,
		HTMLBody: msg.HTML,
	})
	if err != nil {
		return errors.Join(ErrFailedToSend, err)
	}
	if resp.ErrorCode > 0 {
		return errors.Join(
			ErrFailedToSend,
			fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message),
		)
	}
	return nil
}
