package mail

import (
	"context"
	"errors"
	"fmt"
	netmail "net/mail"
	"strings"
)

var (
	ErrFailedToSend  = errors.New("mail: failed to send")
	ErrInvalidConfig = errors.New("mail: invalid config")
	ErrInvalidParams = errors.New("mail: invalid message")
)

// Sender delivers one rendered message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Message is a rendered HTML email.
type Message struct {
	To      string
	Subject string
	HTML    string
	Tag     string
}

func (m Message) Validate() error {
	if strings.TrimSpace(m.To) == "" {
		return fmt.Errorf("%w: To is required", ErrInvalidParams)
	}
	if _, err := netmail.ParseAddress(m.To); err != nil {
		return fmt.Errorf("%w: To must be a valid email address", ErrInvalidParams)
	}
	if strings.TrimSpace(m.Subject) == "" {
		return fmt.Errorf("%w: Subject is required", ErrInvalidParams)
	}
	if strings.TrimSpace(m.HTML) == "" {
		return fmt.Errorf("%w: HTML is required", ErrInvalidParams)
	}
	return nil
}

func validAddress(addr string) bool {
	_, err := netmail.ParseAddress(addr)
	return err == nil
}
