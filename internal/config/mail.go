package config

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/MrEthical07/otpauth/mail"
)

// MailSender builds the transport selected by MAIL_DRIVER.
func (c Config) MailSender(logger *zap.Logger) (mail.Sender, error) {
	m := c.Mail
	switch m.Driver {
	case MailDriverSMTP:
		return mail.NewSMTPSender(mail.SMTPConfig{
			Host:     m.SMTPHost,
			Port:     m.SMTPPort,
			Username: m.SMTPUser,
			Password: m.SMTPPass,
			From:     m.SMTPFrom,
		})
	case MailDriverPostmark:
		return mail.NewPostmarkSender(mail.PostmarkConfig{
			ServerToken:  m.PostmarkServerToken,
			AccountToken: m.PostmarkAccountToken,
			From:         m.PostmarkFrom,
			ReplyTo:      m.PostmarkReplyTo,
		})
	case MailDriverLog:
		return mail.NewLogSender(logger), nil
	default:
		return nil, fmt.Errorf("%w: unknown MAIL_DRIVER %q", ErrInvalidConfig, m.Driver)
	}
}
