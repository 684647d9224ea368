package mail

import (
	"context"

	"github.com/MrEthical07/otpauth"
)

// OTPSubject is the subject line of every OTP mail.
const OTPSubject = "Your OTP Code"

// OTPMailer renders an OTP message with its template and sends it. It
// implements otpauth.OTPSender.
type OTPMailer struct {
	renderer *Renderer
	sender   Sender
}

func NewOTPMailer(renderer *Renderer, sender Sender) *OTPMailer {
	return &OTPMailer{renderer: renderer, sender: sender}
}

func (m *OTPMailer) SendOTP(ctx context.Context, msg otpauth.OTPMessage) error {
	html, err := m.renderer.Render(msg.Template, OTPData{Name: msg.Name, OTP: msg.Code})
	if err != nil {
		return err
	}
	return m.sender.Send(ctx, Message{
		To:      msg.Email,
		Subject: OTPSubject,
		HTML:    html,
		Tag:     msg.Template,
	})
}

var _ otpauth.OTPSender = (*OTPMailer)(nil)
