// Package mail renders OTP emails and hands them to a transport.
//
// Transports implement [Sender]: [SMTPSender] for a plain mail relay,
// [PostmarkSender] for the Postmark API and [LogSender] for local runs where
// nothing should leave the machine. [OTPMailer] adapts any Sender to the
// engine's OTP delivery hook.
package mail
