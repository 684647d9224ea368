// Package journey models the per-email progress of a registration or a
// password reset as a small finite state machine.
//
//	Idle --issue--> OtpPending --issue--> OtpPending
//	OtpPending --verify--> Verified --complete--> Complete
//
// Progress between requests is carried by ephemeral store keys, not by this
// package. A Journey is rebuilt per request from the state the caller knows
// it is in, and fired only after the guarding step succeeded.
package journey

import (
	"errors"
	"fmt"
)

type Kind uint8

const (
	Registration Kind = iota + 1
	PasswordReset
)

func (k Kind) String() string {
	switch k {
	case Registration:
		return "registration"
	case PasswordReset:
		return "password_reset"
	default:
		return "unknown"
	}
}

type State uint8

const (
	Idle State = iota
	OtpPending
	Verified
	Complete
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case OtpPending:
		return "otp_pending"
	case Verified:
		return "verified"
	case Complete:
		return "complete"
	default:
		return "unknown"
	}
}

type Event uint8

const (
	Issue Event = iota + 1
	Verify
	Finish
)

func (e Event) String() string {
	switch e {
	case Issue:
		return "issue"
	case Verify:
		return "verify"
	case Finish:
		return "finish"
	default:
		return "unknown"
	}
}

type edge struct {
	from  State
	event Event
}

var transitions = map[edge]State{
	{Idle, Issue}:        OtpPending,
	{OtpPending, Issue}:  OtpPending,
	{OtpPending, Verify}: Verified,
	{Verified, Finish}:   Complete,
}

// ErrNoTransition is returned by Fire for an event the current state does not accept.
var ErrNoTransition = errors.New("journey: no transition available")

// Journey is the state of one (email, kind) flow within a single request.
type Journey struct {
	kind    Kind
	email   string
	current State
}

// Start begins a journey in Idle.
func Start(kind Kind, email string) *Journey {
	return &Journey{kind: kind, email: email, current: Idle}
}

// Resume rebuilds a journey at a known state.
func Resume(kind Kind, email string, at State) *Journey {
	return &Journey{kind: kind, email: email, current: at}
}

func (j *Journey) Kind() Kind     { return j.kind }
func (j *Journey) Email() string  { return j.email }
func (j *Journey) Current() State { return j.current }

// Fire applies event and returns the new state.
func (j *Journey) Fire(event Event) (State, error) {
	next, ok := transitions[edge{j.current, event}]
	if !ok {
		return j.current, fmt.Errorf("%w: %s %s on %s", ErrNoTransition, j.kind, event, j.current)
	}
	j.current = next
	return next, nil
}
