package journey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistrationHappyPath(t *testing.T) {
	j := Start(Registration, "a@example.com")
	assert.Equal(t, Idle, j.Current())

	for _, step := range []struct {
		event Event
		want  State
	}{
		{Issue, OtpPending},
		{Issue, OtpPending},
		{Verify, Verified},
		{Finish, Complete},
	} {
		got, err := j.Fire(step.event)
		require.NoError(t, err, step.event.String())
		assert.Equal(t, step.want, got)
	}
}

func TestIllegalTransitions(t *testing.T) {
	cases := []struct {
		at    State
		event Event
	}{
		{Idle, Verify},
		{Idle, Finish},
		{OtpPending, Finish},
		{Verified, Issue},
		{Verified, Verify},
		{Complete, Issue},
		{Complete, Verify},
		{Complete, Finish},
	}
	for _, tc := range cases {
		j := Resume(PasswordReset, "a@example.com", tc.at)
		got, err := j.Fire(tc.event)
		assert.ErrorIs(t, err, ErrNoTransition)
		assert.Equal(t, tc.at, got)
	}
}

func TestStringers(t *testing.T) {
	assert.Equal(t, "otp_pending", OtpPending.String())
	assert.Equal(t, "password_reset", PasswordReset.String())
	assert.Equal(t, "verify", Verify.String())
}
