package delivery

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type recordingSender struct {
	mu   sync.Mutex
	jobs []Job
	err  error
}

func (s *recordingSender) Deliver(_ context.Context, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, job)
	return s.err
}

func (s *recordingSender) Jobs() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Job(nil), s.jobs...)
}

func TestDispatcherDeliversQueuedJobsOnClose(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(Config{BufferSize: 8}, sender, nil)

	for i := 0; i < 5; i++ {
		require.True(t, d.Enqueue(context.Background(), Job{Email: "a@example.com", Code: "1234", Template: "user-registration-mail"}))
	}
	d.Close()

	assert.Len(t, sender.Jobs(), 5)
	assert.Equal(t, uint64(5), d.Delivered())
	assert.Zero(t, d.Failed())
}

func TestDispatcherLogsFailuresWithoutCode(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	sender := &recordingSender{err: errors.New("smtp down")}
	d := NewDispatcher(Config{BufferSize: 1}, sender, zap.New(core))

	require.True(t, d.Enqueue(context.Background(), Job{Email: "a@example.com", Code: "9876", Template: "forgot-password-mail"}))
	d.Close()

	assert.Equal(t, uint64(1), d.Failed())
	entries := logs.FilterMessage("otp delivery failed").All()
	require.Len(t, entries, 1)
	for _, f := range entries[0].Context {
		assert.NotEqual(t, "9876", f.String)
	}
}

func TestDispatcherDropIfFull(t *testing.T) {
	block := make(chan struct{})
	started := make(chan struct{}, 1)
	sender := SenderFunc(func(context.Context, Job) error {
		select {
		case started <- struct{}{}:
		default:
		}
		<-block
		return nil
	})
	d := NewDispatcher(Config{BufferSize: 1, DropIfFull: true}, sender, nil)

	require.True(t, d.Enqueue(context.Background(), Job{Email: "1"}))
	<-started
	require.True(t, d.Enqueue(context.Background(), Job{Email: "2"}))
	assert.False(t, d.Enqueue(context.Background(), Job{Email: "3"}))
	assert.Equal(t, uint64(1), d.Dropped())

	close(block)
	d.Close()
}

func TestDispatcherRejectsAfterClose(t *testing.T) {
	d := NewDispatcher(Config{}, nil, nil)
	d.Close()
	d.Close()

	assert.False(t, d.Enqueue(context.Background(), Job{}))
}

func TestNilDispatcherIsSafe(t *testing.T) {
	var d *Dispatcher
	assert.False(t, d.Enqueue(context.Background(), Job{}))
	assert.Zero(t, d.Dropped())
	d.Close()
}

func TestDispatcherPacesSends(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(Config{BufferSize: 4, RatePerSecond: 1000, Burst: 2}, sender, nil)

	for i := 0; i < 4; i++ {
		require.True(t, d.Enqueue(context.Background(), Job{Email: "a@example.com"}))
	}
	d.Close()

	assert.Len(t, sender.Jobs(), 4)
}
