package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPurger struct {
	mu    sync.Mutex
	calls []time.Time
	n     int64
	err   error
}

func (p *stubPurger) PurgeExpiredResetTokens(_ context.Context, now time.Time) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, now)
	return p.n, p.err
}

func (p *stubPurger) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

func TestNew_RegistersJobs(t *testing.T) {
	s, err := New(&stubPurger{}, time.Hour, zerolog.Nop())
	require.NoError(t, err)
	defer s.Shutdown()

	jobs := s.cron.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, JobPurgeResetTokens, jobs[0].Name())
}

func TestScheduler_RunsPurgeOnInterval(t *testing.T) {
	purger := &stubPurger{n: 2}
	s, err := New(purger, 50*time.Millisecond, zerolog.Nop())
	require.NoError(t, err)

	s.Start()
	assert.Eventually(t, func() bool { return purger.callCount() >= 1 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, s.Shutdown())
}

func TestPurgeResetTokens_UsesClock(t *testing.T) {
	purger := &stubPurger{}
	s, err := New(purger, time.Hour, zerolog.Nop())
	require.NoError(t, err)
	defer s.Shutdown()

	fixed := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }
	s.purgeResetTokens()

	require.Equal(t, 1, purger.callCount())
	assert.True(t, purger.calls[0].Equal(fixed))
}

func TestPurgeResetTokens_ErrorIsSwallowed(t *testing.T) {
	purger := &stubPurger{err: errors.New("mongo down")}
	s, err := New(purger, time.Hour, zerolog.Nop())
	require.NoError(t, err)
	defer s.Shutdown()

	assert.NotPanics(t, s.purgeResetTokens)
}
