package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	appmatching "github.com/madhugraj/transact-ai-nexus-sub002/internal/application/matching"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type stubUsers struct {
	ids []uuid.UUID
	err error
}

func (s *stubUsers) UsersWithUnmatched(context.Context) ([]uuid.UUID, error) {
	return s.ids, s.err
}

type stubMatcher struct {
	mu        sync.Mutex
	calls     []uuid.UUID
	triggers  []string
	deadlines []bool
	failFor   map[uuid.UUID]error
	block     chan struct{}
}

func (s *stubMatcher) AutoMatch(ctx context.Context, userID uuid.UUID, trigger string) (*appmatching.AutoMatchSummary, error) {
	s.mu.Lock()
	s.calls = append(s.calls, userID)
	s.triggers = append(s.triggers, trigger)
	_, hasDeadline := ctx.Deadline()
	s.deadlines = append(s.deadlines, hasDeadline)
	block := s.block
	s.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := s.failFor[userID]; err != nil {
		return nil, err
	}
	return &appmatching.AutoMatchSummary{Processed: 3, AutoApproved: 1, NeedsReview: 1, Failed: 1}, nil
}

func (s *stubMatcher) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func TestNewCronTrigger(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		trigger, err := NewCronTrigger(CronTriggerConfig{}, &stubUsers{}, &stubMatcher{}, nil)
		require.NoError(t, err)
		assert.Equal(t, DefaultAutoMatchSchedule, trigger.config.Schedule)
		assert.Equal(t, 10*time.Minute, trigger.config.JobTimeout)

		from := time.Date(2024, 3, 1, 7, 15, 0, 0, time.Local)
		assert.Equal(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.Local), trigger.schedule.Next(from))
	})

	t.Run("descriptor", func(t *testing.T) {
		_, err := NewCronTrigger(CronTriggerConfig{Schedule: "@hourly"}, &stubUsers{}, &stubMatcher{}, nil)
		assert.NoError(t, err)
	})

	t.Run("invalid schedule", func(t *testing.T) {
		_, err := NewCronTrigger(CronTriggerConfig{Schedule: "every six hours"}, &stubUsers{}, &stubMatcher{}, nil)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestCronTrigger_RunOnce(t *testing.T) {
	ctx := context.Background()
	good, bad, other := uuid.New(), uuid.New(), uuid.New()
	matcher := &stubMatcher{failFor: map[uuid.UUID]error{bad: errors.New("db timeout")}}
	trigger, err := NewCronTrigger(CronTriggerConfig{JobTimeout: time.Minute},
		&stubUsers{ids: []uuid.UUID{good, bad, other}}, matcher, zaptest.NewLogger(t))
	require.NoError(t, err)

	report := trigger.RunOnce(ctx)
	assert.Equal(t, 3, report.Users)
	assert.Equal(t, 6, report.Processed)
	assert.Equal(t, 2, report.AutoApproved)
	assert.Equal(t, 2, report.NeedsReview)
	assert.Equal(t, 2, report.Failed)
	assert.Equal(t, 1, report.UserErrors)

	assert.Equal(t, []uuid.UUID{good, bad, other}, matcher.calls)
	assert.Equal(t, []bool{true, true, true}, matcher.deadlines)
	for _, tr := range matcher.triggers {
		assert.Equal(t, appmatching.TriggerScheduled, tr)
	}
	assert.False(t, trigger.LastRun().IsZero())
}

func TestCronTrigger_RunOnceUserListFails(t *testing.T) {
	matcher := &stubMatcher{}
	trigger, err := NewCronTrigger(CronTriggerConfig{}, &stubUsers{err: errors.New("boom")}, matcher, zaptest.NewLogger(t))
	require.NoError(t, err)

	report := trigger.RunOnce(context.Background())
	assert.Zero(t, report.Users)
	assert.Zero(t, matcher.callCount())
}

func TestCronTrigger_JobTimeout(t *testing.T) {
	matcher := &stubMatcher{block: make(chan struct{})}
	trigger, err := NewCronTrigger(CronTriggerConfig{JobTimeout: 20 * time.Millisecond},
		&stubUsers{ids: []uuid.UUID{uuid.New()}}, matcher, zaptest.NewLogger(t))
	require.NoError(t, err)

	report := trigger.RunOnce(context.Background())
	assert.Equal(t, 1, report.UserErrors)
}

func TestCronTrigger_StartStop(t *testing.T) {
	ctx := context.Background()
	matcher := &stubMatcher{}
	trigger, err := NewCronTrigger(CronTriggerConfig{Schedule: "@every 1s"},
		&stubUsers{ids: []uuid.UUID{uuid.New()}}, matcher, zaptest.NewLogger(t))
	require.NoError(t, err)

	require.NoError(t, trigger.Stop(ctx), "stopping an idle trigger is a no-op")

	require.NoError(t, trigger.Start(ctx))
	require.NoError(t, trigger.Start(ctx))
	assert.True(t, trigger.IsRunning())

	require.Eventually(t, func() bool { return matcher.callCount() > 0 }, 3*time.Second, 50*time.Millisecond)

	stopCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	require.NoError(t, trigger.Stop(stopCtx))
	assert.False(t, trigger.IsRunning())
}

func TestCronTrigger_StopCancelsRunningPass(t *testing.T) {
	ctx := context.Background()
	matcher := &stubMatcher{block: make(chan struct{})}
	trigger, err := NewCronTrigger(CronTriggerConfig{Schedule: "@every 1s", JobTimeout: time.Hour},
		&stubUsers{ids: []uuid.UUID{uuid.New()}}, matcher, zaptest.NewLogger(t))
	require.NoError(t, err)

	require.NoError(t, trigger.Start(ctx))
	require.Eventually(t, func() bool { return matcher.callCount() > 0 }, 3*time.Second, 50*time.Millisecond)

	stopCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	assert.NoError(t, trigger.Stop(stopCtx))
}
