package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	appmatching "github.com/madhugraj/transact-ai-nexus-sub002/internal/application/matching"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultAutoMatchSchedule runs the workflow engine every six hours
const DefaultAutoMatchSchedule = "0 */6 * * *"

// UserProvider lists the users that have invoices waiting for a match
type UserProvider interface {
	UsersWithUnmatched(ctx context.Context) ([]uuid.UUID, error)
}

// AutoMatcher runs the workflow engine for one user
type AutoMatcher interface {
	AutoMatch(ctx context.Context, userID uuid.UUID, trigger string) (*appmatching.AutoMatchSummary, error)
}

// CronTriggerConfig holds configuration for the auto-match trigger
type CronTriggerConfig struct {
	// Schedule is a standard five-field cron expression or a descriptor such as @hourly
	Schedule string
	// JobTimeout bounds the auto-match run of a single user
	JobTimeout time.Duration
}

// DefaultCronTriggerConfig returns default cron trigger configuration
func DefaultCronTriggerConfig() CronTriggerConfig {
	return CronTriggerConfig{
		Schedule:   DefaultAutoMatchSchedule,
		JobTimeout: 10 * time.Minute,
	}
}

// RunReport summarises one scheduled pass over all users
type RunReport struct {
	Users        int `json:"users"`
	Processed    int `json:"processed"`
	AutoApproved int `json:"auto_approved"`
	NeedsReview  int `json:"needs_review"`
	Mismatched   int `json:"mismatched"`
	Failed       int `json:"failed"`
	UserErrors   int `json:"user_errors"`
}

// CronTrigger runs AutoMatch for every user with unmatched invoices on a
// cron schedule. Runs never overlap: a tick that fires while the previous
// run is still going is skipped.
type CronTrigger struct {
	config   CronTriggerConfig
	schedule cron.Schedule
	users    UserProvider
	matcher  AutoMatcher
	logger   *zap.Logger

	cron      *cron.Cron
	cancel    context.CancelFunc
	mu        sync.Mutex
	isRunning bool
	lastRun   time.Time
}

// NewCronTrigger creates a new cron trigger
func NewCronTrigger(
	config CronTriggerConfig,
	users UserProvider,
	matcher AutoMatcher,
	logger *zap.Logger,
) (*CronTrigger, error) {
	if config.Schedule == "" {
		config.Schedule = DefaultAutoMatchSchedule
	}
	if config.JobTimeout <= 0 {
		config.JobTimeout = DefaultCronTriggerConfig().JobTimeout
	}
	schedule, err := cron.ParseStandard(config.Schedule)
	if err != nil {
		return nil, fmt.Errorf("%w: schedule %q: %v", ErrInvalidConfig, config.Schedule, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CronTrigger{
		config:   config,
		schedule: schedule,
		users:    users,
		matcher:  matcher,
		logger:   logger.Named("scheduler"),
	}, nil
}

// Start starts the cron trigger
func (c *CronTrigger) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.isRunning {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	cronLogger := cronLogAdapter{s: c.logger.Sugar()}
	c.cron = cron.New(
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)
	c.cron.Schedule(c.schedule, cron.FuncJob(func() {
		c.RunOnce(ctx)
	}))
	c.cron.Start()
	c.cancel = cancel
	c.isRunning = true

	c.logger.Info("Auto-match trigger started",
		zap.String("schedule", c.config.Schedule),
		zap.Duration("job_timeout", c.config.JobTimeout),
		zap.Time("next_run", c.schedule.Next(time.Now())),
	)
	return nil
}

// Stop stops the trigger and waits for a running pass to finish or for ctx
// to expire. A running pass sees its context cancelled.
func (c *CronTrigger) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = false
	cancel := c.cancel
	stopped := c.cron.Stop()
	c.mu.Unlock()

	cancel()
	select {
	case <-stopped.Done():
		c.logger.Info("Auto-match trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsRunning reports whether the trigger is scheduled
func (c *CronTrigger) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isRunning
}

// LastRun returns when the last pass started, zero if none has
func (c *CronTrigger) LastRun() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastRun
}

// RunOnce runs AutoMatch for every user that has unmatched invoices. A user
// whose run fails is logged and the pass moves on to the next user.
func (c *CronTrigger) RunOnce(ctx context.Context) RunReport {
	c.mu.Lock()
	c.lastRun = time.Now()
	c.mu.Unlock()

	var report RunReport
	userIDs, err := c.users.UsersWithUnmatched(ctx)
	if err != nil {
		c.logger.Error("Failed to list users with unmatched invoices", zap.Error(err))
		return report
	}
	report.Users = len(userIDs)
	c.logger.Info("Running scheduled auto-match", zap.Int("user_count", len(userIDs)))

	for _, userID := range userIDs {
		if ctx.Err() != nil {
			c.logger.Warn("Scheduled auto-match interrupted", zap.Error(ctx.Err()))
			break
		}
		summary, err := c.runForUser(ctx, userID)
		if err != nil {
			report.UserErrors++
			c.logger.Error("Scheduled auto-match failed for user",
				zap.String("user_id", userID.String()),
				zap.Error(err),
			)
			continue
		}
		report.Processed += summary.Processed
		report.AutoApproved += summary.AutoApproved
		report.NeedsReview += summary.NeedsReview
		report.Mismatched += summary.Mismatched
		report.Failed += summary.Failed
	}

	c.logger.Info("Scheduled auto-match finished",
		zap.Int("users", report.Users),
		zap.Int("processed", report.Processed),
		zap.Int("auto_approved", report.AutoApproved),
		zap.Int("needs_review", report.NeedsReview),
		zap.Int("mismatched", report.Mismatched),
		zap.Int("failed", report.Failed),
		zap.Int("user_errors", report.UserErrors),
	)
	return report
}

func (c *CronTrigger) runForUser(ctx context.Context, userID uuid.UUID) (*appmatching.AutoMatchSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.JobTimeout)
	defer cancel()
	return c.matcher.AutoMatch(ctx, userID, appmatching.TriggerScheduled)
}

// cronLogAdapter routes cron's logging into zap
type cronLogAdapter struct {
	s *zap.SugaredLogger
}

func (l cronLogAdapter) Info(msg string, keysAndValues ...any) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogAdapter) Error(err error, msg string, keysAndValues ...any) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
