package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"railcast-service/internal/domain/entity"
	"railcast-service/internal/usecase"
	"railcast-service/pkg/logger"

	"github.com/robfig/cron/v3"
)

// Scheduler refreshes each configured region on a fixed interval
type Scheduler struct {
	cron      *cron.Cron
	refresher usecase.RegionRefresher
	logger    logger.Logger

	mu  sync.RWMutex
	ctx context.Context
}

// NewScheduler registers one "@every interval" entry per region
func NewScheduler(refresher usecase.RegionRefresher, regions []string, interval time.Duration, logger logger.Logger) (*Scheduler, error) {
	l := cronLogger{logger: logger}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(l),
			cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
		),
		refresher: refresher,
		logger:    logger,
		ctx:       context.Background(),
	}

	schedule := "@every " + interval.String()
	for _, region := range regions {
		region := region
		if _, err := s.cron.AddFunc(schedule, func() { s.RunOnce(s.context(), region) }); err != nil {
			return nil, fmt.Errorf("failed to schedule refresh of %s: %w", region, err)
		}
		logger.Info("Scheduled train refresh", "region", region, "every", interval.String())
	}

	return s, nil
}

// Start runs the schedule until ctx is cancelled
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	s.cron.Start()
	go func() {
		<-ctx.Done()
		s.Stop()
	}()
}

// Stop halts the schedule and waits for a running refresh to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

// RunOnce executes the scheduled refresh of region synchronously
func (s *Scheduler) RunOnce(ctx context.Context, region string) (*entity.RefreshSummary, error) {
	s.logger.Info("Running scheduled train refresh", "region", region)

	summary, err := s.refresher.RefreshRegionTrains(ctx, region, entity.TriggerScheduled)
	if err != nil {
		s.logger.Error("Scheduled refresh failed", "region", region, "error", err)
		return summary, err
	}
	return summary, nil
}

func (s *Scheduler) context() context.Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ctx
}

// cronLogger adapts logger.Logger to cron.Logger
type cronLogger struct {
	logger logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
