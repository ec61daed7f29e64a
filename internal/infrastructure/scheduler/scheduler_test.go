package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"railcast-service/internal/domain/entity"
	"railcast-service/pkg/logger"
)

type stubRefresher struct {
	mu    sync.Mutex
	calls []string
	fired chan struct{}
}

func (s *stubRefresher) RefreshRegionTrains(ctx context.Context, region, trigger string) (*entity.RefreshSummary, error) {
	s.mu.Lock()
	s.calls = append(s.calls, region+":"+trigger)
	s.mu.Unlock()

	if s.fired != nil {
		select {
		case s.fired <- struct{}{}:
		default:
		}
	}
	return &entity.RefreshSummary{Region: region, Trigger: trigger, Status: entity.RunStatusSucceeded}, nil
}

func TestRunOnceUsesScheduledTrigger(t *testing.T) {
	refresher := &stubRefresher{}
	s, err := NewScheduler(refresher, []string{"goa"}, 10*time.Minute, logger.NewNopLogger())
	if err != nil {
		t.Fatalf("NewScheduler failed: %v", err)
	}

	summary, err := s.RunOnce(context.Background(), "goa")
	if err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}
	if summary.Trigger != entity.TriggerScheduled {
		t.Errorf("Expected scheduled trigger, got %s", summary.Trigger)
	}
	if len(refresher.calls) != 1 || refresher.calls[0] != "goa:scheduled" {
		t.Errorf("Unexpected calls %v", refresher.calls)
	}
}

func TestSchedulerRegistersEveryRegion(t *testing.T) {
	s, err := NewScheduler(&stubRefresher{}, []string{"goa", "kerala"}, 10*time.Minute, logger.NewNopLogger())
	if err != nil {
		t.Fatalf("NewScheduler failed: %v", err)
	}
	if n := len(s.cron.Entries()); n != 2 {
		t.Errorf("Expected 2 cron entries, got %d", n)
	}
}

func TestSchedulerFiresOnInterval(t *testing.T) {
	refresher := &stubRefresher{fired: make(chan struct{}, 1)}
	s, err := NewScheduler(refresher, []string{"goa"}, time.Second, logger.NewNopLogger())
	if err != nil {
		t.Fatalf("NewScheduler failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	defer s.Stop()

	select {
	case <-refresher.fired:
	case <-time.After(3 * time.Second):
		t.Fatal("Scheduled refresh did not fire")
	}
}
