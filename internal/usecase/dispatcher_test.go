package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"railcast-service/internal/domain/entity"
	"railcast-service/pkg/logger"
	"railcast-service/pkg/metrics"
	"railcast-service/pkg/utils"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type refreshCall struct {
	region  string
	trigger string
}

type recordingRefresher struct {
	calls chan refreshCall
	panic bool
}

func (r *recordingRefresher) RefreshRegionTrains(ctx context.Context, region, trigger string) (*entity.RefreshSummary, error) {
	r.calls <- refreshCall{region: region, trigger: trigger}
	if r.panic {
		panic("refresh exploded")
	}
	return &entity.RefreshSummary{RunID: "run-1", Region: region, Trigger: trigger}, nil
}

type recordingImporter struct {
	cities chan string
}

func (i *recordingImporter) ImportStations(ctx context.Context, city string) (int, error) {
	i.cities <- city
	return 3, nil
}

func newTestDispatcher(refresher RegionRefresher, importer stationImporter, workers, queueSize int) (*Dispatcher, *metrics.Metrics) {
	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	return NewDispatcher(refresher, importer, []string{"goa"}, workers, queueSize, m, logger.NewNopLogger()), m
}

func TestDispatcherRunsRefresh(t *testing.T) {
	refresher := &recordingRefresher{calls: make(chan refreshCall, 1)}
	d, m := newTestDispatcher(refresher, &recordingImporter{cities: make(chan string, 1)}, 1, 4)

	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)
	defer func() {
		cancel()
		d.Wait()
	}()

	task, err := d.EnqueueRefresh("goa", entity.TriggerManual)
	if err != nil {
		t.Fatalf("EnqueueRefresh failed: %v", err)
	}
	if task.ID == "" || task.Kind != entity.TaskRefreshTrains || task.Target != "goa" {
		t.Errorf("Unexpected task %+v", task)
	}

	select {
	case call := <-refresher.calls:
		if call.region != "goa" || call.trigger != entity.TriggerManual {
			t.Errorf("Unexpected refresh call %+v", call)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Refresh was not executed")
	}

	if v := testutil.ToFloat64(m.TasksEnqueued.WithLabelValues(entity.TaskRefreshTrains)); v != 1 {
		t.Errorf("Expected 1 enqueued task in metrics, got %v", v)
	}
}

func TestDispatcherRunsImport(t *testing.T) {
	importer := &recordingImporter{cities: make(chan string, 1)}
	d, _ := newTestDispatcher(&recordingRefresher{calls: make(chan refreshCall, 1)}, importer, 1, 4)

	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)
	defer func() {
		cancel()
		d.Wait()
	}()

	if _, err := d.EnqueueImport("North Goa"); err != nil {
		t.Fatalf("EnqueueImport failed: %v", err)
	}

	select {
	case city := <-importer.cities:
		if city != "North Goa" {
			t.Errorf("Expected North Goa, got %s", city)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Import was not executed")
	}
}

func TestDispatcherUnknownRegion(t *testing.T) {
	d, _ := newTestDispatcher(&recordingRefresher{}, &recordingImporter{}, 1, 4)

	_, err := d.EnqueueRefresh("kerala", entity.TriggerManual)
	if !errors.Is(err, ErrUnknownRegion) {
		t.Errorf("Expected ErrUnknownRegion, got %v", err)
	}
}

func TestDispatcherInvalidCity(t *testing.T) {
	d, _ := newTestDispatcher(&recordingRefresher{}, &recordingImporter{}, 1, 4)

	_, err := d.EnqueueImport("trains_mao")
	if !errors.Is(err, utils.ErrInvalidIdentifier) {
		t.Errorf("Expected ErrInvalidIdentifier, got %v", err)
	}
}

func TestDispatcherQueueFull(t *testing.T) {
	// Workers are not started so the queue never drains
	d, m := newTestDispatcher(&recordingRefresher{}, &recordingImporter{}, 1, 1)

	if _, err := d.EnqueueRefresh("goa", entity.TriggerManual); err != nil {
		t.Fatalf("First enqueue failed: %v", err)
	}
	if _, err := d.EnqueueRefresh("goa", entity.TriggerManual); !errors.Is(err, ErrQueueFull) {
		t.Errorf("Expected ErrQueueFull, got %v", err)
	}
	if v := testutil.ToFloat64(m.ErrorsCount.WithLabelValues("enqueue")); v != 1 {
		t.Errorf("Expected 1 enqueue error in metrics, got %v", v)
	}
}

func TestDispatcherSurvivesPanickingTask(t *testing.T) {
	refresher := &recordingRefresher{calls: make(chan refreshCall, 2), panic: true}
	d, _ := newTestDispatcher(refresher, &recordingImporter{}, 1, 4)

	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)
	defer func() {
		cancel()
		d.Wait()
	}()

	d.EnqueueRefresh("goa", entity.TriggerManual)
	d.EnqueueRefresh("goa", entity.TriggerManual)

	for i := 0; i < 2; i++ {
		select {
		case <-refresher.calls:
		case <-time.After(2 * time.Second):
			t.Fatalf("Worker stopped after a panic, %d tasks ran", i)
		}
	}
}
