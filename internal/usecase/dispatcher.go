package usecase

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"railcast-service/internal/domain/entity"
	"railcast-service/pkg/logger"
	"railcast-service/pkg/metrics"
	"railcast-service/pkg/utils"

	"github.com/google/uuid"
)

var (
	// ErrQueueFull is returned when the background queue cannot take another task
	ErrQueueFull = errors.New("task queue is full")
	// ErrUnknownRegion is returned for refreshes of regions that are not configured
	ErrUnknownRegion = errors.New("unknown region")
)

// TaskEnqueuer accepts background work and returns without waiting for it
type TaskEnqueuer interface {
	EnqueueRefresh(region, trigger string) (entity.Task, error)
	EnqueueImport(city string) (entity.Task, error)
}

// stationImporter is the part of StationImporter the dispatcher needs
type stationImporter interface {
	ImportStations(ctx context.Context, city string) (int, error)
}

// Dispatcher runs background tasks on a fixed pool of workers
type Dispatcher struct {
	tasks     chan entity.Task
	refresher RegionRefresher
	importer  stationImporter
	regions   map[string]struct{}
	workers   int
	metrics   *metrics.Metrics
	logger    logger.Logger
	wg        sync.WaitGroup
}

// NewDispatcher creates a dispatcher. Only the given regions may be refreshed.
func NewDispatcher(
	refresher RegionRefresher,
	importer stationImporter,
	regions []string,
	workers, queueSize int,
	metrics *metrics.Metrics,
	logger logger.Logger,
) *Dispatcher {
	allowed := make(map[string]struct{}, len(regions))
	for _, region := range regions {
		allowed[region] = struct{}{}
	}

	return &Dispatcher{
		tasks:     make(chan entity.Task, queueSize),
		refresher: refresher,
		importer:  importer,
		regions:   allowed,
		workers:   workers,
		metrics:   metrics,
		logger:    logger,
	}
}

// Start launches the workers. They stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx, i)
	}
	d.logger.Info("Dispatcher started", "workers", d.workers, "queueSize", cap(d.tasks))
}

// Wait blocks until all workers have stopped
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// EnqueueRefresh schedules a train refresh of region
func (d *Dispatcher) EnqueueRefresh(region, trigger string) (entity.Task, error) {
	if _, ok := d.regions[region]; !ok {
		return entity.Task{}, fmt.Errorf("%w: %s", ErrUnknownRegion, region)
	}
	return d.enqueue(entity.TaskRefreshTrains, region, trigger)
}

// EnqueueImport schedules a station import for city
func (d *Dispatcher) EnqueueImport(city string) (entity.Task, error) {
	if _, err := utils.RegionTableName(city); err != nil {
		return entity.Task{}, err
	}
	return d.enqueue(entity.TaskImportStations, city, entity.TriggerManual)
}

func (d *Dispatcher) enqueue(kind, target, trigger string) (entity.Task, error) {
	task := entity.Task{
		ID:         uuid.NewString(),
		Kind:       kind,
		Target:     target,
		Trigger:    trigger,
		EnqueuedAt: time.Now().UTC(),
	}

	select {
	case d.tasks <- task:
	default:
		d.metrics.ErrorsCount.WithLabelValues("enqueue").Inc()
		return entity.Task{}, ErrQueueFull
	}

	d.metrics.TasksEnqueued.WithLabelValues(kind).Inc()
	d.logger.Info("Task enqueued", "taskID", task.ID, "kind", kind, "target", target)
	return task, nil
}

func (d *Dispatcher) worker(ctx context.Context, id int) {
	defer d.wg.Done()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Worker stopped", "worker", id)
			return
		case task := <-d.tasks:
			d.execute(ctx, task)
		}
	}
}

func (d *Dispatcher) execute(ctx context.Context, task entity.Task) {
	log := d.logger.With("taskID", task.ID, "kind", task.Kind, "target", task.Target)

	defer func() {
		if rec := recover(); rec != nil {
			d.metrics.ErrorsCount.WithLabelValues("task").Inc()
			log.Error("Task panicked", "panic", rec, "stack", string(debug.Stack()))
		}
	}()

	start := time.Now()
	switch task.Kind {
	case entity.TaskRefreshTrains:
		summary, err := d.refresher.RefreshRegionTrains(ctx, task.Target, task.Trigger)
		if err != nil {
			log.Error("Refresh task failed", "error", err)
			return
		}
		log.Info("Refresh task completed",
			"runID", summary.RunID,
			"stations", len(summary.Stations),
			"duration", time.Since(start).String())
	case entity.TaskImportStations:
		saved, err := d.importer.ImportStations(ctx, task.Target)
		if err != nil {
			log.Error("Import task failed", "error", err)
			return
		}
		log.Info("Import task completed", "saved", saved, "duration", time.Since(start).String())
	default:
		log.Error("Unknown task kind")
	}
}
