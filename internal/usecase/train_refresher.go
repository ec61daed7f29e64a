package usecase

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"railcast-service/internal/domain/entity"
	"railcast-service/internal/domain/repository"
	"railcast-service/pkg/logger"
	"railcast-service/pkg/metrics"
	"railcast-service/pkg/utils"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/singleflight"
)

const (
	notificationSubject = "Train Data Updated"
	notifyTimeout       = 30 * time.Second
	saveRunTimeout      = 10 * time.Second
)

// RegionRefresher runs the station train refresh for a region
type RegionRefresher interface {
	RefreshRegionTrains(ctx context.Context, region, trigger string) (*entity.RefreshSummary, error)
}

// TrainRefresher refreshes the per-station train tables of a region
type TrainRefresher struct {
	stationRepo repository.StationRepository
	trainRepo   repository.TrainRepository
	provider    repository.TrainProvider
	notifier    repository.Notifier
	runRepo     repository.RefreshRunRepository
	metrics     *metrics.Metrics
	logger      logger.Logger

	inflight singleflight.Group
	now      func() time.Time
}

// NewTrainRefresher creates a new train refresher. runRepo may be nil when no run log is kept.
func NewTrainRefresher(
	stationRepo repository.StationRepository,
	trainRepo repository.TrainRepository,
	provider repository.TrainProvider,
	notifier repository.Notifier,
	runRepo repository.RefreshRunRepository,
	metrics *metrics.Metrics,
	logger logger.Logger,
) *TrainRefresher {
	return &TrainRefresher{
		stationRepo: stationRepo,
		trainRepo:   trainRepo,
		provider:    provider,
		notifier:    notifier,
		runRepo:     runRepo,
		metrics:     metrics,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// RefreshRegionTrains fetches the trains of every station in the region and replaces
// each station's train table. Runs for the same region never overlap: a call made while
// a run is in flight waits for that run and returns its summary.
func (r *TrainRefresher) RefreshRegionTrains(ctx context.Context, region, trigger string) (*entity.RefreshSummary, error) {
	v, err, shared := r.inflight.Do(region, func() (interface{}, error) {
		return r.run(ctx, region, trigger)
	})
	if shared {
		r.logger.Info("Joined in-flight refresh", "region", region, "trigger", trigger)
	}

	summary, _ := v.(*entity.RefreshSummary)
	return summary, err
}

func (r *TrainRefresher) run(ctx context.Context, region, trigger string) (summary *entity.RefreshSummary, err error) {
	summary = &entity.RefreshSummary{
		RunID:     uuid.NewString(),
		Region:    region,
		Trigger:   trigger,
		StartedAt: r.now(),
		Stations:  []entity.StationOutcome{},
	}
	log := r.logger.With("runID", summary.RunID, "region", region, "trigger", trigger)
	timer := prometheus.NewTimer(r.metrics.RefreshDuration.WithLabelValues(region))

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("refresh of %s panicked: %v", region, rec)
			log.Error("Refresh run panicked", "panic", rec, "stack", string(debug.Stack()))
		}

		summary.FinishedAt = r.now()
		if err != nil {
			summary.Status = entity.RunStatusFailed
			summary.Error = err.Error()
			r.metrics.ErrorsCount.WithLabelValues("refresh_run").Inc()
			log.Error("Train refresh failed", "error", err)
		} else {
			summary.Status = entity.RunStatusSucceeded
		}

		timer.ObserveDuration()
		r.metrics.RefreshRuns.WithLabelValues(region, summary.Status).Inc()
		r.saveRun(log, summary)
	}()

	log.Info("Starting train refresh")

	codes, err := r.stationRepo.ListCodes(ctx, region)
	if err != nil {
		return summary, fmt.Errorf("failed to load stations of %s: %w", region, err)
	}

	if len(codes) == 0 {
		log.Info("No stations in region, nothing to refresh")
		return summary, nil
	}

	for _, code := range codes {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return summary, fmt.Errorf("refresh of %s interrupted: %w", region, ctxErr)
		}
		summary.Stations = append(summary.Stations, r.refreshStation(ctx, log, region, code))
	}

	r.notify(ctx, log, summary)

	log.Info("Train refresh completed",
		"stations", len(summary.Stations),
		"updated", summary.Count(entity.OutcomeUpdated),
		"skipped", summary.Count(entity.OutcomeSkipped),
		"failed", summary.Count(entity.OutcomeFailed),
		"notified", summary.Notified)

	return summary, nil
}

// refreshStation fetches and stores one station. Errors are recorded on the outcome
// and never stop the run.
func (r *TrainRefresher) refreshStation(ctx context.Context, log logger.Logger, region, code string) entity.StationOutcome {
	outcome := entity.StationOutcome{StationCode: code}
	log = log.With("stationCode", code)

	table, err := utils.TrainTableName(code)
	if err != nil {
		log.Error("Invalid station code", "error", err)
		return r.record(region, outcome, entity.OutcomeFailed, err)
	}
	outcome.Table = table

	trains, err := r.provider.TrainsByStation(ctx, code)
	if err != nil {
		log.Warn("Skipping station, provider call failed", "error", err)
		r.metrics.ErrorsCount.WithLabelValues("provider").Inc()
		return r.record(region, outcome, entity.OutcomeSkipped, err)
	}

	stored, err := r.trainRepo.ReplaceStationTrains(ctx, code, trains)
	if err != nil {
		log.Error("Failed to store trains", "table", table, "error", err)
		r.metrics.ErrorsCount.WithLabelValues("store").Inc()
		return r.record(region, outcome, entity.OutcomeFailed, err)
	}

	outcome.Trains = stored
	r.metrics.TrainsStored.WithLabelValues(region).Add(float64(stored))
	log.Info("Station trains replaced",
		"table", table,
		"received", len(trains),
		"stored", stored)

	return r.record(region, outcome, entity.OutcomeUpdated, nil)
}

func (r *TrainRefresher) record(region string, outcome entity.StationOutcome, result string, err error) entity.StationOutcome {
	outcome.Outcome = result
	if err != nil {
		outcome.Error = err.Error()
	}
	r.metrics.StationOutcomes.WithLabelValues(region, result).Inc()
	return outcome
}

// notify sends the single completion notification. A delivery failure is logged
// and kept on the summary but does not fail the run.
func (r *TrainRefresher) notify(ctx context.Context, log logger.Logger, summary *entity.RefreshSummary) {
	notifyCtx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()

	if err := r.notifier.Notify(notifyCtx, completionNotification(summary)); err != nil {
		summary.NotifyError = err.Error()
		r.metrics.ErrorsCount.WithLabelValues("notify").Inc()
		log.Error("Error sending email", "error", err)
		return
	}
	summary.Notified = true
}

func completionNotification(summary *entity.RefreshSummary) entity.Notification {
	body := fmt.Sprintf(
		"Old train data deleted and new data has been added successfully.\n\n"+
			"Region: %s\nRun: %s\nTrigger: %s\n"+
			"Stations updated: %d\nStations skipped: %d\nStations failed: %d\n",
		summary.Region, summary.RunID, summary.Trigger,
		summary.Count(entity.OutcomeUpdated),
		summary.Count(entity.OutcomeSkipped),
		summary.Count(entity.OutcomeFailed),
	)

	return entity.Notification{
		Subject: notificationSubject,
		Body:    body,
	}
}

func (r *TrainRefresher) saveRun(log logger.Logger, summary *entity.RefreshSummary) {
	if r.runRepo == nil {
		return
	}

	// The run is logged even when the caller's context is already gone
	ctx, cancel := context.WithTimeout(context.Background(), saveRunTimeout)
	defer cancel()

	if err := r.runRepo.Save(ctx, summary); err != nil {
		r.metrics.ErrorsCount.WithLabelValues("save_run").Inc()
		log.Error("Failed to save refresh run", "error", err)
	}
}
