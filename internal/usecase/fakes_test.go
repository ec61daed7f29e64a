package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"railcast-service/internal/domain/entity"
	"railcast-service/internal/domain/repository"
	gormRepo "railcast-service/internal/interface/repository"
	"railcast-service/pkg/logger"
	"railcast-service/pkg/metrics"

	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type fakeProvider struct {
	mu       sync.Mutex
	trains   map[string][]entity.TrainRecord
	errs     map[string]error
	stations map[string][]entity.Station
	calls    map[string]int
	onFetch  func(code string)
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		trains:   map[string][]entity.TrainRecord{},
		errs:     map[string]error{},
		stations: map[string][]entity.Station{},
		calls:    map[string]int{},
	}
}

func (p *fakeProvider) TrainsByStation(ctx context.Context, stationCode string) ([]entity.TrainRecord, error) {
	p.mu.Lock()
	p.calls[stationCode]++
	hook := p.onFetch
	trains, err := p.trains[stationCode], p.errs[stationCode]
	p.mu.Unlock()

	if hook != nil {
		hook(stationCode)
	}
	return trains, err
}

func (p *fakeProvider) SearchStations(ctx context.Context, query string) ([]entity.Station, error) {
	if err := p.errs["search:"+query]; err != nil {
		return nil, err
	}
	return p.stations[query], nil
}

func (p *fakeProvider) LiveTrainStatus(ctx context.Context, trainNo string, startDay int) (*entity.LiveTrainStatus, error) {
	return nil, entity.ErrNotFound
}

func (p *fakeProvider) callCount(code string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[code]
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []entity.Notification
	err  error
}

func (n *fakeNotifier) Notify(ctx context.Context, notification entity.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, notification)
	return nil
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

type fakeRunRepo struct {
	mu    sync.Mutex
	saved []*entity.RefreshSummary
}

func (r *fakeRunRepo) Save(ctx context.Context, summary *entity.RefreshSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, summary)
	return nil
}

func (r *fakeRunRepo) FindRecent(ctx context.Context, region string, limit int) ([]*entity.RefreshSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saved, nil
}

// failingTrainRepo fails writes for one station code
type failingTrainRepo struct {
	repository.TrainRepository
	failCode string
}

func (r *failingTrainRepo) ReplaceStationTrains(ctx context.Context, code string, trains []entity.TrainRecord) (int, error) {
	if code == r.failCode {
		return 0, errors.New("disk full")
	}
	return r.TrainRepository.ReplaceStationTrains(ctx, code, trains)
}

type refresherFixture struct {
	stations  repository.StationRepository
	trains    repository.TrainRepository
	provider  *fakeProvider
	notifier  *fakeNotifier
	runs      *fakeRunRepo
	metrics   *metrics.Metrics
	refresher *TrainRefresher
}

func newRefresherFixture(t *testing.T) *refresherFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	f := &refresherFixture{
		stations: gormRepo.NewGormStationRepository(db),
		trains:   gormRepo.NewGormTrainRepository(db),
		provider: newFakeProvider(),
		notifier: &fakeNotifier{},
		runs:     &fakeRunRepo{},
		metrics:  metrics.NewMetrics("test", prometheus.NewRegistry()),
	}
	f.refresher = NewTrainRefresher(f.stations, f.trains, f.provider, f.notifier, f.runs, f.metrics, logger.NewNopLogger())
	return f
}

func (f *refresherFixture) seedRegion(t *testing.T, region string, codes ...string) {
	t.Helper()

	stations := make([]entity.Station, 0, len(codes))
	for _, code := range codes {
		stations = append(stations, entity.Station{Name: code, Code: code})
	}
	if _, err := f.stations.SaveStations(context.Background(), region, stations); err != nil {
		t.Fatalf("Failed to seed region %s: %v", region, err)
	}
}
