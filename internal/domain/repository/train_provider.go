package repository

import (
	"context"

	"railcast-service/internal/domain/entity"
)

// TrainProvider defines the interface for the third-party train data API
type TrainProvider interface {
	TrainsByStation(ctx context.Context, stationCode string) ([]entity.TrainRecord, error)
	SearchStations(ctx context.Context, query string) ([]entity.Station, error)
	LiveTrainStatus(ctx context.Context, trainNo string, startDay int) (*entity.LiveTrainStatus, error)
}
