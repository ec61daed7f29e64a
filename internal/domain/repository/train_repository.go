package repository

import (
	"context"

	"railcast-service/internal/domain/entity"
)

// TrainRepository defines the interface for per-station train tables
type TrainRepository interface {
	// ReplaceStationTrains drops and recreates the station's table, then inserts trains.
	// Duplicate train numbers are skipped; it returns the number of rows stored.
	ReplaceStationTrains(ctx context.Context, stationCode string, trains []entity.TrainRecord) (int, error)
	FindByStation(ctx context.Context, stationCode string) ([]*entity.StoredTrain, error)
}
