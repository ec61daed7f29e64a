package repository

import (
	"context"

	"railcast-service/internal/domain/entity"
)

// StationRepository defines the interface for region station tables
type StationRepository interface {
	ListCodes(ctx context.Context, region string) ([]string, error)
	ListStations(ctx context.Context, region string) ([]*entity.Station, error)
	SaveStations(ctx context.Context, region string, stations []entity.Station) (int, error)
	ListTables(ctx context.Context) ([]string, error)
}
