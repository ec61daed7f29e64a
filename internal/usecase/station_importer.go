package usecase

import (
	"context"
	"fmt"

	"railcast-service/internal/domain/repository"
	"railcast-service/pkg/logger"
	"railcast-service/pkg/utils"
)

// StationImporter loads the stations of a city from the provider into a region table
type StationImporter struct {
	stationRepo repository.StationRepository
	provider    repository.TrainProvider
	logger      logger.Logger
}

// NewStationImporter creates a new station importer
func NewStationImporter(stationRepo repository.StationRepository, provider repository.TrainProvider, logger logger.Logger) *StationImporter {
	return &StationImporter{
		stationRepo: stationRepo,
		provider:    provider,
		logger:      logger,
	}
}

// ImportStations searches the provider for city and stores the matches in the city's table.
// Stations already present are kept as they are.
func (i *StationImporter) ImportStations(ctx context.Context, city string) (int, error) {
	table, err := utils.RegionTableName(city)
	if err != nil {
		return 0, err
	}

	stations, err := i.provider.SearchStations(ctx, city)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch stations for %s: %w", city, err)
	}

	saved, err := i.stationRepo.SaveStations(ctx, city, stations)
	if err != nil {
		return 0, fmt.Errorf("failed to store stations in %s: %w", table, err)
	}

	i.logger.Info("Data stored successfully",
		"table", table,
		"received", len(stations),
		"saved", saved)

	return saved, nil
}
