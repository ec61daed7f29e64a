package repository

import (
	"context"
	"fmt"

	"railcast-service/internal/domain/entity"
	"railcast-service/internal/domain/repository"
	"railcast-service/pkg/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStationRepository implements the StationRepository interface
type GormStationRepository struct {
	db *gorm.DB
}

// NewGormStationRepository creates a new GORM station repository
func NewGormStationRepository(db *gorm.DB) repository.StationRepository {
	return &GormStationRepository{
		db: db,
	}
}

// Stations GORM model for a region station table
type Stations struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"column:name"`
	EngName   string `gorm:"column:eng_name"`
	Code      string `gorm:"column:code"`
	StateName string `gorm:"column:state_name"`
}

// ListCodes returns the station codes of a region
func (r *GormStationRepository) ListCodes(ctx context.Context, region string) ([]string, error) {
	table, err := r.existingTable(ctx, region)
	if err != nil {
		return nil, err
	}

	var codes []string
	if err := r.db.WithContext(ctx).Table(table).Order("id").Pluck("code", &codes).Error; err != nil {
		return nil, fmt.Errorf("failed to read station codes from %s: %w", table, err)
	}
	return codes, nil
}

// ListStations returns the stations of a region
func (r *GormStationRepository) ListStations(ctx context.Context, region string) ([]*entity.Station, error) {
	table, err := r.existingTable(ctx, region)
	if err != nil {
		return nil, err
	}

	var rows []Stations
	if err := r.db.WithContext(ctx).Table(table).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}

	// Convert GORM models to domain entities
	stations := make([]*entity.Station, 0, len(rows))
	for _, row := range rows {
		stations = append(stations, &entity.Station{
			Name:      row.Name,
			EngName:   row.EngName,
			Code:      row.Code,
			StateName: row.StateName,
		})
	}
	return stations, nil
}

// SaveStations creates the region table if needed and inserts stations, ignoring known codes
func (r *GormStationRepository) SaveStations(ctx context.Context, region string, stations []entity.Station) (int, error) {
	table, err := utils.RegionTableName(region)
	if err != nil {
		return 0, err
	}

	rows := make([]Stations, 0, len(stations))
	for _, s := range stations {
		rows = append(rows, Stations{
			Name:      s.Name,
			EngName:   s.EngName,
			Code:      s.Code,
			StateName: s.StateName,
		})
	}

	saved := 0
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		createSQL := "CREATE TABLE IF NOT EXISTS ? (" + serialPrimaryKey(tx) + `,
			name TEXT,
			eng_name TEXT,
			code TEXT UNIQUE,
			state_name TEXT
		)`
		if err := tx.Exec(createSQL, clause.Table{Name: table}).Error; err != nil {
			return fmt.Errorf("failed to create %s: %w", table, err)
		}

		if len(rows) == 0 {
			return nil
		}

		result := tx.Table(table).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "code"}}, DoNothing: true}).
			Create(&rows)
		if result.Error != nil {
			return fmt.Errorf("failed to insert stations into %s: %w", table, result.Error)
		}
		saved = int(result.RowsAffected)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return saved, nil
}

// ListTables lists the tables of the current schema
func (r *GormStationRepository) ListTables(ctx context.Context) ([]string, error) {
	return r.db.WithContext(ctx).Migrator().GetTables()
}

func (r *GormStationRepository) existingTable(ctx context.Context, region string) (string, error) {
	table, err := utils.RegionTableName(region)
	if err != nil {
		return "", err
	}
	if !r.db.WithContext(ctx).Migrator().HasTable(table) {
		return "", fmt.Errorf("%w: %s", entity.ErrTableNotFound, table)
	}
	return table, nil
}
