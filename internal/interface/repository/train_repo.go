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

const trainInsertBatchSize = 500

// GormTrainRepository implements the TrainRepository interface
type GormTrainRepository struct {
	db *gorm.DB
}

// NewGormTrainRepository creates a new GORM train repository
func NewGormTrainRepository(db *gorm.DB) repository.TrainRepository {
	return &GormTrainRepository{
		db: db,
	}
}

// Trains GORM model for a per-station train table. The table name is always
// supplied at query time through Table().
type Trains struct {
	ID            uint   `gorm:"primaryKey"`
	TrainNo       string `gorm:"column:train_no"`
	TrainName     string `gorm:"column:train_name"`
	ArrivalTime   string `gorm:"column:arrival_time"`
	DepartureTime string `gorm:"column:departure_time"`
	Classes       string `gorm:"column:classes"`
}

// ReplaceStationTrains drops and recreates the station's train table and inserts trains.
// Everything runs in one transaction so readers never see the table half-built.
func (r *GormTrainRepository) ReplaceStationTrains(ctx context.Context, stationCode string, trains []entity.TrainRecord) (int, error) {
	table, err := utils.TrainTableName(stationCode)
	if err != nil {
		return 0, err
	}

	rows := toTrainRows(trains)
	stored := 0

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DROP TABLE IF EXISTS ?", clause.Table{Name: table}).Error; err != nil {
			return fmt.Errorf("failed to drop %s: %w", table, err)
		}

		createSQL := "CREATE TABLE ? (" + serialPrimaryKey(tx) + `,
			train_no TEXT UNIQUE,
			train_name TEXT,
			arrival_time TEXT,
			departure_time TEXT,
			classes TEXT
		)`
		if err := tx.Exec(createSQL, clause.Table{Name: table}).Error; err != nil {
			return fmt.Errorf("failed to create %s: %w", table, err)
		}

		if len(rows) == 0 {
			return nil
		}

		result := tx.Table(table).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "train_no"}}, DoNothing: true}).
			CreateInBatches(&rows, trainInsertBatchSize)
		if result.Error != nil {
			return fmt.Errorf("failed to insert trains into %s: %w", table, result.Error)
		}
		stored = int(result.RowsAffected)
		return nil
	})
	if err != nil {
		return 0, err
	}

	return stored, nil
}

// FindByStation returns the trains stored for a station, in insertion order
func (r *GormTrainRepository) FindByStation(ctx context.Context, stationCode string) ([]*entity.StoredTrain, error) {
	table, err := utils.TrainTableName(stationCode)
	if err != nil {
		return nil, err
	}

	db := r.db.WithContext(ctx)
	if !db.Migrator().HasTable(table) {
		return nil, fmt.Errorf("%w: %s", entity.ErrTableNotFound, table)
	}

	var rows []Trains
	if err := db.Table(table).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}

	// Convert GORM models to domain entities
	trains := make([]*entity.StoredTrain, 0, len(rows))
	for _, row := range rows {
		trains = append(trains, &entity.StoredTrain{
			TrainNo:       row.TrainNo,
			TrainName:     row.TrainName,
			ArrivalTime:   row.ArrivalTime,
			DepartureTime: row.DepartureTime,
			Classes:       row.Classes,
		})
	}

	return trains, nil
}

// toTrainRows keeps the first record of each train number, preserving response order
func toTrainRows(trains []entity.TrainRecord) []Trains {
	seen := make(map[string]struct{}, len(trains))
	rows := make([]Trains, 0, len(trains))
	for _, t := range trains {
		if _, dup := seen[t.TrainNo]; dup {
			continue
		}
		seen[t.TrainNo] = struct{}{}
		rows = append(rows, Trains{
			TrainNo:       t.TrainNo,
			TrainName:     t.TrainName,
			ArrivalTime:   t.ArrivalTime,
			DepartureTime: t.DepartureTime,
			Classes:       t.ClassList(),
		})
	}
	return rows
}
