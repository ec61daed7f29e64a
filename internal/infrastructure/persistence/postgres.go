package persistence

import (
	"context"
	"fmt"
	"time"

	"railcast-service/pkg/logger"

	"github.com/cenkalti/backoff/v4"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewPostgresDB opens a gorm connection, retrying with exponential backoff until maxElapsed
func NewPostgresDB(ctx context.Context, dsn string, maxElapsed time.Duration, log logger.Logger) (*gorm.DB, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = maxElapsed

	db, err := backoff.RetryNotifyWithData(
		func() (*gorm.DB, error) {
			db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
				Logger: gormlogger.Default.LogMode(gormlogger.Warn),
			})
			if err != nil {
				return nil, err
			}

			sqlDB, err := db.DB()
			if err != nil {
				return nil, backoff.Permanent(err)
			}
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			if err := sqlDB.PingContext(pingCtx); err != nil {
				sqlDB.Close()
				return nil, err
			}
			return db, nil
		},
		backoff.WithContext(b, ctx),
		func(err error, d time.Duration) {
			log.Warn("PostgreSQL not ready, retrying", "error", err, "retryIn", d.String())
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	return db, nil
}
