package repository

import (
	"context"

	"railcast-service/internal/domain/entity"
)

// RefreshRunRepository defines the interface for the refresh run log
type RefreshRunRepository interface {
	Save(ctx context.Context, summary *entity.RefreshSummary) error
	FindRecent(ctx context.Context, region string, limit int) ([]*entity.RefreshSummary, error)
}
