package repository

import (
	"context"

	"railcast-service/internal/domain/entity"
)

// Notifier defines the interface for operator notifications
type Notifier interface {
	Notify(ctx context.Context, n entity.Notification) error
}
