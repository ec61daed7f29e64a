package notifier

import (
	"context"

	"railcast-service/internal/domain/entity"
	"railcast-service/internal/domain/repository"
	"railcast-service/pkg/logger"
)

// LogNotifier writes notifications to the log instead of delivering them
type LogNotifier struct {
	logger logger.Logger
}

// NewLogNotifier creates a notifier for deployments without mail
func NewLogNotifier(logger logger.Logger) repository.Notifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the notification
func (n *LogNotifier) Notify(ctx context.Context, notification entity.Notification) error {
	n.logger.Info("Notification", "subject", notification.Subject, "body", notification.Body)
	return nil
}
