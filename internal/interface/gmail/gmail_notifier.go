package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"railcast-service/internal/domain/entity"
	"railcast-service/internal/domain/repository"
	"railcast-service/pkg/logger"
	"railcast-service/pkg/utils"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailNotifier sends operator notifications through the Gmail API
type GmailNotifier struct {
	gmailService *gmail.Service
	sender       string
	receiver     string
	logger       logger.Logger
}

// NewGmailNotifier creates a new Gmail notifier. opts usually carries option.WithTokenSource.
func NewGmailNotifier(ctx context.Context, sender, receiver string, logger logger.Logger, opts ...option.ClientOption) (repository.Notifier, error) {
	service, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return &GmailNotifier{
		gmailService: service,
		sender:       sender,
		receiver:     receiver,
		logger:       logger,
	}, nil
}

// Notify sends the notification as a plain-text email
func (n *GmailNotifier) Notify(ctx context.Context, notification entity.Notification) error {
	raw := utils.BuildPlainMessage(n.sender, n.receiver, notification.Subject, notification.Body, time.Now())

	msg := &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString(raw),
	}

	sent, err := n.gmailService.Users.Messages.Send("me", msg).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to send email via Gmail: %w", err)
	}

	n.logger.Info("Email sent successfully",
		"messageID", sent.Id,
		"to", n.receiver,
		"subject", notification.Subject)

	return nil
}
