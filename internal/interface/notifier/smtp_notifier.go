package notifier

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"railcast-service/internal/domain/entity"
	"railcast-service/internal/domain/repository"
	"railcast-service/pkg/logger"
	"railcast-service/pkg/utils"
)

// SMTPNotifier sends operator notifications over SMTP with STARTTLS when the server offers it
type SMTPNotifier struct {
	addr     string
	auth     smtp.Auth
	sender   string
	receiver string
	logger   logger.Logger
	send     func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPNotifier creates a new SMTP notifier. Auth is skipped when password is empty.
func NewSMTPNotifier(server string, port int, sender, password, receiver string, logger logger.Logger) repository.Notifier {
	var auth smtp.Auth
	if password != "" {
		auth = smtp.PlainAuth("", sender, password, server)
	}

	return &SMTPNotifier{
		addr:     net.JoinHostPort(server, strconv.Itoa(port)),
		auth:     auth,
		sender:   sender,
		receiver: receiver,
		logger:   logger,
		send:     smtp.SendMail,
	}
}

// Notify sends the notification as a plain-text email
func (n *SMTPNotifier) Notify(ctx context.Context, notification entity.Notification) error {
	msg := utils.BuildPlainMessage(n.sender, n.receiver, notification.Subject, notification.Body, time.Now())

	errCh := make(chan error, 1)
	go func() {
		errCh <- n.send(n.addr, n.auth, n.sender, []string{n.receiver}, msg)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("email to %s not confirmed: %w", n.receiver, ctx.Err())
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to send email via %s: %w", n.addr, err)
		}
	}

	n.logger.Info("Email sent successfully", "to", n.receiver, "subject", notification.Subject)
	return nil
}
