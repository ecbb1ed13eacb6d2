// Package services отправляет письма по уведомлениям из очереди.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/taskshare/internal/lib/metrics"
	"github.com/magabrotheeeer/taskshare/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/taskshare/internal/lib/sl"
	"github.com/magabrotheeeer/taskshare/internal/lib/smtp"
	"github.com/magabrotheeeer/taskshare/internal/models"
)

const dateLayout = "January 2, 2006"

// SenderService превращает уведомления в письма.
type SenderService struct {
	transport smtp.TransportInterface
	log       *slog.Logger
	metrics   *metrics.Metrics
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(log *slog.Logger, transport smtp.TransportInterface, m *metrics.Metrics) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
		metrics:   m,
	}
}

// HandleMessage разбирает уведомление из очереди и отправляет соответствующее письмо.
// Нераспознанные сообщения помечаются rabbitmq.ErrDiscard.
func (s *SenderService) HandleMessage(ctx context.Context, body []byte) error {
	var n models.Notification
	if err := json.Unmarshal(body, &n); err != nil {
		return fmt.Errorf("error unmarshalling message: %w: %w", rabbitmq.ErrDiscard, err)
	}
	if n.Email == "" {
		return fmt.Errorf("notification %s without recipient: %w", n.Kind, rabbitmq.ErrDiscard)
	}

	subject, text, err := compose(n)
	if err != nil {
		return err
	}

	if err := s.sendEmail(ctx, []string{n.Email}, subject, text); err != nil {
		s.metrics.Notification(string(n.Kind), "failed")
		return err
	}
	s.metrics.Notification(string(n.Kind), "sent")
	return nil
}

func compose(n models.Notification) (subject, body string, err error) {
	switch n.Kind {
	case models.NotificationTrialActivated:
		subject = "Your 30-day Premium trial has started"
		body = fmt.Sprintf("Hi %s,\n\nYou just shared your first task list, so we started your free 30-day Premium trial.\n", n.Username)
		if n.TrialEndsAt != nil {
			body += fmt.Sprintf("It lasts until %s.\n", n.TrialEndsAt.UTC().Format(dateLayout))
		}
		body += "\nEnjoy collaborating!"
	case models.NotificationShareGranted:
		subject = fmt.Sprintf("%s shared a task list with you", n.SharedBy)
		body = fmt.Sprintf("Hi %s,\n\n%s shared the task list %q with you. You can now view and edit it.", n.Username, n.SharedBy, n.ListName)
	case models.NotificationPremiumActivated:
		subject = "Welcome to Premium"
		body = fmt.Sprintf("Hi %s,\n\nThank you for upgrading. Your Premium plan is now active and you can share task lists without limits in time.", n.Username)
	case models.NotificationTrialEnding:
		subject = "Your Premium trial ends soon"
		ends := "soon"
		if n.TrialEndsAt != nil {
			ends = "on " + n.TrialEndsAt.UTC().Format(dateLayout)
		}
		body = fmt.Sprintf("Hi %s,\n\nYour free Premium trial ends %s. Upgrade from your profile page to keep sharing task lists.", n.Username, ends)
	default:
		return "", "", fmt.Errorf("unknown notification kind %q: %w", n.Kind, rabbitmq.ErrDiscard)
	}
	return subject, body, nil
}

func (s *SenderService) sendEmail(ctx context.Context, to []string, subject, bodyText string) error {
	from := s.transport.Sender()
	msg := strings.Join([]string{
		"From: " + from,
		"To: " + strings.Join(to, ", "),
		"Subject: " + subject,
		"Date: " + time.Now().UTC().Format(time.RFC1123Z),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect(ctx)
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Mail(from); err != nil {
		s.log.Error("failed to set MAIL FROM", slog.String("from", from), sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get Data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close Data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", slog.Any("to", to), slog.String("subject", subject))
	return nil
}
