// Package services напоминает пользователям об окончании пробного периода.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/magabrotheeeer/taskshare/internal/entitlement"
	"github.com/magabrotheeeer/taskshare/internal/lib/sl"
	"github.com/magabrotheeeer/taskshare/internal/models"
)

// TrialRepository ищет пользователей с заканчивающимся пробным периодом.
type TrialRepository interface {
	FindTrialsEndingBetween(ctx context.Context, from, to time.Time, trialDuration time.Duration) ([]*models.User, error)
}

// Publisher отправляет уведомление в очередь.
type Publisher interface {
	Publish(ctx context.Context, n models.Notification) error
}

// SchedulerService по расписанию рассылает напоминания trial_ending.
type SchedulerService struct {
	repo      TrialRepository
	publisher Publisher
	log       *slog.Logger
	window    time.Duration
	now       func() time.Time
}

// NewSchedulerService создает новый экземпляр SchedulerService.
// window задаёт, за сколько до окончания пробного периода отправлять напоминание.
func NewSchedulerService(repo TrialRepository, publisher Publisher, log *slog.Logger, window time.Duration) *SchedulerService {
	return &SchedulerService{
		repo:      repo,
		publisher: publisher,
		log:       log,
		window:    window,
		now:       time.Now,
	}
}

// Start регистрирует задачу по cron-выражению spec и блокируется до отмены ctx.
func (s *SchedulerService) Start(ctx context.Context, spec string) error {
	const op = "scheduler.Start"
	c := cron.New(cron.WithLocation(time.UTC))
	if _, err := c.AddFunc(spec, func() { s.RemindEndingTrials(ctx) }); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	c.Start()
	s.log.Info("trial reminder scheduled", slog.String("spec", spec), slog.Duration("window", s.window))

	<-ctx.Done()
	stopCtx := c.Stop()
	<-stopCtx.Done()
	return nil
}

// RemindEndingTrials публикует напоминания всем, чей пробный период
// закончится в ближайшее окно. Возвращает число отправленных уведомлений.
func (s *SchedulerService) RemindEndingTrials(ctx context.Context) int {
	s.log.Info("starting search for ending trials")
	from := s.now().UTC()
	users, err := s.repo.FindTrialsEndingBetween(ctx, from, from.Add(s.window), entitlement.TrialDuration)
	if err != nil {
		s.log.Error("failed to find ending trials", sl.Err(err))
		return 0
	}
	if len(users) == 0 {
		s.log.Info("no ending trials found")
		return 0
	}
	s.log.Info("found ending trials", "count", len(users))

	sent := 0
	for _, u := range users {
		n := models.Notification{
			Kind:        models.NotificationTrialEnding,
			Email:       u.Email,
			Username:    u.Username,
			TrialEndsAt: entitlement.TrialEndsAt(u),
		}
		if err := s.publisher.Publish(ctx, n); err != nil {
			s.log.Error("failed to publish message", slog.String("user_uid", u.UUID), sl.Err(err))
			continue
		}
		sent++
	}
	return sent
}
