// Package share реализует открытие совместного доступа к спискам задач
// с проверкой права на функцию, пробным периодом и лимитом участников.
package share

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/taskshare/internal/entitlement"
	"github.com/magabrotheeeer/taskshare/internal/lib/apperr"
	"github.com/magabrotheeeer/taskshare/internal/lib/metrics"
	"github.com/magabrotheeeer/taskshare/internal/lib/sl"
	"github.com/magabrotheeeer/taskshare/internal/models"
	"github.com/magabrotheeeer/taskshare/internal/storage/repository"
)

// ShareResult возвращается после открытия доступа.
type ShareResult struct {
	Share          *models.Share `json:"share"`
	TrialActivated bool          `json:"trial_activated"`
	TrialEndsAt    *time.Time    `json:"trial_ends_at,omitempty"`
}

// Service открывает доступ к спискам задач.
type Service struct {
	log      *slog.Logger
	repo     Repository
	trial    *TrialActivator
	limiter  *Limiter
	notifier Notifier
	metrics  *metrics.Metrics
	now      func() time.Time
}

// Option настраивает Service.
type Option func(*Service)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithMetrics подключает метрики.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New создаёт Service. notifier может быть nil: тогда уведомления не отправляются.
func New(log *slog.Logger, repo Repository, notifier Notifier, opts ...Option) *Service {
	s := &Service{
		log:      log,
		repo:     repo,
		trial:    NewTrialActivator(repo),
		limiter:  NewLimiter(repo),
		notifier: notifier,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GrantShare открывает участнику с именем collaboratorUsername доступ EDIT
// к списку listID от имени его владельца requesterUID.
//
// Пробный период, активированный на шаге проверки права, сохраняется,
// даже если последующие проверки отклонят запрос.
func (s *Service) GrantShare(ctx context.Context, requesterUID, listID, collaboratorUsername string) (*ShareResult, error) {
	res, err := s.grantShare(ctx, requesterUID, listID, collaboratorUsername)
	if err != nil {
		outcome := string(apperr.ReasonOf(err))
		if outcome == "" {
			outcome = string(apperr.KindOf(err))
		}
		s.metrics.ShareGrant(outcome)
		return nil, err
	}
	s.metrics.ShareGrant("ok")
	return res, nil
}

func (s *Service) grantShare(ctx context.Context, requesterUID, listID, collaboratorUsername string) (*ShareResult, error) {
	const op = "share.GrantShare"
	log := s.log.With(slog.String("op", op), slog.String("list_id", listID))

	owner, err := s.repo.GetUser(ctx, requesterUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.New(apperr.KindNotFound, apperr.ReasonUserNotFound, "user not found")
		}
		return nil, apperr.Internal(err, "failed to load user")
	}

	list, err := s.repo.GetTaskList(ctx, listID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, errNotListOwner()
	case err != nil:
		return nil, apperr.Internal(err, "failed to load task list")
	case list.OwnerUID != owner.UUID:
		return nil, errNotListOwner()
	}

	now := s.now()
	var trial TrialOutcome
	state := entitlement.Evaluate(owner, now)
	if state == entitlement.StateTrialNotStarted {
		trial, err = s.trial.ActivateTrialIfNeeded(ctx, owner, now)
		if err != nil {
			return nil, err
		}
		if trial.Activated {
			activatedAt := trial.ActivatedAt
			owner.PremiumTrialActivatedAt = &activatedAt
			s.metrics.TrialActivated()
			log.Info("premium trial activated", slog.String("user_uid", owner.UUID))
		} else {
			// Пробный период активировал параллельный запрос или тариф сменился.
			if owner, err = s.repo.GetUser(ctx, requesterUID); err != nil {
				return nil, apperr.Internal(err, "failed to reload user")
			}
		}
		state = entitlement.Evaluate(owner, now)
	}
	if !state.Allows() {
		return nil, apperr.New(apperr.KindForbidden, apperr.ReasonPremiumRequired,
			"trial expired, upgrade to premium to share task lists")
	}

	if err := s.limiter.CheckCapacity(ctx, listID); err != nil {
		return nil, err
	}

	collaborator, err := s.repo.GetUserByUsername(ctx, collaboratorUsername)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.New(apperr.KindNotFound, apperr.ReasonCollaboratorNotFound, "collaborator not found")
		}
		return nil, apperr.Internal(err, "failed to load collaborator")
	}
	if collaborator.UUID == owner.UUID {
		return nil, apperr.New(apperr.KindBadRequest, apperr.ReasonSelfShare, "cannot share a list with yourself")
	}

	exists, err := s.repo.ShareExists(ctx, listID, collaborator.UUID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to check existing share")
	}
	if exists {
		return nil, errAlreadyShared()
	}

	share, err := s.repo.CreateShare(ctx, models.Share{
		TaskListID:      listID,
		UserUID:         collaborator.UUID,
		PermissionLevel: models.PermissionEdit,
	})
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, errAlreadyShared()
		}
		return nil, apperr.Internal(err, "failed to create share")
	}

	log.Info("task list shared",
		slog.String("owner_uid", owner.UUID),
		slog.String("collaborator_uid", collaborator.UUID),
	)

	result := &ShareResult{
		Share:          share,
		TrialActivated: trial.Activated,
	}
	if !owner.IsPremium() {
		result.TrialEndsAt = entitlement.TrialEndsAt(owner)
	}

	if trial.Activated {
		s.notify(ctx, log, models.Notification{
			Kind:        models.NotificationTrialActivated,
			Email:       owner.Email,
			Username:    owner.Username,
			TrialEndsAt: result.TrialEndsAt,
		})
	}
	s.notify(ctx, log, models.Notification{
		Kind:     models.NotificationShareGranted,
		Email:    collaborator.Email,
		Username: collaborator.Username,
		ListName: list.Name,
		SharedBy: owner.Username,
	})

	return result, nil
}

// ListShares возвращает участников списка; доступно только владельцу.
func (s *Service) ListShares(ctx context.Context, requesterUID, listID string) ([]*models.Share, error) {
	list, err := s.repo.GetTaskList(ctx, listID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.New(apperr.KindForbidden, apperr.ReasonNotListOwner, "only the list owner can view its shares")
		}
		return nil, apperr.Internal(err, "failed to load task list")
	}
	if list.OwnerUID != requesterUID {
		return nil, apperr.New(apperr.KindForbidden, apperr.ReasonNotListOwner, "only the list owner can view its shares")
	}
	shares, err := s.repo.ListShares(ctx, listID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list shares")
	}
	return shares, nil
}

// notify публикует уведомление без влияния на результат операции.
func (s *Service) notify(ctx context.Context, log *slog.Logger, n models.Notification) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(context.WithoutCancel(ctx), n); err != nil {
		s.metrics.Notification(string(n.Kind), "publish_failed")
		log.Warn("failed to publish notification", slog.String("kind", string(n.Kind)), sl.Err(err))
		return
	}
	s.metrics.Notification(string(n.Kind), "published")
}

func errNotListOwner() error {
	return apperr.New(apperr.KindForbidden, apperr.ReasonNotListOwner, "only the list owner can share it")
}

func errAlreadyShared() error {
	return apperr.New(apperr.KindBadRequest, apperr.ReasonAlreadyShared, "list is already shared with this user")
}
