package share

import (
	"context"
	"errors"
	"time"

	"github.com/magabrotheeeer/taskshare/internal/entitlement"
	"github.com/magabrotheeeer/taskshare/internal/lib/apperr"
	"github.com/magabrotheeeer/taskshare/internal/models"
	"github.com/magabrotheeeer/taskshare/internal/storage/repository"
)

// EntitlementView — текущее право пользователя на совместный доступ.
type EntitlementView struct {
	Plan             models.Plan       `json:"plan"`
	State            entitlement.State `json:"state"`
	HasSharingAccess bool              `json:"has_sharing_access"`
	TrialEndsAt      *time.Time        `json:"trial_ends_at,omitempty"`
	MaxCollaborators int               `json:"max_collaborators"`
}

// Entitlement возвращает состояние доступа пользователя userUID на текущий момент.
// Пробный период при этом не активируется.
func (s *Service) Entitlement(ctx context.Context, userUID string) (*EntitlementView, error) {
	user, err := s.repo.GetUser(ctx, userUID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, apperr.New(apperr.KindNotFound, apperr.ReasonUserNotFound, "user not found")
	case err != nil:
		return nil, apperr.Internal(err, "failed to load user")
	}

	state := entitlement.Evaluate(user, s.now())
	view := &EntitlementView{
		Plan:             user.Plan,
		State:            state,
		HasSharingAccess: state.Allows(),
		MaxCollaborators: MaxCollaborators,
	}
	if !user.IsPremium() {
		view.TrialEndsAt = entitlement.TrialEndsAt(user)
	}
	return view, nil
}
