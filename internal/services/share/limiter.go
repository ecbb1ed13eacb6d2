package share

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/taskshare/internal/lib/apperr"
)

// MaxCollaborators — максимальное число участников одного списка, не зависит от тарифа.
const MaxCollaborators = 5

// Limiter проверяет, есть ли в списке место для нового участника.
type Limiter struct {
	counter ShareCounter
	max     int
}

// NewLimiter создаёт Limiter с потолком MaxCollaborators.
func NewLimiter(counter ShareCounter) *Limiter {
	return &Limiter{counter: counter, max: MaxCollaborators}
}

// CheckCapacity возвращает ошибку COLLABORATOR_LIMIT, если у списка уже max участников.
//
// Проверка и последующая вставка не атомарны: два одновременных запроса могут
// на короткое время превысить потолок на единицу.
func (l *Limiter) CheckCapacity(ctx context.Context, listID string) error {
	count, err := l.counter.CountSharesByList(ctx, listID)
	if err != nil {
		return apperr.Internal(err, "failed to count collaborators")
	}
	if count >= l.max {
		return apperr.New(apperr.KindBadRequest, apperr.ReasonCollaboratorLimit,
			fmt.Sprintf("a task list can have at most %d collaborators", l.max))
	}
	return nil
}
