// Package entitlement отдаёт текущее право пользователя на совместный доступ:
// тариф, состояние пробного периода и дату его окончания.
package entitlement

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/taskshare/internal/http/middlewarectx"
	"github.com/magabrotheeeer/taskshare/internal/http/response"
	"github.com/magabrotheeeer/taskshare/internal/lib/sl"
	"github.com/magabrotheeeer/taskshare/internal/services/share"
)

// Service возвращает состояние доступа пользователя.
type Service interface {
	Entitlement(ctx context.Context, userUID string) (*share.EntitlementView, error)
}

// Handler обрабатывает GET /me/entitlement.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.me.entitlement"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	uid, ok := middlewarectx.UserUIDFrom(r.Context())
	if !ok {
		log.Error("user uid not found in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	view, err := h.service.Entitlement(r.Context(), uid)
	if err != nil {
		log.Error("failed to get entitlement", slog.String("user_uid", uid), sl.Err(err))
		response.FromError(w, r, err)
		return
	}
	render.JSON(w, r, response.OKWithData(view))
}
