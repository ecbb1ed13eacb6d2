// Package grant реализует HTTP-обработчик открытия доступа к списку задач.
//
// Владелец списка указывает имя участника; сервис проверяет тариф или пробный
// период, лимит участников и создаёт доступ с правом редактирования.
package grant

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/taskshare/internal/http/middlewarectx"
	"github.com/magabrotheeeer/taskshare/internal/http/response"
	"github.com/magabrotheeeer/taskshare/internal/lib/sl"
	"github.com/magabrotheeeer/taskshare/internal/services/share"
)

// Request — тело запроса на открытие доступа.
type Request struct {
	CollaboratorUsername string `json:"collaborator_username" validate:"required,max=50"`
}

// Service описывает открытие доступа.
type Service interface {
	GrantShare(ctx context.Context, requesterUID, listID, collaboratorUsername string) (*share.ShareResult, error)
}

// Handler обрабатывает POST /tasklists/{listId}/share.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.share.grant"
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
	listID := chi.URLParam(r, "listId")

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid request body"))
			return
		}
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(verrs))
		return
	}

	log = log.With(slog.String("user_uid", uid), slog.String("list_id", listID))
	res, err := h.service.GrantShare(r.Context(), uid, listID, req.CollaboratorUsername)
	if err != nil {
		log.Info("share rejected", sl.Err(err))
		response.FromError(w, r, err)
		return
	}

	log.Info("share granted",
		slog.String("collaborator", req.CollaboratorUsername),
		slog.Bool("trial_activated", res.TrialActivated))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OKWithData(res))
}
