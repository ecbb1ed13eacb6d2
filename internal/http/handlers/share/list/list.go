// Package list реализует HTTP-обработчик просмотра участников списка задач.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/taskshare/internal/http/middlewarectx"
	"github.com/magabrotheeeer/taskshare/internal/http/response"
	"github.com/magabrotheeeer/taskshare/internal/lib/sl"
	"github.com/magabrotheeeer/taskshare/internal/models"
)

// Service описывает получение доступов к списку.
type Service interface {
	ListShares(ctx context.Context, requesterUID, listID string) ([]*models.Share, error)
}

// Handler обрабатывает GET /tasklists/{listId}/shares.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.share.list"
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

	shares, err := h.service.ListShares(r.Context(), uid, listID)
	if err != nil {
		log.Info("failed to list shares", slog.String("list_id", listID), sl.Err(err))
		response.FromError(w, r, err)
		return
	}
	render.JSON(w, r, response.OKWithData(shares))
}
