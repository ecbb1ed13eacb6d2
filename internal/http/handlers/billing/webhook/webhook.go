// Package webhook принимает вебхуки платёжного провайдера.
//
// Подпись проверяется по сырому телу запроса, поэтому тело читается
// целиком до любого разбора.
package webhook

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/taskshare/internal/http/response"
	"github.com/magabrotheeeer/taskshare/internal/lib/apperr"
	"github.com/magabrotheeeer/taskshare/internal/lib/sl"
)

// MaxBodyBytes ограничивает размер тела вебхука.
const MaxBodyBytes = 64 << 10

// Service применяет событие провайдера.
type Service interface {
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
	SignatureHeader() string
}

// Handler обрабатывает POST /billing/webhook.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.webhook"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			log.Warn("webhook body too large", slog.Int64("limit", maxErr.Limit))
			render.Status(r, http.StatusRequestEntityTooLarge)
			render.JSON(w, r, map[string]bool{"received": false})
			return
		}
		log.Error("failed to read webhook body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]bool{"received": false})
		return
	}

	signature := r.Header.Get(h.service.SignatureHeader())
	if err := h.service.HandleWebhook(r.Context(), payload, signature); err != nil {
		log.Warn("webhook not processed", slog.String("reason", string(apperr.ReasonOf(err))), sl.Err(err))
		render.Status(r, response.StatusFor(apperr.KindOf(err)))
		render.JSON(w, r, map[string]any{
			"received": false,
			"reason":   apperr.ReasonOf(err),
		})
		return
	}

	render.JSON(w, r, map[string]bool{"received": true})
}
