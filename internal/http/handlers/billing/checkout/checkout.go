// Package checkout реализует HTTP-обработчик создания страницы оплаты PREMIUM.
package checkout

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/taskshare/internal/http/middlewarectx"
	"github.com/magabrotheeeer/taskshare/internal/http/response"
	"github.com/magabrotheeeer/taskshare/internal/lib/sl"
	"github.com/magabrotheeeer/taskshare/internal/paymentprovider"
)

// Service создаёт страницу оплаты.
type Service interface {
	CreateCheckoutSession(ctx context.Context, userUID string) (*paymentprovider.CheckoutSession, error)
}

// Handler обрабатывает POST /billing/checkout.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.checkout"
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

	sess, err := h.service.CreateCheckoutSession(r.Context(), uid)
	if err != nil {
		log.Error("failed to create checkout session", slog.String("user_uid", uid), sl.Err(err))
		response.FromError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]string{"url": sess.URL})
}
