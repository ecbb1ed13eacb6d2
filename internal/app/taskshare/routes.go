package taskshare

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/magabrotheeeer/taskshare/internal/config"
	"github.com/magabrotheeeer/taskshare/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/taskshare/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/taskshare/internal/http/handlers/billing/checkout"
	"github.com/magabrotheeeer/taskshare/internal/http/handlers/billing/webhook"
	"github.com/magabrotheeeer/taskshare/internal/http/handlers/health"
	"github.com/magabrotheeeer/taskshare/internal/http/handlers/me/entitlement"
	"github.com/magabrotheeeer/taskshare/internal/http/handlers/share/grant"
	sharelist "github.com/magabrotheeeer/taskshare/internal/http/handlers/share/list"
	"github.com/magabrotheeeer/taskshare/internal/http/handlers/tasklist/create"
	tasklistlist "github.com/magabrotheeeer/taskshare/internal/http/handlers/tasklist/list"
	"github.com/magabrotheeeer/taskshare/internal/http/middlewarectx"
)

// AuthService объединяет операции аутентификации.
type AuthService interface {
	register.Service
	login.Service
	middlewarectx.TokenValidator
}

// TaskListService объединяет операции со списками задач.
type TaskListService interface {
	create.Service
	tasklistlist.Service
}

// ShareService объединяет операции совместного доступа.
type ShareService interface {
	grant.Service
	sharelist.Service
	entitlement.Service
}

// Services — зависимости маршрутов. Checkout и DB могут быть nil.
type Services struct {
	Auth     AuthService
	TaskList TaskListService
	Share    ShareService
	Checkout checkout.Service
	Webhook  webhook.Service
	DB       health.Pinger
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, httpCfg config.HTTPServer, svc Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(logger, httpCfg.RateLimitRPS, httpCfg.RateLimitBurst))
			r.Post("/register", register.New(logger, svc.Auth).ServeHTTP)
			r.Post("/login", login.New(logger, svc.Auth).ServeHTTP)
		})

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(svc.Auth, logger))
			r.Get("/me/entitlement", entitlement.New(logger, svc.Share).ServeHTTP)
			r.Post("/tasklists", create.New(logger, svc.TaskList).ServeHTTP)
			r.Get("/tasklists", tasklistlist.New(logger, svc.TaskList).ServeHTTP)
			r.Get("/tasklists/{listId}/shares", sharelist.New(logger, svc.Share).ServeHTTP)
			r.Post("/tasklists/{listId}/share", grant.New(logger, svc.Share).ServeHTTP)
			if svc.Checkout != nil {
				r.Post("/billing/checkout", checkout.New(logger, svc.Checkout).ServeHTTP)
			}
		})

		// Webhook провайдера: аутентификация по подписи
		r.Post("/billing/webhook", webhook.New(logger, svc.Webhook).ServeHTTP)
	})

	r.Get("/health", health.New(logger, svc.DB).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
}
