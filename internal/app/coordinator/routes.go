package coordinator

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/perfectinsta/extension-client/internal/http/handlers/message/getauth"
	"github.com/perfectinsta/extension-client/internal/http/handlers/message/login"
	"github.com/perfectinsta/extension-client/internal/http/handlers/message/logout"
	"github.com/perfectinsta/extension-client/internal/http/handlers/message/validatetoken"
	"github.com/perfectinsta/extension-client/internal/http/middlewarectx"
	authservice "github.com/perfectinsta/extension-client/internal/services/auth"
)

// RegisterRoutes регистрирует все маршруты координатора.
func RegisterRoutes(r chi.Router, logger *slog.Logger, auth *authservice.Service) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/message", func(r chi.Router) {
		r.Use(middlewarectx.RateLimitMiddleware(logger))
		r.Get("/get-auth", getauth.New(logger, auth).ServeHTTP)
		r.Post("/login", login.New(logger, auth).ServeHTTP)
		r.Post("/logout", logout.New(logger, auth).ServeHTTP)
		r.Post("/validate-token", validatetoken.New(logger, auth).ServeHTTP)
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
