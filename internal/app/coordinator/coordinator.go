// Package coordinator собирает фоновый процесс клиента: хранилище, держатель
// состояния аутентификации, батчер аналитики и HTTP-транспорт сообщений.
package coordinator

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/perfectinsta/extension-client/internal/backendapi"
	"github.com/perfectinsta/extension-client/internal/browser"
	"github.com/perfectinsta/extension-client/internal/config"
	"github.com/perfectinsta/extension-client/internal/lib/rabbitmq"
	"github.com/perfectinsta/extension-client/internal/lib/sl"
	analyticsservice "github.com/perfectinsta/extension-client/internal/services/analytics"
	authservice "github.com/perfectinsta/extension-client/internal/services/auth"
	identityservice "github.com/perfectinsta/extension-client/internal/services/identity"
	"github.com/perfectinsta/extension-client/internal/storage"
)

type App struct {
	server    *http.Server
	logger    *slog.Logger
	kv        *storage.KV
	auth      *authservice.Service
	analytics *analyticsservice.Service
	cfg       *config.Config
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	kv, err := storage.New(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	idsvc := identityservice.New(kv, logger)
	identity, created, err := idsvc.EnsureIdentity(ctx)
	if err != nil {
		return nil, err
	}

	backend := backendapi.New(cfg.BackendURL)

	sink, err := buildSink(cfg.Analytics, backend, logger)
	if err != nil {
		return nil, err
	}
	session := idsvc.NewSession()
	analytics := analyticsservice.New(cfg.Analytics, sink, identity.UserID, session.SessionID, logger)
	if created {
		analytics.Track(ctx, "extension_installed", nil)
	}

	br, err := browser.Connect(ctx, cfg.Browser)
	if err != nil {
		return nil, err
	}

	auth := authservice.New(kv, backend, br, cfg.Auth, cfg.BackendURL+"/auth/extension", logger)
	auth.Load(ctx)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, auth)

	srv := &http.Server{
		Addr:         cfg.Coordinator.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.Coordinator.TimeoutHTTP,
		// Login держит запрос открытым весь OAuth-поток.
		WriteTimeout: cfg.Auth.LoginTimeout + cfg.Coordinator.TimeoutHTTP,
		IdleTimeout:  cfg.Coordinator.IdleTimeout,
	}

	return &App{
		server:    srv,
		logger:    logger,
		kv:        kv,
		auth:      auth,
		analytics: analytics,
		cfg:       cfg,
	}, nil
}

// buildSink выбирает сток аналитики: RabbitMQ при заданном AMQP_URL,
// иначе HTTP-эндпоинт бэкенда.
func buildSink(cfg config.Analytics, backend *backendapi.Client, logger *slog.Logger) (analyticsservice.Sink, error) {
	if cfg.AMQPURL == "" {
		return analyticsservice.NewHTTPSink(backend), nil
	}

	conn, err := rabbitmq.Connect(cfg.AMQPURL, 3, time.Second)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupAnalyticsChannel(conn, cfg.AMQPExchange)
	if err != nil {
		return nil, err
	}
	logger.Info("analytics sink: rabbitmq", slog.String("exchange", cfg.AMQPExchange))
	return analyticsservice.NewAMQPSink(ch, cfg.AMQPExchange, cfg.AMQPRoutingKey), nil
}

func (a *App) Run(ctx context.Context) error {
	go a.analytics.Run(ctx)
	go a.auth.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if closeErr := a.kv.Close(); closeErr != nil {
			a.logger.Error("failed to close kv store", sl.Err(closeErr))
		}
		return err
	}
}
