// Package auth реализует держатель состояния аутентификации и координатор
// OAuth-потока фонового процесса.
//
// Состояние живёт в памяти координатора и зеркалируется в key-value
// хранилище; popup получает копию только через обмен сообщениями.
// Инвариант после каждой мутации: IsAuthenticated == (Token != "" && User != nil).
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/perfectinsta/extension-client/internal/backendapi"
	"github.com/perfectinsta/extension-client/internal/browser"
	"github.com/perfectinsta/extension-client/internal/config"
	"github.com/perfectinsta/extension-client/internal/lib/jwtinspect"
	"github.com/perfectinsta/extension-client/internal/lib/sl"
	"github.com/perfectinsta/extension-client/internal/metrics"
	"github.com/perfectinsta/extension-client/internal/models"
	"github.com/perfectinsta/extension-client/internal/storage"
)

// Store описывает методы key-value хранилища, нужные держателю состояния.
type Store interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Remove(ctx context.Context, keys ...string) error
}

// BackendClient часть API-клиента, нужная для валидации токена.
type BackendClient interface {
	SetToken(token string)
	Me(ctx context.Context) (*models.User, error)
}

// Service держатель состояния аутентификации и координатор OAuth-потока.
type Service struct {
	store   Store
	backend BackendClient
	browser browser.Browser
	cfg     config.Auth
	authURL string
	log     *slog.Logger
	now     func() time.Time

	mu    sync.Mutex
	state models.AuthState
}

// New создает новый Service. authURL — адрес hosted-login страницы бэкенда.
func New(store Store, backend BackendClient, br browser.Browser, cfg config.Auth, authURL string, log *slog.Logger) *Service {
	return &Service{
		store:   store,
		backend: backend,
		browser: br,
		cfg:     cfg,
		authURL: authURL,
		log:     log,
		now:     time.Now,
	}
}

// GetAuth возвращает копию текущего состояния из памяти.
func (s *Service) GetAuth() models.AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Load восстанавливает состояние из хранилища при старте процесса и сразу
// валидирует токен. Ошибки чтения не фатальны: процесс стартует
// неаутентифицированным.
func (s *Service) Load(ctx context.Context) {
	const op = "auth.Load"
	log := s.log.With(slog.String("op", op))

	var token string
	var user models.User

	tokenFound, err := s.store.Get(ctx, storage.KeyJWTToken, &token)
	if err != nil {
		log.Error("failed to read token from storage", sl.Err(err))
		return
	}
	userFound, err := s.store.Get(ctx, storage.KeyUser, &user)
	if err != nil {
		log.Error("failed to read user from storage", sl.Err(err))
		return
	}

	if !tokenFound || !userFound || token == "" {
		log.Info("no stored auth")
		return
	}

	s.setAuthenticated(token, &user)
	log.Info("auth restored from storage", slog.String("email", user.Email))

	s.ValidateToken(ctx)
}

// Login открывает вкладку hosted-login страницы и ждёт callback-навигацию.
// Ровно одно разрешение на вызов; вкладка закрывается и наблюдатель
// снимается на каждом пути выхода, включая таймаут.
func (s *Service) Login(ctx context.Context) models.LoginResult {
	const op = "auth.Login"
	log := s.log.With(slog.String("op", op))

	tab, err := s.browser.OpenTab(ctx, s.authURL)
	if err != nil {
		log.Error("failed to open login tab", sl.Err(err))
		return models.LoginResult{Success: false, Error: "failed to open login tab"}
	}

	flowCtx, cancel := context.WithTimeout(ctx, s.cfg.LoginTimeout)
	defer cancel()
	defer func() {
		if err := tab.Close(); err != nil {
			log.Warn("failed to close login tab", sl.Err(err))
		}
	}()

	navs := tab.Navigations(flowCtx)
	for {
		select {
		case rawURL, ok := <-navs:
			if !ok {
				return models.LoginResult{Success: false, Error: "Timeout"}
			}
			result, done := ParseCallback(rawURL)
			if !done {
				continue
			}
			if !result.Success {
				log.Warn("oauth flow failed", slog.String("reason", result.Error))
				return *result
			}
			if err := s.persistLogin(ctx, result.Token, result.User); err != nil {
				log.Error("failed to persist auth", sl.Err(err))
				return models.LoginResult{Success: false, Error: "failed to persist auth"}
			}
			log.Info("login succeeded", slog.String("email", result.User.Email))
			return *result
		case <-flowCtx.Done():
			log.Warn("oauth flow timed out")
			return models.LoginResult{Success: false, Error: "Timeout"}
		}
	}
}

func (s *Service) persistLogin(ctx context.Context, token string, user *models.User) error {
	if err := s.store.Set(ctx, storage.KeyJWTToken, token); err != nil {
		return err
	}
	if err := s.store.Set(ctx, storage.KeyUser, user); err != nil {
		return err
	}
	s.setAuthenticated(token, user)
	return nil
}

// Logout сбрасывает токен и пользователя. Всегда успешен: ошибка записи в
// хранилище логируется, состояние в памяти сбрасывается в любом случае.
func (s *Service) Logout(ctx context.Context) {
	const op = "auth.Logout"

	if err := s.store.Remove(ctx, storage.KeyJWTToken, storage.KeyUser); err != nil {
		s.log.Error("failed to clear stored auth", slog.String("op", op), sl.Err(err))
	}

	s.mu.Lock()
	s.state = models.AuthState{}
	s.mu.Unlock()

	s.log.Info("logged out", slog.String("op", op))
}

// ValidateToken проверяет токен через профильный эндпоинт бэкенда.
// Подтверждённо невалидный токен (401/403) ведёт к logout; сетевая ошибка
// оставляет состояние нетронутым — потеря связи не разлогинивает.
func (s *Service) ValidateToken(ctx context.Context) {
	const op = "auth.ValidateToken"
	log := s.log.With(slog.String("op", op))

	s.mu.Lock()
	token := s.state.Token
	s.mu.Unlock()
	if token == "" {
		return
	}

	// Истёкший по claims токен не стоит сетевого запроса.
	if jwtinspect.Expired(token, s.now()) {
		log.Info("token expired by claims, logging out")
		metrics.TokenValidations.WithLabelValues("invalid").Inc()
		s.Logout(ctx)
		return
	}

	s.backend.SetToken(token)
	user, err := s.backend.Me(ctx)
	switch {
	case err == nil:
		if err := s.store.Set(ctx, storage.KeyUser, user); err != nil {
			log.Warn("failed to persist refreshed user", sl.Err(err))
		}
		s.setAuthenticated(token, user)
		metrics.TokenValidations.WithLabelValues("valid").Inc()
		log.Info("token is valid", slog.String("email", user.Email))
	case errors.Is(err, backendapi.ErrUnauthorized):
		metrics.TokenValidations.WithLabelValues("invalid").Inc()
		log.Warn("token rejected by backend, logging out")
		s.Logout(ctx)
	default:
		metrics.TokenValidations.WithLabelValues("network_error").Inc()
		log.Warn("token validation skipped, keeping state", sl.Err(fmt.Errorf("%s: %w", op, err)))
	}
}

func (s *Service) setAuthenticated(token string, user *models.User) {
	s.mu.Lock()
	s.state = models.AuthState{
		IsAuthenticated: true,
		Token:           token,
		User:            user,
	}
	s.mu.Unlock()
}

// Run периодически валидирует токен, пока процесс жив и пользователь
// аутентифицирован.
func (s *Service) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.ValidateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if s.GetAuth().IsAuthenticated {
				s.log.Debug("periodic token validation")
				s.ValidateToken(ctx)
			}
		case <-ctx.Done():
			return
		}
	}
}
