// Package payment реализует запуск апгрейда на Pro через checkout бэкенда
// и синхронизацию статуса подписки после оплаты.
package payment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/perfectinsta/extension-client/internal/browser"
	"github.com/perfectinsta/extension-client/internal/models"
)

// BackendClient часть API-клиента, нужная платёжному потоку.
type BackendClient interface {
	CreateCheckoutSession(ctx context.Context) (string, error)
	Me(ctx context.Context) (*models.User, error)
}

// PlanStore принимает обновление плана после синхронизации.
type PlanStore interface {
	SetPlan(ctx context.Context, plan string) error
}

// Tracker принимает события аналитики платёжного потока.
type Tracker interface {
	Track(ctx context.Context, eventName string, properties map[string]any)
}

// Service платёжный поток клиента. Сама оплата живёт на стороне бэкенда
// (Stripe Checkout), клиент только открывает вкладку и потом сверяет план.
type Service struct {
	backend BackendClient
	plans   PlanStore
	browser browser.Browser
	tracker Tracker
	log     *slog.Logger
}

// New создает новый Service.
func New(backend BackendClient, plans PlanStore, br browser.Browser, tracker Tracker, log *slog.Logger) *Service {
	return &Service{
		backend: backend,
		plans:   plans,
		browser: br,
		tracker: tracker,
		log:     log,
	}
}

// StartCheckout создает checkout-сессию и открывает её адрес во вкладке.
// Возврат из checkout не отслеживается: план подхватится следующей
// синхронизацией.
func (s *Service) StartCheckout(ctx context.Context) error {
	const op = "payment.StartCheckout"

	checkoutURL, err := s.backend.CreateCheckoutSession(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tab, err := s.browser.OpenTab(ctx, checkoutURL)
	if err != nil {
		return fmt.Errorf("%s: open tab: %w", op, err)
	}
	// Вкладку оставляем пользователю, закрываем только наш handle.
	_ = tab

	s.tracker.Track(ctx, "upgrade_flow_started", map[string]any{
		"source": "popup",
	})
	s.log.Info("checkout session opened", slog.String("op", op))
	return nil
}

// SyncSubscriptionStatus запрашивает профиль и переносит план в учёт квоты.
func (s *Service) SyncSubscriptionStatus(ctx context.Context) (*models.User, error) {
	const op = "payment.SyncSubscriptionStatus"

	user, err := s.backend.Me(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.plans.SetPlan(ctx, user.Plan); err != nil {
		return nil, fmt.Errorf("%s: set plan: %w", op, err)
	}

	s.log.Info("subscription status synced",
		slog.String("op", op),
		slog.String("plan", user.Plan))
	return user, nil
}
