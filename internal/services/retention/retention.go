// Package retention реализует движок стратегий удержания пользователя.
//
// Движок запускается один раз на открытие popup. Стратегии независимы и не
// взаимоисключающи: за один проход может сработать несколько. Факт показа не
// персистится — стратегия срабатывает каждую сессию, пока держится условие.
package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/perfectinsta/extension-client/internal/lib/month"
	"github.com/perfectinsta/extension-client/internal/metrics"
	"github.com/perfectinsta/extension-client/internal/models"
	"github.com/perfectinsta/extension-client/internal/storage"
)

// Пороги срабатывания стратегий.
const (
	welcomeMaxDaysSinceInstall = 3
	welcomeMaxPosts            = 2
	upgradeMinPosts            = 3
	winbackMinDaysInactive     = 7
)

// Store описывает методы key-value хранилища, нужные движку удержания.
type Store interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any) error
}

// Tracker принимает события аналитики, порождаемые стратегиями.
type Tracker interface {
	Track(ctx context.Context, eventName string, properties map[string]any)
}

// Service движок стратегий удержания.
type Service struct {
	store   Store
	tracker Tracker
	log     *slog.Logger
	now     func() time.Time
}

// New создает новый Service.
func New(store Store, tracker Tracker, log *slog.Logger) *Service {
	return &Service{
		store:   store,
		tracker: tracker,
		log:     log,
		now:     time.Now,
	}
}

// Evaluate один проход по стратегиям. Возвращает намерения показать
// уведомления; отрисовка — забота презентационного слоя. После оценки
// безусловно обновляет lastActiveDate.
func (s *Service) Evaluate(ctx context.Context) ([]models.NotificationIntent, error) {
	const op = "retention.Evaluate"

	now := s.now()
	nowMillis := now.UnixMilli()

	installDate := nowMillis
	if _, err := s.store.Get(ctx, storage.KeyInstallDate, &installDate); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	lastActiveDate := nowMillis
	if _, err := s.store.Get(ctx, storage.KeyLastActiveDate, &lastActiveDate); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var totalPosts int
	if _, err := s.store.Get(ctx, storage.KeyTotalPostsGenerated, &totalPosts); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	userPlan := models.PlanFree
	if _, err := s.store.Get(ctx, storage.KeyUserPlan, &userPlan); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	daysSinceInstall := month.DaysSince(installDate, now)
	daysSinceLastUse := month.DaysSince(lastActiveDate, now)

	var intents []models.NotificationIntent

	if daysSinceInstall <= welcomeMaxDaysSinceInstall && totalPosts < welcomeMaxPosts {
		intents = append(intents, models.NotificationIntent{
			Kind:  models.NotificationWelcome,
			Title: "Welcome to Perfect Insta Post!",
			Body:  "Upload a photo to start creating perfect posts",
			TTL:   10 * time.Second,
		})
		s.tracker.Track(ctx, "retention_welcome_triggered", map[string]any{
			"days_since_install": daysSinceInstall,
		})
		metrics.RetentionTriggers.WithLabelValues(models.NotificationWelcome).Inc()
	}

	if totalPosts >= upgradeMinPosts && userPlan == models.PlanFree {
		intents = append(intents, models.NotificationIntent{
			Kind:  models.NotificationUpgrade,
			Title: "Pro tip",
			Body:  "Unlock location and context for even more engaging posts!",
			TTL:   15 * time.Second,
		})
		s.tracker.Track(ctx, "retention_upgrade_triggered", map[string]any{
			"total_posts": totalPosts,
		})
		metrics.RetentionTriggers.WithLabelValues(models.NotificationUpgrade).Inc()
	}

	if daysSinceLastUse >= winbackMinDaysInactive {
		intents = append(intents, models.NotificationIntent{
			Kind:  models.NotificationWinback,
			Title: "Good to see you again!",
			Body:  "Create a new perfect post right now",
			TTL:   8 * time.Second,
		})
		s.tracker.Track(ctx, "retention_winback_triggered", map[string]any{
			"days_inactive": daysSinceLastUse,
		})
		metrics.RetentionTriggers.WithLabelValues(models.NotificationWinback).Inc()
	}

	if err := s.store.Set(ctx, storage.KeyLastActiveDate, nowMillis); err != nil {
		return intents, fmt.Errorf("%s: %w", op, err)
	}

	if len(intents) > 0 {
		s.log.Info("retention strategies fired", slog.Int("count", len(intents)))
	}
	return intents, nil
}
