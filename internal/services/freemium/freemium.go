// Package freemium реализует учёт месячной квоты генераций и тарифных планов.
//
// Сервис хранит счётчики в общем key-value хранилище и перечитывает их при
// каждом обращении: вторая сторона (координатор) может менять план
// параллельно, побеждает последняя запись.
package freemium

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/perfectinsta/extension-client/internal/config"
	"github.com/perfectinsta/extension-client/internal/lib/month"
	"github.com/perfectinsta/extension-client/internal/models"
	"github.com/perfectinsta/extension-client/internal/storage"
)

// ErrQuotaExceeded локальная ошибка: месячная квота исчерпана,
// запрос к бэкенду не отправляется.
var ErrQuotaExceeded = errors.New("monthly quota exceeded")

// Store описывает методы key-value хранилища, нужные трекеру квоты.
type Store interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any) error
}

// Service трекер месячной квоты и тарифного плана.
type Service struct {
	store Store
	plans config.Plans
	log   *slog.Logger
	now   func() time.Time
}

// New создает новый Service поверх key-value хранилища.
func New(store Store, plans config.Plans, log *slog.Logger) *Service {
	return &Service{
		store: store,
		plans: plans,
		log:   log,
		now:   time.Now,
	}
}

// load читает актуальное состояние квоты и применяет месячный сброс.
// Сброс: как только "сейчас" переходит сохранённую дату, месячный счётчик
// обнуляется и назначается первое число следующего месяца.
func (s *Service) load(ctx context.Context) (models.PlanUsage, error) {
	const op = "freemium.load"

	usage := models.PlanUsage{UserPlan: models.PlanFree}

	if _, err := s.store.Get(ctx, storage.KeyUserPlan, &usage.UserPlan); err != nil {
		return usage, fmt.Errorf("%s: %w", op, err)
	}
	if _, err := s.store.Get(ctx, storage.KeyPostsThisMonth, &usage.PostsThisMonth); err != nil {
		return usage, fmt.Errorf("%s: %w", op, err)
	}
	if _, err := s.store.Get(ctx, storage.KeyTotalPostsGenerated, &usage.TotalPostsGenerated); err != nil {
		return usage, fmt.Errorf("%s: %w", op, err)
	}
	found, err := s.store.Get(ctx, storage.KeyMonthlyResetDate, &usage.MonthlyResetDate)
	if err != nil {
		return usage, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	if !found {
		usage.MonthlyResetDate = month.NextResetDate(now).UnixMilli()
		if err := s.store.Set(ctx, storage.KeyMonthlyResetDate, usage.MonthlyResetDate); err != nil {
			return usage, fmt.Errorf("%s: %w", op, err)
		}
	}

	if now.UnixMilli() > usage.MonthlyResetDate {
		usage.PostsThisMonth = 0
		usage.MonthlyResetDate = month.NextResetDate(now).UnixMilli()
		if err := s.persist(ctx, usage); err != nil {
			return usage, fmt.Errorf("%s: %w", op, err)
		}
		s.log.Info("monthly quota reset",
			slog.String("plan", usage.UserPlan),
			slog.Int64("next_reset", usage.MonthlyResetDate))
	}

	if usage.UserPlan != models.PlanPro {
		usage.UserPlan = models.PlanFree
	}
	return usage, nil
}

func (s *Service) persist(ctx context.Context, usage models.PlanUsage) error {
	if err := s.store.Set(ctx, storage.KeyUserPlan, usage.UserPlan); err != nil {
		return err
	}
	if err := s.store.Set(ctx, storage.KeyPostsThisMonth, usage.PostsThisMonth); err != nil {
		return err
	}
	if err := s.store.Set(ctx, storage.KeyTotalPostsGenerated, usage.TotalPostsGenerated); err != nil {
		return err
	}
	return s.store.Set(ctx, storage.KeyMonthlyResetDate, usage.MonthlyResetDate)
}

// CanGeneratePost сообщает, остались ли генерации в текущем месяце.
func (s *Service) CanGeneratePost(ctx context.Context) (bool, error) {
	usage, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	return usage.PostsThisMonth < s.plans.PostsLimit(usage.UserPlan), nil
}

// IncrementUsage увеличивает месячный и пожизненный счётчики после успешной
// генерации. Возвращает false без мутации, если квота уже исчерпана.
func (s *Service) IncrementUsage(ctx context.Context) (bool, error) {
	const op = "freemium.IncrementUsage"

	usage, err := s.load(ctx)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if usage.PostsThisMonth >= s.plans.PostsLimit(usage.UserPlan) {
		return false, nil
	}

	usage.PostsThisMonth++
	usage.TotalPostsGenerated++
	if err := s.persist(ctx, usage); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("usage incremented",
		slog.Int("posts_this_month", usage.PostsThisMonth),
		slog.Int("total_posts", usage.TotalPostsGenerated))
	return true, nil
}

// GetUsageInfo возвращает производное представление квоты для интерфейса.
func (s *Service) GetUsageInfo(ctx context.Context) (models.UsageInfo, error) {
	const op = "freemium.GetUsageInfo"

	usage, err := s.load(ctx)
	if err != nil {
		return models.UsageInfo{}, fmt.Errorf("%s: %w", op, err)
	}

	limit := s.plans.PostsLimit(usage.UserPlan)
	remaining := limit - usage.PostsThisMonth
	if remaining < 0 {
		remaining = 0
	}

	var firstUse int64
	if _, err := s.store.Get(ctx, storage.KeyFirstUseDate, &firstUse); err != nil {
		return models.UsageInfo{}, fmt.Errorf("%s: %w", op, err)
	}
	days := 0
	if firstUse > 0 {
		days = month.DaysSince(firstUse, s.now())
	}

	isPro := usage.UserPlan == models.PlanPro
	return models.UsageInfo{
		Plan:              usage.UserPlan,
		IsPro:             isPro,
		PostsUsed:         usage.PostsThisMonth,
		PostsLimit:        limit,
		PostsRemaining:    remaining,
		CanGenerate:       usage.PostsThisMonth < limit,
		ResetDate:         time.UnixMilli(usage.MonthlyResetDate).Format("02.01.2006"),
		AdvancedFeatures:  isPro,
		NeedsWatermark:    !isPro,
		TotalPosts:        usage.TotalPostsGenerated,
		DaysSinceFirstUse: days,
	}, nil
}

// SetPlan применяет тарифный план, полученный от бэкенда (после оплаты или
// валидации токена). Переход на pro обнуляет месячный счётчик и назначает
// новую дату сброса.
func (s *Service) SetPlan(ctx context.Context, plan string) error {
	const op = "freemium.SetPlan"

	usage, err := s.load(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if usage.UserPlan == plan {
		return nil
	}

	usage.UserPlan = plan
	if plan == models.PlanPro {
		usage.PostsThisMonth = 0
		usage.MonthlyResetDate = month.NextResetDate(s.now()).UnixMilli()
	}
	if err := s.persist(ctx, usage); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("plan changed", slog.String("plan", plan))
	return nil
}

// AddWatermark дописывает водяной знак к подписи на бесплатном плане.
func (s *Service) AddWatermark(ctx context.Context, caption string) (string, error) {
	usage, err := s.load(ctx)
	if err != nil {
		return caption, err
	}
	if usage.UserPlan == models.PlanPro {
		return caption, nil
	}
	return caption + "\n\nGenerated with Perfect Insta Post", nil
}

// MotivationalStats возвращает строки для мотивационного блока интерфейса.
func (s *Service) MotivationalStats(ctx context.Context) ([]string, error) {
	info, err := s.GetUsageInfo(ctx)
	if err != nil {
		return nil, err
	}

	var stats []string
	if info.TotalPosts > 0 {
		stats = append(stats, fmt.Sprintf("You have generated %d perfect posts!", info.TotalPosts))
	}
	if info.DaysSinceFirstUse > 7 {
		stats = append(stats, fmt.Sprintf("With us for %d days", info.DaysSinceFirstUse))
	}
	if info.TotalPosts >= 10 {
		stats = append(stats, fmt.Sprintf("Power user! %d posts created", info.TotalPosts))
	}
	return stats, nil
}
