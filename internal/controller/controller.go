// Package controller реализует поток действий popup: инициализацию сессии,
// генерацию поста и переписывание подписи.
//
// Контроллер не держит долговременного состояния: всё, что переживает
// закрытие popup, живёт в key-value хранилище или у координатора.
package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/go-playground/validator"

	"github.com/perfectinsta/extension-client/internal/lib/sl"
	"github.com/perfectinsta/extension-client/internal/metrics"
	"github.com/perfectinsta/extension-client/internal/models"
	"github.com/perfectinsta/extension-client/internal/notify"
	"github.com/perfectinsta/extension-client/internal/services/freemium"
)

// Coordinator обмен сообщениями с фоновым координатором.
type Coordinator interface {
	GetAuth(ctx context.Context) (models.AuthState, error)
	Login(ctx context.Context) (models.LoginResult, error)
	Logout(ctx context.Context) error
}

// Consent проверка согласия на обработку данных.
type Consent interface {
	NeedsPrompt(ctx context.Context) (bool, error)
	Accept(ctx context.Context) error
	Decline(ctx context.Context) error
}

// Freemium учёт месячной квоты.
type Freemium interface {
	CanGeneratePost(ctx context.Context) (bool, error)
	IncrementUsage(ctx context.Context) (bool, error)
	GetUsageInfo(ctx context.Context) (models.UsageInfo, error)
	AddWatermark(ctx context.Context, caption string) (string, error)
}

// Retention движок стратегий удержания.
type Retention interface {
	Evaluate(ctx context.Context) ([]models.NotificationIntent, error)
}

// Generator цепочка провайдеров генерации контента.
type Generator interface {
	Generate(ctx context.Context, image io.Reader, filename string, opts models.GenerateOptions) (*models.GenerateResult, error)
	Rewrite(ctx context.Context, caption, instruction string) (string, error)
}

// Tracker принимает события аналитики popup.
type Tracker interface {
	Track(ctx context.Context, eventName string, properties map[string]any)
}

// SessionState снимок, который popup отрисовывает после инициализации.
type SessionState struct {
	Auth          models.AuthState
	Usage         models.UsageInfo
	NeedsConsent  bool
	Notifications []models.NotificationIntent
}

// Controller управляет потоком действий popup.
type Controller struct {
	coord     Coordinator
	consent   Consent
	freemium  Freemium
	retention Retention
	generator Generator
	tracker   Tracker
	presenter notify.Presenter
	validate  *validator.Validate
	log       *slog.Logger
}

// New создает новый Controller.
func New(coord Coordinator, consent Consent, fr Freemium, ret Retention, gen Generator, tracker Tracker, presenter notify.Presenter, log *slog.Logger) *Controller {
	return &Controller{
		coord:     coord,
		consent:   consent,
		freemium:  fr,
		retention: ret,
		generator: gen,
		tracker:   tracker,
		presenter: presenter,
		validate:  validator.New(),
		log:       log,
	}
}

// Init последовательность открытия popup: состояние аутентификации,
// проверка согласия, квота и стратегии удержания. Ошибка удержания не
// фатальна: сессия продолжается без уведомлений.
func (c *Controller) Init(ctx context.Context) (*SessionState, error) {
	const op = "controller.Init"
	log := c.log.With(slog.String("op", op))

	auth, err := c.coord.GetAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	needsConsent, err := c.consent.NeedsPrompt(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	usage, err := c.freemium.GetUsageInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	state := &SessionState{
		Auth:         auth,
		Usage:        usage,
		NeedsConsent: needsConsent,
	}

	intents, err := c.retention.Evaluate(ctx)
	if err != nil {
		log.Warn("retention evaluation failed", sl.Err(err))
	} else {
		state.Notifications = intents
		for _, intent := range intents {
			c.presenter.Show(intent)
		}
	}

	c.tracker.Track(ctx, "popup_opened", map[string]any{
		"authenticated": auth.IsAuthenticated,
		"plan":          usage.Plan,
	})

	log.Info("popup session initialized",
		slog.Bool("authenticated", auth.IsAuthenticated),
		slog.Bool("needs_consent", needsConsent))
	return state, nil
}

// GeneratePost полный цикл генерации: проверка квоты, генерация через
// цепочку провайдеров, инкремент счётчика и водяной знак.
// Квота проверяется до запроса и списывается только после успеха.
func (c *Controller) GeneratePost(ctx context.Context, image io.Reader, filename string, opts models.GenerateOptions) (*models.GenerateResult, error) {
	const op = "controller.GeneratePost"
	log := c.log.With(slog.String("op", op))

	if err := c.validate.Struct(opts); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ok, err := c.freemium.CanGeneratePost(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		c.tracker.Track(ctx, "quota_exceeded", nil)
		return nil, freemium.ErrQuotaExceeded
	}

	result, err := c.generator.Generate(ctx, image, filename, opts)
	if err != nil {
		c.tracker.Track(ctx, "generation_failed", map[string]any{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	incremented, err := c.freemium.IncrementUsage(ctx)
	if err != nil {
		log.Error("failed to increment usage", sl.Err(err))
	}
	if !incremented && err == nil {
		// Гонка: квота закончилась между проверкой и инкрементом.
		log.Warn("usage increment rejected after generation")
	}

	result.Caption, err = c.freemium.AddWatermark(ctx, result.Caption)
	if err != nil {
		return nil, fmt.Errorf("%s: watermark: %w", op, err)
	}

	c.tracker.Track(ctx, "post_generated", map[string]any{
		"post_type": opts.PostType,
		"tone":      opts.Tone,
		"source":    result.Source,
	})
	metrics.PostsGenerated.Inc()

	log.Info("post generated", slog.String("source", result.Source))
	return result, nil
}

// RewriteCaption переписывает готовую подпись. Квоту не расходует.
func (c *Controller) RewriteCaption(ctx context.Context, caption, instruction string) (string, error) {
	const op = "controller.RewriteCaption"

	out, err := c.generator.Rewrite(ctx, caption, instruction)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	c.tracker.Track(ctx, "caption_rewritten", nil)
	return out, nil
}

// Login делегирует вход координатору.
func (c *Controller) Login(ctx context.Context) (models.LoginResult, error) {
	const op = "controller.Login"

	result, err := c.coord.Login(ctx)
	if err != nil {
		return models.LoginResult{}, fmt.Errorf("%s: %w", op, err)
	}

	c.tracker.Track(ctx, "user_logged_in", nil)
	return result, nil
}

// Logout делегирует выход координатору.
func (c *Controller) Logout(ctx context.Context) error {
	const op = "controller.Logout"

	if err := c.coord.Logout(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	c.tracker.Track(ctx, "user_logged_out", nil)
	return nil
}

// AcceptConsent фиксирует согласие пользователя.
func (c *Controller) AcceptConsent(ctx context.Context) error {
	return c.consent.Accept(ctx)
}

// DeclineConsent фиксирует отказ пользователя.
func (c *Controller) DeclineConsent(ctx context.Context) error {
	return c.consent.Decline(ctx)
}

// IsQuotaExceeded сообщает, что ошибка генерации вызвана исчерпанием квоты.
func IsQuotaExceeded(err error) bool {
	return errors.Is(err, freemium.ErrQuotaExceeded)
}
