// Package capability реализует цепочку провайдеров генерации контента.
//
// Провайдеры выстраиваются в фиксированном порядке предпочтения: сначала
// локальный сервис, бэкенд всегда последним. Недоступные провайдеры
// пропускаются; отказ провайдера на конкретном запросе переводит запрос к
// следующему. Наружу уходит ошибка последней попытки, и только когда
// испробована вся цепочка.
package capability

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/perfectinsta/extension-client/internal/lib/sl"
	"github.com/perfectinsta/extension-client/internal/models"
)

// ErrNoProvider ни один провайдер цепочки не доступен.
var ErrNoProvider = errors.New("no content provider available")

// Provider один источник генерации контента.
type Provider interface {
	// Name имя провайдера для логов и аналитики.
	Name() string
	// Available быстрая проверка готовности провайдера.
	Available(ctx context.Context) bool
	// Generate полный цикл: анализ фото и генерация подписи.
	Generate(ctx context.Context, image io.Reader, filename string, opts models.GenerateOptions) (*models.GenerateResult, error)
	// Rewrite переписывает готовую подпись по инструкции пользователя.
	Rewrite(ctx context.Context, caption, instruction string) (string, error)
}

// Chain упорядоченная цепочка провайдеров.
type Chain struct {
	providers []Provider
	log       *slog.Logger
}

// NewChain создает цепочку. Порядок аргументов — порядок предпочтения.
func NewChain(log *slog.Logger, providers ...Provider) *Chain {
	return &Chain{providers: providers, log: log}
}

// Generate пробует провайдеров по порядку, пока один не ответит успехом.
func (c *Chain) Generate(ctx context.Context, image io.Reader, filename string, opts models.GenerateOptions) (*models.GenerateResult, error) {
	const op = "capability.Generate"

	var lastErr error
	for _, p := range c.providers {
		if !p.Available(ctx) {
			c.log.Debug("provider unavailable", slog.String("provider", p.Name()))
			continue
		}

		result, err := p.Generate(ctx, image, filename, opts)
		if err != nil {
			c.log.Warn("provider failed, trying next", slog.String("provider", p.Name()), sl.Err(err))
			lastErr = fmt.Errorf("%s: %s: %w", op, p.Name(), err)
			continue
		}
		result.Source = p.Name()
		return result, nil
	}

	if lastErr == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrNoProvider)
	}
	return nil, lastErr
}

// Rewrite пробует провайдеров по порядку, пока один не ответит успехом.
func (c *Chain) Rewrite(ctx context.Context, caption, instruction string) (string, error) {
	const op = "capability.Rewrite"

	var lastErr error
	for _, p := range c.providers {
		if !p.Available(ctx) {
			c.log.Debug("provider unavailable", slog.String("provider", p.Name()))
			continue
		}

		out, err := p.Rewrite(ctx, caption, instruction)
		if err != nil {
			c.log.Warn("provider failed, trying next", slog.String("provider", p.Name()), sl.Err(err))
			lastErr = fmt.Errorf("%s: %s: %w", op, p.Name(), err)
			continue
		}
		return out, nil
	}

	if lastErr == nil {
		return "", fmt.Errorf("%s: %w", op, ErrNoProvider)
	}
	return "", lastErr
}
