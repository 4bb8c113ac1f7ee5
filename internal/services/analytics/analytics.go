// Package analytics реализует батчер событий аналитики.
//
// События копятся в ограниченной очереди в памяти и уходят пачками: по
// достижении размера пачки, по таймеру и при завершении процесса. Доставка
// at-least-once: неотправленная пачка возвращается в начало очереди с
// сохранением хронологического порядка, дедупликации нет.
package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/perfectinsta/extension-client/internal/config"
	"github.com/perfectinsta/extension-client/internal/lib/sl"
	"github.com/perfectinsta/extension-client/internal/metrics"
	"github.com/perfectinsta/extension-client/internal/models"
)

// Service батчер событий аналитики.
type Service struct {
	cfg       config.Analytics
	sink      Sink
	userID    string
	sessionID string
	log       *slog.Logger
	now       func() time.Time

	mu    sync.Mutex
	queue []models.AnalyticsEvent
}

// New создает новый Service. userID и sessionID подмешиваются в каждое событие.
func New(cfg config.Analytics, sink Sink, userID, sessionID string, log *slog.Logger) *Service {
	return &Service{
		cfg:       cfg,
		sink:      sink,
		userID:    userID,
		sessionID: sessionID,
		log:       log,
		now:       time.Now,
	}
}

// Track ставит событие в очередь. При выключенном трекинге — no-op.
// Достижение размера пачки запускает немедленную отправку.
func (s *Service) Track(ctx context.Context, eventName string, properties map[string]any) {
	if !s.cfg.Enabled {
		return
	}
	if properties == nil {
		properties = map[string]any{}
	}
	properties["source"] = "chrome_extension"

	event := models.AnalyticsEvent{
		Event:      eventName,
		UserID:     s.userID,
		SessionID:  s.sessionID,
		Timestamp:  s.now().UnixMilli(),
		Properties: properties,
	}

	s.mu.Lock()
	// Очередь ограничена: при переполнении вытесняются самые старые события.
	if overflow := len(s.queue) + 1 - s.cfg.QueueCap; overflow > 0 {
		s.queue = s.queue[overflow:]
		metrics.AnalyticsEventsDropped.Add(float64(overflow))
		s.log.Warn("analytics queue full, oldest events dropped", slog.Int("dropped", overflow))
	}
	s.queue = append(s.queue, event)
	full := len(s.queue) >= s.cfg.BatchSize
	s.mu.Unlock()

	if full {
		if err := s.Flush(ctx); err != nil {
			s.log.Warn("flush after batch threshold failed", sl.Err(err))
		}
	}
}

// Flush атомарно забирает очередь и отправляет её одной пачкой.
// При любой ошибке снимок возвращается в начало очереди перед событиями,
// добавленными во время неудачной попытки.
func (s *Service) Flush(ctx context.Context) error {
	const op = "analytics.Flush"

	s.mu.Lock()
	if len(s.queue) == 0 {
		s.mu.Unlock()
		return nil
	}
	snapshot := s.queue
	s.queue = nil
	s.mu.Unlock()

	batch := models.AnalyticsBatch{
		Events:    snapshot,
		UserID:    s.userID,
		SessionID: s.sessionID,
	}

	if err := s.sink.Send(ctx, batch); err != nil {
		metrics.AnalyticsFlushFailures.Inc()

		s.mu.Lock()
		s.queue = append(snapshot, s.queue...)
		if overflow := len(s.queue) - s.cfg.QueueCap; overflow > 0 {
			s.queue = s.queue[overflow:]
			metrics.AnalyticsEventsDropped.Add(float64(overflow))
		}
		s.mu.Unlock()

		return fmt.Errorf("%s: %w", op, err)
	}

	metrics.AnalyticsEventsSent.Add(float64(len(snapshot)))
	s.log.Debug("analytics batch sent", slog.Int("events", len(snapshot)))
	return nil
}

// QueueLen текущая длина очереди. Используется в тестах и для диагностики.
func (s *Service) QueueLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Close финальный best-effort flush с собственным коротким дедлайном.
// Контекст процесса к этому моменту уже отменён, поэтому здесь свой.
func (s *Service) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return s.Flush(ctx)
}

// Run запускает периодическую отправку и финальный best-effort flush при
// завершении контекста.
func (s *Service) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.Flush(ctx); err != nil {
				s.log.Warn("periodic flush failed", sl.Err(err))
			}
		case <-ctx.Done():
			if err := s.Close(); err != nil {
				s.log.Warn("final flush failed", sl.Err(err))
			}
			return
		}
	}
}
