// Package consent хранит запись о согласии пользователя на обработку данных.
// Согласие действует год; устаревшая или отсутствующая запись означает,
// что согласие нужно запросить заново.
package consent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/perfectinsta/extension-client/internal/models"
	"github.com/perfectinsta/extension-client/internal/storage"
)

// Version текущая версия текста соглашения.
const Version = "1.0"

const maxAge = 365 * 24 * time.Hour

// Store описывает методы key-value хранилища, нужные сервису согласий.
type Store interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Clear(ctx context.Context) error
}

// Service управляет записью согласия.
type Service struct {
	store Store
	log   *slog.Logger
	now   func() time.Time
}

// New создает новый Service.
func New(store Store, log *slog.Logger) *Service {
	return &Service{store: store, log: log, now: time.Now}
}

func (s *Service) record(ctx context.Context) (*models.ConsentRecord, error) {
	var rec models.ConsentRecord
	found, err := s.store.Get(ctx, storage.KeyGDPRConsent, &rec)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &rec, nil
}

// NeedsPrompt сообщает, нужно ли показать запрос согласия:
// записи нет либо она старше года.
func (s *Service) NeedsPrompt(ctx context.Context) (bool, error) {
	const op = "consent.NeedsPrompt"
	rec, err := s.record(ctx)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if rec == nil {
		return true, nil
	}
	return rec.Timestamp < s.now().Add(-maxAge).UnixMilli(), nil
}

// HasValidConsent сообщает, есть ли действующее принятое согласие.
// Отклонённое согласие выключает аналитику, но не блокирует работу клиента.
func (s *Service) HasValidConsent(ctx context.Context) (bool, error) {
	const op = "consent.HasValidConsent"
	rec, err := s.record(ctx)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return rec != nil && rec.Accepted && rec.Timestamp > s.now().Add(-maxAge).UnixMilli(), nil
}

// Accept сохраняет принятое согласие.
func (s *Service) Accept(ctx context.Context) error {
	return s.save(ctx, true)
}

// Decline сохраняет отклонённое согласие.
func (s *Service) Decline(ctx context.Context) error {
	return s.save(ctx, false)
}

func (s *Service) save(ctx context.Context, accepted bool) error {
	const op = "consent.save"
	rec := models.ConsentRecord{
		Accepted:  accepted,
		Timestamp: s.now().UnixMilli(),
		Version:   Version,
	}
	if err := s.store.Set(ctx, storage.KeyGDPRConsent, rec); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("gdpr consent saved", slog.Bool("accepted", accepted), slog.String("version", Version))
	return nil
}

// DeleteAccount удаляет все локальные данные пользователя. Необратимо.
func (s *Service) DeleteAccount(ctx context.Context) error {
	const op = "consent.DeleteAccount"
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("all local data cleared")
	return nil
}
