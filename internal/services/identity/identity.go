// Package identity управляет анонимной идентичностью установки и сессиями.
package identity

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/perfectinsta/extension-client/internal/models"
	"github.com/perfectinsta/extension-client/internal/storage"
)

// Store описывает методы key-value хранилища, нужные сервису идентичности.
type Store interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any) error
}

// Service создает и читает постоянную идентичность установки.
type Service struct {
	store Store
	log   *slog.Logger
	now   func() time.Time
}

// New создает новый Service.
func New(store Store, log *slog.Logger) *Service {
	return &Service{store: store, log: log, now: time.Now}
}

// NewSession порождает сессию текущего запуска процесса. Не персистится.
func (s *Service) NewSession() models.Session {
	return models.Session{
		SessionID: "session_" + uuid.NewString(),
		StartTime: s.now(),
	}
}

// EnsureIdentity возвращает идентичность установки, создавая её при первом
// запуске. Второе возвращаемое значение — признак первого запуска: по нему
// вызывающий код отправляет событие extension_installed.
func (s *Service) EnsureIdentity(ctx context.Context) (models.UserIdentity, bool, error) {
	const op = "identity.EnsureIdentity"

	var userID string
	found, err := s.store.Get(ctx, storage.KeyUserID, &userID)
	if err != nil {
		return models.UserIdentity{}, false, fmt.Errorf("%s: %w", op, err)
	}

	if found && userID != "" {
		ident := models.UserIdentity{UserID: userID}
		if _, err := s.store.Get(ctx, storage.KeyInstallDate, &ident.InstallDate); err != nil {
			return models.UserIdentity{}, false, fmt.Errorf("%s: %w", op, err)
		}
		if _, err := s.store.Get(ctx, storage.KeyFirstUseDate, &ident.FirstUseDate); err != nil {
			return models.UserIdentity{}, false, fmt.Errorf("%s: %w", op, err)
		}
		return ident, false, nil
	}

	nowMillis := s.now().UnixMilli()
	ident := models.UserIdentity{
		UserID:       "user_" + uuid.NewString(),
		InstallDate:  nowMillis,
		FirstUseDate: nowMillis,
	}

	if err := s.store.Set(ctx, storage.KeyUserID, ident.UserID); err != nil {
		return models.UserIdentity{}, false, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.store.Set(ctx, storage.KeyInstallDate, ident.InstallDate); err != nil {
		return models.UserIdentity{}, false, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.store.Set(ctx, storage.KeyFirstUseDate, ident.FirstUseDate); err != nil {
		return models.UserIdentity{}, false, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("new install identity created", slog.String("user_id", ident.UserID))
	return ident, true, nil
}
