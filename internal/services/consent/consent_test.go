package consent

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	data map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) Get(_ context.Context, key string, result any) (bool, error) {
	raw, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, result)
}

func (m *memStore) Set(_ context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	return nil
}

func (m *memStore) Clear(_ context.Context) error {
	m.data = make(map[string][]byte)
	return nil
}

func newTestService(store Store, now time.Time) *Service {
	svc := New(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.now = func() time.Time { return now }
	return svc
}

func TestNeedsPromptWithoutRecord(t *testing.T) {
	svc := newTestService(newMemStore(), time.Date(2026, time.May, 10, 12, 0, 0, 0, time.UTC))

	needs, err := svc.NeedsPrompt(context.Background())

	require.NoError(t, err)
	assert.True(t, needs)
}

func TestAcceptGrantsConsent(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, time.Date(2026, time.May, 10, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	require.NoError(t, svc.Accept(ctx))

	needs, err := svc.NeedsPrompt(ctx)
	require.NoError(t, err)
	assert.False(t, needs)

	valid, err := svc.HasValidConsent(ctx)
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestDeclineIsRememberedButNotValid(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, time.Date(2026, time.May, 10, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	require.NoError(t, svc.Decline(ctx))

	needs, err := svc.NeedsPrompt(ctx)
	require.NoError(t, err)
	assert.False(t, needs)

	valid, err := svc.HasValidConsent(ctx)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestConsentExpiresAfterYear(t *testing.T) {
	store := newMemStore()
	granted := time.Date(2025, time.January, 10, 12, 0, 0, 0, time.UTC)
	svc := newTestService(store, granted)
	ctx := context.Background()

	require.NoError(t, svc.Accept(ctx))

	// Через 13 месяцев согласие устарело.
	later := newTestService(store, granted.AddDate(0, 13, 0))

	needs, err := later.NeedsPrompt(ctx)
	require.NoError(t, err)
	assert.True(t, needs)

	valid, err := later.HasValidConsent(ctx)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestDeleteAccountClearsEverything(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, time.Date(2026, time.May, 10, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "userId", "user_1"))
	require.NoError(t, svc.Accept(ctx))

	require.NoError(t, svc.DeleteAccount(ctx))

	assert.Empty(t, store.data)
}
