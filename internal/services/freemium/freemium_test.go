package freemium

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perfectinsta/extension-client/internal/config"
	"github.com/perfectinsta/extension-client/internal/models"
	"github.com/perfectinsta/extension-client/internal/storage"
)

// memStore простое key-value хранилище в памяти для тестов.
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

func testPlans() config.Plans {
	return config.Plans{FreePostsPerMonth: 5, ProPostsPerMonth: 50}
}

func newTestService(store Store) *Service {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return New(store, testPlans(), logger)
}

func TestNewInstallDefaults(t *testing.T) {
	svc := newTestService(newMemStore())

	info, err := svc.GetUsageInfo(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.PlanFree, info.Plan)
	assert.Equal(t, 0, info.PostsUsed)
	assert.Equal(t, 5, info.PostsLimit)
	assert.Equal(t, 5, info.PostsRemaining)
	assert.True(t, info.CanGenerate)
	assert.True(t, info.NeedsWatermark)
	assert.False(t, info.AdvancedFeatures)
}

func TestIncrementUsageStopsAtLimit(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		ok, err := svc.IncrementUsage(ctx)
		require.NoError(t, err)
		assert.True(t, ok, "increment %d should succeed", i+1)
	}

	info, err := svc.GetUsageInfo(ctx)
	require.NoError(t, err)
	assert.False(t, info.CanGenerate)
	assert.Equal(t, 0, info.PostsRemaining)

	// Шестой вызов не должен менять счётчики
	ok, err := svc.IncrementUsage(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	info, err = svc.GetUsageInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, info.PostsUsed)
	assert.Equal(t, 5, info.TotalPosts)
}

func TestMonthlyRollover(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ctx := context.Background()

	now := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	require.NoError(t, store.Set(ctx, storage.KeyPostsThisMonth, 4))
	require.NoError(t, store.Set(ctx, storage.KeyTotalPostsGenerated, 9))
	// Дата сброса в прошлом: 1 марта
	pastReset := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	require.NoError(t, store.Set(ctx, storage.KeyMonthlyResetDate, pastReset))

	info, err := svc.GetUsageInfo(ctx)
	require.NoError(t, err)

	assert.Equal(t, 0, info.PostsUsed)
	assert.True(t, info.CanGenerate)
	assert.Equal(t, 9, info.TotalPosts, "lifetime counter survives the rollover")

	var newReset int64
	found, err := store.Get(ctx, storage.KeyMonthlyResetDate, &newReset)
	require.NoError(t, err)
	require.True(t, found)
	wantReset := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	assert.Equal(t, wantReset, newReset)
	assert.Greater(t, newReset, now.UnixMilli())
}

func TestProPlanLimit(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, storage.KeyUserPlan, models.PlanPro))
	require.NoError(t, store.Set(ctx, storage.KeyPostsThisMonth, 49))

	info, err := svc.GetUsageInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50, info.PostsLimit)
	assert.True(t, info.CanGenerate)
	assert.True(t, info.AdvancedFeatures)
	assert.False(t, info.NeedsWatermark)

	ok, err := svc.IncrementUsage(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	can, err := svc.CanGeneratePost(ctx)
	require.NoError(t, err)
	assert.False(t, can)
}

func TestSetPlanUpgradeResetsMonthlyCounter(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, storage.KeyPostsThisMonth, 5))
	require.NoError(t, store.Set(ctx, storage.KeyTotalPostsGenerated, 5))

	require.NoError(t, svc.SetPlan(ctx, models.PlanPro))

	info, err := svc.GetUsageInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.PlanPro, info.Plan)
	assert.Equal(t, 0, info.PostsUsed)
	assert.Equal(t, 5, info.TotalPosts)
}

func TestAddWatermark(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ctx := context.Background()

	caption, err := svc.AddWatermark(ctx, "my caption")
	require.NoError(t, err)
	assert.Contains(t, caption, "Generated with Perfect Insta Post")

	require.NoError(t, store.Set(ctx, storage.KeyUserPlan, models.PlanPro))
	caption, err = svc.AddWatermark(ctx, "my caption")
	require.NoError(t, err)
	assert.Equal(t, "my caption", caption)
}

func TestUnknownPlanFallsBackToFree(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, storage.KeyUserPlan, "enterprise"))

	info, err := svc.GetUsageInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.PlanFree, info.Plan)
	assert.Equal(t, 5, info.PostsLimit)
}
