package payment

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/perfectinsta/extension-client/internal/browser"
	"github.com/perfectinsta/extension-client/internal/models"
)

type BackendMock struct {
	mock.Mock
}

func (m *BackendMock) CreateCheckoutSession(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *BackendMock) Me(ctx context.Context) (*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type PlanStoreMock struct {
	mock.Mock
}

func (m *PlanStoreMock) SetPlan(ctx context.Context, plan string) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

type TrackerMock struct {
	mock.Mock
}

func (m *TrackerMock) Track(ctx context.Context, eventName string, properties map[string]any) {
	m.Called(ctx, eventName, properties)
}

type browserMock struct {
	opened []string
	err    error
}

func (b *browserMock) OpenTab(_ context.Context, url string) (browser.Tab, error) {
	if b.err != nil {
		return nil, b.err
	}
	b.opened = append(b.opened, url)
	return noopTab{}, nil
}

type noopTab struct{}

func (noopTab) Navigations(context.Context) <-chan string { return nil }
func (noopTab) Close() error                              { return nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStartCheckoutOpensTab(t *testing.T) {
	backend := new(BackendMock)
	tracker := new(TrackerMock)
	br := &browserMock{}

	backend.On("CreateCheckoutSession", mock.Anything).Return("https://checkout.stripe.com/pay/cs_123", nil)
	tracker.On("Track", mock.Anything, "upgrade_flow_started", mock.Anything).Return()

	svc := New(backend, nil, br, tracker, discardLogger())

	err := svc.StartCheckout(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"https://checkout.stripe.com/pay/cs_123"}, br.opened)
	backend.AssertExpectations(t)
	tracker.AssertExpectations(t)
}

func TestStartCheckoutSessionError(t *testing.T) {
	backend := new(BackendMock)
	tracker := new(TrackerMock)
	br := &browserMock{}

	backend.On("CreateCheckoutSession", mock.Anything).Return("", errors.New("backend down"))

	svc := New(backend, nil, br, tracker, discardLogger())

	err := svc.StartCheckout(context.Background())

	require.Error(t, err)
	assert.Empty(t, br.opened)
	tracker.AssertNotCalled(t, "Track", mock.Anything, mock.Anything, mock.Anything)
}

func TestSyncSubscriptionStatus(t *testing.T) {
	backend := new(BackendMock)
	plans := new(PlanStoreMock)

	backend.On("Me", mock.Anything).Return(&models.User{Email: "a@b.com", Plan: models.PlanPro}, nil)
	plans.On("SetPlan", mock.Anything, models.PlanPro).Return(nil)

	svc := New(backend, plans, nil, nil, discardLogger())

	user, err := svc.SyncSubscriptionStatus(context.Background())

	require.NoError(t, err)
	assert.Equal(t, models.PlanPro, user.Plan)
	plans.AssertExpectations(t)
}

func TestSyncSubscriptionStatusBackendError(t *testing.T) {
	backend := new(BackendMock)
	plans := new(PlanStoreMock)

	backend.On("Me", mock.Anything).Return(nil, errors.New("timeout"))

	svc := New(backend, plans, nil, nil, discardLogger())

	_, err := svc.SyncSubscriptionStatus(context.Background())

	require.Error(t, err)
	plans.AssertNotCalled(t, "SetPlan", mock.Anything, mock.Anything)
}
