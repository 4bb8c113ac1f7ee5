package controller

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/perfectinsta/extension-client/internal/models"
	"github.com/perfectinsta/extension-client/internal/services/freemium"
)

type CoordinatorMock struct {
	mock.Mock
}

func (m *CoordinatorMock) GetAuth(ctx context.Context) (models.AuthState, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.AuthState), args.Error(1)
}

func (m *CoordinatorMock) Login(ctx context.Context) (models.LoginResult, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.LoginResult), args.Error(1)
}

func (m *CoordinatorMock) Logout(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type ConsentMock struct {
	mock.Mock
}

func (m *ConsentMock) NeedsPrompt(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *ConsentMock) Accept(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *ConsentMock) Decline(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type FreemiumMock struct {
	mock.Mock
}

func (m *FreemiumMock) CanGeneratePost(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *FreemiumMock) IncrementUsage(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *FreemiumMock) GetUsageInfo(ctx context.Context) (models.UsageInfo, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.UsageInfo), args.Error(1)
}

func (m *FreemiumMock) AddWatermark(ctx context.Context, caption string) (string, error) {
	args := m.Called(ctx, caption)
	return args.String(0), args.Error(1)
}

type RetentionMock struct {
	mock.Mock
}

func (m *RetentionMock) Evaluate(ctx context.Context) ([]models.NotificationIntent, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.NotificationIntent), args.Error(1)
}

type GeneratorMock struct {
	mock.Mock
}

func (m *GeneratorMock) Generate(ctx context.Context, image io.Reader, filename string, opts models.GenerateOptions) (*models.GenerateResult, error) {
	args := m.Called(ctx, image, filename, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GenerateResult), args.Error(1)
}

func (m *GeneratorMock) Rewrite(ctx context.Context, caption, instruction string) (string, error) {
	args := m.Called(ctx, caption, instruction)
	return args.String(0), args.Error(1)
}

type TrackerMock struct {
	events []string
}

func (t *TrackerMock) Track(_ context.Context, eventName string, _ map[string]any) {
	t.events = append(t.events, eventName)
}

type PresenterMock struct {
	shown []models.NotificationIntent
}

func (p *PresenterMock) Show(intent models.NotificationIntent) {
	p.shown = append(p.shown, intent)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestInitSequence(t *testing.T) {
	coord := new(CoordinatorMock)
	consent := new(ConsentMock)
	fr := new(FreemiumMock)
	ret := new(RetentionMock)
	tracker := &TrackerMock{}
	presenter := &PresenterMock{}

	coord.On("GetAuth", mock.Anything).Return(models.AuthState{IsAuthenticated: true, Token: "abc", User: &models.User{Email: "a@b.com"}}, nil)
	consent.On("NeedsPrompt", mock.Anything).Return(false, nil)
	fr.On("GetUsageInfo", mock.Anything).Return(models.UsageInfo{Plan: models.PlanFree, PostsRemaining: 3}, nil)
	ret.On("Evaluate", mock.Anything).Return([]models.NotificationIntent{
		{Kind: models.NotificationUpgrade, Title: "Pro tip"},
	}, nil)

	ctrl := New(coord, consent, fr, ret, nil, tracker, presenter, discardLogger())

	state, err := ctrl.Init(context.Background())

	require.NoError(t, err)
	assert.True(t, state.Auth.IsAuthenticated)
	assert.False(t, state.NeedsConsent)
	assert.Len(t, state.Notifications, 1)
	assert.Len(t, presenter.shown, 1)
	assert.Contains(t, tracker.events, "popup_opened")
}

func TestInitSurvivesRetentionFailure(t *testing.T) {
	coord := new(CoordinatorMock)
	consent := new(ConsentMock)
	fr := new(FreemiumMock)
	ret := new(RetentionMock)

	coord.On("GetAuth", mock.Anything).Return(models.AuthState{}, nil)
	consent.On("NeedsPrompt", mock.Anything).Return(true, nil)
	fr.On("GetUsageInfo", mock.Anything).Return(models.UsageInfo{Plan: models.PlanFree}, nil)
	ret.On("Evaluate", mock.Anything).Return(nil, errors.New("storage down"))

	ctrl := New(coord, consent, fr, ret, nil, &TrackerMock{}, &PresenterMock{}, discardLogger())

	state, err := ctrl.Init(context.Background())

	require.NoError(t, err)
	assert.True(t, state.NeedsConsent)
	assert.Empty(t, state.Notifications)
}

func TestGeneratePostHappyPath(t *testing.T) {
	fr := new(FreemiumMock)
	gen := new(GeneratorMock)
	tracker := &TrackerMock{}

	fr.On("CanGeneratePost", mock.Anything).Return(true, nil)
	gen.On("Generate", mock.Anything, mock.Anything, "photo.jpg", mock.Anything).Return(&models.GenerateResult{
		Caption:  "great day",
		Hashtags: []string{"#sun"},
		Source:   "backend",
	}, nil)
	fr.On("IncrementUsage", mock.Anything).Return(true, nil)
	fr.On("AddWatermark", mock.Anything, "great day").Return("great day\n\nGenerated with Perfect Insta Post", nil)

	ctrl := New(nil, nil, fr, nil, gen, tracker, nil, discardLogger())

	result, err := ctrl.GeneratePost(context.Background(), strings.NewReader("img"), "photo.jpg", models.GenerateOptions{PostType: "lifestyle", Tone: "friendly"})

	require.NoError(t, err)
	assert.Contains(t, result.Caption, "Generated with Perfect Insta Post")
	assert.Contains(t, tracker.events, "post_generated")
	fr.AssertExpectations(t)
}

func TestGeneratePostQuotaExceeded(t *testing.T) {
	fr := new(FreemiumMock)
	gen := new(GeneratorMock)
	tracker := &TrackerMock{}

	fr.On("CanGeneratePost", mock.Anything).Return(false, nil)

	ctrl := New(nil, nil, fr, nil, gen, tracker, nil, discardLogger())

	_, err := ctrl.GeneratePost(context.Background(), strings.NewReader("img"), "photo.jpg", models.GenerateOptions{PostType: "travel", Tone: "casual"})

	require.ErrorIs(t, err, freemium.ErrQuotaExceeded)
	assert.True(t, IsQuotaExceeded(err))
	assert.Contains(t, tracker.events, "quota_exceeded")
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	fr.AssertNotCalled(t, "IncrementUsage", mock.Anything)
}

func TestGeneratePostFailureDoesNotSpendQuota(t *testing.T) {
	fr := new(FreemiumMock)
	gen := new(GeneratorMock)
	tracker := &TrackerMock{}

	fr.On("CanGeneratePost", mock.Anything).Return(true, nil)
	gen.On("Generate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("provider failed"))

	ctrl := New(nil, nil, fr, nil, gen, tracker, nil, discardLogger())

	_, err := ctrl.GeneratePost(context.Background(), strings.NewReader("img"), "photo.jpg", models.GenerateOptions{PostType: "travel", Tone: "casual"})

	require.Error(t, err)
	assert.Contains(t, tracker.events, "generation_failed")
	fr.AssertNotCalled(t, "IncrementUsage", mock.Anything)
}

func TestGeneratePostRejectsInvalidOptions(t *testing.T) {
	fr := new(FreemiumMock)

	ctrl := New(nil, nil, fr, nil, nil, &TrackerMock{}, nil, discardLogger())

	_, err := ctrl.GeneratePost(context.Background(), strings.NewReader("img"), "photo.jpg", models.GenerateOptions{})

	require.Error(t, err)
	fr.AssertNotCalled(t, "CanGeneratePost", mock.Anything)
}

func TestLogoutTracksEvent(t *testing.T) {
	coord := new(CoordinatorMock)
	tracker := &TrackerMock{}

	coord.On("Logout", mock.Anything).Return(nil)

	ctrl := New(coord, nil, nil, nil, nil, tracker, nil, discardLogger())

	require.NoError(t, ctrl.Logout(context.Background()))
	assert.Contains(t, tracker.events, "user_logged_out")
}
