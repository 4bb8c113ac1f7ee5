package login

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/perfectinsta/extension-client/internal/models"
)

// MockService реализует интерфейс login.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Login(ctx context.Context) models.LoginResult {
	args := m.Called(ctx)
	return args.Get(0).(models.LoginResult)
}

func TestLoginHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешный вход",
			setupMock: func(m *MockService) {
				m.On("Login", mock.Anything).Return(models.LoginResult{
					Success: true,
					Token:   "abc",
					User:    &models.User{Email: "a@b.com", Plan: models.PlanFree},
				})
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"token":"abc"`,
		},
		{
			name: "таймаут потока",
			setupMock: func(m *MockService) {
				m.On("Login", mock.Anything).Return(models.LoginResult{
					Success: false,
					Error:   "Timeout",
				})
			},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"status":"Error","error":"Timeout"}`,
		},
		{
			name: "пользователь отклонил доступ",
			setupMock: func(m *MockService) {
				m.On("Login", mock.Anything).Return(models.LoginResult{
					Success: false,
					Error:   "access_denied",
				})
			},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"error":"access_denied"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/message/login", nil)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
