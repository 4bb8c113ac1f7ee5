package coordclient

import (
	"context"
	"net/http"

	"github.com/perfectinsta/extension-client/internal/models"
)

// GetAuth запрашивает снимок состояния аутентификации.
func (c *Client) GetAuth(ctx context.Context) (models.AuthState, error) {
	var state models.AuthState
	if err := c.send(ctx, http.MethodGet, "/message/get-auth", &state); err != nil {
		return models.AuthState{}, err
	}
	return state, nil
}

// Login запускает OAuth-поток и ждёт его завершения.
// Неуспех потока приходит ошибкой с текстом причины (Timeout, access_denied).
func (c *Client) Login(ctx context.Context) (models.LoginResult, error) {
	var result models.LoginResult
	if err := c.send(ctx, http.MethodPost, "/message/login", &result); err != nil {
		return models.LoginResult{}, err
	}
	return result, nil
}

// Logout сбрасывает состояние аутентификации координатора.
func (c *Client) Logout(ctx context.Context) error {
	return c.send(ctx, http.MethodPost, "/message/logout", nil)
}

// ValidateToken синхронно валидирует токен и возвращает состояние после
// проверки.
func (c *Client) ValidateToken(ctx context.Context) (models.AuthState, error) {
	var state models.AuthState
	if err := c.send(ctx, http.MethodPost, "/message/validate-token", &state); err != nil {
		return models.AuthState{}, err
	}
	return state, nil
}
