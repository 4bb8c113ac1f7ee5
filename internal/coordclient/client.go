// Package coordclient реализует клиент транспорта сообщений для popup.
//
// Popup не держит собственного состояния аутентификации: каждое открытие
// начинается с GET_AUTH, а мутации (вход, выход) делегируются координатору.
package coordclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client клиент обмена сообщениями с фоновым координатором.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New создает клиент. timeout должен превышать таймаут OAuth-потока:
// LOGIN держит запрос открытым до завершения потока.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// envelope ответ координатора: статус, ошибка и полезная нагрузка.
type envelope struct {
	Status string          `json:"status"`
	Error  string          `json:"error,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// send выполняет запрос и декодирует полезную нагрузку в out.
// Ответ со статусом Error превращается в ошибку с текстом координатора.
func (c *Client) send(ctx context.Context, method, path string, out any) error {
	const op = "coordclient.send"

	var body io.Reader
	if method == http.MethodPost {
		body = bytes.NewReader([]byte("{}"))
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	if env.Status != "OK" {
		return fmt.Errorf("%s: coordinator: %s", op, env.Error)
	}
	if out != nil && env.Data != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%s: decode data: %w", op, err)
		}
	}
	return nil
}
