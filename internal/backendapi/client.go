// Package backendapi содержит тонкий HTTP-клиент к бэкенду генерации.
// Клиент только отображает запросы и ответы; вся бизнес-логика (квоты,
// аналитика, состояние аутентификации) живёт уровнем выше.
package backendapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/perfectinsta/extension-client/internal/models"
)

// ErrUnauthorized возвращается на HTTP 401/403: сессия истекла,
// вызывающий код обязан сбросить токен.
var ErrUnauthorized = errors.New("unauthorized")

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New создаёт клиент бэкенда. baseURL — фиксированный origin без завершающего слэша.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// SetToken задаёт bearer-токен для последующих запросов.
func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%s: %w", resp.Status, ErrUnauthorized)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&errBody) == nil && errBody.Error != "" {
			return errors.New(errBody.Error)
		}
		return errors.New("unexpected status: " + resp.Status)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// GeneratePost отправляет изображение и параметры на /api/generate-post.
// Изображение уходит multipart-частью "image", параметры — обычными полями формы.
func (c *Client) GeneratePost(ctx context.Context, image io.Reader, filename string, opts models.GenerateOptions) (*models.GenerateResult, error) {
	const op = "backendapi.GeneratePost"

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	fields := map[string]string{
		"postType":      opts.PostType,
		"tone":          opts.Tone,
		"location":      opts.Location,
		"context":       opts.Context,
		"captionLength": opts.CaptionLength,
		"captionStyle":  opts.CaptionStyle,
	}
	for name, value := range fields {
		if value == "" && name != "postType" && name != "tone" {
			continue
		}
		if err := mw.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/generate-post", &buf, mw.FormDataContentType())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var result models.GenerateResult
	if err := c.do(req, &result); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}

// RewriteCaption переписывает готовую подпись в другом стиле.
func (c *Client) RewriteCaption(ctx context.Context, caption, style string) (string, error) {
	const op = "backendapi.RewriteCaption"

	body, err := json.Marshal(map[string]string{"caption": caption, "style": style})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/api/rewrite-caption", bytes.NewReader(body), "application/json")
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	var result struct {
		Caption string `json:"caption"`
	}
	if err := c.do(req, &result); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if result.Caption == "" {
		return caption, nil
	}
	return result.Caption, nil
}

// Me запрашивает профиль текущего пользователя по bearer-токену.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	const op = "backendapi.Me"

	req, err := c.newRequest(ctx, http.MethodGet, "/api/user/me", nil, "application/json")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var result struct {
		User models.User `json:"user"`
	}
	if err := c.do(req, &result); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result.User, nil
}

// History возвращает последние limit сохранённых постов пользователя.
func (c *Client) History(ctx context.Context, limit int) ([]models.HistoryPost, error) {
	const op = "backendapi.History"

	req, err := c.newRequest(ctx, http.MethodGet, fmt.Sprintf("/api/history?limit=%d", limit), nil, "application/json")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var result struct {
		Posts []models.HistoryPost `json:"posts"`
	}
	if err := c.do(req, &result); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result.Posts, nil
}

// CreateCheckoutSession создаёт сессию оплаты и возвращает URL страницы checkout.
func (c *Client) CreateCheckoutSession(ctx context.Context) (string, error) {
	const op = "backendapi.CreateCheckoutSession"

	req, err := c.newRequest(ctx, http.MethodPost, "/api/create-checkout-session", nil, "application/json")
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	var result struct {
		URL string `json:"url"`
	}
	if err := c.do(req, &result); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if result.URL == "" {
		return "", fmt.Errorf("%s: empty checkout url", op)
	}
	return result.URL, nil
}

// SendAnalyticsBatch отправляет пачку событий аналитики. Любой не-2xx статус —
// ошибка: вызывающий код вернёт события в очередь.
func (c *Client) SendAnalyticsBatch(ctx context.Context, batch models.AnalyticsBatch) error {
	const op = "backendapi.SendAnalyticsBatch"

	body, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/api/analytics/batch", bytes.NewReader(body), "application/json")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
