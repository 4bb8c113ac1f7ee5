package capability

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/perfectinsta/extension-client/internal/models"
)

// OnDeviceProvider запасной провайдер: локальный сервис генерации
// (например, Ollama-совместимый шлюз). Используется, когда бэкенд
// недоступен или пользователь не вошёл.
type OnDeviceProvider struct {
	baseURL    string
	httpClient *http.Client
}

// NewOnDevice создает провайдер локального сервиса. Пустой baseURL означает,
// что локального сервиса нет: провайдер всегда недоступен.
func NewOnDevice(baseURL string, timeout time.Duration) *OnDeviceProvider {
	return &OnDeviceProvider{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Name имя провайдера.
func (p *OnDeviceProvider) Name() string { return "on_device" }

// Available пингует локальный сервис коротким запросом.
func (p *OnDeviceProvider) Available(ctx context.Context) bool {
	if p.baseURL == "" {
		return false
	}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(pingCtx, http.MethodGet, p.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode == http.StatusOK
}

// Generate отправляет изображение локальному сервису.
func (p *OnDeviceProvider) Generate(ctx context.Context, image io.Reader, filename string, opts models.GenerateOptions) (*models.GenerateResult, error) {
	const op = "capability.OnDeviceProvider.Generate"

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("image", filename)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	_ = writer.WriteField("postType", opts.PostType)
	_ = writer.WriteField("tone", opts.Tone)
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/generate", &buf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: unexpected status %d", op, resp.StatusCode)
	}

	var result models.GenerateResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", op, err)
	}
	return &result, nil
}

// Rewrite переписывает подпись локальным сервисом.
func (p *OnDeviceProvider) Rewrite(ctx context.Context, caption, instruction string) (string, error) {
	const op = "capability.OnDeviceProvider.Rewrite"

	payload, err := json.Marshal(map[string]string{
		"caption":     caption,
		"instruction": instruction,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/rewrite", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s: unexpected status %d", op, resp.StatusCode)
	}

	var out struct {
		Caption string `json:"caption"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%s: decode response: %w", op, err)
	}
	if out.Caption == "" {
		return caption, nil
	}
	return out.Caption, nil
}
