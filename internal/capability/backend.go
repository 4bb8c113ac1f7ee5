package capability

import (
	"context"
	"io"

	"github.com/perfectinsta/extension-client/internal/backendapi"
	"github.com/perfectinsta/extension-client/internal/models"
)

// BackendProvider основной провайдер: генерация на стороне бэкенда.
type BackendProvider struct {
	client *backendapi.Client
	authed func() bool
}

// NewBackendProvider создает провайдер поверх API-клиента. authed сообщает,
// есть ли валидный токен: без него бэкенд-провайдер недоступен.
func NewBackendProvider(client *backendapi.Client, authed func() bool) *BackendProvider {
	return &BackendProvider{client: client, authed: authed}
}

// Name имя провайдера.
func (p *BackendProvider) Name() string { return "backend" }

// Available бэкенд доступен при наличии токена.
func (p *BackendProvider) Available(_ context.Context) bool {
	return p.authed()
}

// Generate проксирует запрос на бэкенд.
func (p *BackendProvider) Generate(ctx context.Context, image io.Reader, filename string, opts models.GenerateOptions) (*models.GenerateResult, error) {
	return p.client.GeneratePost(ctx, image, filename, opts)
}

// Rewrite проксирует переписывание подписи на бэкенд.
func (p *BackendProvider) Rewrite(ctx context.Context, caption, instruction string) (string, error) {
	return p.client.RewriteCaption(ctx, caption, instruction)
}
