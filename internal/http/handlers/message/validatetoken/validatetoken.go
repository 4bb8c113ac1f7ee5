// Package validatetoken реализует обработчик сообщения VALIDATE_TOKEN.
//
// Валидация синхронная: ответ отражает состояние после проверки токена
// на бэкенде. Сетевая ошибка не сбрасывает состояние.
package validatetoken

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/perfectinsta/extension-client/internal/http/response"
	"github.com/perfectinsta/extension-client/internal/models"
)

// Handler обрабатывает сообщения VALIDATE_TOKEN.
type Handler struct {
	log     *slog.Logger // Логгер для записи операций и ошибок
	service Service      // Держатель состояния аутентификации
}

// Service описывает интерфейс держателя состояния.
type Service interface {
	ValidateToken(ctx context.Context)
	GetAuth() models.AuthState
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Валидация токена
// @Description Проверяет токен на бэкенде и возвращает состояние после проверки.
// @Tags Message
// @Produce json
// @Success 200 {object} map[string]any "Состояние после валидации"
// @Router /message/validate-token [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.message.validatetoken"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	h.service.ValidateToken(r.Context())
	state := h.service.GetAuth()

	log.Info("token validation requested", slog.Bool("authenticated", state.IsAuthenticated))
	render.JSON(w, r, response.OKWithData(state))
}
