// Package logout реализует обработчик сообщения LOGOUT.
package logout

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/perfectinsta/extension-client/internal/http/response"
)

// Handler обрабатывает сообщения LOGOUT.
type Handler struct {
	log     *slog.Logger // Логгер для записи операций и ошибок
	service Service      // Держатель состояния аутентификации
}

// Service описывает интерфейс держателя состояния.
type Service interface {
	Logout(ctx context.Context)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Выход из аккаунта
// @Description Сбрасывает токен и пользователя. Всегда успешен.
// @Tags Message
// @Produce json
// @Success 200 {object} map[string]any "Выход выполнен"
// @Router /message/logout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.message.logout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	h.service.Logout(r.Context())

	log.Info("logout completed")
	render.JSON(w, r, response.OKWithData(map[string]any{
		"success": true,
	}))
}
