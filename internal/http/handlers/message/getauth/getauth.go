// Package getauth реализует обработчик сообщения GET_AUTH.
//
// Popup запрашивает снимок состояния аутентификации при каждом открытии;
// координатор отвечает копией состояния из памяти без обращений к сети.
package getauth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/perfectinsta/extension-client/internal/http/response"
	"github.com/perfectinsta/extension-client/internal/models"
)

// Handler обрабатывает сообщения GET_AUTH.
type Handler struct {
	log     *slog.Logger // Логгер для записи операций и ошибок
	service Service      // Держатель состояния аутентификации
}

// Service описывает интерфейс держателя состояния.
type Service interface {
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
// @Summary Снимок состояния аутентификации
// @Description Возвращает текущее состояние аутентификации из памяти координатора.
// @Tags Message
// @Produce json
// @Success 200 {object} map[string]any "Состояние аутентификации"
// @Router /message/get-auth [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.message.getauth"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	state := h.service.GetAuth()

	log.Info("auth state requested", slog.Bool("authenticated", state.IsAuthenticated))
	render.JSON(w, r, response.OKWithData(state))
}
