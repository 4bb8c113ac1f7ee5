// Package login реализует обработчик сообщения LOGIN.
//
// Обработчик запускает OAuth-поток: координатор открывает вкладку
// hosted-login страницы и ждёт callback. Запрос держится открытым до
// завершения потока, поэтому таймауты сервера должны превышать таймаут
// OAuth-потока.
package login

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/perfectinsta/extension-client/internal/http/response"
	"github.com/perfectinsta/extension-client/internal/models"
)

// Handler обрабатывает сообщения LOGIN.
type Handler struct {
	log     *slog.Logger // Логгер для записи операций и ошибок
	service Service      // Координатор OAuth-потока
}

// Service описывает интерфейс координатора OAuth-потока.
type Service interface {
	Login(ctx context.Context) models.LoginResult
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Запуск OAuth-потока
// @Description Открывает вкладку входа и ждёт callback. Отвечает результатом потока.
// @Tags Message
// @Produce json
// @Success 200 {object} map[string]any "Результат входа"
// @Failure 401 {object} response.ErrorResponse "Поток завершился неуспехом"
// @Router /message/login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.message.login"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	result := h.service.Login(r.Context())
	if !result.Success {
		log.Warn("login flow failed", slog.String("reason", result.Error))
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error(result.Error))
		return
	}

	log.Info("login flow succeeded", slog.String("email", result.User.Email))
	render.JSON(w, r, response.OKWithData(result))
}
