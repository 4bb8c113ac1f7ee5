package auth

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/perfectinsta/extension-client/internal/models"
)

// Маркеры callback-адресов OAuth-потока.
const (
	successMarker = "/auth/success"
	errorMarker   = "/auth/error"
)

// ParseCallback распознает callback-адрес OAuth-потока.
// Возвращает (nil, false), если адрес — промежуточная навигация.
// Поток завершается ровно одним результатом: успехом с токеном и
// пользователем либо ошибкой; битый callback — это ParseError, он
// завершает поток без повтора.
func ParseCallback(rawURL string) (*models.LoginResult, bool) {
	if strings.Contains(rawURL, successMarker) {
		return parseSuccess(rawURL), true
	}
	if strings.Contains(rawURL, errorMarker) || strings.Contains(rawURL, "error=") {
		return parseError(rawURL), true
	}
	return nil, false
}

func parseSuccess(rawURL string) *models.LoginResult {
	u, err := url.Parse(rawURL)
	if err != nil {
		return &models.LoginResult{Success: false, Error: "malformed callback url"}
	}

	token := u.Query().Get("token")
	userStr := u.Query().Get("user")
	if token == "" || userStr == "" {
		return &models.LoginResult{Success: false, Error: "token or user missing in callback"}
	}

	// Параметр user — URL-кодированный JSON; Query().Get уже снял URL-кодирование.
	var user models.User
	if err := json.Unmarshal([]byte(userStr), &user); err != nil {
		return &models.LoginResult{Success: false, Error: "malformed user payload"}
	}

	return &models.LoginResult{Success: true, Token: token, User: &user}
}

func parseError(rawURL string) *models.LoginResult {
	errMsg := "OAuth error"
	if u, err := url.Parse(rawURL); err == nil {
		if msg := u.Query().Get("error"); msg != "" {
			errMsg = msg
		}
	}
	return &models.LoginResult{Success: false, Error: errMsg}
}
