// Package jwtinspect разбирает JWT на стороне клиента без проверки подписи.
//
// Клиент не владеет секретным ключом бэкенда, поэтому подпись проверить не
// может. Задача пакета другая: прочитать claims, чтобы показать срок действия
// токена и не ходить на сервер с заведомо истёкшим токеном.
package jwtinspect

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims описывает полезные для клиента данные из JWT бэкенда.
type Claims struct {
	Email                string `json:"email"`
	Plan                 string `json:"plan"`
	jwt.RegisteredClaims        // Встроенные стандартные claims JWT (ExpiresAt, IssuedAt и пр.)
}

// Decode разбирает токен без проверки подписи и возвращает его claims.
func Decode(tokenStr string) (*Claims, error) {
	const op = "jwtinspect.Decode"
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return claims, nil
}

// Expired сообщает, истёк ли токен к моменту now. Токен без ExpiresAt
// считается неистёкшим: решение о его валидности остаётся за сервером.
func Expired(tokenStr string, now time.Time) bool {
	claims, err := Decode(tokenStr)
	if err != nil || claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Before(now)
}
