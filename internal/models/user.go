// Package models содержит доменные структуры клиента: пользователя,
// состояние аутентификации, квоты и события аналитики.
package models

// User представляет пользователя, полученного от бэкенда после OAuth-входа.
type User struct {
	Email string `json:"email"`          // Электронная почта
	Plan  string `json:"plan"`           // Тарифный план: free или pro
	Name  string `json:"name,omitempty"` // Отображаемое имя (опционально)
}

// AuthState описывает текущее состояние аутентификации фонового координатора.
// Инвариант: IsAuthenticated == (Token != "" && User != nil) после каждой мутации.
type AuthState struct {
	IsAuthenticated bool   `json:"isAuthenticated"`
	Token           string `json:"token,omitempty"`
	User            *User  `json:"user,omitempty"`
}

// LoginResult результат попытки OAuth-входа.
type LoginResult struct {
	Success bool   `json:"success"`
	Token   string `json:"token,omitempty"`
	User    *User  `json:"user,omitempty"`
	Error   string `json:"error,omitempty"`
}
