package models

import "time"

// Виды уведомлений, которые может породить движок удержания.
const (
	NotificationWelcome = "welcome"
	NotificationUpgrade = "upgrade"
	NotificationWinback = "winback"
)

// NotificationIntent намерение показать уведомление пользователю.
// Движок удержания только порождает намерения; отрисовкой занимается
// отдельный презентационный слой.
type NotificationIntent struct {
	Kind  string        // welcome, upgrade или winback
	Title string        // Заголовок уведомления
	Body  string        // Текст уведомления
	TTL   time.Duration // Сколько держать уведомление на экране
}
