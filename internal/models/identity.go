package models

import "time"

// Session данные одного запуска процесса. Не персистится.
type Session struct {
	SessionID string
	StartTime time.Time
}

// UserIdentity постоянная анонимная идентичность установки.
// Создаётся один раз при первом запуске; UserID никогда не меняется.
type UserIdentity struct {
	UserID       string `json:"userId"`
	InstallDate  int64  `json:"installDate"`  // epoch в миллисекундах
	FirstUseDate int64  `json:"firstUseDate"` // epoch в миллисекундах
}

// ConsentRecord запись о согласии пользователя на обработку данных (GDPR).
type ConsentRecord struct {
	Accepted  bool   `json:"accepted"`
	Timestamp int64  `json:"timestamp"` // epoch в миллисекундах
	Version   string `json:"version"`
}
