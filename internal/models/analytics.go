package models

// AnalyticsEvent событие поведения пользователя, отправляемое пачками на бэкенд.
type AnalyticsEvent struct {
	Event      string         `json:"event"`
	UserID     string         `json:"user_id"`
	SessionID  string         `json:"session_id"`
	Timestamp  int64          `json:"timestamp"` // epoch в миллисекундах
	Properties map[string]any `json:"properties"`
}

// AnalyticsBatch тело запроса к POST /api/analytics/batch.
type AnalyticsBatch struct {
	Events    []AnalyticsEvent `json:"events"`
	UserID    string           `json:"user_id"`
	SessionID string           `json:"session_id"`
}
