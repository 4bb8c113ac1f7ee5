// Package metrics регистрирует счётчики Prometheus для клиента.
// Значения отдаются координатором на /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PostsGenerated количество успешных генераций постов.
	PostsGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "perfectinsta_posts_generated_total",
		Help: "Total number of successfully generated posts.",
	})

	// AnalyticsEventsSent количество событий аналитики, подтверждённых бэкендом.
	AnalyticsEventsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "perfectinsta_analytics_events_sent_total",
		Help: "Total number of analytics events acknowledged by the backend.",
	})

	// AnalyticsEventsDropped события, вытесненные из переполненной очереди.
	AnalyticsEventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "perfectinsta_analytics_events_dropped_total",
		Help: "Analytics events dropped because the in-memory queue was full.",
	})

	// AnalyticsFlushFailures неудачные попытки отправить пачку событий.
	AnalyticsFlushFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "perfectinsta_analytics_flush_failures_total",
		Help: "Failed attempts to deliver an analytics batch.",
	})

	// RetentionTriggers сработавшие стратегии удержания по видам.
	RetentionTriggers = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "perfectinsta_retention_triggers_total",
		Help: "Retention strategies fired, by kind.",
	}, []string{"kind"})

	// TokenValidations результаты периодической валидации токена.
	TokenValidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "perfectinsta_token_validations_total",
		Help: "Token validation outcomes: valid, invalid, network_error.",
	}, []string{"outcome"})
)
