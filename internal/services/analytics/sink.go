package analytics

import (
	"context"

	"github.com/streadway/amqp"

	"github.com/perfectinsta/extension-client/internal/lib/rabbitmq"
	"github.com/perfectinsta/extension-client/internal/models"
)

// Sink принимает собранную пачку событий. Возврат ошибки означает, что пачка
// не доставлена и будет возвращена в очередь.
type Sink interface {
	Send(ctx context.Context, batch models.AnalyticsBatch) error
}

// BackendClient часть API-клиента, нужная HTTP-стоку.
type BackendClient interface {
	SendAnalyticsBatch(ctx context.Context, batch models.AnalyticsBatch) error
}

// HTTPSink основной сток: POST /api/analytics/batch.
type HTTPSink struct {
	client BackendClient
}

// NewHTTPSink создает сток поверх API-клиента бэкенда.
func NewHTTPSink(client BackendClient) *HTTPSink {
	return &HTTPSink{client: client}
}

func (s *HTTPSink) Send(ctx context.Context, batch models.AnalyticsBatch) error {
	return s.client.SendAnalyticsBatch(ctx, batch)
}

// AMQPSink альтернативный сток: публикация пачки в RabbitMQ.
// Включается конфигом, когда события потребляет собственный пайплайн,
// а не HTTP-эндпоинт бэкенда.
type AMQPSink struct {
	ch         *amqp.Channel
	exchange   string
	routingKey string
}

// NewAMQPSink создает сток поверх открытого канала RabbitMQ.
func NewAMQPSink(ch *amqp.Channel, exchange, routingKey string) *AMQPSink {
	return &AMQPSink{ch: ch, exchange: exchange, routingKey: routingKey}
}

func (s *AMQPSink) Send(_ context.Context, batch models.AnalyticsBatch) error {
	return rabbitmq.PublishMessage(s.ch, s.exchange, s.routingKey, batch)
}
