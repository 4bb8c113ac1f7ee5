// Package notify отвечает за показ уведомлений пользователю.
//
// Движок удержания порождает намерения; презентер решает, как их
// отобразить. В CLI-клиенте уведомления уходят в терминал и лог.
package notify

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/perfectinsta/extension-client/internal/models"
)

// Presenter отображает уведомления пользователю.
type Presenter interface {
	Show(intent models.NotificationIntent)
}

// ConsolePresenter печатает уведомления в терминал popup.
type ConsolePresenter struct {
	out io.Writer
	log *slog.Logger
}

// NewConsole создает презентер поверх writer.
func NewConsole(out io.Writer, log *slog.Logger) *ConsolePresenter {
	return &ConsolePresenter{out: out, log: log}
}

// Show печатает уведомление. TTL в терминале не истекает, поэтому
// используется только для лога.
func (p *ConsolePresenter) Show(intent models.NotificationIntent) {
	fmt.Fprintf(p.out, "\n[%s] %s\n%s\n", intent.Kind, intent.Title, intent.Body)
	p.log.Info("notification shown",
		slog.String("kind", intent.Kind),
		slog.Duration("ttl", intent.TTL))
}
