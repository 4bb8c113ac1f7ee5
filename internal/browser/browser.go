// Package browser абстрагирует работу с вкладками браузера для OAuth-потока.
// Реализация поверх DevTools-протокола живёт в этом же пакете; сервисы
// зависят только от интерфейсов.
package browser

import "context"

// Browser открывает вкладки браузера.
type Browser interface {
	// OpenTab открывает новую вкладку по адресу url.
	OpenTab(ctx context.Context, url string) (Tab, error)
}

// Tab одна открытая вкладка.
type Tab interface {
	// Navigations возвращает канал адресов, в которые переходит вкладка.
	// Канал закрывается при отмене контекста; это единственный способ
	// снять наблюдателя, и он срабатывает на любом пути выхода из потока.
	Navigations(ctx context.Context) <-chan string
	// Close закрывает вкладку.
	Close() error
}
