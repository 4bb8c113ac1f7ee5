package browser

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/perfectinsta/extension-client/internal/config"
)

// RodBrowser реализация Browser поверх go-rod.
type RodBrowser struct {
	browser *rod.Browser
}

// Connect подключается к браузеру пользователя. Если control_url не задан,
// поднимает собственный экземпляр через launcher.
func Connect(ctx context.Context, cfg config.Browser) (*RodBrowser, error) {
	const op = "browser.Connect"

	controlURL := cfg.ControlURL
	if controlURL == "" {
		url, err := launcher.New().Headless(cfg.Headless).Launch()
		if err != nil {
			return nil, fmt.Errorf("%s: launch: %w", op, err)
		}
		controlURL = url
	}

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("%s: connect: %w", op, err)
	}
	return &RodBrowser{browser: b}, nil
}

// OpenTab открывает новую вкладку по адресу url.
func (b *RodBrowser) OpenTab(ctx context.Context, url string) (Tab, error) {
	const op = "browser.OpenTab"

	page, err := b.browser.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &rodTab{page: page.Context(ctx)}, nil
}

// Close отключается от браузера.
func (b *RodBrowser) Close() error {
	return b.browser.Close()
}

type rodTab struct {
	page *rod.Page
}

func (t *rodTab) Navigations(ctx context.Context) <-chan string {
	ch := make(chan string, 8)
	go func() {
		defer close(ch)
		wait := t.page.Context(ctx).EachEvent(func(ev *proto.PageFrameNavigated) {
			select {
			case ch <- ev.Frame.URL:
			case <-ctx.Done():
			}
		})
		wait()
	}()
	return ch
}

func (t *rodTab) Close() error {
	return t.page.Close()
}
