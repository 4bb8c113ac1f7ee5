// Package popup собирает интерактивный процесс клиента: контроллер,
// цепочку провайдеров генерации и платёжный поток.
package popup

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/perfectinsta/extension-client/internal/backendapi"
	"github.com/perfectinsta/extension-client/internal/browser"
	"github.com/perfectinsta/extension-client/internal/capability"
	"github.com/perfectinsta/extension-client/internal/config"
	"github.com/perfectinsta/extension-client/internal/controller"
	"github.com/perfectinsta/extension-client/internal/coordclient"
	"github.com/perfectinsta/extension-client/internal/lib/sl"
	"github.com/perfectinsta/extension-client/internal/models"
	"github.com/perfectinsta/extension-client/internal/notify"
	analyticsservice "github.com/perfectinsta/extension-client/internal/services/analytics"
	consentservice "github.com/perfectinsta/extension-client/internal/services/consent"
	freemiumservice "github.com/perfectinsta/extension-client/internal/services/freemium"
	identityservice "github.com/perfectinsta/extension-client/internal/services/identity"
	paymentservice "github.com/perfectinsta/extension-client/internal/services/payment"
	retentionservice "github.com/perfectinsta/extension-client/internal/services/retention"
	"github.com/perfectinsta/extension-client/internal/storage"
)

// App интерактивный процесс клиента. Живёт от запуска команды до её
// завершения, как popup живёт от открытия до закрытия.
type App struct {
	controller *controller.Controller
	freemium   *freemiumservice.Service
	backend    *backendapi.Client
	analytics  *analyticsservice.Service
	consent    *consentservice.Service
	kv         *storage.KV
	logger     *slog.Logger
	cfg        *config.Config

	authed atomic.Bool
}

// New создает новый App.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	kv, err := storage.New(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	idsvc := identityservice.New(kv, logger)
	identity, _, err := idsvc.EnsureIdentity(ctx)
	if err != nil {
		return nil, err
	}
	session := idsvc.NewSession()

	backend := backendapi.New(cfg.BackendURL)
	consent := consentservice.New(kv, logger)

	// Отклонённое или устаревшее согласие выключает трекинг, но не работу клиента.
	analyticsCfg := cfg.Analytics
	if ok, err := consent.HasValidConsent(ctx); err == nil && !ok {
		analyticsCfg.Enabled = false
	}
	analytics := analyticsservice.New(analyticsCfg, analyticsservice.NewHTTPSink(backend), identity.UserID, session.SessionID, logger)

	coord := coordclient.New("http://"+cfg.Coordinator.AddressHTTP, cfg.Auth.LoginTimeout+cfg.Coordinator.TimeoutHTTP)
	freemium := freemiumservice.New(kv, cfg.Plans, logger)
	retention := retentionservice.New(kv, analytics, logger)
	presenter := notify.NewConsole(os.Stdout, logger)

	app := &App{
		freemium:  freemium,
		backend:   backend,
		analytics: analytics,
		consent:   consent,
		kv:        kv,
		logger:    logger,
		cfg:       cfg,
	}

	// Локальный сервис в приоритете, бэкенд — последний и безусловный резерв.
	chain := capability.NewChain(logger,
		capability.NewOnDevice(cfg.Capability.OnDeviceURL, cfg.Capability.OnDeviceTimeout),
		capability.NewBackendProvider(backend, app.authed.Load),
	)

	app.controller = controller.New(coord, consent, freemium, retention, chain, analytics, presenter, logger)
	return app, nil
}

// Run выполняет одну команду popup и завершает процесс. Перед командой
// всегда проходит инициализация сессии: состояние аутентификации, согласие,
// квота и стратегии удержания.
func (a *App) Run(ctx context.Context, args []string) error {
	defer func() {
		// ctx команды к этому моменту может быть уже отменён сигналом.
		if err := a.analytics.Close(); err != nil {
			a.logger.Warn("failed to flush analytics on exit", sl.Err(err))
		}
		if err := a.kv.Close(); err != nil {
			a.logger.Error("failed to close kv store", sl.Err(err))
		}
	}()

	state, err := a.controller.Init(ctx)
	if err != nil {
		return err
	}
	if state.Auth.IsAuthenticated {
		a.backend.SetToken(state.Auth.Token)
		a.authed.Store(true)
	}

	if state.NeedsConsent {
		fmt.Println("Privacy consent required. Run `popup consent accept` or `popup consent decline`.")
	}

	cmd := "usage"
	if len(args) > 0 {
		cmd = args[0]
	}

	switch cmd {
	case "usage":
		return a.printUsage(ctx, state)
	case "login":
		return a.login(ctx)
	case "logout":
		return a.controller.Logout(ctx)
	case "generate":
		return a.generate(ctx, args[1:])
	case "rewrite":
		return a.rewrite(ctx, args[1:])
	case "upgrade":
		return a.upgrade(ctx)
	case "sync":
		return a.sync(ctx)
	case "history":
		return a.history(ctx)
	case "consent":
		return a.consentCmd(ctx, args[1:])
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func (a *App) printUsage(ctx context.Context, state *controller.SessionState) error {
	u := state.Usage
	fmt.Printf("Plan: %s\nPosts: %d/%d used, %d remaining\nResets: %s\n", u.Plan, u.PostsUsed, u.PostsLimit, u.PostsRemaining, u.ResetDate)

	stats, err := a.freemium.MotivationalStats(ctx)
	if err != nil {
		return err
	}
	for _, line := range stats {
		fmt.Println(line)
	}
	return nil
}

func (a *App) login(ctx context.Context) error {
	result, err := a.controller.Login(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Logged in as %s (%s plan)\n", result.User.Email, result.User.Plan)

	// После входа план пользователя переносится в учёт квоты.
	a.backend.SetToken(result.Token)
	a.authed.Store(true)
	return a.freemium.SetPlan(ctx, result.User.Plan)
}

func (a *App) generate(ctx context.Context, args []string) error {
	opts, imagePath, err := parseGenerateArgs(args)
	if err != nil {
		return err
	}

	f, err := os.Open(imagePath)
	if err != nil {
		return fmt.Errorf("failed to open image: %w", err)
	}
	defer func() { _ = f.Close() }()

	result, err := a.controller.GeneratePost(ctx, f, filepath.Base(imagePath), opts)
	if controller.IsQuotaExceeded(err) {
		fmt.Println("Monthly quota exceeded. Run `popup upgrade` to switch to Pro.")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Println(result.Caption)
	if len(result.Hashtags) > 0 {
		fmt.Println(strings.Join(result.Hashtags, " "))
	}
	return nil
}

func (a *App) rewrite(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: rewrite <caption> <instruction>")
	}
	out, err := a.controller.RewriteCaption(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

func (a *App) upgrade(ctx context.Context) error {
	br, err := browser.Connect(ctx, a.cfg.Browser)
	if err != nil {
		return err
	}
	pay := paymentservice.New(a.backend, a.freemium, br, a.analytics, a.logger)
	if err := pay.StartCheckout(ctx); err != nil {
		return err
	}
	fmt.Println("Checkout opened in browser. Run `popup sync` after payment.")
	return nil
}

func (a *App) sync(ctx context.Context) error {
	pay := paymentservice.New(a.backend, a.freemium, nil, a.analytics, a.logger)
	user, err := pay.SyncSubscriptionStatus(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Plan synced: %s\n", user.Plan)
	return nil
}

func (a *App) history(ctx context.Context) error {
	posts, err := a.backend.History(ctx, 10)
	if err != nil {
		return err
	}
	for _, p := range posts {
		fmt.Printf("%s\n%s %s\n\n", p.CreatedAt, p.Caption, strings.Join(p.Hashtags, " "))
	}
	return nil
}

func (a *App) consentCmd(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: consent accept|decline|delete-account")
	}
	switch args[0] {
	case "accept":
		return a.controller.AcceptConsent(ctx)
	case "decline":
		return a.controller.DeclineConsent(ctx)
	case "delete-account":
		// Необратимо: стирает все локальные данные, включая идентичность.
		if err := a.consent.DeleteAccount(ctx); err != nil {
			return err
		}
		fmt.Println("All local data deleted.")
		return nil
	default:
		return fmt.Errorf("usage: consent accept|decline|delete-account")
	}
}

// parseGenerateArgs разбирает аргументы вида key=value команды generate.
func parseGenerateArgs(args []string) (models.GenerateOptions, string, error) {
	opts := models.GenerateOptions{
		PostType: "lifestyle",
		Tone:     "friendly",
	}
	var imagePath string

	for _, arg := range args {
		key, value, found := strings.Cut(arg, "=")
		if !found {
			imagePath = arg
			continue
		}
		switch key {
		case "type":
			opts.PostType = value
		case "tone":
			opts.Tone = value
		case "location":
			opts.Location = value
		case "context":
			opts.Context = value
		case "length":
			opts.CaptionLength = value
		case "style":
			opts.CaptionStyle = value
		default:
			return opts, "", fmt.Errorf("unknown option: %s", key)
		}
	}

	if imagePath == "" {
		return opts, "", fmt.Errorf("usage: generate <image> [type=...] [tone=...]")
	}
	return opts, imagePath, nil
}
