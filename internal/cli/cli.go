// cli — команды skilltrack поверх api.API.
//
// Каждая команда объявлена с уровнем доступа guard.Access; диспетчер
// проверяет сессию до запуска команды. Если клиент ушёл на экран входа
// после неудачного refresh, команда завершается с кодом ExitSessionExpired.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/pribylovaa/skilltrack/internal/api"
	"github.com/pribylovaa/skilltrack/internal/client"
	"github.com/pribylovaa/skilltrack/internal/config"
	apierrors "github.com/pribylovaa/skilltrack/internal/errors"
	"github.com/pribylovaa/skilltrack/internal/guard"
	"github.com/pribylovaa/skilltrack/internal/session"
	"github.com/pribylovaa/skilltrack/pkg/log"
	"github.com/pribylovaa/skilltrack/pkg/redact"
	"github.com/prometheus/client_golang/prometheus"
)

// Коды завершения.
const (
	ExitOK             = 0
	ExitError          = 1
	ExitSessionExpired = 2
	ExitUsage          = 64
)

// Options — окружение команд.
type Options struct {
	Stdout io.Writer
	Stderr io.Writer
	// JSON — печатать ответы как JSON вместо таблиц.
	JSON   bool
	Logger *slog.Logger
	// Registerer принимает метрики клиента; nil — без метрик.
	Registerer prometheus.Registerer
	// Store подменяет хранилище из конфигурации (тесты).
	Store session.Store
}

// App — собранный клиент и команды.
type App struct {
	api   *api.API
	store session.Store
	nav   *Navigator
	log   *slog.Logger
	out   *printer
	err   io.Writer
}

// New собирает хранилище сессии, HTTP-клиент и API по конфигурации.
func New(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	const op = "cli.New"

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	store := opts.Store
	if store == nil {
		s, err := session.Open(ctx, cfg.Session)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		store = s
	}

	copts := []client.Option{client.WithLogger(opts.Logger)}
	if opts.Registerer != nil {
		m, err := client.NewMetrics(opts.Registerer)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		copts = append(copts, client.WithMetrics(m))
	}

	nav := NewNavigator(opts.Stderr)
	copts = append(copts, client.WithNavigator(nav))

	c := client.New(cfg, store, copts...)

	return &App{
		api:   api.New(c, cfg.Cache, api.WithLogger(opts.Logger)),
		store: store,
		nav:   nav,
		log:   opts.Logger,
		out:   newPrinter(opts.Stdout, opts.JSON),
		err:   opts.Stderr,
	}, nil
}

// Close освобождает хранилище сессии, если оно держит соединение.
func (a *App) Close() error {
	if c, ok := a.store.(io.Closer); ok {
		return c.Close()
	}

	return nil
}

// Run выполняет команду args и возвращает код завершения.
func (a *App) Run(ctx context.Context, args []string) int {
	cmd, rest, ok := lookup(args)
	if !ok {
		a.usage()
		return ExitUsage
	}

	ctx, lg := log.With(log.Into(ctx, a.log), "cmd", cmd.name)
	lg.Debug("command_started", "args", redact.Args(rest))

	switch d := guard.Check(ctx, a.store, cmd.access); {
	case d.Allow:
	case d.Redirect == guard.RouteDashboard:
		fmt.Fprintln(a.err, "already logged in; run `skilltrack logout` first")
		return a.finish(lg, runDashboard(ctx, a, nil))
	default:
		fmt.Fprintln(a.err, "not logged in; run `skilltrack login`")
		return ExitError
	}

	return a.finish(lg, cmd.run(ctx, a, rest))
}

// finish переводит ошибку команды в код завершения.
func (a *App) finish(lg *slog.Logger, err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, client.ErrSessionExpired) || a.nav.Expired():
		return ExitSessionExpired
	case errors.Is(err, errUsage):
		return ExitUsage
	}

	lg.Debug("command_failed", "err", err)
	if ae, ok := apierrors.As(err); ok {
		fmt.Fprintf(a.err, "error: %s\n", ae.Message)
		for _, f := range ae.Fields {
			fmt.Fprintf(a.err, "  %s: %s\n", f.Field(), f.Msg)
		}
		return ExitError
	}

	fmt.Fprintf(a.err, "error: %v\n", err)

	return ExitError
}

func (a *App) usage() {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(a.err, "usage: skilltrack [--config path] [--json] <command> [flags]")
	fmt.Fprintln(a.err, "commands:")
	for _, name := range names {
		c := commands[name]
		fmt.Fprintf(a.err, "  %-22s %s\n", strings.TrimSpace(name+" "+c.args), c.help)
	}
}
