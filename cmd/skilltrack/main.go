package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pribylovaa/skilltrack/internal/cli"
	"github.com/pribylovaa/skilltrack/internal/config"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath string
		asJSON     bool
		metricsOut string
	)
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.BoolVar(&asJSON, "json", false, "print results as JSON")
	flag.StringVar(&metricsOut, "metrics-out", "", "write client metrics to this file (Prometheus text format)")
	flag.Parse()

	// .env необязателен.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		return cli.ExitError
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return cli.ExitError
	}

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	reg := prometheus.NewRegistry()

	app, err := cli.New(ctx, *cfg, cli.Options{
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		JSON:       asJSON,
		Logger:     log,
		Registerer: reg,
	})
	if err != nil {
		log.Error("app_init_failed", slog.String("err", err.Error()))
		return cli.ExitError
	}
	defer func() {
		if cerr := app.Close(); cerr != nil {
			log.Warn("session_store_close_failed", slog.String("err", cerr.Error()))
		}
	}()

	code := app.Run(ctx, flag.Args())

	if metricsOut != "" {
		if err := prometheus.WriteToTextfile(metricsOut, reg); err != nil {
			log.Warn("metrics_write_failed", slog.String("path", metricsOut), slog.String("err", err.Error()))
		}
	}

	return code
}

// setupLogger пишет в stderr: stdout занят результатами команд.
func setupLogger(env string) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	default:
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
}
