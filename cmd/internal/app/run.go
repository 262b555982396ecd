package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// Run is the process entrypoint: load config, build the app, serve until
// SIGINT/SIGTERM.
func Run() error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	log := NewLogger(cfg.LogLevel, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := New(ctx, cfg, log)
	if err != nil {
		log.Error("app.start.failed", "err", err)
		return err
	}

	return a.Run(ctx)
}
