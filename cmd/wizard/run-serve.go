package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli"

	"github.com/functionland/blox-wizard/internal/app"
	"github.com/functionland/blox-wizard/pkg/utilities"
)

func runServe(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)
	cfg := m.config

	lg, err := utilities.Init(utilities.Config{
		Level:  cfg.Log.Level,
		Dev:    cfg.Log.Dev,
		File:   cfg.Log.File,
		MaxAge: cfg.Log.MaxAge,
	})
	if err != nil {
		return err
	}
	defer lg.Sync()
	sugar := lg.Sugar()

	a, err := app.New(cfg, sugar)
	if err != nil {
		return err
	}

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Start(ctx); err != nil {
		return err
	}
	defer a.Stop()

	srv := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           a.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	sugar.Infow("blox wizard listening", "addr", cfg.Server.ListenAddr, "url", "http://"+cfg.Server.ListenAddr+"/webui", "backend", cfg.Backend.URL, "transport", cfg.Backend.Transport)

	select {
	case <-ctx.Done():
	case err := <-errc:
		sugar.Errorw("http server failed", "err", err)
		return err
	}

	sugar.Info("shutting down")

	// give a short grace period for in-flight requests
	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
	return nil
}
