package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mrwolf/daybook/internal/api"
	"github.com/mrwolf/daybook/internal/scheduler"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the daily job on schedule and serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")

			a, err := newApp(configPath)
			if err != nil {
				return err
			}
			defer a.logger.Sync()
			return serve(a)
		},
	}
}

func serve(a *app) error {
	log := a.logger
	hour, minute, err := a.cfg.ScheduleTime()
	if err != nil {
		return err
	}

	sched, err := scheduler.New(a.pipeline, scheduler.Config{
		Location: a.cfg.Location(),
		Hour:     hour,
		Minute:   minute,
	}, log)
	if err != nil {
		return err
	}
	if err := sched.Start(); err != nil {
		return err
	}

	addr := ":" + a.cfg.Server.Port
	server := &http.Server{
		Addr:    addr,
		Handler: api.NewRouter(a.cfg, a.pipeline, sched, log),
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	errs := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	select {
	case <-done:
		log.Info("shutting down")
	case err = <-errs:
		log.Error("server error", zap.Error(err))
	}

	// Give ongoing requests 10 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Warn("http server shutdown", zap.Error(err))
	}

	if err := sched.Stop(); err != nil {
		log.Warn("scheduler shutdown", zap.Error(err))
	}

	log.Info("shutdown complete")
	return err
}
