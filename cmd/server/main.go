package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quill/internal/app"
	"quill/internal/config"
	"quill/internal/httpapi"
	"quill/internal/sweeper"

	"github.com/google/gops/agent"
	log "github.com/sirupsen/logrus"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.WithError(err).Fatal("load .env")
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("load config")
	}

	logger, err := app.NewLogger(cfg)
	if err != nil {
		log.WithError(err).Fatal("configure logging")
	}

	if cfg.GopsEnabled {
		if err := agent.Listen(agent.Options{ShutdownCleanup: true}); err != nil {
			logger.WithError(err).Warn("could not start gops agent")
		} else {
			defer agent.Close()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := app.Open(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("open storage")
	}
	defer rt.Close()
	logger.WithFields(log.Fields{
		"store": cfg.StoreDriver,
		"media": cfg.MediaDriver,
	}).Info("storage ready")

	worker := sweeper.NewWorker(rt.Service, sweeper.Config{
		Enabled:      cfg.SweepEnabled,
		StartupDelay: cfg.SweepDelay,
		Interval:     cfg.SweepInterval,
		MinAge:       cfg.SweepMinAge,
	}, logger)
	go worker.Run(ctx)

	// SIGHUP requests an immediate media sweep.
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				worker.Trigger()
			}
		}
	}()

	api := httpapi.New(cfg, rt.Service, logger)
	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      api.NewEcho(),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		logger.WithField("addr", cfg.ListenAddr).Info("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("serve")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("shutdown")
		os.Exit(1)
	}
	logger.Info("server stopped")
}
