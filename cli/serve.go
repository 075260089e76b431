package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"newsclf/config"
	qhttp "newsclf/http"
	"newsclf/inference"
	"newsclf/logger"
)

func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Load the models and start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runServe(cfg)
		},
	}
}

func runServe(cfg *config.Config) error {
	log, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	svc := inference.NewService(cfg.Models, log)
	if err := svc.LoadModels(); err != nil {
		log.Error("Failed to load models", zap.Error(err))
		return err
	}
	if !svc.ModelsLoaded() {
		log.Warn("Starting in degraded mode; /predict will fail until models are loaded")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Models.Watch {
		go func() {
			if err := svc.Watch(ctx); err != nil {
				log.Error("Model watcher stopped", zap.Error(err))
			}
		}()
	}

	server := qhttp.NewServer(qhttp.ServerConfig{
		Addr:           cfg.Addr(),
		Timeout:        cfg.Http.Timeout,
		AllowedOrigins: cfg.Http.AllowedOrigins,
		MaxBodyBytes:   cfg.Http.MaxBodyBytes,
	}, svc, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return err
	}

	log.Info("Exiting", zap.Int("pid", os.Getpid()))
	return nil
}
