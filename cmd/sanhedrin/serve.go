package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/sanhedrin/sanhedrin/internal/config"
	"github.com/sanhedrin/sanhedrin/internal/exec"
	"github.com/sanhedrin/sanhedrin/internal/juror"
	"github.com/sanhedrin/sanhedrin/internal/orchestrator"
	"github.com/sanhedrin/sanhedrin/internal/panel"
	"github.com/sanhedrin/sanhedrin/internal/server"
	"github.com/sanhedrin/sanhedrin/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the deliberation server",
	Long: `Start the Sanhedrin HTTP server.

The server accepts tasks on POST /v1/deliberations, fans each one out to
a panel of jurors, and exposes rulings on GET /v1/deliberations/{id}.
Configuration comes from sanhedrin.yaml and SANHEDRIN_ environment
variables.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	roster, err := loadRoster(cfg, logger)
	if err != nil {
		return err
	}

	invokers := juror.NewInvokerSet(
		juror.NewCommandInvoker(exec.NewRunner()),
		anthropicInvoker(cfg),
	)
	slots := semaphore.NewWeighted(int64(cfg.Registry.MaxConcurrent))
	p := panel.New(invokers, slots, cfg.Panel.JurorTimeout, logger)

	registry, err := orchestrator.NewRegistry(p, roster, cfg, logger)
	if err != nil {
		return fmt.Errorf("init registry: %w", err)
	}

	srv := server.New(server.ServerConfig{
		Registry: registry,
		Config:   cfg,
		Logger:   logger,
		Version:  version.Get(),
	})

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	logger.Info("sanhedrin started",
		zap.String("addr", cfg.Addr()),
		zap.String("version", version.Get()),
		zap.Int("jurors", len(roster.Jurors)),
		zap.String("policy", cfg.Panel.Policy),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		registry.Stop()
		return fmt.Errorf("http server: %w", err)
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("forced listener close", zap.Error(err))
	}
	registry.Stop()
	logger.Info("shutdown complete")
	return nil
}

// loadRoster reads the configured roster, falling back to the built-in
// single-juror roster when none is configured.
func loadRoster(cfg *config.Config, logger *zap.Logger) (*juror.Roster, error) {
	if cfg.Panel.RosterPath == "" {
		logger.Info("no roster configured, using default claude juror")
		return juror.DefaultRoster(), nil
	}
	roster, err := juror.LoadRoster(cfg.Panel.RosterPath)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	logger.Info("roster loaded",
		zap.String("path", cfg.Panel.RosterPath),
		zap.Int("jurors", len(roster.Jurors)),
	)
	return roster, nil
}

func anthropicInvoker(cfg *config.Config) juror.Invoker {
	if cfg.Anthropic.APIKey == "" {
		return nil
	}
	return juror.NewAnthropicInvoker(cfg.Anthropic.APIKey)
}
