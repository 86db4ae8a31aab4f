package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/saturnino-fabrica-de-software/soukhyam/internal/api"
	"github.com/saturnino-fabrica-de-software/soukhyam/internal/config"
	"github.com/saturnino-fabrica-de-software/soukhyam/internal/provider"
	"github.com/saturnino-fabrica-de-software/soukhyam/internal/provider/gemini"
	"github.com/saturnino-fabrica-de-software/soukhyam/internal/provider/mock"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	chatProvider, err := newChatProvider(cfg)
	if err != nil {
		return err
	}

	logger.Info("starting Soukhyam realtime",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.Port),
		slog.String("chat_provider", chatProvider.Name()),
		slog.Bool("escalation_webhook", cfg.EscalationWebhookURL != ""),
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Setup router
	router := api.NewRouter(logger, &api.Dependencies{
		Config:       cfg,
		ChatProvider: chatProvider,
		Registry:     registry,
	})
	router.Setup()

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("server listening", slog.String("addr", addr))
		if err := router.Listen(addr); err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server...")
		if err := router.Shutdown(); err != nil {
			logger.Error("shutdown error", slog.Any("error", err))
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info("server stopped")
	return nil
}

func newChatProvider(cfg *config.Config) (provider.ChatProvider, error) {
	switch cfg.ChatProvider {
	case "mock":
		return mock.New(), nil
	case "gemini":
		gc := gemini.DefaultConfig()
		gc.BaseURL = cfg.GeminiURL
		gc.Model = cfg.GeminiModel
		gc.APIKey = cfg.GeminiAPIKey
		return gemini.NewProvider(gc, cfg.HelplineNumber), nil
	default:
		return nil, fmt.Errorf("unsupported chat provider %q", cfg.ChatProvider)
	}
}
