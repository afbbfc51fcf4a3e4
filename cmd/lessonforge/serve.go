package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"lessonforge/internal/generation"
	"lessonforge/internal/llm"
	"lessonforge/internal/logging"
	"lessonforge/internal/prompt"
	"lessonforge/internal/routing"
	"lessonforge/internal/server"
	"lessonforge/internal/store"
	"lessonforge/internal/usage"
	"lessonforge/internal/validation"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP generation service",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	router := routing.NewRouter(logging.For(logger, logging.CategoryRouting))
	if cfg.Routing.OverridesPath != "" {
		if err := router.LoadOverrides(cfg.Routing.OverridesPath); err != nil {
			return fmt.Errorf("failed to load routing overrides: %w", err)
		}
	}

	client, err := llm.NewClient(ctx, llm.Config{
		Provider:    cfg.LLM.Provider,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		BaseURL:     cfg.LLM.BaseURL,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     cfg.LLM.Timeout,
	}, logging.For(logger, logging.CategoryLLM))
	if err != nil {
		return err
	}

	var recorder generation.Recorder
	if cfg.Storage.Enabled {
		recordStore, err := store.Open(cfg.Storage.DatabasePath, logging.For(logger, logging.CategoryStore))
		if err != nil {
			return err
		}
		defer recordStore.Close()
		recorder = recordStore
	}

	var quota usage.Service = usage.NoopService{}
	if cfg.Usage.Enabled {
		redisQuota := usage.NewRedisService(
			cfg.Usage.RedisAddr, cfg.Usage.RedisDB,
			cfg.Usage.DailyLimit, cfg.Usage.Window,
			logging.For(logger, logging.CategoryUsage))
		defer redisQuota.Close()
		quota = redisQuota
	}

	orchestrator := generation.NewOrchestrator(
		router,
		prompt.NewBuilder(logging.For(logger, logging.CategoryPrompt)),
		validation.NewValidator(logging.For(logger, logging.CategoryValidation)),
		client,
		recorder,
		logging.For(logger, logging.CategoryGeneration),
	)

	srv := server.New(cfg.Server, orchestrator, quota, logging.For(logger, logging.CategoryServer))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(ctx) })
	if cfg.Routing.OverridesPath != "" && cfg.Routing.WatchOverrides {
		g.Go(func() error { return router.WatchOverrides(ctx, cfg.Routing.OverridesPath) })
	}

	logger.Info("lessonforge started", zap.String("addr", cfg.Server.Addr))
	return g.Wait()
}
