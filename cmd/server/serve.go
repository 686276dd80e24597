package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/qdrant/go-client/qdrant"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"productcopy-core/internal/adapter/api"
	"productcopy-core/internal/adapter/client"
	"productcopy-core/internal/adapter/mail"
	"productcopy-core/internal/adapter/store"
	"productcopy-core/internal/config"
	"productcopy-core/internal/domain/repository"
	"productcopy-core/internal/usecase"
)

func newServeCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), g)
		},
	}
}

func runServe(parent context.Context, g *globals) error {
	cfg, logger := g.cfg, g.logger
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ledger, err := openLedger(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer ledger.Close()

	genaiClient, err := client.NewGenAIClient(ctx, client.GeminiConfig{
		APIKey:   cfg.Generation.APIKey,
		Project:  cfg.Generation.Project,
		Location: cfg.Generation.Location,
	})
	if err != nil {
		return fmt.Errorf("failed to init genai client: %w", err)
	}
	generator := client.NewGeminiGenerator(genaiClient)

	text := usecase.NewTextClient(generator, cfg.Generation.Model)
	refiner := usecase.NewRefiner(text, usecase.NewQualityEvaluator(text), usecase.RefinePolicy{
		MaxRounds:       cfg.Generation.MaxRounds,
		AcceptThreshold: cfg.Generation.AcceptThreshold,
	}, logger)

	limiter := newLimiter(ctx, cfg, logger)

	// Archive is optional: nil interfaces disable it.
	var (
		archive  repository.Archive
		embedder repository.Embedder
	)
	if cfg.Archive.Host != "" {
		a, err := newArchive(ctx, cfg.Archive, logger)
		if err != nil {
			logger.Warn("archive disabled", zap.Error(err))
		} else {
			archive = a
			embedder = client.NewGeminiEmbedder(genaiClient, cfg.Generation.EmbeddingModel, cfg.Archive.Dimensions)
		}
	}

	mailer := mail.New(mail.Config{
		Enable: cfg.MailEnabled(),
		Host:   cfg.Mail.Host,
		Port:   cfg.Mail.Port,
		User:   cfg.Mail.User,
		Pass:   cfg.Mail.Pass,
		From:   cfg.Mail.From,
	}, cfg.Service.Title)

	orchestrator := usecase.NewOrchestrator(usecase.OrchestratorDeps{
		Service:  cfg.Service.Name,
		Ledger:   ledger,
		Refiner:  refiner,
		Text:     text,
		Archive:  archive,
		Embedder: embedder,
		Logger:   logger,
	})
	billing := usecase.NewBilling(cfg.Service.Name, ledger, mailer, logger)

	go warmUp(generator, cfg.Generation.Model, logger)

	app := fiber.New(fiber.Config{
		AppName:               "RoboServe " + cfg.Service.Title,
		DisableStartupMessage: true,
	})
	handler := api.NewHandler(api.ServiceInfo{
		Name:    cfg.Service.Name,
		Title:   cfg.Service.Title,
		Version: cfg.Service.Version,
	}, orchestrator, billing, usecase.NewShowcase(archive, embedder), logger)
	api.SetupRouter(app, handler, api.RouterConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Limiter:        limiter,
		RateWindow:     cfg.RateLimit.Window,
		Logger:         logger,
	})

	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		logger.Info("server starting", zap.String("addr", addr))
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
	orchestrator.Wait()
	billing.Wait()
	logger.Info("server exited")
	return nil
}

func openLedger(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*store.SQLLedger, error) {
	opts := store.DBOptions{Driver: cfg.Database.Driver, DSN: cfg.Database.DSN}
	if opts.DSN == "" {
		if cfg.IsSQLite() {
			opts.DSN = cfg.Database.SQLitePath
		} else {
			d := cfg.Database
			opts.DSN = store.MySQLDSN(d.Host, d.Port, d.User, d.Password, d.Name)
		}
	}
	ledger, err := store.OpenLedger(ctx, opts, logger)
	if err != nil {
		return nil, fmt.Errorf("ledger: %w", err)
	}
	logger.Info("database tables initialised", zap.String("driver", ledger.Dialect().Name))
	return ledger, nil
}

// newLimiter shares the window through Redis when configured, otherwise keeps
// it in process with a background sweeper.
func newLimiter(ctx context.Context, cfg *config.Config, logger *zap.Logger) repository.RateLimiter {
	rl := cfg.RateLimit
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		err := rdb.Ping(ctx).Err()
		if err == nil {
			logger.Info("rate limiter using redis", zap.String("addr", cfg.Redis.Addr))
			return store.NewRedisLimiter(rdb, rl.Limit, rl.Window)
		}
		logger.Warn("redis unreachable, falling back to in-memory rate limiter", zap.Error(err))
		_ = rdb.Close()
	}
	m := store.NewMemoryLimiter(rl.Limit, rl.Window)
	interval := rl.SweepInterval
	if interval <= 0 {
		interval = rl.Window
	}
	go m.Run(ctx, interval)
	return m
}

func newArchive(ctx context.Context, cfg config.Archive, logger *zap.Logger) (*store.QdrantArchive, error) {
	qClient, err := qdrant.NewClient(&qdrant.Config{
		Host: cfg.Host,
		Port: cfg.Port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to qdrant: %w", err)
	}
	archive := store.NewQdrantArchive(qClient, cfg.Collection, logger)
	if err := archive.InitCollection(ctx, cfg.Dimensions); err != nil {
		return nil, fmt.Errorf("failed to init qdrant collection: %w", err)
	}
	return archive, nil
}

// warmUp wakes the model instance so the first real request is not the slow one.
func warmUp(g repository.Generator, model string, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := g.Generate(ctx, model, "."); err != nil {
		logger.Warn("generation warm-up failed", zap.Error(err))
		return
	}
	logger.Info("pre-warm complete")
}
