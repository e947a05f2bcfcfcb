package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/tinkerhub/geoquest/internal/config"
	"github.com/tinkerhub/geoquest/internal/database"
	"github.com/tinkerhub/geoquest/internal/mailer"
	"github.com/tinkerhub/geoquest/internal/migrations"
	"github.com/tinkerhub/geoquest/internal/photoverify"
	"github.com/tinkerhub/geoquest/internal/server"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- Store ---
	var store server.Store
	switch cfg.Store {
	case "memory":
		store = server.NewMemoryStore()
		logger.Info("using in-memory store")
	default:
		db, err := database.Open(ctx, cfg.DBPath)
		if err != nil {
			return fmt.Errorf("connecting to sqlite: %w", err)
		}
		defer db.Close()

		if err := migrations.Run(db); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		store = server.NewSQLiteStore(db)
		logger.Info("connected to sqlite", "path", cfg.DBPath)
	}

	if err := server.SeedGame(ctx, logger, store); err != nil {
		return fmt.Errorf("seeding game data: %w", err)
	}

	// --- Redis (optional leaderboard cache) ---
	var cache *server.LeaderboardCache
	if cfg.RedisURL != "" {
		rdb, err := openRedis(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rdb.Close()
		cache = server.NewLeaderboardCache(rdb, cfg.LeaderboardTTL)
		logger.Info("connected to redis")
	}

	// --- Outbound mail ---
	var mail mailer.Mailer = mailer.Nop{}
	if cfg.SMTPHost != "" {
		mail = mailer.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom, logger)
	}

	// --- HTTP Server ---
	srv := server.New(cfg.HTTPAddr, server.Deps{
		Logger:           logger,
		Store:            store,
		Cache:            cache,
		Verifier:         photoverify.New(cfg.VerifyBaseURL),
		Mailer:           mail,
		ExtractionKey:    cfg.ExtractionKey,
		GeoTolerance:     cfg.GeoToleranceMeters,
		GeoDefaultRadius: cfg.GeoDefaultRadiusMeters,
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}

func openRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return rdb, nil
}
