package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wanderlist/tripsync/internal/apiclient"
	"github.com/wanderlist/tripsync/internal/config"
	"github.com/wanderlist/tripsync/internal/session"
	"github.com/wanderlist/tripsync/internal/snapshot"
	"github.com/wanderlist/tripsync/internal/storage"
	"github.com/wanderlist/tripsync/internal/store"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := run(log); err != nil {
		log.Error("tripsync exited with error", "err", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := context.Background()

	// Durable session storage: Postgres when configured, in-memory otherwise.
	var sessionStore session.Store = session.NewMemoryStore()
	if cfg.DatabaseURL != "" {
		pool, err := storage.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer pool.Close()

		if err := storage.EnsureSchema(ctx, pool); err != nil {
			return err
		}
		sessionStore = storage.NewSessionRepository(pool)
		log.Info("session storage ready")
	}

	// Collection snapshots: optional, redis-backed.
	var snapshots *snapshot.Cache
	if cfg.RedisURL != "" {
		redisClient, err := snapshot.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer func() { _ = redisClient.Close() }()
		snapshots = snapshot.NewCache(redisClient)
		log.Info("snapshot cache ready")
	}

	// Wire dependencies. The session manager feeds the client its bearer
	// token; the stores share one client and one session.
	var sessions *session.Manager
	api := apiclient.New(cfg.APIBaseURL, apiclient.TokenSourceFunc(func() string {
		return sessions.Token()
	}))
	sessions = session.NewManager(api, sessionStore, log)

	sessions.Hydrate(ctx)

	stores := newStores(api, sessions, snapshots, log)
	stores.Hydrate(ctx)

	if userName := os.Getenv("TRIPSYNC_USERNAME"); userName != "" && !sessions.IsAuthenticated() {
		creds := session.Credentials{
			UserName: userName,
			Password: os.Getenv("TRIPSYNC_PASSWORD"),
		}
		if err := sessions.Login(ctx, creds); err != nil {
			return fmt.Errorf("logging in as %s: %w", userName, err)
		}
	}

	sync := func() {
		start := time.Now()
		if err := stores.SyncAll(ctx); err != nil {
			log.Error("sync pass failed", "err", err)
			return
		}
		log.Info("sync pass complete",
			"destinations", stores.Destinations.Len(),
			"suggestions", stores.Suggestions.Len(),
			"users", stores.Users.Len(),
			"took", time.Since(start).Round(time.Millisecond),
		)
	}
	sync()

	// Periodic resync until SIGINT / SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.SyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sync()
		case sig := <-quit:
			log.Info("shutdown signal received", "signal", sig)
			return nil
		}
	}
}

func newStores(api *apiclient.Client, sessions *session.Manager, snapshots *snapshot.Cache, log *slog.Logger) *store.Stores {
	if snapshots == nil {
		return store.New(api, sessions, nil, log)
	}
	return store.New(api, sessions, snapshots, log)
}
