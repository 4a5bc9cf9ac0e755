package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/kutahiru/idea-labo-sub002/internal/assist"
	"github.com/kutahiru/idea-labo-sub002/internal/config"
	"github.com/kutahiru/idea-labo-sub002/internal/domain/brainwriting"
	"github.com/kutahiru/idea-labo-sub002/internal/domain/mandalart"
	"github.com/kutahiru/idea-labo-sub002/internal/domain/osborn"
	"github.com/kutahiru/idea-labo-sub002/internal/events"
	"github.com/kutahiru/idea-labo-sub002/internal/repository"
	"github.com/kutahiru/idea-labo-sub002/internal/sqlite"
	"github.com/kutahiru/idea-labo-sub002/internal/transport"
)

func main() {
	// Optional; absence of a .env file is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		logger.Error("failed to prepare database path", "error", err)
		os.Exit(1)
	}

	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	bridge := events.NewBridge(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, logger)
	defer bridge.Close()

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 3*time.Second)
	if err := bridge.Ping(pingCtx); err != nil {
		logger.Warn("redis unreachable, events will not be delivered", "addr", cfg.Redis.Addr, "error", err)
	}
	cancelPing()

	sessionRepo := sqlite.NewSessionRepository(db)
	mandalartRepo := sqlite.NewMandalartRepository(db)
	checklistRepo := sqlite.NewChecklistRepository(db)
	identityRepo := sqlite.NewIdentityRepository(db)

	brainwritingSvc := brainwriting.NewService(sessionRepo, bridge, brainwriting.Settings{
		Capacity:  cfg.Brainwriting.Capacity,
		RowBudget: cfg.Brainwriting.RowBudget,
		Columns:   cfg.Brainwriting.Columns,
		LockTTL:   cfg.Brainwriting.LockTTL.Std(),
	}, logger)
	mandalartSvc := mandalart.NewService(mandalartRepo, logger)
	checklistSvc := osborn.NewService(checklistRepo, logger)

	generator := assist.NewGenerator(cfg.Assist.APIKey, cfg.Assist.Model)
	worker := assist.NewWorker(generator, mandalartSvc, checklistSvc, bridge, logger)

	router := transport.NewRouter(transport.Services{
		Brainwriting: brainwritingSvc,
		Mandalarts:   mandalartSvc,
		Checklists:   checklistSvc,
		Assist:       worker,
		Events:       bridge,
	}, transport.AuthMiddleware(&tokenResolver{repo: identityRepo}))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
		}
	}()

	waitForShutdown(logger, httpServer)
}

type tokenResolver struct {
	repo *sqlite.IdentityRepository
}

func (r *tokenResolver) ResolveIdentity(ctx context.Context, token string) (*repository.Identity, error) {
	sum := sha256.Sum256([]byte(token))
	id, err := r.repo.ResolveToken(ctx, hex.EncodeToString(sum[:]))
	if err != nil {
		return nil, transport.ErrUnauthorized
	}
	return id, nil
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func waitForShutdown(logger *slog.Logger, server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
