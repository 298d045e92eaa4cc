package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"certgen/internal/certificate"
	"certgen/internal/config"
	"certgen/internal/http/server"
	"certgen/internal/infra/assets"
	"certgen/internal/infra/logging"
	"certgen/internal/infra/mailer"
	"certgen/internal/infra/ratelimit"
)

func main() {
	// .env is optional; real deployments set MAIL_* directly.
	_ = godotenv.Load()

	cfg := config.Load()
	if err := ensureLogDir(cfg.Logger.File); err != nil {
		logging.Error("Cannot create log directory", "error", err)
	}
	logging.InitLogger(
		cfg.Logger.File,
		cfg.Logger.MaxSizeMB,
		cfg.Logger.MaxBackups,
		cfg.Logger.MaxAgeDays,
		cfg.Logger.Compress,
		cfg.Logger.Level,
	)

	store := assets.NewStore(cfg.Assets)
	if err := store.Check(); err != nil {
		logging.Warn("Certificate assets not ready", "error", err.Error())
	}

	var rdb *redis.Client
	if cfg.Cache.RedisHost != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr: cfg.Cache.RedisHost,
			DB:   cfg.Cache.RateLimitDB,
		})
		defer rdb.Close()
	}

	deps := server.Deps{
		Config:   cfg,
		Renderer: certificate.NewRenderer(store),
		Assets:   store,
		Redis:    rdb,
	}
	if cfg.RateLimiter.Enabled {
		deps.RateStore = ratelimit.NewStore(ratelimit.RedisConfig{Addr: cfg.Cache.RedisHost, DB: cfg.Cache.RateLimitDB})
	}
	if cfg.Mail.Enabled {
		sender, err := mailer.NewSMTPSender(cfg.Mail)
		if err != nil {
			logging.Error("Mail sender init failed", "error", err)
			os.Exit(1)
		}
		deps.Mailer = sender
		logging.Info("Mail delivery enabled", "host", cfg.Mail.Host, "port", cfg.Mail.Port)
	}

	app, err := server.New(deps)
	if err != nil {
		logging.Error("Server setup failed", "error", err)
		os.Exit(1)
	}

	idleConnsClosed := make(chan struct{})
	startServer(app, cfg, idleConnsClosed)
	<-idleConnsClosed
}

// startServer starts the Fiber app and listens for shutdown signals
func startServer(app *fiber.App, cfg config.Config, idleConnsClosed chan struct{}) {
	go func() {
		logging.Info("Server listening", "addr", cfg.Server.Host+cfg.Server.Port)
		if err := app.Listen(cfg.Server.Host + cfg.Server.Port); err != nil {
			logging.Error("Server error", "error", err)
		}
	}()

	// Listen for OS termination signals
	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, syscall.SIGINT, syscall.SIGTERM)
	<-sigint

	logging.Warn("Shutdown signal received, closing server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logging.Error("Server forced to shutdown", "error", err)
	}

	close(idleConnsClosed)
	logging.Info("Server stopped cleanly")
}

func ensureLogDir(path string) error {
	if path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
