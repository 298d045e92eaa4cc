package server

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/redis/go-redis/v9"

	"certgen/internal/config"
	"certgen/internal/http/handlers"
	"certgen/internal/http/middleware"
	"certgen/internal/infra/mailer"
	"certgen/internal/web"
)

// Deps are the collaborators the HTTP server is built from.
type Deps struct {
	Config   config.Config
	Renderer handlers.CertificateRenderer
	Assets   handlers.AssetChecker
	Mailer   mailer.Sender
	Redis    *redis.Client
	// RateStore holds limiter counters; nil disables rate limiting.
	RateStore fiber.Storage
}

// New creates the Fiber app with middleware and routes.
func New(deps Deps) (*fiber.App, error) {
	cfg := deps.Config
	bodyLimit := cfg.Server.BodyLimit
	if bodyLimit <= 0 {
		bodyLimit = fiber.DefaultBodyLimit
	}

	app := fiber.New(fiber.Config{
		Prefork:               cfg.Server.Prefork,
		DisableStartupMessage: true,
		BodyLimit:             bodyLimit,
		ErrorHandler:          handlers.ErrorHandler,
	})

	var ready func(*fiber.Ctx) bool
	if deps.Assets != nil {
		ready = handlers.ReadinessProbe(deps.Assets, deps.Redis)
	}
	middleware.Register(app, cfg, ready)

	if err := RegisterRoutes(app, deps); err != nil {
		return nil, err
	}

	// Ensure all responses, including 404s, return JSON
	app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Not Found")
	})

	return app, nil
}

// RegisterRoutes mounts the form, its logo, the monitor page and the
// generate endpoint.
func RegisterRoutes(app *fiber.App, deps Deps) error {
	svc := handlers.NewCertificateService(deps.Config, deps.Renderer, deps.Mailer)

	form, err := web.FormHandler(svc.MailEnabled(), deps.Config.Certificate.FilenameSuffix)
	if err != nil {
		return fmt.Errorf("form handler: %w", err)
	}
	app.Get("/", form)
	if logo := deps.Config.Assets.LogoPath; logo != "" {
		app.Static("/logo.png", logo)
	}

	app.Get("/ops/monitor", monitor.New(monitor.Config{Title: "certgen metrics"}))

	api := app.Group("/api")
	if deps.RateStore != nil {
		api.Use(middleware.UserRateLimit(deps.Config.RateLimiter, deps.RateStore))
	}
	api.Post("/generate", svc.HandleGenerate)
	return nil
}
