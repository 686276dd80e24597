package api

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"productcopy-core/internal/domain/repository"
)

type RouterConfig struct {
	AllowedOrigins []string
	Limiter        repository.RateLimiter
	RateWindow     time.Duration
	Logger         *zap.Logger
}

func SetupRouter(app *fiber.App, handler *Handler, cfg RouterConfig) {
	// Middleware
	app.Use(recover.New())
	app.Use(RequestLogger(cfg.Logger))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.AllowedOrigins, ","),
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization",
		AllowCredentials: true,
	}))
	app.Use(RateLimit(cfg.Limiter, cfg.RateWindow, cfg.Logger))

	app.Get("/health", handler.HandleHealth)

	// API Versioning
	v1 := app.Group("/api/v1")
	v1.Get("/stats", handler.HandleStats)
	v1.Get("/similar", handler.HandleSimilar)
	v1.Post("/checkout", handler.HandleCheckout)
	v1.Post("/generate", handler.HandleGenerate)

	app.Post("/webhook/stripe", handler.HandlePaymentWebhook)
}

func strconvSeconds(d time.Duration) string {
	return strconv.Itoa(max(1, int(d.Seconds())))
}
