package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/geogrids/internal/pkg/metrics"
)

const requestTimeout = 15 * time.Second

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())

	// Rate limiting: 600 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        600,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	v1 := app.Group("/v1")

	// Grid. Static segments are registered before /cells/:hash.
	v1.Get("/precisions", PrecisionsHandler(deps))
	v1.Get("/cells/encode", timeout.NewWithContext(EncodeCellHandler(deps), requestTimeout))
	v1.Post("/cells/batch", timeout.NewWithContext(BatchEncodeHandler(deps), requestTimeout))
	v1.Get("/cells/numeric/:hash", timeout.NewWithContext(LocateNumericHandler(deps), requestTimeout))
	v1.Get("/cells/:hash/area", timeout.NewWithContext(CellAreaHandler(deps), requestTimeout))
	v1.Get("/cells/:hash", timeout.NewWithContext(GetCellHandler(deps), requestTimeout))

	// Word lists
	v1.Get("/wordlists", timeout.NewWithContext(ListWordlistsHandler(deps), requestTimeout))
	v1.Post("/wordlists", timeout.NewWithContext(CreateWordlistHandler(deps), requestTimeout))
	v1.Get("/wordlists/:name/encode", timeout.NewWithContext(EncodeWordsHandler(deps), requestTimeout))
	v1.Get("/wordlists/:name/decode", timeout.NewWithContext(DecodeWordsHandler(deps), requestTimeout))
	v1.Get("/wordlists/:name", timeout.NewWithContext(GetWordlistHandler(deps), requestTimeout))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app)

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
}
