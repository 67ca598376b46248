// Package httpapi wires the arena's HTTP surface: a Fiber app with a
// recover/logger/cors/rate-limit middleware stack, request validation,
// and the endpoints for token issuance, game control, and model
// discovery.
package httpapi

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"arena/internal/config"
	"arena/internal/registry"
)

const rateLimitRate = 20 // req/sec per IP

// Handler bundles the dependencies every route handler needs.
type Handler struct {
	reg *registry.Registry
	cfg *config.Config
}

// NewFiberApp builds the arena's Fiber app: middleware in order
// (recover, logger, cors, then a route-group rate limiter), followed
// by request validation and the arena's own routes.
func NewFiberApp(reg *registry.Registry, cfg *config.Config) *fiber.App {
	h := &Handler{reg: reg, cfg: cfg}

	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
		// Streams never finish inside a fixed write deadline.
		WriteTimeout: 0,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	api := app.Group("/api")
	api.Use(limiter.New(limiter.Config{
		Max:        rateLimitRate,
		Expiration: time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse{Error: "rate limit exceeded"})
		},
	}))
	api.Use(validationMiddleware)

	api.Post("/token", h.IssueToken)

	api.Get("/game/stream", h.StreamGame)
	api.Post("/game/start", h.StartGame)
	api.Get("/game/state", h.GameState)
	api.Post("/game/move", h.SubmitMove)
	api.Get("/game/legal-moves", h.LegalMoves)
	api.Post("/game/stop", h.StopGame)
	api.Post("/game/reset", h.ResetGame)

	api.Post("/models", h.ListModels)
	api.Post("/models/default", h.ListDefaultModels)

	return app
}

// customErrorHandler maps an unhandled error (or a *fiber.Error raised
// by routing/body-size/etc. machinery) to the arena's uniform
// ErrorResponse body.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal server error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(ErrorResponse{Error: message})
}
