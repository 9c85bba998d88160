package http

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"resultboard/internal/server/core"
	"resultboard/internal/server/logging"
	"resultboard/internal/server/metrics"
	"resultboard/internal/server/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const defaultRateLimit = 10 // req/sec

// homeCacheControl lets shared caches serve the home view while it revalidates
const homeCacheControl = "public, max-age=60, s-maxage=300, stale-while-revalidate=86400"

// AppConfig configures NewFiberApp
type AppConfig struct {
	Dev         bool
	RateLimit   int // requests per second per IP, 0 for the default
	CORSOrigins []string
	Metrics     *metrics.Recorder
	Logger      *slog.Logger
	AccessLog   bool
}

// HTTPHandler handles HTTP requests and routes them to the service
type HTTPHandler struct {
	svc    *service.Service
	logger *slog.Logger
}

func NewHTTPHandler(svc *service.Service, logger *slog.Logger) *HTTPHandler {
	return &HTTPHandler{svc: svc, logger: logger}
}

func NewFiberApp(svc *service.Service, cfg AppConfig) *fiber.App {
	h := NewHTTPHandler(svc, cfg.Logger)

	app := fiber.New(fiber.Config{
		ErrorHandler:          customErrorHandler,
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          35 * time.Second,
		IdleTimeout:           60 * time.Second,
		DisableStartupMessage: true,
	})

	// Global middleware (order matters)
	app.Use(recover.New())
	if cfg.AccessLog {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${status} ${method} ${path} ${latency}\n",
		}))
	}
	if cfg.Metrics != nil {
		app.Use(cfg.Metrics.Middleware())
	}

	origins := "*"
	if len(cfg.CORSOrigins) > 0 {
		origins = strings.Join(cfg.CORSOrigins, ",")
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Health and metrics (no rate limit)
	app.Get("/health", h.Health)
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics.Handler())
	}

	api := app.Group("/api/v1")

	// Auth routes with specific rate limiting
	auth := api.Group("/auth")
	auth.Post("/register", perMinuteLimiter(5, "registrations"), h.RegisterHandler)
	auth.Post("/login", perMinuteLimiter(10, "login attempts"), h.LoginHandler)

	validateToken := svc.ValidateToken
	auth.Get("/me", AuthRequired(validateToken), h.GetCurrentUserHandler)
	auth.Post("/logout", AuthRequired(validateToken), h.LogoutHandler)

	maxReq := cfg.RateLimit
	if maxReq <= 0 {
		maxReq = defaultRateLimit
	}
	if cfg.Dev {
		maxReq *= 2
	}
	api.Use(limiter.New(limiter.Config{
		Max:        maxReq,
		Expiration: 1 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			if xff := c.Get("X-Forwarded-For"); xff != "" {
				if idx := strings.Index(xff, ","); idx != -1 {
					return strings.TrimSpace(xff[:idx])
				}
				return xff
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(core.ErrorResponse{
				Error:   "rate limit exceeded",
				Code:    core.CodeRateLimitExceeded,
				Details: fmt.Sprintf("%d requests per second allowed", maxReq),
			})
		},
	}))

	// Content-Type validation for POST and PUT requests
	api.Use(contentTypeValidator)

	// Each route gets its own chain; fiber keeps the slice it is handed.
	admin := func(h fiber.Handler) []fiber.Handler {
		return []fiber.Handler{AuthRequired(validateToken), RoleRequired(core.RoleAdmin), h}
	}
	adminBody := func(h fiber.Handler) []fiber.Handler {
		return []fiber.Handler{AuthRequired(validateToken), RoleRequired(core.RoleAdmin), validationMiddleware, h}
	}

	// Game catalog
	api.Get("/games", h.ListGames)
	api.Get("/games/:code", h.GetGame)
	api.Post("/games/bulk", admin(h.BulkUpsertGames)...)
	api.Post("/games", adminBody(h.CreateGame)...)
	api.Put("/games/:code", adminBody(h.UpdateGame)...)
	api.Delete("/games/:code", admin(h.DeleteGame)...)

	// Results and views
	api.Get("/results/timewise", h.GetTimewise)
	api.Post("/results/timewise", adminBody(h.RecordResult)...)
	api.Post("/results", adminBody(h.RecordResult)...)
	api.Delete("/results/timewise/:id", admin(h.DeleteResult)...)
	api.Get("/results/snapshot", h.GetSnapshot)
	api.Get("/results/monthly", h.GetMonthly)
	api.Get("/results/home", h.GetHome)

	return app
}

func perMinuteLimiter(max int, what string) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(core.ErrorResponse{
				Error:   "rate limit exceeded",
				Code:    core.CodeRateLimitExceeded,
				Details: fmt.Sprintf("%d %s per minute allowed", max, what),
			})
		},
	})
}

// contentTypeValidator ensures POST and PUT requests have application/json
func contentTypeValidator(c *fiber.Ctx) error {
	method := c.Method()
	if method == fiber.MethodPost || method == fiber.MethodPut {
		contentType := c.Get("Content-Type")
		if contentType != "" && !strings.HasPrefix(contentType, fiber.MIMEApplicationJSON) {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(core.ErrorResponse{
				Error:   "unsupported media type",
				Code:    core.CodeInvalidContent,
				Details: "Content-Type must be application/json",
			})
		}
	}
	return c.Next()
}

// customErrorHandler provides consistent error responses
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	response := core.ErrorResponse{
		Error: "internal server error",
		Code:  core.CodeInternalError,
	}

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		response.Error = e.Message

		switch code {
		case fiber.StatusNotFound:
			response.Code = core.CodeNotFound
		case fiber.StatusBadRequest:
			response.Code = core.CodeInvalidRequest
		case fiber.StatusTooManyRequests:
			response.Code = core.CodeRateLimitExceeded
		}
	}

	return c.Status(code).JSON(response)
}

// errorStatus maps domain errors to an HTTP status and error envelope
func errorStatus(err error) (int, core.ErrorResponse) {
	var ve *core.ValidationError
	switch {
	case errors.As(err, &ve):
		return fiber.StatusBadRequest, core.ErrorResponse{
			Error: "validation failed", Code: core.CodeValidationFailed, Details: ve.Error(),
		}
	case errors.Is(err, core.ErrInvalidTimeFormat):
		return fiber.StatusBadRequest, core.ErrorResponse{
			Error: "invalid time format", Code: core.CodeInvalidTime, Details: err.Error(),
		}
	case errors.Is(err, core.ErrNotFound):
		return fiber.StatusNotFound, core.ErrorResponse{
			Error: "not found", Code: core.CodeNotFound, Details: err.Error(),
		}
	case errors.Is(err, core.ErrDuplicateCode):
		return fiber.StatusConflict, core.ErrorResponse{
			Error: "duplicate code", Code: core.CodeDuplicateCode, Details: err.Error(),
		}
	case errors.Is(err, core.ErrStoreUnavailable):
		return fiber.StatusServiceUnavailable, core.ErrorResponse{
			Error: "store unavailable", Code: core.CodeStoreUnavailable,
		}
	default:
		return fiber.StatusInternalServerError, core.ErrorResponse{
			Error: "internal server error", Code: core.CodeInternalError,
		}
	}
}

// fail writes the error envelope for err, logging server-side failures
func (h *HTTPHandler) fail(c *fiber.Ctx, err error) error {
	status, resp := errorStatus(err)
	if status >= fiber.StatusInternalServerError {
		logging.Error(h.logger, "request failed", err,
			logging.FieldMethod, c.Method(),
			logging.FieldPath, c.Path(),
			logging.FieldStatusCode, status,
		)
	}
	return c.Status(status).JSON(resp)
}

// Health check endpoint with storage status
func (h *HTTPHandler) Health(c *fiber.Ctx) error {
	return c.JSON(core.HealthResponse{
		Status:  "healthy",
		Time:    time.Now().Unix(),
		Storage: h.svc.GetStorageHealth(c.UserContext()),
	})
}
