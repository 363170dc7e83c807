package devserver

import (
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/crm-console/internal/auth"
	"github.com/spec-kit/crm-console/internal/config"
	apperrors "github.com/spec-kit/crm-console/pkg/util"
)

// New assembles the dev backend: routes in the documented contract, error
// and logging middleware, and a seeded in-memory store.
func New(cfg *config.Config, logger *zap.Logger) (*fiber.App, error) {
	store := NewStore()
	if err := store.Seed(cfg.Auth.BcryptCost); err != nil {
		return nil, err
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	handlers := NewHandlers(store, tokens, logger, cfg.Notification.EmailFrom)
	authMiddleware := auth.NewMiddleware(tokens)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(errorHandlingMiddleware(logger))
	app.Use(requestLogger(logger))

	app.Get("/health/live", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "alive", "service": cfg.App.Name, "version": cfg.App.Version})
	})

	api := app.Group("/api")
	api.Post("/auth/login", handlers.Login)

	protected := api.Group("", authMiddleware.Handle)
	protected.Get("/auth/users", handlers.ListUsers)
	protected.Get("/contacts", handlers.ListContacts)
	protected.Get("/tickets", handlers.ListTickets)
	protected.Post("/tickets", handlers.CreateTicket)
	protected.Put("/tickets/:id", handlers.UpdateTicket)
	protected.Delete("/tickets/:id", handlers.DeleteTicket)
	protected.Post("/notifications/email", handlers.SendEmail)
	protected.Post("/attendance/check-in", handlers.CheckIn)
	protected.Post("/attendance/check-out", handlers.CheckOut)

	return app, nil
}

func errorHandlingMiddleware(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				domainErr := apperrors.ToDomainError(err)
				response := fiber.Map{"error": fiber.Map{
					"code":    domainErr.Code,
					"message": domainErr.Message,
				}}
				if len(domainErr.Details) > 0 {
					response["error"].(fiber.Map)["details"] = domainErr.Details
				}
				if domainErr.HTTPStatus >= 500 {
					logger.Error("request failed", zap.Error(domainErr))
				}
				c.Status(domainErr.HTTPStatus)
				_ = c.JSON(response)
				err = nil
			}
		}()
		return c.Next()
	}
}

func requestLogger(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		logger.Info("request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("duration", time.Since(start)))
		return err
	}
}
