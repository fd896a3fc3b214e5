package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/issue-tracker/internal/api/http/handlers"
	"github.com/spec-kit/issue-tracker/internal/auth"
	"github.com/spec-kit/issue-tracker/internal/observability"
)

// NewApp creates the fiber application with the error handler and global
// middlewares installed.
func NewApp(appName string, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               appName,
		DisableStartupMessage: true,
		ErrorHandler:          NewErrorHandler(logger),
	})
	RegisterMiddlewares(app, logger, metrics, timeout)
	return app
}

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	BasePath       string
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	Comments       *handlers.CommentsHandler
	GraphQL        fiber.Handler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Everything except health, metrics,
// register and login sits behind the bearer guard.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	root := app.Group(cfg.BasePath)

	root.Get("/health/live", cfg.Health.Live)
	root.Get("/health/ready", cfg.Health.Ready)
	root.Get("/metrics", cfg.Health.Metrics)

	authGroup := root.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Users.Me)

	tickets := root.Group("/tickets", cfg.AuthMiddleware.Handle)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Put("/:id", cfg.Tickets.UpdateTicket)
	tickets.Delete("/:id", cfg.Tickets.DeleteTicket)
	tickets.Get("/:ticketId/comments", cfg.Comments.ListComments)
	tickets.Post("/:ticketId/comments", cfg.Comments.CreateComment)

	root.Delete("/comments/:commentId", cfg.AuthMiddleware.Handle, cfg.Comments.DeleteComment)

	if cfg.GraphQL != nil {
		root.Post("/graphql", cfg.AuthMiddleware.Handle, cfg.GraphQL)
	}
}
