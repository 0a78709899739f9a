package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/qoldai/helpdesk/internal/auth"
	"github.com/qoldai/helpdesk/internal/config"
	"github.com/qoldai/helpdesk/internal/observability"
)

// RouterDependencies bundles everything the HTTP layer needs.
type RouterDependencies struct {
	Config    *config.Config
	Logger    *zap.Logger
	Metrics   *observability.Metrics
	Tokens    *auth.TokenIssuer
	Health    *HealthHandler
	Auth      *AuthHandler
	Tickets   *TicketsHandler
	Operator  *OperatorHandler
	Telephony *TelephonyHandler
	Mail      *MailHandler
}

// NewApp builds the Fiber application with all routes registered.
func NewApp(deps RouterDependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      deps.Config.App.Name,
		ErrorHandler: ErrorHandler(deps.Logger),
		ReadTimeout:  deps.Config.App.RequestTimeout(),
		WriteTimeout: deps.Config.App.RequestTimeout(),
	})

	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(RequestLogger(deps.Logger, deps.Metrics))

	app.Get("/health", deps.Health.Live)
	app.Get("/ready", deps.Health.Ready)
	app.Get("/metrics", deps.Health.Metrics)

	api := app.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", deps.Auth.Register)
	authGroup.Post("/login", deps.Auth.Login)

	authenticated := api.Group("", auth.Middleware(deps.Tokens))

	authenticated.Get("/departments", deps.Tickets.Departments)

	tickets := authenticated.Group("/tickets")
	tickets.Post("", deps.Tickets.Create)
	tickets.Get("", deps.Tickets.ListMine)
	tickets.Get("/:id", deps.Tickets.Get)
	tickets.Patch("/:id", deps.Tickets.Update)
	tickets.Get("/:id/messages", deps.Tickets.Messages)
	tickets.Post("/:id/messages", deps.Tickets.AddMessage)

	operator := authenticated.Group("/operator", auth.RequireStaff())
	operator.Get("/tickets", deps.Operator.List)
	operator.Post("/tickets/:id/assign", deps.Operator.Assign)
	operator.Post("/tickets/:id/suggest", deps.Operator.Suggest)
	operator.Post("/tickets/:id/summarize", deps.Operator.Summarize)
	operator.Get("/stats", deps.Operator.Stats)

	mail := authenticated.Group("/mail", auth.RequireStaff())
	mail.Post("/check", deps.Mail.Check)
	mail.Post("/simulate", deps.Mail.Simulate)

	telephony := api.Group("/telephony", deps.Telephony.Authenticate)
	telephony.Post("/event", deps.Telephony.Event)
	telephony.Post("/history", deps.Telephony.History)
	telephony.Post("/rating", deps.Telephony.Rating)
	telephony.Get("/contact", deps.Telephony.Contact)

	return app
}
