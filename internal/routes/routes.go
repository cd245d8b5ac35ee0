package routes

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/rfaria/vendaszap-backend/internal/handlers"
	"github.com/rfaria/vendaszap-backend/internal/middleware"
	"github.com/rfaria/vendaszap-backend/internal/services"
	"github.com/rfaria/vendaszap-backend/internal/storage"
	"github.com/rfaria/vendaszap-backend/internal/ws"
)

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, store storage.Store, bot *services.BotService, sessions *services.SessionStore, twilioService *services.TwilioService, hub *ws.Hub) {
	authHandler := handlers.NewAuthHandler(store)
	numberHandler := handlers.NewNumberHandler(store)
	messageHandler := handlers.NewMessageHandler(store)
	settingsHandler := handlers.NewSettingsHandler(store)

	var sender handlers.MessageSender
	if twilioService != nil {
		sender = twilioService
	}
	whatsappHandler := handlers.NewWhatsAppHandler(store, bot, sender, hub)

	// Root endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "VendasZap Backend",
			"version": "1.0.0",
			"endpoints": fiber.Map{
				"health":  "/health",
				"api":     "/api",
				"webhook": "/webhook/whatsapp",
				"ws":      "/ws",
			},
		})
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":            "healthy",
			"version":           "1.0.0",
			"active_sessions":   sessions.Count(),
			"dashboard_clients": hub.ClientCount(),
		})
	})

	// Public auth routes
	api := app.Group("/api")
	api.Post("/auth/register", authHandler.Register)
	api.Post("/auth/login", authHandler.Login)

	// Protected dashboard routes
	protected := api.Use(middleware.Protected())
	protected.Get("/auth/me", authHandler.Me)
	protected.Get("/authorized-numbers", numberHandler.List)
	protected.Post("/authorized-numbers", numberHandler.Create)
	protected.Delete("/authorized-numbers/:id", numberHandler.Delete)
	protected.Get("/messages", messageHandler.List)
	protected.Get("/settings", settingsHandler.Get)
	protected.Post("/settings", settingsHandler.Upsert)

	// WhatsApp webhook, signature-validated outside development
	webhooks := app.Group("/webhook")
	if os.Getenv("ENVIRONMENT") == "development" || os.Getenv("DISABLE_WEBHOOK_VALIDATION") == "true" {
		webhooks.Post("/whatsapp", whatsappHandler.HandleWebhook)
	} else {
		webhooks.Post("/whatsapp", middleware.ValidateTwilioSignature(), whatsappHandler.HandleWebhook)
	}

	// Test endpoint (development only)
	if os.Getenv("ENVIRONMENT") == "development" {
		app.Post("/test/whatsapp", whatsappHandler.HandleTestWebhook)
	}

	// Dashboard notification socket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(hub.Handler()))
}
