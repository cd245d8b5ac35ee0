package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/rfaria/vendaszap-backend/database"
	"github.com/rfaria/vendaszap-backend/internal/auth"
	"github.com/rfaria/vendaszap-backend/internal/handlers"
	"github.com/rfaria/vendaszap-backend/internal/jobs"
	"github.com/rfaria/vendaszap-backend/internal/models"
	"github.com/rfaria/vendaszap-backend/internal/routes"
	"github.com/rfaria/vendaszap-backend/internal/services"
	"github.com/rfaria/vendaszap-backend/internal/storage"
	"github.com/rfaria/vendaszap-backend/internal/ws"
)

func main() {
	// Load .env file for local development
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found - using environment variables")
	}

	environment := os.Getenv("ENVIRONMENT")
	if environment == "" {
		environment = "development"
	}

	// Refuse to run production with the built-in dev JWT secret
	if environment == "production" && !auth.SecretConfigured() {
		log.Fatal("JWT_SECRET must be set in production")
	}

	// Initialize storage
	var store storage.Store
	if os.Getenv("USE_MEMORY_STORE") == "true" {
		log.Println("Using in-memory storage (not for production!)")
		store = storage.NewMemoryStore()
	} else {
		log.Println("Connecting to PostgreSQL database...")
		if err := database.Connect(); err != nil {
			log.Fatal("Failed to connect to database: ", err)
		}

		if err := database.DB.AutoMigrate(
			&models.User{},
			&models.AuthorizedNumber{},
			&models.Message{},
			&models.Settings{},
		); err != nil {
			log.Fatal("Failed to migrate database: ", err)
		}
		log.Println("Database migrations completed")

		store = storage.NewDatabaseStore(database.DB)
	}

	// Twilio is optional in development: inbound messages still get
	// logged, replies just aren't delivered.
	twilioService, err := services.NewTwilioService()
	if err != nil {
		if environment == "production" {
			log.Fatal("Failed to initialize Twilio service: ", err)
		}
		log.Printf("Twilio service not initialized: %v", err)
		twilioService = nil
	}

	// Core services
	erpService := services.NewERPService(store)
	sessions := services.NewSessionStore()
	bot := services.NewBotService(sessions, erpService)
	hub := ws.NewHub()

	// Daily sales digest (disabled unless DAILY_SUMMARY_HOUR is set)
	var sender handlers.MessageSender
	if twilioService != nil {
		sender = twilioService
	}
	summaryJob := jobs.NewSummaryJob(store, erpService, sender)
	summaryJob.Start()

	app := fiber.New(fiber.Config{
		AppName: "VendasZap Backend v1.0.0",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	routes.SetupRoutes(app, store, bot, sessions, twilioService, hub)

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Println("Shutting down...")
		summaryJob.Stop()
		if err := app.Shutdown(); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting server on port %s (%s)", port, environment)
	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Server failed: ", err)
	}
}
