package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"trustmarket/lead-scoring/internal/config"
	"trustmarket/lead-scoring/internal/handlers"
	"trustmarket/lead-scoring/internal/repositories"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	// Initialize repositories
	rfqRepo := repositories.NewRFQRepository(db)
	scoreRepo := repositories.NewLeadScoreRepository(db)
	log.Println("✅ Repositories initialized successfully")

	// Initialize handlers
	rfqHandler := handlers.NewRFQHandler(rfqRepo)
	statsHandler := handlers.NewStatsHandler(scoreRepo)
	log.Println("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "RFQ Lead Scoring API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Routes
	api := app.Group("/api")

	// Health check with a database ping so load balancers see storage outages
	api.Get("/health", func(c *fiber.Ctx) error {
		sqlDB, err := db.DB()
		if err == nil {
			ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
			defer cancel()
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unhealthy",
				"error":  err.Error(),
				"time":   time.Now(),
			})
		}
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	// API endpoints
	api.Get("/rfqs/scored", rfqHandler.HandleScoredList)
	api.Get("/rfqs/stats", statsHandler.HandleStats)
	api.Get("/rfqs/score-distribution", statsHandler.HandleDistribution)
	api.Get("/rfqs/:id", rfqHandler.HandleGetRFQ)
	api.Get("/rfqs/:id/score", rfqHandler.HandleGetScore)
	api.Post("/rfqs", rfqHandler.HandleCreate)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "RFQ Lead Scoring API",
			"version": cfg.Model.Version,
			"endpoints": []string{
				"GET /api/rfqs/scored",
				"GET /api/rfqs/stats",
				"GET /api/rfqs/score-distribution",
				"GET /api/rfqs/:id",
				"GET /api/rfqs/:id/score",
				"POST /api/rfqs",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}
