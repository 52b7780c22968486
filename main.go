package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"survivor-picks-system/handlers"
	"survivor-picks-system/models"
	"survivor-picks-system/services"
	"survivor-picks-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{})

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(allowedOriginsList, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-Service-Token",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Competition{},
		&models.Team{},
		&models.Entry{},
		&models.Round{},
		&models.Fixture{},
		&models.Pick{},
		&models.UsedTeam{},
		&models.AuditEvent{},
	); err != nil {
		log.Fatal("failed to run migrations:", err)
	}

	// Services
	eligibilityService := services.NewEligibilityService(db)
	pickService := services.NewPickService(db, eligibilityService)
	resultService := services.NewResultService(db)

	// Routes
	handlers.SetupPickRoutes(app, pickService, eligibilityService)
	handlers.SetupResultRoutes(app, resultService)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Background work: round sweep + external results feed
	resultService.StartRoundScheduler()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	feedURL := os.Getenv("RESULTS_FEED_URL")
	if feedURL != "" {
		worker := workers.NewResultsFeedWorker(
			db,
			resultService,
			feedURL,
			getEnvOrDefault("RESULTS_FEED_PATH", "/api/v1/results"),
			os.Getenv("RESULTS_FEED_TOKEN"),
		)
		worker.Start(ctx)
	} else {
		log.Println("⚠️  RESULTS_FEED_URL not set — results must be submitted through the admin routes")
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("⏹️  Shutting down…")
		cancel()
		_ = app.Shutdown()
	}()

	port := getEnvOrDefault("PORT", "8080")
	log.Printf("🚀 Survivor picks service listening on :%s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatal(err)
	}
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
