package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"walk-tracker-system/handlers"
	"walk-tracker-system/middleware"
	"walk-tracker-system/models"
	"walk-tracker-system/services"
	"walk-tracker-system/workers"

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

	app := fiber.New(fiber.Config{
		BodyLimit: 1 * 1024 * 1024, // 1MB — JSON-only API
	})

	// 🔐 GLOBAL: Only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	// Load allowed origins from environment variable
	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-Service-Token, X-User-ID, X-User-Roles",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
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
		&models.WalkerUser{},
		&models.UserStats{},
		&models.Walk{},
		&models.AchievementDefinition{},
		&models.UserAchievement{},
		&models.GroupEvent{},
		&models.EventParticipation{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	statsService := services.NewStatsService(db)
	achievementService := services.NewAchievementService(db)
	eventService := services.NewEventService(db, achievementService)

	if err := achievementService.SeedCatalog(); err != nil {
		log.Fatal("failed to seed achievement catalog:", err)
	}

	// --- CONFIGURE external collaborators ---
	syncServiceURL := os.Getenv("SYNC_SERVICE_URL")
	if syncServiceURL == "" {
		log.Fatal("SYNC_SERVICE_URL environment variable not set")
	}
	communityServiceURL := os.Getenv("COMMUNITY_SERVICE_URL")
	if communityServiceURL == "" {
		log.Fatal("COMMUNITY_SERVICE_URL environment variable not set")
	}
	walkServiceToken := os.Getenv("WALK_SERVICE_TOKEN")
	if walkServiceToken == "" {
		log.Fatal("WALK_SERVICE_TOKEN environment variable not set")
	}
	// --- END CONFIG ---

	syncWorker := workers.NewWalkerUserSyncWorker(db, achievementService, syncServiceURL, "/api/v1/public/profiles", walkServiceToken)

	checkInClient := workers.NewCheckInSyncClient(communityServiceURL, walkServiceToken, achievementService)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go workers.PollCheckIns(ctx, checkInClient, 30*time.Second)

	go func() {
		log.Println("Starting Walker User Sync Worker...")
		syncWorker.Start(ctx)
	}()

	eventService.StartEventScheduler()

	// ✅ Setup routes — enforced Gateway auth, user context where required
	handlers.SetupWalkRoutes(app, statsService, achievementService)
	handlers.SetupAchievementRoutes(app, achievementService)
	handlers.SetupEventRoutes(app, eventService)

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ Walker User Sync Worker running")
	log.Println("✅ Check-in polling running (every 30s)")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
