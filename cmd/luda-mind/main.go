package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/ludapartners/luda-mind/internal/core/audit"
	"github.com/ludapartners/luda-mind/internal/core/executor"
	"github.com/ludapartners/luda-mind/internal/core/intent"
	"github.com/ludapartners/luda-mind/internal/core/llm"
	"github.com/ludapartners/luda-mind/internal/core/partner"
	"github.com/ludapartners/luda-mind/internal/core/resolver"
	"github.com/ludapartners/luda-mind/internal/core/semantics"
	"github.com/ludapartners/luda-mind/internal/core/synthesizer"
	"github.com/ludapartners/luda-mind/internal/core/templates"
	"github.com/ludapartners/luda-mind/internal/modules/mind/handlers"
	"github.com/ludapartners/luda-mind/internal/modules/mind/services"
	"github.com/ludapartners/luda-mind/internal/shared/config"
	"github.com/ludapartners/luda-mind/internal/shared/database"
	"github.com/ludapartners/luda-mind/internal/shared/logger"
)

func main() {
	// Load config
	cfg := config.LoadConfig()
	logger.Init()
	log.Printf("🚀 Starting luda-mind on port %s", cfg.Port)

	// Init databases
	mysqlDB, err := database.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to MySQL: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	mongoDB, err := database.NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	// Load static registries (embedded, fail fast on bad data)
	partners, err := partner.Default()
	if err != nil {
		log.Fatalf("Failed to load partner registry: %v", err)
	}
	dictionary, err := semantics.Default()
	if err != nil {
		log.Fatalf("Failed to load field dictionary: %v", err)
	}

	// Init data-access boundaries
	mongoExec := executor.NewMongoExecutor(mongoDB)
	mysqlExec := executor.NewMySQLExecutor(mysqlDB)
	bookingStore := executor.NewMongoBookingStore(mongoDB)
	productCatalog := executor.NewGormProductCatalog(mysqlDB)

	// Init interpretation pipeline
	entityResolver := resolver.NewResolver(partners, productCatalog, bookingStore)
	classifier := intent.NewClassifier(entityResolver)
	engine := templates.NewEngine(entityResolver)

	// Init LLM service (multi-provider support)
	llmService := llm.NewService()
	log.Printf("🤖 Using LLM provider: %s", llmService.GetProviderName())
	synth := synthesizer.New(llmService, dictionary, cfg.LLMTimeout)

	// Init audit log
	auditService, err := audit.NewService(mysqlDB)
	if err != nil {
		log.Fatalf("Failed to initialize audit service: %v", err)
	}

	// Init services
	askService := services.NewAskService(classifier, engine, synth, mongoExec, mysqlExec, auditService, cfg.MongoDatabase)

	// Init handlers
	askHandler := handlers.NewAskHandler(askService, auditService)
	healthHandler := handlers.NewHealthHandler(llmService)

	// Init Fiber app
	app := fiber.New(fiber.Config{
		AppName: "Luda Mind API",
	})

	// Middleware
	app.Use(cors.New())

	// Health check
	app.Get("/health", healthHandler.GetHealth)

	// Mind routes
	app.Post("/mind/ask", askHandler.Ask)
	app.Get("/mind/logs", askHandler.RecentLogs)

	log.Printf("✅ luda-mind running at :%s", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}
