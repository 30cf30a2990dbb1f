package main

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/recruvia/cv-insight/internal/config"
	"github.com/recruvia/cv-insight/internal/domain/fiber/handler"
	"github.com/recruvia/cv-insight/internal/index"
	applogger "github.com/recruvia/cv-insight/internal/logger"
	"github.com/recruvia/cv-insight/internal/middleware"
	"github.com/recruvia/cv-insight/internal/model"
	"github.com/recruvia/cv-insight/internal/rag"
	"github.com/recruvia/cv-insight/internal/repository"
	"github.com/recruvia/cv-insight/internal/service"
	"github.com/recruvia/cv-insight/internal/usecase"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Dimensionality of gemini-embedding-001 vectors.
const embeddingDims = 3072

func main() {
	ctx := context.Background()
	if err := godotenv.Load(); err != nil {
		fmt.Println("Could not load .env file")
	}

	appConfig := config.LoadAppConfig()
	log, err := applogger.New(appConfig.Env == "production", appConfig.Env != "production")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	app := fiber.New(fiber.Config{
		AppName: appConfig.Name,
		ErrorHandler: func(ctx *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			message := err.Error()
			if message == "" {
				message = "Internal Server Error"
			}
			return ctx.Status(code).JSON(fiber.Map{"error": message})
		},
	})
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))
	app.Use(recover.New(recover.Config{
		EnableStackTrace: appConfig.Env != "production",
	}))
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(pprof.New(pprof.Config{
		Next: func(c *fiber.Ctx) bool {
			return appConfig.Env == "production"
		},
	}))
	app.Use(healthcheck.New())
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(middleware.RateLimiter(50, 1*time.Minute))

	db := connectDB(log)

	gemini, err := service.NewGeminiService(ctx, log)
	if err != nil {
		log.Fatal("could not create Gemini client", zap.Error(err))
	}

	store, err := buildStore(ctx, db, gemini, log)
	if err != nil {
		log.Fatal("could not initialize embedding index", zap.Error(err))
	}

	cvRepo := repository.NewCVRepository(db)
	positionRepo := repository.NewPositionRepository(db)
	conversationRepo := repository.NewConversationRepository(db)

	// Summarization and scoring can run on OpenRouter; the agent's
	// function-calling loop is genai-typed and stays on Gemini.
	var generator rag.JSONGenerator = gemini
	if appConfig.LLMProvider == "openrouter" {
		generator = service.NewOpenRouterService(log)
		log.Info("using OpenRouter for summarization and scoring",
			zap.String("model", config.LoadOpenRouterConfig().Model))
	}

	summarizer := rag.NewSummarizer(generator, log)
	scorer := rag.NewScorer(generator, log)
	toolset := rag.NewToolset(store, cvRepo, log)
	agent := rag.NewAgent(gemini, toolset, log)

	ingestionUC := usecase.NewIngestionUsecase(cvRepo, store, summarizer, log)
	chatUC := usecase.NewChatUsecase(conversationRepo, agent, log)
	matchUC := usecase.NewMatchUsecase(cvRepo, positionRepo, scorer, log)

	handler.NewCVHandler(cvRepo, ingestionUC, log).RegisterRoutes(app)
	handler.NewChatHandler(chatUC).RegisterRoutes(app)
	handler.NewPositionHandler(positionRepo, matchUC).RegisterRoutes(app)

	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			log.Debug("goroutine count", zap.Int("n", runtime.NumGoroutine()))
		}
	}()

	log.Info("server starting", zap.String("port", appConfig.Port))
	if err := app.Listen(appConfig.Port); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func connectDB(log *zap.Logger) *gorm.DB {
	dbConfig := config.LoadDBConfig()
	appConfig := config.LoadAppConfig()

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		dbConfig.Host,
		dbConfig.User,
		dbConfig.Password,
		dbConfig.Name,
		dbConfig.Port,
		dbConfig.SSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("could not connect to database", zap.Error(err))
	}
	pgDB, err := db.DB()
	if err != nil {
		log.Fatal("could not get database instance", zap.Error(err))
	}
	if appConfig.Env != "production" {
		pgDB.SetMaxIdleConns(5)
		pgDB.SetMaxOpenConns(10)
		pgDB.SetConnMaxLifetime(30 * time.Minute)
	} else {
		pgDB.SetMaxIdleConns(20)
		pgDB.SetMaxOpenConns(200)
		pgDB.SetConnMaxLifetime(time.Hour)
	}

	err = db.AutoMigrate(
		&model.CV{},
		&model.CVSummary{},
		&model.Position{},
		&model.Application{},
		&model.Conversation{},
		&model.Message{},
	)
	if err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}
	return db
}

// buildStore selects the embedding index backend: pgvector shares the main
// database, qdrant runs against a separate server, memory is for local
// development without either.
func buildStore(ctx context.Context, db *gorm.DB, embed index.Embedder, log *zap.Logger) (index.Store, error) {
	indexConfig := config.LoadIndexConfig()
	switch indexConfig.Backend {
	case "qdrant":
		store, err := index.NewQdrantStore(indexConfig.QdrantAddr, indexConfig.Collection, embed)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureCollection(ctx, embeddingDims); err != nil {
			return nil, err
		}
		log.Info("using qdrant index", zap.String("addr", indexConfig.QdrantAddr))
		return store, nil
	case "memory":
		log.Warn("using in-memory index; documents are lost on restart")
		return index.NewMemoryStore(embed), nil
	default:
		store := index.NewPgStore(db, embed)
		if err := store.Migrate(); err != nil {
			return nil, err
		}
		log.Info("using pgvector index")
		return store, nil
	}
}
