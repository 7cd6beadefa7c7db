package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jmartinez/canje/docs" // swagger docs

	"github.com/jmartinez/canje/internal/config"
	"github.com/jmartinez/canje/internal/platform/auth"
	"github.com/jmartinez/canje/internal/platform/browser"
	"github.com/jmartinez/canje/internal/platform/docgen"
	httpPlatform "github.com/jmartinez/canje/internal/platform/http"
	"github.com/jmartinez/canje/internal/platform/llm"
	"github.com/jmartinez/canje/internal/platform/logger"
	"github.com/jmartinez/canje/internal/platform/mailer"
	"github.com/jmartinez/canje/internal/platform/postgres"
	"github.com/jmartinez/canje/internal/platform/redis"
	"github.com/jmartinez/canje/internal/platform/storage"

	_ "github.com/jmartinez/canje/modules/adapters/careerpage"
	_ "github.com/jmartinez/canje/modules/adapters/greenhouse"

	catalogueRepo "github.com/jmartinez/canje/modules/catalogue/repository"
	catalogueService "github.com/jmartinez/canje/modules/catalogue/service"

	companyRepo "github.com/jmartinez/canje/modules/companies/repository"

	settingsRepo "github.com/jmartinez/canje/modules/settings/repository"
	settingsService "github.com/jmartinez/canje/modules/settings/service"

	sourceRunRepo "github.com/jmartinez/canje/modules/sourceruns/repository"
	sourceRunService "github.com/jmartinez/canje/modules/sourceruns/service"

	postingRepo "github.com/jmartinez/canje/modules/postings/repository"

	appRepo "github.com/jmartinez/canje/modules/applications/repository"
	appService "github.com/jmartinez/canje/modules/applications/service"

	authHandler "github.com/jmartinez/canje/modules/auth/handler"
	authRepo "github.com/jmartinez/canje/modules/auth/repository"
	authService "github.com/jmartinez/canje/modules/auth/service"

	docCanonical "github.com/jmartinez/canje/modules/documents/repository"
	docService "github.com/jmartinez/canje/modules/documents/service"

	"github.com/jmartinez/canje/modules/eventbus"
	"github.com/jmartinez/canje/modules/humanloop"
	operatorHandler "github.com/jmartinez/canje/modules/operator/handler"
	"github.com/jmartinez/canje/modules/pipeline"
	"github.com/jmartinez/canje/modules/scheduler"
	scraperService "github.com/jmartinez/canje/modules/scraper/service"

	sentryPlatform "github.com/jmartinez/canje/internal/platform/sentry"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	anthropicOption "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title Canje Pipeline API
// @version 1.0
// @description Thin operator console for the autonomous job-application pipeline: authorize/deny pending reviews, watch the event stream. Not a product UI.
// @termsOfService http://swagger.io/terms/

// @contact.name Pipeline Operator
// @contact.email operator@canje.example.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log2, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer log2.Sync()

	log2.Info("Starting pipeline API server",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
	)

	if err := sentryPlatform.Init(cfg.Sentry.DSN, cfg.Sentry.Environment); err != nil {
		log2.Warn("sentry init failed", zap.Error(err))
	} else if cfg.Sentry.DSN != "" {
		defer sentryPlatform.Flush(2 * time.Second)
	}

	ctx := context.Background()

	pgClient, err := postgres.New(ctx, cfg.Database)
	if err != nil {
		log2.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer pgClient.Close()
	log2.Info("Connected to PostgreSQL")

	migrationsPath := "./migrations"
	if err := postgres.RunMigrations(ctx, cfg.Database, log2, migrationsPath); err != nil {
		log2.Fatal("Failed to run database migrations",
			zap.Error(err),
			zap.String("migrations_path", migrationsPath),
		)
	}

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		log2.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	log2.Info("Connected to Redis")

	var s3Client *storage.S3Client
	if cfg.S3.Endpoint != "" && cfg.S3.Bucket != "" {
		s3Client, err = storage.NewS3Client(cfg.S3)
		if err != nil {
			log2.Warn("Failed to initialize S3 client, artifacts stay local", zap.Error(err))
		} else {
			log2.Info("S3 client initialized", zap.String("bucket", cfg.S3.Bucket))
		}
	} else {
		log2.Info("S3 configuration not provided, artifacts stay on the local filesystem")
	}
	_ = s3Client // the client is not passed on; artifacts stay on the local filesystem

	// --- repositories ---
	postingRepository := postingRepo.NewPostingRepository(pgClient.Pool)
	applicationRepository := appRepo.NewApplicationRepository(pgClient.Pool)
	sourceRunRepository := sourceRunRepo.NewSourceRunRepository(pgClient.Pool)
	catalogueRepository := catalogueRepo.NewCatalogueRepository(pgClient.Pool)
	settingsRepository := settingsRepo.NewSettingsRepository(pgClient.Pool)
	blocklistRepository := companyRepo.NewBlocklistRepository(pgClient.Pool)
	rateLimitRepository := companyRepo.NewRateLimitRepository(pgClient.Pool)

	// --- services ---
	settingsSvc := settingsService.NewSettingsService(settingsRepository)
	catalogueSvc := catalogueService.NewCatalogueService(catalogueRepository)
	sourceRunSvc := sourceRunService.NewSourceRunService(sourceRunRepository)
	applicationSvc := appService.NewApplicationService(applicationRepository, postingRepository, blocklistRepository, rateLimitRepository)

	canonicalCVStore := docCanonical.NewCanonicalCVStore(settingsRepository)

	anthropicClient := anthropic.NewClient(anthropicOption.WithAPIKey(cfg.LLM.APIKey))
	llmClient := llm.New(anthropicClient)
	docRenderer := docService.NewDocgenRenderer(docgen.New())
	fabricationDetector := docService.NewLLMFabricationDetector(llmClient, cfg.LLM.Model)
	languageDetector := docService.NewHeuristicLanguageDetector()
	coverLetterGenerator := docService.NewLLMCoverLetterGenerator(llmClient, cfg.LLM.Model, cfg.LLM.CVRewriteTemperature)

	documentDriver := docService.NewDriver(
		applicationRepository,
		postingRepository,
		canonicalCVStore,
		llmClient,
		docRenderer,
		fabricationDetector,
		languageDetector,
		coverLetterGenerator,
		log2.Logger,
		cfg.LLM.CVRewriteTemperature,
		cfg.LLM.CVSummaryTemperature,
		cfg.LLM.QualityScoreMinimum,
		cfg.Pipeline.ArtifactsDir,
	)
	profileStore := docCanonical.NewProfileStore(settingsRepository)

	// --- scraper runtime + scheduler ---
	runtime := scraperService.NewRuntime(
		postingRepository,
		sourceRunSvc,
		cfg.Pipeline.ScraperDefaultDelayMin,
		cfg.Pipeline.ScraperDefaultDelayMax,
		log2.Logger,
	)
	lock := redis.NewLock(redisClient)
	sched := scheduler.New(catalogueSvc, settingsSvc, runtime, lock, log2.Logger)
	if err := sched.Start(ctx); err != nil {
		log2.Fatal("Failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()
	log2.Info("Scraper scheduler started")

	// --- human-loop controller ---
	mailerClient := mailer.New(cfg.Mailer.APIKey, cfg.Mailer.FromAddress, cfg.Mailer.OperatorEmail)
	bus := eventbus.New()
	snapshots := humanloop.NewSnapshotStore(cfg.Pipeline.ArtifactsDir)

	var browserLauncher humanloop.BrowserLauncher
	realBrowser, err := browser.Launch(cfg.Server.Env == "production")
	if err != nil {
		log2.Warn("Failed to launch browser backend, human-loop submit task is disabled", zap.Error(err))
	} else {
		defer realBrowser.Close()
		browserLauncher = realBrowser
	}

	loop := humanloop.New(
		applicationSvc,
		snapshots,
		browserLauncher,
		bus,
		mailerClient,
		cfg.Pipeline.HumanReviewWarnMinutes,
		cfg.Pipeline.HumanReviewTimeoutMinutes,
		cfg.Pipeline.SubmitConfirmTimeoutSeconds,
		log2.Logger,
	)

	// --- JWT / gin wiring ---
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Sentry.DSN != "" {
		router.Use(sentryPlatform.Middleware())
	}
	router.Use(httpPlatform.RequestIDMiddleware())
	router.Use(httpPlatform.LoggerMiddleware(log2))
	router.Use(httpPlatform.CORSMiddleware())

	if cfg.Server.Env != "production" {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
		log2.Info("Swagger UI available at /swagger/index.html")
	}

	router.GET("/health", healthCheckHandler(ctx, pgClient, redisClient))
	router.GET("/ping", pingHandler)

	jwtManager := auth.NewJWTManager(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)
	authMiddleware := auth.AuthMiddleware(jwtManager)

	refreshTokenRepository := authRepo.NewRefreshTokenRepository(pgClient.Pool)
	authSvc := authService.NewAuthService(refreshTokenRepository, jwtManager, cfg.Operator.PasswordHash, cfg.JWT.AccessExpiry, cfg.JWT.RefreshExpiry)
	authHdl := authHandler.NewAuthHandler(authSvc)

	pipe := pipeline.New(applicationSvc, postingRepository, documentDriver, profileStore, browserLauncher, loop, cfg.Pipeline.ArtifactsDir, log2.Logger)
	pollCtx, cancelPoll := context.WithCancel(context.Background())
	defer cancelPoll()
	go pipe.Tick(pollCtx, time.Minute, 10)

	operatorHdl := operatorHandler.NewOperatorHandler(applicationSvc, loop, pipe, bus)

	v1 := router.Group("/api/v1")
	{
		authHdl.RegisterRoutes(v1, authMiddleware)
		operatorHdl.RegisterRoutes(v1, authMiddleware)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log2.Info("Server listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log2.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log2.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log2.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log2.Info("Server exited")
}

// healthCheckHandler godoc
// @Summary Health Check
// @Description Check the health status of the application and its dependencies
// @Tags system
// @Produce json
// @Success 200 {object} http.HealthResponse
// @Router /health [get]
func healthCheckHandler(ctx context.Context, pgClient *postgres.Client, redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		services := make(map[string]string)

		if err := pgClient.Health(ctx); err != nil {
			services["postgres"] = "down"
		} else {
			services["postgres"] = "up"
		}

		if err := redisClient.Health(ctx); err != nil {
			services["redis"] = "down"
		} else {
			services["redis"] = "up"
		}

		httpPlatform.RespondWithHealth(c, services)
	}
}

// pingHandler godoc
// @Summary Ping
// @Description Simple ping endpoint to check if the API is responding
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string
// @Router /ping [get]
func pingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}
