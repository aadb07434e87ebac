package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/sync/errgroup"

	"github.com/ryakubu/auto-categorize-app/internal/categorizer"
	"github.com/ryakubu/auto-categorize-app/internal/config"
	"github.com/ryakubu/auto-categorize-app/internal/database"
	"github.com/ryakubu/auto-categorize-app/internal/events"
	"github.com/ryakubu/auto-categorize-app/internal/handlers"
	"github.com/ryakubu/auto-categorize-app/internal/logger"
	"github.com/ryakubu/auto-categorize-app/internal/middleware"
	"github.com/ryakubu/auto-categorize-app/internal/services"
	"github.com/ryakubu/auto-categorize-app/internal/validator"

	_ "github.com/ryakubu/auto-categorize-app/internal/docs" // Import swagger docs
)

// @title           Expense Tracker API
// @version         1.0
// @description     Track expenses, get category suggestions as you type, and export reports.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
// @description Pipeline API key.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if appConfig.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	validator.Register()

	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("database close error: %v", err)
		}
	}()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	rules, err := categorizer.LoadOrDefault(appConfig.CategoryRulesFile)
	if err != nil {
		return fmt.Errorf("failed to load category rules: %w", err)
	}

	publisher, err := newPublisher(appConfig)
	if err != nil {
		return err
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warnf("event publisher close error: %v", err)
		}
	}()

	// Initialize services
	db := dbManager.DB()
	expenseService := services.NewExpenseService(db, rules, publisher)
	suggestionService := services.NewSuggestionService(rules, appConfig.SuggestionHintTTL)
	auditService := services.NewAuditService(db)

	// Initialize handlers
	expenseHandler := handlers.NewExpenseHandler(expenseService, auditService)
	reportHandler := handlers.NewReportHandler(expenseService, auditService)
	suggestionHandler := handlers.NewSuggestionHandler(suggestionService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	if len(appConfig.CORSAllowOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     appConfig.CORSAllowOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
			ExposeHeaders:    []string{"Content-Disposition", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Public routes
	v1.GET("/categories", suggestionHandler.ListCategories)

	// Pipeline routes
	pipeline := v1.Group("/pipeline")
	pipeline.Use(middleware.PipelineAuthMiddleware(appConfig.PipelineAPIKeyHash))
	pipeline.POST("/suggestions", suggestionHandler.SuggestBatch)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.POST("/suggestions", suggestionHandler.Suggest)

	expenses := protected.Group("/expenses")
	expenses.POST("", expenseHandler.CreateExpense)
	expenses.GET("", expenseHandler.ListExpenses)
	expenses.GET("/summary", reportHandler.GetSummary)
	expenses.GET("/export.csv", reportHandler.ExportCSV)
	expenses.GET("/export.xlsx", reportHandler.ExportXLSX)
	expenses.POST("/import", reportHandler.ImportCSV)
	expenses.GET("/:id", expenseHandler.GetExpense)
	expenses.PUT("/:id", expenseHandler.UpdateExpense)
	expenses.DELETE("/:id", expenseHandler.DeleteExpense)

	srv := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infof("Starting expense tracker server on port %s", appConfig.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), appConfig.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// newPublisher connects to the broker when one is configured.
func newPublisher(cfg *config.Config) (events.Publisher, error) {
	if cfg.AMQPURL == "" {
		logger.Get().Info("AMQP_URL not set, expense events are disabled")
		return events.NopPublisher{}, nil
	}
	p, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		return nil, fmt.Errorf("failed to connect event publisher: %w", err)
	}
	return p, nil
}
