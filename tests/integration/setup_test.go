package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ryakubu/auto-categorize-app/internal/categorizer"
	"github.com/ryakubu/auto-categorize-app/internal/config"
	"github.com/ryakubu/auto-categorize-app/internal/events"
	"github.com/ryakubu/auto-categorize-app/internal/handlers"
	"github.com/ryakubu/auto-categorize-app/internal/logger"
	"github.com/ryakubu/auto-categorize-app/internal/middleware"
	"github.com/ryakubu/auto-categorize-app/internal/models"
	"github.com/ryakubu/auto-categorize-app/internal/services"
	"github.com/ryakubu/auto-categorize-app/internal/validator"
)

const pipelineKey = "pipeline-test-key"

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB        *gorm.DB
	Router    *gin.Engine
	Publisher *recordingPublisher
}

// recordingPublisher keeps published events for assertions.
type recordingPublisher struct {
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(&models.Expense{}, &models.AuditLog{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	prev := config.Get()
	config.Set(&config.Config{JWTSecret: "integration-secret", JWTAudience: "authenticated"})
	t.Cleanup(func() { config.Set(prev) })

	hash, err := bcrypt.GenerateFromPassword([]byte(pipelineKey), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash pipeline key: %v", err)
	}

	db := setupIsolatedDB(t)
	rules := categorizer.New()
	publisher := &recordingPublisher{}

	// Services
	expenseService := services.NewExpenseService(db, rules, publisher)
	suggestionService := services.NewSuggestionService(rules, 2*time.Second)
	auditService := services.NewAuditService(db)

	// Handlers
	expenseHandler := handlers.NewExpenseHandler(expenseService, auditService)
	reportHandler := handlers.NewReportHandler(expenseService, auditService)
	suggestionHandler := handlers.NewSuggestionHandler(suggestionService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")
	v1.GET("/categories", suggestionHandler.ListCategories)

	pipeline := v1.Group("/pipeline")
	pipeline.Use(middleware.PipelineAuthMiddleware(string(hash)))
	pipeline.POST("/suggestions", suggestionHandler.SuggestBatch)

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

	return &testApp{DB: db, Router: router, Publisher: publisher}
}

// newUser returns a fresh user ID and a valid access token for it.
func newUser(t *testing.T) (userID, token string) {
	t.Helper()
	userID = uuid.NewString()
	token, err := middleware.GenerateAccessToken(userID, "user@example.com", time.Hour)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return userID, token
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	return app.rawRequest(method, path, "application/json", strings.NewReader(body), token)
}

func (app *testApp) rawRequest(method, path, contentType string, body io.Reader, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", contentType)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// createExpense posts an expense and returns the stored JSON object.
func (app *testApp) createExpense(t *testing.T, token, body string) map[string]interface{} {
	t.Helper()
	rec := app.request("POST", "/api/v1/expenses", body, token)
	if rec.Code != 201 {
		t.Fatalf("create expense failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["expense"].(map[string]interface{})
}

// pipelineRequest posts to the batch suggestion endpoint with an API key.
func (app *testApp) pipelineRequest(body, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/api/v1/pipeline/suggestions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", key)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}
