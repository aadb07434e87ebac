package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/ryakubu/auto-categorize-app/internal/aggregator"
	"github.com/ryakubu/auto-categorize-app/internal/history"
	"github.com/ryakubu/auto-categorize-app/internal/models"
	"github.com/ryakubu/auto-categorize-app/internal/pagination"
	"github.com/ryakubu/auto-categorize-app/internal/services"
	"github.com/ryakubu/auto-categorize-app/internal/validator"
)

const (
	testUserID    = "0190a3c4-6f1e-7a2b-9c3d-4e5f60718293"
	testExpenseID = "0190a3c4-6f1e-7a2b-9c3d-4e5f60718294"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

// --- mock expense service ---

type mockExpenseService struct {
	createExpenseFn   func(userID string, in services.ExpenseInput) (*models.Expense, error)
	getExpenseByIDFn  func(userID, expenseID string) (*models.Expense, error)
	updateExpenseFn   func(userID, expenseID string, in services.ExpenseInput) (*models.Expense, error)
	deleteExpenseFn   func(userID, expenseID string) error
	listExpensesFn    func(userID string, page pagination.PageRequest, filter history.Filter) (*services.ExpensePage, error)
	listAllExpensesFn func(userID string, filter history.Filter) ([]models.Expense, error)
	getSummaryFn      func(userID string, filter history.Filter) (*aggregator.Report, error)
	importExpensesFn  func(userID string, expenses []models.Expense) (int, error)
}

func (m *mockExpenseService) CreateExpense(userID string, in services.ExpenseInput) (*models.Expense, error) {
	if m.createExpenseFn != nil {
		return m.createExpenseFn(userID, in)
	}
	return &models.Expense{}, nil
}

func (m *mockExpenseService) GetExpenseByID(userID, expenseID string) (*models.Expense, error) {
	if m.getExpenseByIDFn != nil {
		return m.getExpenseByIDFn(userID, expenseID)
	}
	return &models.Expense{}, nil
}

func (m *mockExpenseService) UpdateExpense(userID, expenseID string, in services.ExpenseInput) (*models.Expense, error) {
	if m.updateExpenseFn != nil {
		return m.updateExpenseFn(userID, expenseID, in)
	}
	return &models.Expense{}, nil
}

func (m *mockExpenseService) DeleteExpense(userID, expenseID string) error {
	if m.deleteExpenseFn != nil {
		return m.deleteExpenseFn(userID, expenseID)
	}
	return nil
}

func (m *mockExpenseService) ListExpenses(userID string, page pagination.PageRequest, filter history.Filter) (*services.ExpensePage, error) {
	if m.listExpensesFn != nil {
		return m.listExpensesFn(userID, page, filter)
	}
	return &services.ExpensePage{PageResponse: pagination.NewPageResponse([]models.Expense{}, 1, 50, 0)}, nil
}

func (m *mockExpenseService) ListAllExpenses(userID string, filter history.Filter) ([]models.Expense, error) {
	if m.listAllExpensesFn != nil {
		return m.listAllExpensesFn(userID, filter)
	}
	return []models.Expense{}, nil
}

func (m *mockExpenseService) GetSummary(userID string, filter history.Filter) (*aggregator.Report, error) {
	if m.getSummaryFn != nil {
		return m.getSummaryFn(userID, filter)
	}
	r := aggregator.Build(nil)
	return &r, nil
}

func (m *mockExpenseService) ImportExpenses(userID string, expenses []models.Expense) (int, error) {
	if m.importExpensesFn != nil {
		return m.importExpensesFn(userID, expenses)
	}
	return len(expenses), nil
}

var _ services.ExpenseServicer = (*mockExpenseService)(nil)

// --- mock audit service ---

type auditEntry struct {
	UserID, Action, ResourceID string
}

type mockAuditService struct {
	entries []auditEntry
}

func (m *mockAuditService) Log(userID, action, _, resourceID, _ string, _ map[string]interface{}) {
	m.entries = append(m.entries, auditEntry{UserID: userID, Action: action, ResourceID: resourceID})
}

var _ services.AuditServicer = (*mockAuditService)(nil)

// --- helpers ---

func injectUserID(uid string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", uid)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func doRawRequest(r *gin.Engine, method, path, contentType string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}

func bodyOf(s string) io.Reader {
	return bytes.NewBufferString(s)
}
