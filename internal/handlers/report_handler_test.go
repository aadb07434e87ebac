package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/ryakubu/auto-categorize-app/internal/aggregator"
	"github.com/ryakubu/auto-categorize-app/internal/history"
	"github.com/ryakubu/auto-categorize-app/internal/models"
)

func setupReportRouter(handler *ReportHandler) *gin.Engine {
	handler.now = func() time.Time { return time.Date(2024, 2, 1, 9, 30, 0, 0, time.UTC) }

	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.GET("/expenses/summary", handler.GetSummary)
	auth.GET("/expenses/export.csv", handler.ExportCSV)
	auth.GET("/expenses/export.xlsx", handler.ExportXLSX)
	auth.POST("/expenses/import", handler.ImportCSV)
	return r
}

func reportExpenses() []models.Expense {
	return []models.Expense{
		{Description: "coffee", Amount: decimal.RequireFromString("3.20"), Category: models.CategoryFood, Date: models.MustParseDate("2024-01-20")},
		{Description: "uber home", Amount: decimal.RequireFromString("18.00"), Category: models.CategoryTransport, Date: models.MustParseDate("2023-12-31")},
	}
}

func TestReportHandler_GetSummary(t *testing.T) {
	t.Run("returns the report", func(t *testing.T) {
		var gotFilter history.Filter
		svc := &mockExpenseService{
			getSummaryFn: func(_ string, filter history.Filter) (*aggregator.Report, error) {
				gotFilter = filter
				r := aggregator.Build(reportExpenses())
				return &r, nil
			},
		}
		r := setupReportRouter(NewReportHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/expenses/summary?category=Transport", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotFilter.Category != "Transport" {
			t.Errorf("expected Transport filter, got %+v", gotFilter)
		}
		result := parseJSON(t, rec)
		summary := result["summary"].(map[string]interface{})
		if summary["total_spent"] != "21.2" || summary["top_category"] != "Transport" {
			t.Errorf("unexpected summary %v", summary)
		}
		if len(result["months"].([]interface{})) != 2 {
			t.Errorf("expected 2 months, got %v", result["months"])
		}
	})

	t.Run("returns 400 on invalid range bound", func(t *testing.T) {
		r := setupReportRouter(NewReportHandler(&mockExpenseService{}, &mockAuditService{}))
		rec := doRequest(r, "GET", "/expenses/summary?date_to=2024-02-31", "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestReportHandler_ExportCSV(t *testing.T) {
	svc := &mockExpenseService{
		listAllExpensesFn: func(string, history.Filter) ([]models.Expense, error) {
			return reportExpenses(), nil
		},
	}
	r := setupReportRouter(NewReportHandler(svc, &mockAuditService{}))

	rec := doRequest(r, "GET", "/expenses/export.csv", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="expense-report-2024-02-01.csv"` {
		t.Errorf("unexpected Content-Disposition %q", got)
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/csv") {
		t.Errorf("unexpected Content-Type %q", rec.Header().Get("Content-Type"))
	}
	want := "Date,Description,Category,Amount\n" +
		"2024-01-20,\"coffee\",Food,3.20\n" +
		"2023-12-31,\"uber home\",Transport,18.00"
	if rec.Body.String() != want {
		t.Errorf("unexpected body:\n%s", rec.Body.String())
	}
}

func TestReportHandler_ExportXLSX(t *testing.T) {
	svc := &mockExpenseService{
		listAllExpensesFn: func(string, history.Filter) ([]models.Expense, error) {
			return reportExpenses(), nil
		},
	}
	r := setupReportRouter(NewReportHandler(svc, &mockAuditService{}))

	rec := doRequest(r, "GET", "/expenses/export.xlsx", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("Content-Type") != xlsxContentType {
		t.Errorf("unexpected Content-Type %q", rec.Header().Get("Content-Type"))
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), "expense-report-2024-02-01.xlsx") {
		t.Errorf("unexpected Content-Disposition %q", rec.Header().Get("Content-Disposition"))
	}
	// xlsx files are zip archives
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")) {
		t.Error("expected a zip payload")
	}
}

const importCSV = "Date,Description,Category,Amount\n" +
	"2024-01-20,\"coffee\",Food,3.20\n" +
	"2023-12-31,\"uber home\",Transport,18.00"

func TestReportHandler_ImportCSV(t *testing.T) {
	t.Run("raw text/csv body", func(t *testing.T) {
		var got []models.Expense
		svc := &mockExpenseService{
			importExpensesFn: func(_ string, expenses []models.Expense) (int, error) {
				got = expenses
				return len(expenses), nil
			},
		}
		audit := &mockAuditService{}
		r := setupReportRouter(NewReportHandler(svc, audit))

		rec := doRawRequest(r, "POST", "/expenses/import", "text/csv", bodyOf(importCSV))

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if parseJSON(t, rec)["imported"].(float64) != 2 {
			t.Errorf("expected 2 imported, got %s", rec.Body.String())
		}
		if len(got) != 2 || got[1].Category != models.CategoryTransport {
			t.Errorf("unexpected parsed rows %+v", got)
		}
		if len(audit.entries) != 1 {
			t.Errorf("expected one audit entry, got %v", audit.entries)
		}
	})

	t.Run("multipart upload", func(t *testing.T) {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		fw, err := mw.CreateFormFile("file", "expense-report-2024-01-31.csv")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write([]byte(importCSV)); err != nil {
			t.Fatal(err)
		}
		if err := mw.Close(); err != nil {
			t.Fatal(err)
		}

		r := setupReportRouter(NewReportHandler(&mockExpenseService{}, &mockAuditService{}))
		rec := doRawRequest(r, "POST", "/expenses/import", mw.FormDataContentType(), &body)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("multipart without file part", func(t *testing.T) {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		_ = mw.WriteField("note", "nothing here")
		_ = mw.Close()

		r := setupReportRouter(NewReportHandler(&mockExpenseService{}, &mockAuditService{}))
		rec := doRawRequest(r, "POST", "/expenses/import", mw.FormDataContentType(), &body)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("rejects a malformed row", func(t *testing.T) {
		called := false
		svc := &mockExpenseService{
			importExpensesFn: func(string, []models.Expense) (int, error) {
				called = true
				return 0, nil
			},
		}
		audit := &mockAuditService{}
		r := setupReportRouter(NewReportHandler(svc, audit))

		rec := doRawRequest(r, "POST", "/expenses/import", "text/csv",
			bodyOf(importCSV+"\n2024-01-21,\"bus\",Transport,two"))

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		assertErrorCode(t, result, "INVALID_IMPORT")
		msg := result["error"].(map[string]interface{})["message"].(string)
		if !strings.Contains(msg, "line 4") {
			t.Errorf("expected the failing line in %q", msg)
		}
		if called || len(audit.entries) != 0 {
			t.Error("a rejected file must not reach the service")
		}
	})

	t.Run("rejects a report over the size limit", func(t *testing.T) {
		const row = "2024-01-21,\"bus\",Transport,123.45\n"
		var sb strings.Builder
		sb.WriteString("Date,Description,Category,Amount\n")
		for sb.Len() <= maxImportBytes {
			sb.WriteString(row)
		}

		called := false
		svc := &mockExpenseService{
			importExpensesFn: func(string, []models.Expense) (int, error) {
				called = true
				return 0, nil
			},
		}
		r := setupReportRouter(NewReportHandler(svc, &mockAuditService{}))

		rec := doRawRequest(r, "POST", "/expenses/import", "text/csv", bodyOf(sb.String()))

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		assertErrorCode(t, result, "INVALID_IMPORT")
		if msg := result["error"].(map[string]interface{})["message"].(string); msg != "report too large" {
			t.Errorf("unexpected message %q", msg)
		}
		if called {
			t.Error("an oversized report must not be imported in part")
		}
	})
}
