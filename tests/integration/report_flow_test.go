package integration

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/ryakubu/auto-categorize-app/internal/export"
)

func seedExpenses(t *testing.T, app *testApp, token string) {
	t.Helper()
	for _, body := range []string{
		`{"description":"Groceries, weekly","amount":"54.30","category":"Food","date":"2024-01-06"}`,
		`{"description":"Bus pass","amount":"40.00","date":"2024-01-02"}`,
		`{"description":"Internet bill","amount":"35.00","date":"2024-02-01"}`,
		`{"description":"Dinner out","amount":"28.70","date":"2024-02-14"}`,
	} {
		app.createExpense(t, token, body)
	}
}

func TestReportFlow_Summary(t *testing.T) {
	app := setupApp(t)
	_, token := newUser(t)
	seedExpenses(t, app, token)

	rec := app.request("GET", "/api/v1/expenses/summary", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	report := parseJSON(t, rec)
	summary := report["summary"].(map[string]interface{})
	if summary["total_spent"] != "158" || summary["top_category"] != "Food" || summary["monthly_average"] != "79" {
		t.Errorf("unexpected summary %v", summary)
	}
	categories := report["categories"].([]interface{})
	first := categories[0].(map[string]interface{})
	if first["category"] != "Food" || first["amount"] != "83" || first["count"].(float64) != 2 {
		t.Errorf("unexpected first category %v", first)
	}
	months := report["months"].([]interface{})
	if len(months) != 2 || months[0].(map[string]interface{})["label"] != "Feb 2024" {
		t.Errorf("unexpected months %v", months)
	}

	rec = app.request("GET", "/api/v1/expenses/summary?category=Transport", "", token)
	summary = parseJSON(t, rec)["summary"].(map[string]interface{})
	if summary["total_spent"] != "40" || summary["count"].(float64) != 1 {
		t.Errorf("unexpected filtered summary %v", summary)
	}
}

func TestReportFlow_ExportImportRoundTrip(t *testing.T) {
	app := setupApp(t)
	_, alice := newUser(t)
	seedExpenses(t, app, alice)

	rec := app.request("GET", "/api/v1/expenses/export.csv", "", alice)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	csv := rec.Body.String()
	if !strings.HasPrefix(csv, export.CSVHeader+"\n2024-02-14,\"Dinner out\",Food,28.70") {
		t.Errorf("unexpected CSV:\n%s", csv)
	}
	if !strings.Contains(csv, `"Groceries, weekly"`) {
		t.Errorf("expected quoted description in:\n%s", csv)
	}

	// Import into another account
	_, bob := newUser(t)
	rec = app.rawRequest("POST", "/api/v1/expenses/import", "text/csv", strings.NewReader(csv), bob)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if parseJSON(t, rec)["imported"].(float64) != 4 {
		t.Errorf("expected 4 imported, got %s", rec.Body.String())
	}

	rec = app.request("GET", "/api/v1/expenses/export.csv", "", bob)
	if rec.Body.String() != csv {
		t.Errorf("re-export differs:\n%s\n---\n%s", rec.Body.String(), csv)
	}
}

func TestReportFlow_ImportIsAllOrNothing(t *testing.T) {
	app := setupApp(t)
	_, token := newUser(t)

	body := export.CSVHeader + "\n" +
		"2024-01-06,\"Groceries\",Food,54.30\n" +
		"2024-01-07,\"Mystery\",Pets,1.00"
	rec := app.rawRequest("POST", "/api/v1/expenses/import", "text/csv", strings.NewReader(body), token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = app.request("GET", "/api/v1/expenses", "", token)
	if parseJSON(t, rec)["total_items"].(float64) != 0 {
		t.Error("a rejected import must store nothing")
	}
}

func TestReportFlow_ExportXLSX(t *testing.T) {
	app := setupApp(t)
	_, token := newUser(t)
	seedExpenses(t, app, token)

	rec := app.request("GET", "/api/v1/expenses/export.xlsx?date_from=2024-02-01", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("failed to open workbook: %v", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(export.ExpensesSheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Errorf("expected header and 2 rows, got %d", len(rows))
	}
}
