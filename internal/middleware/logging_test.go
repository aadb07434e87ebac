package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "github.com/ryakubu/auto-categorize-app/internal/errors"
)

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), RequestLogging())
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": c.GetString(requestIDKey)})
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", http.NoBody))
	generated := rec.Header().Get("X-Request-ID")
	if len(generated) != 36 {
		t.Fatalf("expected a generated UUID request ID, got %q", generated)
	}
	if body := parseBody(t, rec); body["request_id"] != generated {
		t.Errorf("context request ID %v does not match header %q", body["request_id"], generated)
	}

	req := httptest.NewRequest(http.MethodGet, "/ping", http.NoBody)
	req.Header.Set("X-Request-ID", "upstream-id")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "upstream-id" {
		t.Errorf("expected caller's request ID to be kept, got %q", got)
	}
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"app_error", apperrors.ErrExpenseNotFound, http.StatusNotFound, "EXPENSE_NOT_FOUND"},
		{"wrapped_app_error", apperrors.Wrap(apperrors.ErrInternalServer, errors.New("db down")), http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"plain_error", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(ErrorHandler())
			r.GET("/fail", func(c *gin.Context) { _ = c.Error(tt.err) })

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fail", http.NoBody))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			errObj, _ := parseBody(t, rec)["error"].(map[string]interface{})
			if errObj["code"] != tt.wantCode {
				t.Errorf("code = %v, want %s", errObj["code"], tt.wantCode)
			}
			if tt.name == "wrapped_app_error" && errObj["message"] == "db down" {
				t.Error("internal error details must not leak")
			}
		})
	}
}
