package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ryakubu/auto-categorize-app/internal/models"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// NewUserID returns a fresh user UUID, as issued by the identity provider.
func NewUserID() string {
	return uuid.NewString()
}

// CreateTestExpense stores an expense with a unique description.
func CreateTestExpense(t *testing.T, db *gorm.DB, userID string, category models.Category, amount, date string) *models.Expense {
	t.Helper()
	return CreateTestExpenseWithDescription(t, db, userID, fmt.Sprintf("test expense %d", nextID()), category, amount, date)
}

// CreateTestExpenseWithDescription stores an expense with the given fields.
func CreateTestExpenseWithDescription(t *testing.T, db *gorm.DB, userID, description string, category models.Category, amount, date string) *models.Expense {
	t.Helper()

	amt, err := decimal.NewFromString(amount)
	if err != nil {
		t.Fatalf("invalid fixture amount %q: %v", amount, err)
	}
	d, err := models.ParseDate(date)
	if err != nil {
		t.Fatalf("invalid fixture date: %v", err)
	}

	expense := &models.Expense{
		UserID:      userID,
		Description: description,
		Amount:      amt,
		Category:    category,
		Date:        d,
	}
	if err := db.Create(expense).Error; err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}
	return expense
}
