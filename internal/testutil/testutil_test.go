package testutil_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ryakubu/auto-categorize-app/internal/errors"
	"github.com/ryakubu/auto-categorize-app/internal/models"
	"github.com/ryakubu/auto-categorize-app/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	var count int64
	for _, table := range []string{"expenses", "audit_logs"} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	userID := testutil.NewUserID()
	expense := testutil.CreateTestExpense(t, db, userID, models.CategoryFood, "12.50", "2024-01-20")
	if expense.ID == "" {
		t.Fatal("expense should have an ID")
	}

	var stored models.Expense
	if err := db.First(&stored, "id = ?", expense.ID).Error; err != nil {
		t.Fatalf("failed to reload expense: %v", err)
	}
	if stored.Date.String() != "2024-01-20" {
		t.Errorf("expected date 2024-01-20, got %s", stored.Date)
	}
	testutil.AssertAmount(t, "12.50", stored.Amount)
	if stored.UserID != userID {
		t.Errorf("expected user %s, got %s", userID, stored.UserID)
	}
}

func TestAssertAppError(t *testing.T) {
	err := errors.WithMessage(errors.ErrExpenseNotFound, "custom message")
	testutil.AssertAppError(t, err, "EXPENSE_NOT_FOUND")
}

func TestAssertNoError(t *testing.T) {
	testutil.AssertNoError(t, nil)
}

func TestAssertAmount(t *testing.T) {
	testutil.AssertAmount(t, "3.20", decimal.RequireFromString("3.2"))
}
