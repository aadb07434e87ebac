package services

import (
	"context"

	"github.com/ryakubu/auto-categorize-app/internal/history"
	"github.com/ryakubu/auto-categorize-app/internal/models"
	"github.com/ryakubu/auto-categorize-app/internal/tracker"
)

// expenseStore adapts an ExpenseServicer to tracker.Store.
type expenseStore struct {
	expenses ExpenseServicer
}

// NewExpenseStore exposes svc as the persistence behind a tracker.Session.
func NewExpenseStore(svc ExpenseServicer) tracker.Store {
	return &expenseStore{expenses: svc}
}

func (s *expenseStore) ListExpenses(_ context.Context, userID string) ([]models.Expense, error) {
	return s.expenses.ListAllExpenses(userID, history.Filter{})
}

func (s *expenseStore) CreateExpense(_ context.Context, userID string, e models.Expense) (*models.Expense, error) {
	return s.expenses.CreateExpense(userID, inputFrom(e))
}

func (s *expenseStore) UpdateExpense(_ context.Context, userID string, e models.Expense) (*models.Expense, error) {
	return s.expenses.UpdateExpense(userID, e.ID, inputFrom(e))
}

func (s *expenseStore) DeleteExpense(_ context.Context, userID, id string) error {
	return s.expenses.DeleteExpense(userID, id)
}

func inputFrom(e models.Expense) ExpenseInput {
	return ExpenseInput{
		Description: e.Description,
		Amount:      e.Amount,
		Category:    string(e.Category),
		Date:        e.Date,
	}
}
