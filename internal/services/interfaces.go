package services

import (
	"github.com/shopspring/decimal"

	"github.com/ryakubu/auto-categorize-app/internal/aggregator"
	"github.com/ryakubu/auto-categorize-app/internal/history"
	"github.com/ryakubu/auto-categorize-app/internal/models"
	"github.com/ryakubu/auto-categorize-app/internal/pagination"
)

// ExpenseInput carries the client-supplied fields of an expense. An empty
// Category is filled in from the description's suggestion.
type ExpenseInput struct {
	Description string
	Amount      decimal.Decimal
	Category    string
	Date        models.Date
}

// ExpensePage is one page of a filtered history plus figures over the whole
// filtered set.
type ExpensePage struct {
	pagination.PageResponse[models.Expense]
	TotalAmount decimal.Decimal   `json:"total_amount"`
	Categories  []models.Category `json:"categories"`
}

// ExpenseServicer defines the contract for expense-related business logic.
// Every call is scoped to userID.
type ExpenseServicer interface {
	CreateExpense(userID string, in ExpenseInput) (*models.Expense, error)
	GetExpenseByID(userID, expenseID string) (*models.Expense, error)
	UpdateExpense(userID, expenseID string, in ExpenseInput) (*models.Expense, error)
	DeleteExpense(userID, expenseID string) error
	ListExpenses(userID string, page pagination.PageRequest, filter history.Filter) (*ExpensePage, error)
	ListAllExpenses(userID string, filter history.Filter) ([]models.Expense, error)
	GetSummary(userID string, filter history.Filter) (*aggregator.Report, error)
	ImportExpenses(userID string, expenses []models.Expense) (int, error)
}

// Suggestion is the categorizer's answer for one description.
type Suggestion struct {
	Description    string          `json:"description,omitempty"`
	Category       models.Category `json:"category"`
	MatchedKeyword string          `json:"matched_keyword,omitempty"`
	AutoApply      bool            `json:"auto_apply"`
	HintTTLMs      int64           `json:"hint_ttl_ms"`
}

// SuggestionServicer defines the contract for category suggestions.
type SuggestionServicer interface {
	Suggest(description string, editing bool) Suggestion
	SuggestBatch(descriptions []string) []Suggestion
	Categories() []models.Category
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]any)
}
