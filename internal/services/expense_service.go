package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/ryakubu/auto-categorize-app/internal/aggregator"
	"github.com/ryakubu/auto-categorize-app/internal/categorizer"
	apperrors "github.com/ryakubu/auto-categorize-app/internal/errors"
	"github.com/ryakubu/auto-categorize-app/internal/events"
	"github.com/ryakubu/auto-categorize-app/internal/history"
	"github.com/ryakubu/auto-categorize-app/internal/logger"
	"github.com/ryakubu/auto-categorize-app/internal/models"
	"github.com/ryakubu/auto-categorize-app/internal/pagination"
)

// expenseOrder lists newest expenses first; same-day entries by creation time.
const expenseOrder = "date DESC, created_at DESC"

// expenseService handles expense-related business logic.
type expenseService struct {
	db          *gorm.DB
	categorizer *categorizer.Categorizer
	publisher   events.Publisher
}

// NewExpenseService creates a new ExpenseServicer. A nil publisher drops events.
func NewExpenseService(db *gorm.DB, c *categorizer.Categorizer, publisher events.Publisher) ExpenseServicer {
	if c == nil {
		c = categorizer.New()
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &expenseService{db: db, categorizer: c, publisher: publisher}
}

// CreateExpense validates and stores a new expense for the user.
func (s *expenseService) CreateExpense(userID string, in ExpenseInput) (*models.Expense, error) {
	expense, err := s.buildExpense(in, true)
	if err != nil {
		return nil, err
	}
	expense.UserID = userID

	if err := s.db.Create(expense).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.publish(events.ExpenseCreated, userID, expense.ID, expense)
	return expense, nil
}

// GetExpenseByID retrieves an expense by ID for a specific user.
func (s *expenseService) GetExpenseByID(userID, expenseID string) (*models.Expense, error) {
	var expense models.Expense
	if err := s.db.Where("id = ? AND user_id = ?", expenseID, userID).First(&expense).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExpenseNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &expense, nil
}

// UpdateExpense replaces the mutable fields of an expense. The category must
// be given; edits are never re-categorized.
func (s *expenseService) UpdateExpense(userID, expenseID string, in ExpenseInput) (*models.Expense, error) {
	expense, err := s.GetExpenseByID(userID, expenseID)
	if err != nil {
		return nil, err
	}

	updated, err := s.buildExpense(in, false)
	if err != nil {
		return nil, err
	}
	expense.Description = updated.Description
	expense.Amount = updated.Amount
	expense.Category = updated.Category
	expense.Date = updated.Date

	if err := s.db.Save(expense).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.publish(events.ExpenseUpdated, userID, expense.ID, expense)
	return expense, nil
}

// DeleteExpense removes an expense permanently.
func (s *expenseService) DeleteExpense(userID, expenseID string) error {
	result := s.db.Where("id = ? AND user_id = ?", expenseID, userID).Delete(&models.Expense{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrExpenseNotFound
	}

	s.publish(events.ExpenseDeleted, userID, expenseID, nil)
	return nil
}

// ListExpenses returns one page of the user's filtered history, newest first,
// together with the total and categories of the whole filtered set.
func (s *expenseService) ListExpenses(userID string, page pagination.PageRequest, filter history.Filter) (*ExpensePage, error) {
	page.Defaults()

	base := s.db.Model(&models.Expense{}).Where("user_id = ?", userID).Scopes(applyExpenseFilter(filter))

	var totalItems int64
	if err := base.Session(&gorm.Session{}).Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var expenses []models.Expense
	if err := base.Session(&gorm.Session{}).
		Scopes(pagination.Paginate(page)).
		Order(expenseOrder).
		Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	// Totals span the whole filtered set; categories keep first-occurrence
	// order over the newest-first list.
	var all []models.Expense
	if err := base.Session(&gorm.Session{}).
		Select("category", "amount").
		Order(expenseOrder).
		Find(&all).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &ExpensePage{
		PageResponse: pagination.NewPageResponse(expenses, page.Page, page.PageSize, totalItems),
		TotalAmount:  history.Total(all),
		Categories:   history.DistinctCategories(all),
	}, nil
}

// ListAllExpenses returns every expense matching filter, newest first.
func (s *expenseService) ListAllExpenses(userID string, filter history.Filter) ([]models.Expense, error) {
	var expenses []models.Expense
	if err := s.db.Where("user_id = ?", userID).
		Scopes(applyExpenseFilter(filter)).
		Order(expenseOrder).
		Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if expenses == nil {
		expenses = []models.Expense{}
	}
	return expenses, nil
}

// GetSummary aggregates the user's filtered expenses.
func (s *expenseService) GetSummary(userID string, filter history.Filter) (*aggregator.Report, error) {
	expenses, err := s.ListAllExpenses(userID, filter)
	if err != nil {
		return nil, err
	}
	report := aggregator.Build(expenses)
	return &report, nil
}

// ImportExpenses stores a batch of expenses in one transaction. Any invalid
// row rejects the whole batch.
func (s *expenseService) ImportExpenses(userID string, expenses []models.Expense) (int, error) {
	if len(expenses) == 0 {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidImport, "no expenses to import")
	}

	rows := make([]models.Expense, len(expenses))
	for i, e := range expenses {
		e.ID = ""
		e.UserID = userID
		e.Normalize()
		if err := e.Validate(); err != nil {
			return 0, err
		}
		rows[i] = e
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.CreateInBatches(&rows, 100).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for i := range rows {
		s.publish(events.ExpenseCreated, userID, rows[i].ID, &rows[i])
	}
	return len(rows), nil
}

// buildExpense turns input into a normalized, validated expense. An empty
// category is filled from the categorizer only when suggest is set.
func (s *expenseService) buildExpense(in ExpenseInput, suggest bool) (*models.Expense, error) {
	var category models.Category
	switch {
	case strings.TrimSpace(in.Category) != "":
		c, err := models.ParseCategory(in.Category)
		if err != nil {
			return nil, apperrors.ErrInvalidCategory
		}
		category = c
	case suggest:
		category = s.categorizer.Suggest(in.Description)
	default:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category is required")
	}

	expense := &models.Expense{
		Description: in.Description,
		Amount:      in.Amount,
		Category:    category,
		Date:        in.Date,
	}
	expense.Normalize()
	if err := expense.Validate(); err != nil {
		return nil, err
	}
	return expense, nil
}

// publish reports a committed change. Failures are logged; the write has
// already succeeded.
func (s *expenseService) publish(typ, userID, expenseID string, e *models.Expense) {
	if err := s.publisher.Publish(context.Background(), events.NewEvent(typ, userID, expenseID, e)); err != nil {
		logger.Get().Warnw("failed to publish expense event",
			"error", err,
			"type", typ,
			"expense_id", expenseID,
		)
	}
}

// applyExpenseFilter is the SQL form of history.Filter.Match.
func applyExpenseFilter(f history.Filter) func(db *gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if term := strings.ToLower(strings.TrimSpace(f.Search)); term != "" {
			pattern := "%" + escapeLike(term) + "%"
			q = q.Where(`(LOWER(description) LIKE ? ESCAPE '\' OR LOWER(category) LIKE ? ESCAPE '\')`, pattern, pattern)
		}
		if f.Category != "" && f.Category != history.AllCategories {
			q = q.Where("category = ?", f.Category)
		}
		if f.From != nil {
			q = q.Where("date >= ?", *f.From)
		}
		if f.To != nil {
			q = q.Where("date <= ?", *f.To)
		}
		return q
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
