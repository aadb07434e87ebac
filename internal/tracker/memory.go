package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/ryakubu/auto-categorize-app/internal/errors"
	"github.com/ryakubu/auto-categorize-app/internal/models"
)

// MemoryStore is a Store kept in process memory. The report command loads
// CSV exports into one; tests use it in place of the database.
type MemoryStore struct {
	mu     sync.Mutex
	byUser map[string][]models.Expense
	now    func() time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byUser: make(map[string][]models.Expense), now: time.Now}
}

// ListExpenses returns a copy of userID's expenses in insertion order.
func (m *MemoryStore) ListExpenses(_ context.Context, userID string) ([]models.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Expense(nil), m.byUser[userID]...), nil
}

// CreateExpense validates e, assigns an ID and stores it for userID.
func (m *MemoryStore) CreateExpense(_ context.Context, userID string, e models.Expense) (*models.Expense, error) {
	e.Normalize()
	if err := e.Validate(); err != nil {
		return nil, err
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	e.ID = id.String()
	e.UserID = userID
	e.CreatedAt = now
	e.UpdatedAt = now
	m.byUser[userID] = append(m.byUser[userID], e)
	return &e, nil
}

// UpdateExpense overwrites the stored expense with e's ID.
func (m *MemoryStore) UpdateExpense(_ context.Context, userID string, e models.Expense) (*models.Expense, error) {
	e.Normalize()
	if err := e.Validate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.byUser[userID]
	for i := range list {
		if list[i].ID != e.ID {
			continue
		}
		e.UserID = userID
		e.CreatedAt = list[i].CreatedAt
		e.UpdatedAt = m.now()
		list[i] = e
		return &e, nil
	}
	return nil, apperrors.ErrExpenseNotFound
}

// DeleteExpense removes the expense with id.
func (m *MemoryStore) DeleteExpense(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.byUser[userID]
	for i := range list {
		if list[i].ID == id {
			m.byUser[userID] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return apperrors.ErrExpenseNotFound
}
