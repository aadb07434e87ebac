// Package tracker holds the in-memory state of one signed-in user: who they
// are and the expenses currently on screen. Persistence goes through a Store;
// every aggregate is recomputed from the list on demand.
package tracker

import (
	"context"
	"errors"
	"sync"

	"github.com/ryakubu/auto-categorize-app/internal/aggregator"
	"github.com/ryakubu/auto-categorize-app/internal/history"
	"github.com/ryakubu/auto-categorize-app/internal/models"
)

// ErrNoUser is returned by mutating calls made before Load.
var ErrNoUser = errors.New("tracker: no user loaded")

// Store is the persistence a Session needs. Implementations scope every
// call to userID.
type Store interface {
	ListExpenses(ctx context.Context, userID string) ([]models.Expense, error)
	CreateExpense(ctx context.Context, userID string, e models.Expense) (*models.Expense, error)
	UpdateExpense(ctx context.Context, userID string, e models.Expense) (*models.Expense, error)
	DeleteExpense(ctx context.Context, userID, id string) error
}

// Session owns the current user and their expense list, newest first.
// Store failures leave the list untouched, as does a Clear or Load that
// lands while a store call is in flight.
type Session struct {
	store Store

	mu       sync.RWMutex
	userID   string
	expenses []models.Expense
}

// NewSession creates an empty session backed by store.
func NewSession(store Store) *Session {
	return &Session{store: store}
}

// UserID returns the loaded user, or "" after Clear.
func (s *Session) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// Load fetches userID's expenses and makes them the current list.
func (s *Session) Load(ctx context.Context, userID string) error {
	expenses, err := s.store.ListExpenses(ctx, userID)
	if err != nil {
		return err
	}
	history.SortByDateDesc(expenses)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = userID
	s.expenses = expenses
	return nil
}

// Add persists e and prepends the stored copy.
func (s *Session) Add(ctx context.Context, e models.Expense) (*models.Expense, error) {
	userID, err := s.currentUser()
	if err != nil {
		return nil, err
	}
	created, err := s.store.CreateExpense(ctx, userID, e)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.userID == userID {
		s.expenses = append([]models.Expense{*created}, s.expenses...)
	}
	return created, nil
}

// Replace persists e and swaps it into the list where the old copy was.
func (s *Session) Replace(ctx context.Context, e models.Expense) (*models.Expense, error) {
	userID, err := s.currentUser()
	if err != nil {
		return nil, err
	}
	updated, err := s.store.UpdateExpense(ctx, userID, e)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.userID != userID {
		return updated, nil
	}
	for i := range s.expenses {
		if s.expenses[i].ID == updated.ID {
			s.expenses[i] = *updated
			break
		}
	}
	return updated, nil
}

// Remove deletes the expense with id from the store and the list.
func (s *Session) Remove(ctx context.Context, id string) error {
	userID, err := s.currentUser()
	if err != nil {
		return err
	}
	if err := s.store.DeleteExpense(ctx, userID, id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.userID != userID {
		return nil
	}
	kept := s.expenses[:0:0]
	for _, e := range s.expenses {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	s.expenses = kept
	return nil
}

// Clear forgets the user and their expenses.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = ""
	s.expenses = nil
}

// Expenses returns a copy of the current list.
func (s *Session) Expenses() []models.Expense {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Expense(nil), s.expenses...)
}

// Report aggregates the current list.
func (s *Session) Report() aggregator.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return aggregator.Build(s.expenses)
}

// Filter returns the expenses matching f, in list order.
func (s *Session) Filter(f history.Filter) []models.Expense {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return f.Apply(s.expenses)
}

func (s *Session) currentUser() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.userID == "" {
		return "", ErrNoUser
	}
	return s.userID, nil
}
