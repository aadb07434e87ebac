// Package events announces expense changes to other services over AMQP.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ryakubu/auto-categorize-app/internal/models"
)

// Event types, also used as routing keys.
const (
	ExpenseCreated = "expense.created"
	ExpenseUpdated = "expense.updated"
	ExpenseDeleted = "expense.deleted"
)

// Event is the message body published for each expense change. Expense is
// nil for deletions.
type Event struct {
	Type       string          `json:"type"`
	UserID     string          `json:"user_id"`
	ExpenseID  string          `json:"expense_id"`
	Expense    *models.Expense `json:"expense,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// NewEvent stamps an event of type typ for expense e.
func NewEvent(typ, userID, expenseID string, e *models.Expense) Event {
	return Event{
		Type:       typ,
		UserID:     userID,
		ExpenseID:  expenseID,
		Expense:    e,
		OccurredAt: time.Now().UTC(),
	}
}

// ToJSON encodes the event body.
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EventFromJSON decodes an event body.
func EventFromJSON(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }
