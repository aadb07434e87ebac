package events

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryakubu/auto-categorize-app/internal/models"
)

type fakeChannel struct {
	mu        sync.Mutex
	published []amqp091.Publishing
	keys      []string
	err       error
	closed    bool
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, _, _ bool, msg amqp091.Publishing) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("publish without deadline")
	}
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, msg)
	f.keys = append(f.keys, exchange+"/"+key)
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestEvent_JSON(t *testing.T) {
	e := &models.Expense{
		Description: "coffee",
		Amount:      decimal.RequireFromString("3.20"),
		Category:    models.CategoryFood,
		Date:        models.MustParseDate("2024-01-20"),
	}
	e.ID = "exp-1"
	ev := NewEvent(ExpenseCreated, "user-1", e.ID, e)

	body, err := ev.ToJSON()
	require.NoError(t, err)
	assert.Contains(t, string(body), `"type":"expense.created"`)
	assert.Contains(t, string(body), `"date":"2024-01-20"`)

	back, err := EventFromJSON(body)
	require.NoError(t, err)
	assert.Equal(t, ExpenseCreated, back.Type)
	assert.Equal(t, "user-1", back.UserID)
	require.NotNil(t, back.Expense)
	assert.True(t, back.Expense.Amount.Equal(e.Amount))
}

func TestEvent_DeleteOmitsExpense(t *testing.T) {
	body, err := NewEvent(ExpenseDeleted, "user-1", "exp-1", nil).ToJSON()
	require.NoError(t, err)
	assert.NotContains(t, string(body), `"expense"`)
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), NewEvent(ExpenseCreated, "u", "e", nil)))
	assert.NoError(t, p.Close())
}

func TestAMQPPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	p := &AMQPPublisher{exchange: "expenses", ch: ch}

	require.NoError(t, p.Publish(context.Background(), NewEvent(ExpenseUpdated, "u", "exp-9", nil)))

	require.Len(t, ch.published, 1)
	assert.Equal(t, "expenses/expense.updated", ch.keys[0])
	msg := ch.published[0]
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp091.Persistent, msg.DeliveryMode)
	assert.Equal(t, "exp-9", msg.MessageId)

	ev, err := EventFromJSON(msg.Body)
	require.NoError(t, err)
	assert.Equal(t, ExpenseUpdated, ev.Type)

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestAMQPPublisher_PublishError(t *testing.T) {
	ch := &fakeChannel{err: amqp091.ErrClosed}
	p := &AMQPPublisher{exchange: "expenses", ch: ch}

	err := p.Publish(context.Background(), NewEvent(ExpenseDeleted, "u", "exp-1", nil))
	assert.ErrorIs(t, err, amqp091.ErrClosed)
}
