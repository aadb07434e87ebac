package models

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	apperrors "github.com/ryakubu/auto-categorize-app/internal/errors"
)

// MaxDescriptionLength bounds the free-text description, in characters.
const MaxDescriptionLength = 500

// MaxAmount is the largest amount a numeric(12,2) column holds.
var MaxAmount = decimal.RequireFromString("9999999999.99")

// Expense is a single spending record owned by one user.
type Expense struct {
	Base
	UserID      string          `gorm:"type:uuid;not null;index:idx_expenses_user_date,priority:1" json:"user_id"`
	Description string          `gorm:"type:varchar(500);not null" json:"description"`
	Amount      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Category    Category        `gorm:"type:varchar(32);not null;index" json:"category"`
	Date        Date            `gorm:"type:date;not null;index:idx_expenses_user_date,priority:2" json:"date"`
}

// Validate checks the invariants every stored expense must satisfy: a
// non-empty description, an amount within [0, MaxAmount], a known category
// and a date.
func (e *Expense) Validate() error {
	desc := strings.TrimSpace(e.Description)
	if desc == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "description is required")
	}
	if utf8.RuneCountInString(desc) > MaxDescriptionLength {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "description must be at most 500 characters")
	}
	if strings.ContainsAny(desc, "\r\n") {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "description must be a single line")
	}
	if e.Amount.IsNegative() {
		return apperrors.ErrInvalidAmount
	}
	if e.Amount.GreaterThan(MaxAmount) {
		return apperrors.WithMessage(apperrors.ErrInvalidAmount, "amount must be at most 9999999999.99")
	}
	if !e.Category.IsValid() {
		return apperrors.ErrInvalidCategory
	}
	if e.Date.IsZero() {
		return apperrors.ErrInvalidDate
	}
	return nil
}

// Normalize trims the description and rounds the amount to cents.
func (e *Expense) Normalize() {
	e.Description = strings.TrimSpace(e.Description)
	e.Amount = e.Amount.Round(2)
}
