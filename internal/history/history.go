// Package history filters and orders a user's expense list the way the
// history view presents it.
package history

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ryakubu/auto-categorize-app/internal/models"
)

// AllCategories is the category filter value meaning "no filter".
const AllCategories = "all"

// Filter narrows an expense list. Zero values disable each criterion.
type Filter struct {
	// Search matches the description or the category name, ignoring case.
	Search string
	// Category keeps one category; empty or AllCategories keeps all.
	Category string
	// From and To are inclusive bounds.
	From *models.Date
	To   *models.Date
}

// IsEmpty reports whether the filter keeps every expense.
func (f Filter) IsEmpty() bool {
	return strings.TrimSpace(f.Search) == "" && !f.hasCategory() && f.From == nil && f.To == nil
}

func (f Filter) hasCategory() bool {
	return f.Category != "" && f.Category != AllCategories
}

// Match reports whether e passes every criterion of f.
func (f Filter) Match(e models.Expense) bool {
	if term := strings.ToLower(strings.TrimSpace(f.Search)); term != "" {
		if !strings.Contains(strings.ToLower(e.Description), term) &&
			!strings.Contains(strings.ToLower(string(e.Category)), term) {
			return false
		}
	}
	if f.hasCategory() && string(e.Category) != f.Category {
		return false
	}
	if f.From != nil && e.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && e.Date.After(*f.To) {
		return false
	}
	return true
}

// Apply returns the expenses that match f, keeping their input order.
func (f Filter) Apply(expenses []models.Expense) []models.Expense {
	out := make([]models.Expense, 0, len(expenses))
	for _, e := range expenses {
		if f.Match(e) {
			out = append(out, e)
		}
	}
	return out
}

// SortByDateDesc orders expenses newest first. Same-day expenses keep the
// most recently created first.
func SortByDateDesc(expenses []models.Expense) {
	sort.SliceStable(expenses, func(i, j int) bool {
		a, b := expenses[i], expenses[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
}

// Total sums the amounts of expenses.
func Total(expenses []models.Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}

// DistinctCategories lists the categories present, in order of first occurrence.
func DistinctCategories(expenses []models.Expense) []models.Category {
	seen := make(map[models.Category]bool)
	out := make([]models.Category, 0)
	for _, e := range expenses {
		if !seen[e.Category] {
			seen[e.Category] = true
			out = append(out, e.Category)
		}
	}
	return out
}
