// Package aggregator reduces a list of expenses to the figures behind the
// charts and summary cards: per-category totals, per-month totals and a
// handful of statistics. Every function recomputes from the full list; there
// is no incremental state to drift from the source of truth.
package aggregator

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ryakubu/auto-categorize-app/internal/models"
)

// NoCategory is reported as the top category of an empty list.
const NoCategory = "N/A"

// MonthLabelLayout renders a month as "Jan 2024".
const MonthLabelLayout = "Jan 2006"

// Palette holds the chart colours, assigned to categories by position.
var Palette = []string{
	"hsl(262 83% 58%)",
	"hsl(220 83% 68%)",
	"hsl(300 83% 68%)",
	"hsl(38 92% 50%)",
	"hsl(142 76% 36%)",
	"hsl(0 84% 60%)",
	"hsl(240 4% 46%)",
}

// CategoryTotal is the sum and count of the expenses in one category.
type CategoryTotal struct {
	Category models.Category `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Count    int             `json:"count"`
	Color    string          `json:"color"`
}

// MonthKey identifies a calendar month independently of any locale.
type MonthKey struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// Label renders the key as "Jan 2024".
func (k MonthKey) Label() string {
	return time.Date(k.Year, k.Month, 1, 0, 0, 0, 0, time.UTC).Format(MonthLabelLayout)
}

// MonthTotal is the sum of the expenses dated within one month.
type MonthTotal struct {
	MonthKey
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

// Summary holds the headline statistics for a list of expenses.
type Summary struct {
	TotalSpent        decimal.Decimal `json:"total_spent"`
	Count             int             `json:"count"`
	AveragePerExpense decimal.Decimal `json:"average_per_expense"`
	TopCategory       string          `json:"top_category"`
	MonthlyAverage    decimal.Decimal `json:"monthly_average"`
	MonthCount        int             `json:"month_count"`
}

// Report bundles all three aggregates.
type Report struct {
	Categories []CategoryTotal `json:"categories"`
	Months     []MonthTotal    `json:"months"`
	Summary    Summary         `json:"summary"`
}

// CategoryTotals groups expenses by category in order of first occurrence.
// Categories with no expenses are left out.
func CategoryTotals(expenses []models.Expense) []CategoryTotal {
	index := make(map[models.Category]int)
	totals := make([]CategoryTotal, 0)

	for _, e := range expenses {
		i, ok := index[e.Category]
		if !ok {
			i = len(totals)
			index[e.Category] = i
			totals = append(totals, CategoryTotal{
				Category: e.Category,
				Amount:   decimal.Zero,
				Color:    Palette[i%len(Palette)],
			})
		}
		totals[i].Amount = totals[i].Amount.Add(e.Amount)
		totals[i].Count++
	}
	return totals
}

// MonthlyTotals groups expenses by (year, month) in order of first occurrence.
func MonthlyTotals(expenses []models.Expense) []MonthTotal {
	index := make(map[MonthKey]int)
	totals := make([]MonthTotal, 0)

	for _, e := range expenses {
		key := MonthKey{Year: e.Date.Year(), Month: e.Date.Month()}
		i, ok := index[key]
		if !ok {
			i = len(totals)
			index[key] = i
			totals = append(totals, MonthTotal{MonthKey: key, Label: key.Label(), Amount: decimal.Zero})
		}
		totals[i].Amount = totals[i].Amount.Add(e.Amount)
	}
	return totals
}

// Summarize computes the statistics for expenses. Averages are rounded to
// cents; an empty list yields zeros and NoCategory.
func Summarize(expenses []models.Expense) Summary {
	return summarize(expenses, CategoryTotals(expenses), MonthlyTotals(expenses))
}

// Build computes all three aggregates, deriving the summary from the same totals.
func Build(expenses []models.Expense) Report {
	categories := CategoryTotals(expenses)
	months := MonthlyTotals(expenses)
	return Report{
		Categories: categories,
		Months:     months,
		Summary:    summarize(expenses, categories, months),
	}
}

func summarize(expenses []models.Expense, categories []CategoryTotal, months []MonthTotal) Summary {
	s := Summary{
		TotalSpent:        decimal.Zero,
		Count:             len(expenses),
		AveragePerExpense: decimal.Zero,
		TopCategory:       NoCategory,
		MonthlyAverage:    decimal.Zero,
		MonthCount:        len(months),
	}

	for _, e := range expenses {
		s.TotalSpent = s.TotalSpent.Add(e.Amount)
	}

	if s.Count > 0 {
		s.AveragePerExpense = s.TotalSpent.Div(decimal.NewFromInt(int64(s.Count))).Round(2)
	}
	if s.MonthCount > 0 {
		s.MonthlyAverage = s.TotalSpent.Div(decimal.NewFromInt(int64(s.MonthCount))).Round(2)
	}

	// Strictly greater keeps the earliest category on ties.
	if len(categories) > 0 {
		top := categories[0]
		for _, c := range categories[1:] {
			if c.Amount.GreaterThan(top.Amount) {
				top = c
			}
		}
		s.TopCategory = string(top.Category)
	}

	return s
}
