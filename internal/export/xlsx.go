package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ryakubu/auto-categorize-app/internal/aggregator"
	"github.com/ryakubu/auto-categorize-app/internal/models"
)

const (
	ExpensesSheet = "Expenses"
	SummarySheet  = "Summary"

	// built-in number format "#,##0.00"
	amountNumFmt = 4
)

// WriteXLSX writes a workbook with the expense rows on one sheet and the
// report's category totals, monthly totals and statistics on another.
func WriteXLSX(w io.Writer, expenses []models.Expense, report aggregator.Report) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", ExpensesSheet); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("creating summary sheet: %w", err)
	}

	styles, err := newStyles(f)
	if err != nil {
		return err
	}

	if err := writeExpenseRows(f, styles, expenses); err != nil {
		return err
	}
	if err := writeSummary(f, styles, report); err != nil {
		return err
	}

	return f.Write(w)
}

type sheetStyles struct {
	header int
	amount int
	label  int
}

func newStyles(f *excelize.File) (sheetStyles, error) {
	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"7C3AED"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return sheetStyles{}, fmt.Errorf("header style: %w", err)
	}
	amount, err := f.NewStyle(&excelize.Style{NumFmt: amountNumFmt})
	if err != nil {
		return sheetStyles{}, fmt.Errorf("amount style: %w", err)
	}
	label, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return sheetStyles{}, fmt.Errorf("label style: %w", err)
	}
	return sheetStyles{header: header, amount: amount, label: label}, nil
}

func writeExpenseRows(f *excelize.File, st sheetStyles, expenses []models.Expense) error {
	if err := f.SetSheetRow(ExpensesSheet, "A1", &[]any{"Date", "Description", "Category", "Amount"}); err != nil {
		return err
	}
	if err := f.SetCellStyle(ExpensesSheet, "A1", "D1", st.header); err != nil {
		return err
	}

	for i, e := range expenses {
		row := i + 2
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		values := []any{e.Date.String(), e.Description, string(e.Category), e.Amount.InexactFloat64()}
		if err := f.SetSheetRow(ExpensesSheet, cell, &values); err != nil {
			return err
		}
	}

	if len(expenses) > 0 {
		last := fmt.Sprintf("D%d", len(expenses)+1)
		if err := f.SetCellStyle(ExpensesSheet, "D2", last, st.amount); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(ExpensesSheet, "A", "A", 12); err != nil {
		return err
	}
	if err := f.SetColWidth(ExpensesSheet, "B", "B", 40); err != nil {
		return err
	}
	return f.SetColWidth(ExpensesSheet, "C", "D", 16)
}

func writeSummary(f *excelize.File, st sheetStyles, report aggregator.Report) error {
	row := 1
	put := func(values ...any) error {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SummarySheet, cell, &values); err != nil {
			return err
		}
		for col, v := range values {
			if _, ok := v.(float64); !ok {
				continue
			}
			amountCell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return err
			}
			if err := f.SetCellStyle(SummarySheet, amountCell, amountCell, st.amount); err != nil {
				return err
			}
		}
		row++
		return nil
	}
	heading := func(values ...any) error {
		start := row
		if err := put(values...); err != nil {
			return err
		}
		end, err := excelize.CoordinatesToCellName(len(values), start)
		if err != nil {
			return err
		}
		return f.SetCellStyle(SummarySheet, fmt.Sprintf("A%d", start), end, st.header)
	}

	s := report.Summary
	stats := [][]any{
		{"Total spent", s.TotalSpent.InexactFloat64()},
		{"Expenses", s.Count},
		{"Average per expense", s.AveragePerExpense.InexactFloat64()},
		{"Top category", s.TopCategory},
		{"Monthly average", s.MonthlyAverage.InexactFloat64()},
	}
	if err := heading("Statistic", "Value"); err != nil {
		return err
	}
	for _, stat := range stats {
		if err := put(stat...); err != nil {
			return err
		}
		if err := f.SetCellStyle(SummarySheet, fmt.Sprintf("A%d", row-1), fmt.Sprintf("A%d", row-1), st.label); err != nil {
			return err
		}
	}

	row++
	if err := heading("Category", "Amount", "Count"); err != nil {
		return err
	}
	for _, c := range report.Categories {
		if err := put(string(c.Category), c.Amount.InexactFloat64(), c.Count); err != nil {
			return err
		}
	}

	row++
	if err := heading("Month", "Amount"); err != nil {
		return err
	}
	for _, m := range report.Months {
		if err := put(m.Label, m.Amount.InexactFloat64()); err != nil {
			return err
		}
	}

	return f.SetColWidth(SummarySheet, "A", "A", 22)
}
