// Package export writes and reads the expense report formats offered for
// download: a four-column CSV and an Excel workbook.
package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ryakubu/auto-categorize-app/internal/models"
)

// CSVHeader is the first line of every CSV report.
const CSVHeader = "Date,Description,Category,Amount"

// Filename names a report generated at now, e.g. expense-report-2024-01-31.csv.
func Filename(now time.Time, ext string) string {
	return fmt.Sprintf("expense-report-%s.%s", now.Format(models.DateLayout), strings.TrimPrefix(ext, "."))
}

// WriteCSV writes expenses in report order. The description is wrapped in
// double quotes and otherwise written verbatim; amounts have two decimals.
// Lines are separated by "\n" with no trailing newline.
func WriteCSV(w io.Writer, expenses []models.Expense) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(CSVHeader); err != nil {
		return err
	}
	for _, e := range expenses {
		if _, err := fmt.Fprintf(bw, "\n%s,\"%s\",%s,%s",
			e.Date.String(), e.Description, e.Category, e.Amount.StringFixed(2)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ParseError reports the line of a CSV report that could not be read.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string { return fmt.Sprintf("line %d: %v", e.Line, e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }

// ParseCSV reads a report produced by WriteCSV. Since descriptions are not
// escaped, the first field is the date, the last two are category and
// amount, and everything in between is the quoted description.
func ParseCSV(r io.Reader) ([]models.Expense, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var out []models.Expense
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		if line == 1 {
			if strings.TrimPrefix(text, "\ufeff") != CSVHeader {
				return nil, &ParseError{Line: line, Err: fmt.Errorf("expected header %q", CSVHeader)}
			}
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		e, err := parseRow(text)
		if err != nil {
			return nil, &ParseError{Line: line, Err: err}
		}
		out = append(out, e)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if line == 0 {
		return nil, &ParseError{Line: 1, Err: fmt.Errorf("empty report")}
	}
	return out, nil
}

func parseRow(text string) (models.Expense, error) {
	first := strings.IndexByte(text, ',')
	last := strings.LastIndexByte(text, ',')
	if first < 0 || last <= first {
		return models.Expense{}, fmt.Errorf("expected 4 fields")
	}
	beforeLast := strings.LastIndexByte(text[:last], ',')
	if beforeLast <= first {
		return models.Expense{}, fmt.Errorf("expected 4 fields")
	}

	date, err := models.ParseDate(text[:first])
	if err != nil {
		return models.Expense{}, err
	}

	desc := text[first+1 : beforeLast]
	if len(desc) < 2 || desc[0] != '"' || desc[len(desc)-1] != '"' {
		return models.Expense{}, fmt.Errorf("description must be wrapped in double quotes")
	}
	desc = desc[1 : len(desc)-1]

	category, err := models.ParseCategory(text[beforeLast+1 : last])
	if err != nil {
		return models.Expense{}, err
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(text[last+1:]))
	if err != nil {
		return models.Expense{}, fmt.Errorf("invalid amount %q", text[last+1:])
	}

	return models.Expense{
		Description: desc,
		Amount:      amount,
		Category:    category,
		Date:        date,
	}, nil
}
