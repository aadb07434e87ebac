// Command report works on exported CSV reports offline: it prints their
// summary, converts them to workbooks and answers category suggestions.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ryakubu/auto-categorize-app/internal/categorizer"
	"github.com/ryakubu/auto-categorize-app/internal/config"
	"github.com/ryakubu/auto-categorize-app/internal/export"
	"github.com/ryakubu/auto-categorize-app/internal/logger"
	"github.com/ryakubu/auto-categorize-app/internal/models"
	"github.com/ryakubu/auto-categorize-app/internal/tracker"
)

const usage = `usage:
  report summary <file.csv>...
  report suggest <description...>
  report xlsx <in.csv> <out.xlsx>`

// localUser owns the expenses loaded from files.
const localUser = "local"

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		logger.Get().Fatalf("report: %v", err)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) < 2 {
		return fmt.Errorf("%s", usage)
	}

	switch args[0] {
	case "summary":
		session, err := loadSession(ctx, args[1:])
		if err != nil {
			return err
		}
		printSummary(out, session)
		return nil

	case "suggest":
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		rules, err := categorizer.LoadOrDefault(cfg.CategoryRulesFile)
		if err != nil {
			return err
		}
		m := rules.Explain(strings.Join(args[1:], " "))
		if m.Keyword == "" {
			fmt.Fprintf(out, "%s (no keyword matched)\n", m.Category)
		} else {
			fmt.Fprintf(out, "%s (matched %q)\n", m.Category, m.Keyword)
		}
		return nil

	case "xlsx":
		if len(args) != 3 {
			return fmt.Errorf("%s", usage)
		}
		return convert(ctx, args[1], args[2])

	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
}

// loadSession parses every file concurrently and loads the rows, in file
// order, into a session over an in-memory store.
func loadSession(ctx context.Context, paths []string) (*tracker.Session, error) {
	parsed := make([][]models.Expense, len(paths))

	g, _ := errgroup.WithContext(ctx)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			expenses, err := readCSV(path)
			if err != nil {
				return err
			}
			parsed[i] = expenses
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	store := tracker.NewMemoryStore()
	for _, expenses := range parsed {
		for _, e := range expenses {
			if _, err := store.CreateExpense(ctx, localUser, e); err != nil {
				return nil, err
			}
		}
	}

	session := tracker.NewSession(store)
	if err := session.Load(ctx, localUser); err != nil {
		return nil, err
	}
	return session, nil
}

func readCSV(path string) ([]models.Expense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	expenses, err := export.ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return expenses, nil
}

func printSummary(out io.Writer, session *tracker.Session) {
	p := message.NewPrinter(language.English)
	report := session.Report()

	p.Fprintf(out, "Total spent:          %.2f\n", report.Summary.TotalSpent.InexactFloat64())
	p.Fprintf(out, "Expenses:             %d\n", report.Summary.Count)
	p.Fprintf(out, "Average per expense:  %.2f\n", report.Summary.AveragePerExpense.InexactFloat64())
	p.Fprintf(out, "Top category:         %s\n", report.Summary.TopCategory)
	p.Fprintf(out, "Monthly average:      %.2f over %d month(s)\n",
		report.Summary.MonthlyAverage.InexactFloat64(), report.Summary.MonthCount)

	fmt.Fprintln(out, "\nBy category:")
	for _, c := range report.Categories {
		p.Fprintf(out, "  %-14s %12.2f  (%d)\n", c.Category, c.Amount.InexactFloat64(), c.Count)
	}

	fmt.Fprintln(out, "\nBy month:")
	for _, m := range report.Months {
		p.Fprintf(out, "  %-14s %12.2f\n", m.Label, m.Amount.InexactFloat64())
	}
}

func convert(ctx context.Context, in, out string) error {
	session, err := loadSession(ctx, []string{in})
	if err != nil {
		return err
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := export.WriteXLSX(f, session.Expenses(), session.Report()); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	logger.Get().Infow("workbook written", "path", out, "expenses", len(session.Expenses()))
	return nil
}
