// Command importfinancials loads dashboard metrics from an Excel workbook into
// the financial_data table. The first sheet must have a header row with the
// columns client, cash_balance, revenue, expenses and net_burn (any order).
// The client column holds either the user ID or the account email.
// Usage: go run ./cmd/importfinancials -file metrics.xlsx [-sheet Sheet1]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"clientportal/internal/config"
	"clientportal/internal/domain"
	"clientportal/internal/port"
	"clientportal/internal/repository/postgres"
)

var requiredColumns = []string{"client", "cash_balance", "revenue", "expenses", "net_burn"}

type row struct {
	line    int
	client  string
	metrics domain.FinancialMetrics
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	xlsxPath := flag.String("file", "", "path to the .xlsx workbook")
	sheet := flag.String("sheet", "", "sheet name (defaults to the first sheet)")
	flag.Parse()
	if *xlsxPath == "" {
		return errors.New("-file is required")
	}

	f, err := excelize.OpenFile(*xlsxPath)
	if err != nil {
		return fmt.Errorf("open Excel file: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheetName := *sheet
	if sheetName == "" {
		sheetName = f.GetSheetName(0)
	}
	sheetRows, err := f.GetRows(sheetName)
	if err != nil {
		return fmt.Errorf("read sheet %q: %w", sheetName, err)
	}

	rows, err := parseRows(sheetRows)
	if err != nil {
		return err
	}
	log.Printf("Parsed %d rows from %s", len(rows), sheetName)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	imported, err := importRows(context.Background(), rows, postgres.NewUserRepo(db), postgres.NewFinancialDataRepo(db))
	if err != nil {
		return err
	}
	log.Printf("Imported %d of %d rows", imported, len(rows))
	return nil
}

// parseRows maps the header row to column indexes and converts every
// following non-empty row. Amounts may carry thousands separators or a
// currency symbol.
func parseRows(sheetRows [][]string) ([]row, error) {
	if len(sheetRows) == 0 {
		return nil, errors.New("sheet is empty")
	}

	index := make(map[string]int)
	for i, h := range sheetRows[0] {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("missing column %q in header", col)
		}
	}

	var out []row
	for i := 1; i < len(sheetRows); i++ {
		cells := sheetRows[i]
		client := strings.TrimSpace(cellVal(cells, index["client"]))
		if client == "" {
			continue
		}

		r := row{line: i + 1, client: client}
		fields := []*float64{&r.metrics.CashBalance, &r.metrics.Revenue, &r.metrics.Expenses, &r.metrics.NetBurn}
		for j, col := range requiredColumns[1:] {
			v, err := parseAmount(cellVal(cells, index[col]))
			if err != nil {
				return nil, fmt.Errorf("row %d, column %s: %w", r.line, col, err)
			}
			*fields[j] = v
		}
		out = append(out, r)
	}
	return out, nil
}

func importRows(ctx context.Context, rows []row, users port.UserRepository, metrics port.FinancialDataRepository) (int, error) {
	imported := 0
	for i := range rows {
		r := &rows[i]
		clientID, err := resolveClient(ctx, users, r.client)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				log.Printf("WARNING: row %d: no account for %q, skipping", r.line, r.client)
				continue
			}
			return imported, fmt.Errorf("row %d: %w", r.line, err)
		}
		r.metrics.ClientID = clientID
		if err := metrics.Upsert(ctx, &r.metrics); err != nil {
			return imported, fmt.Errorf("row %d: %w", r.line, err)
		}
		imported++
	}
	return imported, nil
}

func resolveClient(ctx context.Context, users port.UserRepository, client string) (uuid.UUID, error) {
	if id, err := uuid.Parse(client); err == nil {
		return id, nil
	}
	user, err := users.GetByEmail(ctx, strings.ToLower(client))
	if err != nil {
		return uuid.Nil, err
	}
	return user.ID, nil
}

func parseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	negative := strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")")
	s = strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount: %w", err)
	}
	if negative {
		v = -v
	}
	return v, nil
}

func cellVal(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}
