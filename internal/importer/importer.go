package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"ralli/internal/domain"
	customersvc "ralli/internal/service/customer"
	"github.com/rs/zerolog"
)

type CustomerWriter interface {
	Upsert(ctx context.Context, c domain.Customer) (*domain.Customer, error)
}

// RowError describes a data row that was skipped.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// Result summarises an import run.
type Result struct {
	Imported int
	Skipped  []RowError
}

// CSVImporter reads a customer list exported from another shop system and
// upserts every row into one store, keyed by phone like a walk-in order.
type CSVImporter struct {
	reader    *csv.Reader
	customers CustomerWriter
	storeID   string
	logger    zerolog.Logger
}

func NewCSVImporter(r io.Reader, customers CustomerWriter, storeID string, logger zerolog.Logger) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	return &CSVImporter{
		reader:    csvr,
		customers: customers,
		storeID:   storeID,
		logger:    logger,
	}
}

// header aliases accepted for each column
var columns = map[string][]string{
	"name":     {"name", "customer_name", "full_name"},
	"phone":    {"phone", "phone_number", "mobile"},
	"email":    {"email", "email_address"},
	"language": {"language", "preferred_language", "lang"},
}

// Run upserts every valid row. Rows failing validation are skipped and
// reported; a storage error stops the run.
func (i *CSVImporter) Run(ctx context.Context) (Result, error) {
	var res Result

	headers, err := i.reader.Read()
	if err != nil {
		return res, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	if _, ok := index["name"]; !ok {
		return res, errors.New("missing name column")
	}
	if _, ok := index["phone"]; !ok {
		return res, errors.New("missing phone column")
	}

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("read row: %w", err)
		}
		line, _ := i.reader.FieldPos(0)
		if blank(record) {
			continue
		}

		c, err := customersvc.Normalize(i.storeID, customersvc.Input{
			Name:              pick(record, index, "name"),
			Phone:             pick(record, index, "phone"),
			Email:             pick(record, index, "email"),
			PreferredLanguage: pick(record, index, "language"),
		})
		if err != nil {
			i.logger.Warn().Int("line", line).Err(err).Msg("skipping customer row")
			res.Skipped = append(res.Skipped, RowError{Line: line, Err: err})
			continue
		}

		if _, err := i.customers.Upsert(ctx, c); err != nil {
			return res, fmt.Errorf("upsert customer on line %d: %w", line, err)
		}
		res.Imported++
	}

	return res, nil
}

// headerIndex maps canonical column names to their position.
func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(columns))
	for pos, h := range headers {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		h = strings.ReplaceAll(h, " ", "_")
		for canonical, aliases := range columns {
			if _, seen := idx[canonical]; seen {
				continue
			}
			for _, alias := range aliases {
				if h == alias {
					idx[canonical] = pos
				}
			}
		}
	}
	return idx
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
