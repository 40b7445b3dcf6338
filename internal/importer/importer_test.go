package importer

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"ralli/internal/domain"
	"github.com/rs/zerolog"
)

type stubCustomerRepo struct {
	items []domain.Customer
	err   error
}

func (s *stubCustomerRepo) Upsert(_ context.Context, c domain.Customer) (*domain.Customer, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.items = append(s.items, c)
	return &c, nil
}

func newImporter(data string, repo CustomerWriter) *CSVImporter {
	return NewCSVImporter(strings.NewReader(data), repo, "store-1", zerolog.New(io.Discard))
}

func TestCSVImporter_Run(t *testing.T) {
	csvData := "Full_Name,Phone Number,Email,Language\n" +
		"Ana Lima,(604) 555-0101, ANA@Example.com ,FR\n" +
		",,,\n" +
		"Ben Ong,+1 604 555 0102,,\n"

	repo := &stubCustomerRepo{}
	res, err := newImporter(csvData, repo).Run(context.Background())
	if err != nil {
		t.Fatalf("import run: %v", err)
	}
	if res.Imported != 2 || len(res.Skipped) != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}

	first := repo.items[0]
	if first.StoreID != "store-1" || first.Name != "Ana Lima" || first.Phone != "6045550101" {
		t.Fatalf("unexpected customer: %+v", first)
	}
	if first.Email != "ana@example.com" || first.PreferredLanguage != "fr" {
		t.Fatalf("email and language not normalised: %+v", first)
	}
	if repo.items[1].Phone != "+16045550102" {
		t.Fatalf("unexpected phone: %s", repo.items[1].Phone)
	}
}

func TestCSVImporter_SkipsInvalidRows(t *testing.T) {
	csvData := "name,phone,email\n" +
		"Ana,6045550101,ana@example.com\n" +
		"No Phone,,x@example.com\n" +
		"Bad Email,6045550103,not-an-email\n"

	repo := &stubCustomerRepo{}
	res, err := newImporter(csvData, repo).Run(context.Background())
	if err != nil {
		t.Fatalf("import run: %v", err)
	}
	if res.Imported != 1 {
		t.Fatalf("expected 1 imported, got %d", res.Imported)
	}
	if len(res.Skipped) != 2 || res.Skipped[0].Line != 3 || res.Skipped[1].Line != 4 {
		t.Fatalf("unexpected skipped rows: %+v", res.Skipped)
	}
}

func TestCSVImporter_MissingColumns(t *testing.T) {
	_, err := newImporter("name,email\nAna,ana@example.com\n", &stubCustomerRepo{}).Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "phone") {
		t.Fatalf("expected missing phone column error, got %v", err)
	}
}

func TestCSVImporter_StopsOnWriteError(t *testing.T) {
	repo := &stubCustomerRepo{err: errors.New("connection refused")}

	res, err := newImporter("name,phone\nAna,6045550101\n", repo).Run(context.Background())

	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("expected write error with line, got %v", err)
	}
	if res.Imported != 0 {
		t.Fatalf("expected nothing imported, got %d", res.Imported)
	}
}
