package runner

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"factuurcheck/pkg/reconcile"
)

// fakeSource serves canned lines per base filename.
type fakeSource struct {
	lines map[string][]string
	fail  map[string]error
}

func (f *fakeSource) Lines(path string) ([]string, bool, error) {
	name := filepath.Base(path)
	if err, ok := f.fail[name]; ok {
		return nil, false, err
	}
	return f.lines[name], false, nil
}

func testCatalog() *reconcile.Catalog {
	return reconcile.NewCatalog([]reconcile.Entry{
		{Code: "123456", UnitPrice: decimal.RequireFromString("150.00"), Description: "vervangen kozijn"},
	})
}

func touch(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRunProcessesFolderInOrder(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "b_factuur.pdf")
	touch(t, dir, "a_factuur.pdf")
	touch(t, dir, "notes.txt") // ignored

	src := &fakeSource{lines: map[string][]string{
		"a_factuur.pdf": {"123456 kozijn 2,00 stuk 300,00"},
		"b_factuur.pdf": {"123456 kozijn 1,00 stuk 150,00"},
	}}
	r := New(Config{Catalog: testCatalog(), Source: src, Workers: 4})
	rep, err := r.Run(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Files) != 2 || rep.Files[0].FileName != "a_factuur.pdf" || rep.Files[1].FileName != "b_factuur.pdf" {
		t.Fatalf("files: %+v", rep.Files)
	}
	if len(rep.Rows) != 2 {
		t.Fatalf("rows: %+v", rep.Rows)
	}
	if rep.Rows[0].FileName != "a_factuur.pdf" {
		t.Fatalf("row order broken: %+v", rep.Rows[0])
	}
	if len(rep.Summaries) != 2 {
		t.Fatalf("summaries: %+v", rep.Summaries)
	}
}

func TestRunCollectsWarnings(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "broken.pdf")
	touch(t, dir, "good.pdf")

	src := &fakeSource{
		lines: map[string][]string{"good.pdf": {"123456 kozijn 1,00 stuk 150,00"}},
		fail:  map[string]error{"broken.pdf": errors.New("no text lines extracted")},
	}
	r := New(Config{Catalog: testCatalog(), Source: src, Workers: 1})
	rep, err := r.Run(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Warnings) != 1 || len(rep.Rows) != 1 {
		t.Fatalf("warnings=%v rows=%v", rep.Warnings, rep.Rows)
	}
	if rep.Rows[0].FileName != "good.pdf" {
		t.Fatalf("row %+v", rep.Rows[0])
	}
}

type panicSource struct{}

func (panicSource) Lines(string) ([]string, bool, error) { panic("boom") }

func TestRunSurvivesPanickingDocument(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "evil.pdf")

	r := New(Config{Catalog: testCatalog(), Source: panicSource{}, Workers: 2})
	rep, err := r.Run(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Warnings) != 1 {
		t.Fatalf("warnings: %v", rep.Warnings)
	}
}

func TestRunEmptyFolder(t *testing.T) {
	r := New(Config{Catalog: testCatalog(), Source: &fakeSource{}})
	rep, err := r.Run(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Files) != 0 || len(rep.Rows) != 0 {
		t.Fatalf("report: %+v", rep)
	}
}

func TestRunMissingFolder(t *testing.T) {
	r := New(Config{Catalog: testCatalog(), Source: &fakeSource{}})
	if _, err := r.Run("/nonexistent/invoices"); err == nil {
		t.Fatal("expected error")
	}
}
