// Package runner orchestrates reconciliation over folders of invoice PDFs:
// file listing, ingest dedup, a worker pool, run persistence and watch mode.
package runner

import (
	"fmt"
	"io/fs"
	"log"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"gorm.io/gorm"

	"factuurcheck/pkg/reconcile"
)

// LineSource yields the text lines of one document. The bool reports whether
// the OCR fallback produced them.
type LineSource interface {
	Lines(path string) ([]string, bool, error)
}

// Config wires a Runner. DB may be nil: reconciliation then runs without
// history or ingest dedup.
type Config struct {
	Catalog     *reconcile.Catalog
	CatalogPath string
	Source      LineSource
	Options     reconcile.Options
	Workers     int
	DB          *gorm.DB
	UserID      *uint
	Verbose     bool
}

// Runner processes batches of invoice files against one catalog.
type Runner struct {
	cfg Config
}

func New(cfg Config) *Runner {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Options.Matcher == nil && cfg.Options.Tolerance.IsZero() {
		cfg.Options = reconcile.DefaultOptions()
	} else if cfg.Options.Matcher == nil {
		cfg.Options.Matcher = reconcile.ExactMatcher{}
	}
	return &Runner{cfg: cfg}
}

// FileResult is one document's outcome inside a run.
type FileResult struct {
	FileName string
	Method   reconcile.Method
	Rows     []reconcile.Row
	Audits   []reconcile.LineAudit
	Err      error
}

// Report is the outcome of one run over a folder or batch.
type Report struct {
	RunID     uint
	Files     []FileResult
	Rows      []reconcile.Row
	Audits    []reconcile.LineAudit
	Summaries []reconcile.Summary
	Warnings  []string
	Skipped   int
}

// Run processes every not-yet-ingested invoice in dir and persists the run
// when a database is configured.
func (r *Runner) Run(dir string) (*Report, error) {
	names, err := listInvoiceFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	names, skipped := r.filterIngested(dir, names)
	rep := r.RunFiles(dir, names)
	rep.Skipped = skipped
	if err := r.Persist(dir, rep, names); err != nil {
		return rep, fmt.Errorf("persist run: %w", err)
	}
	return rep, nil
}

// RunFiles reconciles the named files under dir with the worker pool. Results
// keep file order regardless of which worker finished first.
func (r *Runner) RunFiles(dir string, names []string) *Report {
	results := make([]FileResult, len(names))
	jobs := make(chan int, len(names))
	var wg sync.WaitGroup
	for w := 0; w < r.cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = r.processSafe(filepath.Join(dir, names[idx]))
			}
		}()
	}
	for i := range names {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	rep := &Report{Files: results}
	for _, fr := range results {
		if fr.Err != nil {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("%s: %v", fr.FileName, fr.Err))
			continue
		}
		rep.Rows = append(rep.Rows, fr.Rows...)
		rep.Audits = append(rep.Audits, fr.Audits...)
	}
	rep.Summaries = reconcile.Summarize(rep.Rows, r.cfg.Options.Tolerance)
	return rep
}

// processSafe shields the pool from a panicking document: the file is
// reported as a warning and the run continues.
func (r *Runner) processSafe(path string) (fr FileResult) {
	fr.FileName = filepath.Base(path)
	defer func() {
		if rec := recover(); rec != nil {
			fr.Err = fmt.Errorf("panic: %v", rec)
		}
	}()
	if r.cfg.Catalog == nil {
		fr.Err = reconcile.ErrNoCatalog
		return
	}

	lines, ocrUsed, err := r.cfg.Source.Lines(path)
	if err != nil {
		fr.Err = err
		return
	}
	method := reconcile.MethodPDFText
	if ocrUsed {
		method = reconcile.MethodOCR
	}
	fr.Method = method
	if r.cfg.Verbose {
		log.Printf("runner: %s: %d lines (%s)", fr.FileName, len(lines), method)
	}

	doc := reconcile.Document{FileName: fr.FileName, Lines: lines, Method: method}
	fr.Rows, fr.Audits = reconcile.Reconcile(doc, r.cfg.Catalog, r.cfg.Options)
	return
}

// listInvoiceFiles walks dir recursively and returns dir-relative paths of
// every PDF, sorted.
func listInvoiceFiles(dir string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isInvoiceExt(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		out = append(out, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

func isInvoiceExt(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}
