// Command scan reconciles a folder of invoice PDFs against the price catalog
// from the command line, with optional watch mode and Excel output.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"factuurcheck/pkg/catalog"
	"factuurcheck/pkg/export"
	"factuurcheck/pkg/pdftext"
	"factuurcheck/pkg/reconcile"
	"factuurcheck/pkg/runner"
)

func main() {
	dirFlag := flag.String("dir", "invoices", "directory to scan for invoice PDFs")
	catFlag := flag.String("catalog", os.Getenv("CATALOG_PATH"), "price catalog file (.xlsx or .csv)")
	tolFlag := flag.String("tolerance", "", "max € deviation before a row counts as deviation (default 0.05)")
	perLine := flag.Bool("per-line", false, "one result row per invoice line instead of per code")
	watch := flag.Bool("watch", false, "keep watching the directory for new files")
	workers := flag.Int("workers", 0, "worker pool size (default NumCPU)")
	noDB := flag.Bool("no-db", false, "skip run history and ingest dedup (no DB_DSN needed)")
	rescan := flag.Bool("rescan", false, "forget ingest history for the directory before running")
	noOCR := flag.Bool("no-ocr", false, "disable the OCR fallback for scanned PDFs")
	outFlag := flag.String("out", "", "write the results to an Excel workbook at this path")
	verbose := flag.Bool("verbose", false, "verbose per-file logging")
	flag.Parse()

	if *catFlag == "" {
		log.Fatal("no catalog: pass -catalog or set CATALOG_PATH")
	}
	cat, err := catalog.Load(*catFlag)
	if err != nil {
		log.Fatalf("load catalog: %v", err)
	}
	log.Printf("catalog loaded: %d codes", cat.Len())

	opts := reconcile.DefaultOptions()
	if *tolFlag != "" {
		d, err := decimal.NewFromString(*tolFlag)
		if err != nil || !d.IsPositive() {
			log.Fatalf("invalid -tolerance %q", *tolFlag)
		}
		opts.Tolerance = d
	}
	opts.Aggregate = !*perLine

	var gdb *gorm.DB
	if !*noDB {
		dsn := os.Getenv("DB_DSN")
		if dsn == "" {
			log.Fatal("DB_DSN must be set (or pass -no-db to run without history)")
		}
		gdb, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
	}

	r := runner.New(runner.Config{
		Catalog:     cat,
		CatalogPath: *catFlag,
		Source:      pdftext.NewExtractor(!*noOCR),
		Options:     opts,
		Workers:     *workers,
		DB:          gdb,
		Verbose:     *verbose,
	})

	if *rescan {
		if err := r.ResetIngested(*dirFlag); err != nil {
			log.Fatalf("reset ingest history: %v", err)
		}
	}

	if *watch {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := r.Watch(ctx, *dirFlag); err != nil && err != context.Canceled {
			log.Fatalf("watch failed: %v", err)
		}
		return
	}

	rep, err := r.Run(*dirFlag)
	if err != nil {
		log.Fatalf("run failed: %v", err)
	}
	printReport(rep)
	if *outFlag != "" {
		if err := export.WriteFile(*outFlag, rep.Rows, rep.Summaries, rep.Audits); err != nil {
			log.Fatalf("export failed: %v", err)
		}
		log.Printf("workbook written to %s", *outFlag)
	}
}

func printReport(rep *runner.Report) {
	for _, s := range rep.Summaries {
		fmt.Printf("%s|billed=%s|expected=%s|deviation=%s|%s\n",
			s.FileName, s.Billed, s.Expected, s.Deviation, s.Status)
	}
	for _, w := range rep.Warnings {
		log.Printf("WARN %s", w)
	}
	log.Printf("done: files=%d rows=%d skipped=%d warnings=%d (run=%d)",
		len(rep.Files), len(rep.Rows), rep.Skipped, len(rep.Warnings), rep.RunID)
}
