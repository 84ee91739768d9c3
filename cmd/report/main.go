// Command report prints a stored reconciliation run and can re-export it as
// an Excel workbook.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"factuurcheck/models"
	"factuurcheck/pkg/export"
	"factuurcheck/pkg/reconcile"
	"factuurcheck/pkg/runner"
)

func main() {
	runID := flag.Uint("run", 0, "run id to report (0 = most recent)")
	list := flag.Bool("list", false, "list the individual result rows")
	outFlag := flag.String("out", "", "write the run to an Excel workbook at this path")
	flag.Parse()

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN not set in env")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("open db: %v", err)
	}

	var run models.Run
	q := gdb.Order("id desc")
	if *runID != 0 {
		q = gdb.Where("id = ?", *runID)
	}
	if err := q.First(&run).Error; err != nil {
		log.Fatalf("run not found: %v", err)
	}

	var results []models.Result
	if err := gdb.Where("run_id = ?", run.ID).Order("id").Find(&results).Error; err != nil {
		log.Fatalf("fetch results failed: %v", err)
	}

	fmt.Printf("Run %d (%s): dir=%s files=%d rows=%d warnings=%d tolerance=%s\n",
		run.ID, run.CreatedAt.Format("2006-01-02 15:04"), run.SourceDir,
		run.FileCount, run.RowCount, run.Warnings, run.Tolerance)

	rows := make([]reconcile.Row, 0, len(results))
	for _, rec := range results {
		rows = append(rows, runner.RowFromRecord(rec))
	}
	tolerance := reconcile.DefaultOptions().Tolerance
	if d, err := decimal.NewFromString(run.Tolerance); err == nil {
		tolerance = d
	}
	summaries := reconcile.Summarize(rows, tolerance)
	for _, s := range summaries {
		fmt.Printf("  %s billed=%s expected=%s deviation=%s %s\n",
			s.FileName, s.Billed, s.Expected, s.Deviation, s.Status)
	}

	if *list {
		for _, rec := range results {
			fmt.Printf("%d|%s|%s|%s|%s|%s|%s\n",
				rec.ID, rec.FileName, rec.CodeMatched, rec.Quantity,
				decStr(rec.Expected), decStr(rec.Billed), rec.Status)
		}
	}

	if *outFlag != "" {
		var auditRecs []models.LineAudit
		if err := gdb.Where("run_id = ?", run.ID).Order("id").Find(&auditRecs).Error; err != nil {
			log.Fatalf("fetch line audits failed: %v", err)
		}
		audits := make([]reconcile.LineAudit, 0, len(auditRecs))
		for _, rec := range auditRecs {
			audits = append(audits, runner.AuditFromRecord(rec))
		}
		if err := export.WriteFile(*outFlag, rows, summaries, audits); err != nil {
			log.Fatalf("export failed: %v", err)
		}
		fmt.Printf("workbook written to %s\n", *outFlag)
	}
}

func decStr(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}
