package runner

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"factuurcheck/models"
	"factuurcheck/pkg/reconcile"
)

// filterIngested drops files already processed at their current mtime.
// Without a database everything is eligible.
func (r *Runner) filterIngested(dir string, names []string) ([]string, int) {
	if r.cfg.DB == nil {
		return names, 0
	}
	var out []string
	skipped := 0
	for _, name := range names {
		path := filepath.Join(dir, name)
		fi, err := os.Stat(path)
		if err != nil {
			out = append(out, name)
			continue
		}
		var existing models.IngestedFile
		err = r.cfg.DB.Where("path = ?", path).First(&existing).Error
		if err == nil && !fi.ModTime().After(existing.ModTime) {
			skipped++
			continue
		}
		out = append(out, name)
	}
	return out, skipped
}

// markIngested upserts the (path, mtime) pairs of a finished run.
func (r *Runner) markIngested(dir string, names []string, runID uint) {
	for _, name := range names {
		path := filepath.Join(dir, name)
		fi, err := os.Stat(path)
		if err != nil {
			continue
		}
		var existing models.IngestedFile
		if err := r.cfg.DB.Where("path = ?", path).First(&existing).Error; err == nil {
			existing.ModTime = fi.ModTime()
			existing.RunID = runID
			if err := r.cfg.DB.Save(&existing).Error; err != nil {
				log.Printf("runner: update ingested %s: %v", path, err)
			}
			continue
		}
		rec := models.IngestedFile{Path: path, ModTime: fi.ModTime(), RunID: runID}
		if err := r.cfg.DB.Create(&rec).Error; err != nil {
			log.Printf("runner: record ingested %s: %v", path, err)
		}
	}
}

// Persist writes a report to the database and marks the named files
// ingested. A nil DB makes it a no-op.
func (r *Runner) Persist(dir string, rep *Report, names []string) error {
	if r.cfg.DB == nil {
		return nil
	}
	if err := r.persist(dir, rep); err != nil {
		return err
	}
	r.markIngested(dir, names, rep.RunID)
	return nil
}

// ResetIngested forgets the ingest state under dir so its files are eligible
// for processing again.
func (r *Runner) ResetIngested(dir string) error {
	if r.cfg.DB == nil {
		return nil
	}
	pattern := filepath.Join(dir, "%")
	return r.cfg.DB.Where("path LIKE ?", pattern).Delete(&models.IngestedFile{}).Error
}

// persist writes the run header plus its results and line audits, and fills
// in the report's RunID.
func (r *Runner) persist(dir string, rep *Report) error {
	run := models.Run{
		UserID:      r.cfg.UserID,
		SourceDir:   dir,
		CatalogPath: r.cfg.CatalogPath,
		Tolerance:   r.cfg.Options.Tolerance.String(),
		Aggregate:   r.cfg.Options.Aggregate,
		FileCount:   len(rep.Files),
		RowCount:    len(rep.Rows),
		Warnings:    len(rep.Warnings),
	}
	if err := r.cfg.DB.Create(&run).Error; err != nil {
		return err
	}
	rep.RunID = run.ID

	for _, row := range rep.Rows {
		rec := resultRecord(run.ID, row)
		if err := r.cfg.DB.Create(&rec).Error; err != nil {
			return err
		}
	}
	for _, a := range rep.Audits {
		rec := auditRecord(run.ID, a)
		if err := r.cfg.DB.Create(&rec).Error; err != nil {
			return err
		}
	}
	return nil
}

func resultRecord(runID uint, row reconcile.Row) models.Result {
	return models.Result{
		RunID:         runID,
		FileName:      row.FileName,
		InvoiceNumber: row.InvoiceNumber,
		CodeFound:     row.CodeFound,
		CodeMatched:   row.CodeMatched,
		Quantity:      row.Quantity,
		Description:   row.Description,
		UnitPrice:     row.UnitPrice,
		Expected:      row.Expected,
		Billed:        row.Billed,
		Deviation:     row.Deviation,
		Status:        string(row.Status),
		Lines:         strings.Join(row.Lines, "\n"),
		Method:        string(row.Method),
	}
}

func auditRecord(runID uint, a reconcile.LineAudit) models.LineAudit {
	return models.LineAudit{
		RunID:         runID,
		FileName:      a.FileName,
		InvoiceNumber: a.InvoiceNumber,
		LineIndex:     a.Index,
		Text:          a.Text,
		Codes:         strings.Join(a.Codes, ","),
		Amounts:       joinDecimals(a.Amounts),
		Quantities:    joinDecimals(a.QuantityCandidates),
		HasCode:       a.HasCode,
		Method:        string(a.Method),
	}
}

func joinDecimals(vals []decimal.Decimal) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = v.String()
	}
	return strings.Join(parts, ",")
}

func splitDecimals(s string) []decimal.Decimal {
	if s == "" {
		return nil
	}
	var out []decimal.Decimal
	for _, part := range strings.Split(s, ",") {
		if d, err := decimal.NewFromString(part); err == nil {
			out = append(out, d)
		}
	}
	return out
}

// RowFromRecord rebuilds a reconciled row from its persisted form, for
// exports of historical runs.
func RowFromRecord(rec models.Result) reconcile.Row {
	var lines []string
	if rec.Lines != "" {
		lines = strings.Split(rec.Lines, "\n")
	}
	return reconcile.Row{
		FileName:      rec.FileName,
		InvoiceNumber: rec.InvoiceNumber,
		CodeFound:     rec.CodeFound,
		CodeMatched:   rec.CodeMatched,
		Quantity:      rec.Quantity,
		Description:   rec.Description,
		UnitPrice:     rec.UnitPrice,
		Expected:      rec.Expected,
		Billed:        rec.Billed,
		Deviation:     rec.Deviation,
		Status:        reconcile.Status(rec.Status),
		Lines:         lines,
		Method:        reconcile.Method(rec.Method),
	}
}

// AuditFromRecord is the inverse of auditRecord.
func AuditFromRecord(rec models.LineAudit) reconcile.LineAudit {
	var codes []string
	if rec.Codes != "" {
		codes = strings.Split(rec.Codes, ",")
	}
	return reconcile.LineAudit{
		FileName:           rec.FileName,
		InvoiceNumber:      rec.InvoiceNumber,
		Index:              rec.LineIndex,
		Text:               rec.Text,
		Codes:              codes,
		Amounts:            splitDecimals(rec.Amounts),
		QuantityCandidates: splitDecimals(rec.Quantities),
		HasCode:            rec.HasCode,
		Method:             reconcile.Method(rec.Method),
	}
}
