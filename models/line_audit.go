package models

import "time"

// LineAudit is the persisted per-line feature dump: what the extractors saw
// on every original line of a document, for debugging misreconciled invoices.
type LineAudit struct {
	ID            uint `gorm:"primaryKey"`
	CreatedAt     time.Time
	RunID         uint   `gorm:"index;not null"`
	FileName      string `gorm:"size:255;not null;index"`
	InvoiceNumber string `gorm:"size:64"`
	LineIndex     int    `gorm:"not null"`
	Text          string `gorm:"type:text"`
	Codes         string `gorm:"size:512"`  // comma-joined normalized codes
	Amounts       string `gorm:"size:512"`  // comma-joined decimal values
	Quantities    string `gorm:"size:512"`  // comma-joined quantity candidates
	HasCode       bool   `gorm:"not null"`
	Method        string `gorm:"size:16"`
}
