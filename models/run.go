package models

import "time"

// Run records one reconciliation pass over a folder of invoices, with the
// parameters it ran under. Results and line audits hang off it.
type Run struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	UserID      *uint  `gorm:"index"` // nil for CLI runs
	SourceDir   string `gorm:"size:512"`
	CatalogPath string `gorm:"size:512"`
	Tolerance   string `gorm:"size:32;not null"`
	Aggregate   bool   `gorm:"not null"`
	FileCount   int    `gorm:"not null"`
	RowCount    int    `gorm:"not null"`
	Warnings    int    `gorm:"not null"`

	Results []Result    `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE;"`
	Lines   []LineAudit `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE;"`
}
