package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Result is one persisted reconciled row. Nullable money columns stay nil
// when the engine could not determine them.
type Result struct {
	ID            uint `gorm:"primaryKey"`
	CreatedAt     time.Time
	RunID         uint             `gorm:"index;not null"`
	FileName      string           `gorm:"size:255;not null;index"`
	InvoiceNumber string           `gorm:"size:64"`
	CodeFound     string           `gorm:"size:16;index"`
	CodeMatched   string           `gorm:"size:16;index"`
	Quantity      decimal.Decimal  `gorm:"type:numeric(12,2)"`
	Description   string           `gorm:"size:512"`
	UnitPrice     *decimal.Decimal `gorm:"type:numeric(12,2)"`
	Expected      *decimal.Decimal `gorm:"type:numeric(12,2)"`
	Billed        *decimal.Decimal `gorm:"type:numeric(12,2)"`
	Deviation     *decimal.Decimal `gorm:"type:numeric(12,2)"`
	Status        string           `gorm:"size:32;not null;index"`
	Lines         string           `gorm:"type:text"` // source lines joined with newlines
	Method        string           `gorm:"size:16"`
}
