package models

import "time"

// IngestedFile dedupes folder scans: a (path, mtime) pair already present
// here is skipped on the next run. Touching the file makes it eligible again.
type IngestedFile struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Path      string    `gorm:"size:512;not null;uniqueIndex"`
	ModTime   time.Time `gorm:"not null"`
	RunID     uint      `gorm:"index"`
}
