package models

import (
	"time"

	"gorm.io/datatypes"
)

// SyncRun records the outcome of one snapshot pass. Rows are append-only
// and survive mirror resets.
type SyncRun struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	StartedAt  time.Time      `gorm:"not null" json:"started_at"`
	FinishedAt time.Time      `gorm:"not null" json:"finished_at"`
	Status     string         `gorm:"not null" json:"status"` // "complete" or "failed"
	Error      string         `json:"error,omitempty"`
	Counts     datatypes.JSON `gorm:"type:jsonb" json:"counts"`
}
