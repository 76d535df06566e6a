package models

import "time"

// Reason codes for ledger entries.
const (
	ReasonTaskApproved = "task_approved"
	ReasonAdjustment   = "manual_adjustment"
)

// PointsEntry is one immutable row of the points ledger. Entries are only ever
// appended; corrections are new entries with a compensating delta.
type PointsEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	TaskID    *string   `gorm:"size:36;index" json:"task_id,omitempty"`
	Delta     int       `gorm:"not null" json:"delta"`
	Reason    string    `gorm:"size:32;not null" json:"reason"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
