package models

import "time"

// TaskHistory is the append-only audit trail: one row per applied transition.
// The engine writes these but never reads them back.
type TaskHistory struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	TaskID     string     `gorm:"size:36;index;not null" json:"task_id"`
	ActorID    uint       `gorm:"not null" json:"actor_id"`
	FromStatus TaskStatus `gorm:"size:16;not null" json:"from_status"`
	ToStatus   TaskStatus `gorm:"size:16;not null" json:"to_status"`
	Comment    string     `gorm:"size:1000" json:"comment,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
