package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskStatus is the closed set of lifecycle states a task can be in.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusClaimed    TaskStatus = "claimed"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
	StatusApproved   TaskStatus = "approved"
	StatusRejected   TaskStatus = "rejected"
)

// transitions is the single authoritative lifecycle table. Guards on actor
// identity are enforced by the task store, not here.
var transitions = map[TaskStatus][]TaskStatus{
	StatusPending:    {StatusClaimed},
	StatusClaimed:    {StatusInProgress},
	StatusInProgress: {StatusCompleted},
	StatusCompleted:  {StatusApproved, StatusRejected},
	StatusRejected:   {StatusInProgress, StatusClaimed},
	StatusApproved:   {},
}

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Terminal reports whether no transition leaves s.
func (s TaskStatus) Terminal() bool {
	return len(transitions[s]) == 0
}

// CanTransition reports whether from -> to appears in the lifecycle table.
func CanTransition(from, to TaskStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Task priorities. Free-form categories are allowed; priorities are not.
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
)

// ValidPriority reports whether p is a known priority.
func ValidPriority(p string) bool {
	return p == PriorityLow || p == PriorityNormal || p == PriorityHigh
}

// Task is a unit of household work with an assignable lifecycle and a point
// value. Tasks are never physically deleted; ledger entries reference them.
type Task struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"size:2000" json:"description"`
	Category    string     `gorm:"size:64;index" json:"category"`
	Points      int        `gorm:"not null" json:"points"`
	Priority    string     `gorm:"size:16;default:normal" json:"priority"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	Status      TaskStatus `gorm:"size:16;index;not null;default:pending" json:"status"`
	CreatedBy   uint       `gorm:"index;not null" json:"created_by"`
	AssigneeID  *uint      `gorm:"index" json:"assignee_id,omitempty"`
	ApproverID  *uint      `json:"approver_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ClaimedAt   *time.Time `json:"claimed_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
}

// BeforeCreate assigns an id and timestamps when not provided.
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	now := time.Now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	return nil
}
