package models

import "time"

// UserStats is a derived aggregate cache. It is recomputed wholesale from the
// points ledger and the task table and is never the source of truth.
type UserStats struct {
	UserID         uint       `gorm:"primaryKey" json:"user_id"`
	TotalPoints    int        `json:"total_points"`
	WeekPoints     int        `json:"week_points"`
	MonthPoints    int        `json:"month_points"`
	YearPoints     int        `json:"year_points"`
	TotalTasks     int        `json:"total_tasks"`
	CompletedTasks int        `json:"completed_tasks"`
	CurrentStreak  int        `json:"current_streak"`
	BestStreak     int        `json:"best_streak"`
	Rank           int        `json:"rank"`
	LastActivity   *time.Time `json:"last_activity,omitempty"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
