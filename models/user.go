package models

import (
	"time"

	"gorm.io/gorm"
)

// User is the minimal identity record the engine needs: authentication lives
// upstream, so no credentials are stored here. GroupID is the household the
// user belongs to and defines the leaderboard cohort.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:64;not null" json:"name"`
	GroupID   uint      `gorm:"index;not null" json:"group_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate ensures timestamps are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}
