package engine

import (
	"sort"

	"gorm.io/gorm"

	"github.com/choretab/choretab/models"
)

// Window selects which points column the leaderboard sorts on.
type Window string

const (
	WindowWeek  Window = "week"
	WindowMonth Window = "month"
	WindowAll   Window = "all"
)

// Valid reports whether w is a known window.
func (w Window) Valid() bool {
	return w == WindowWeek || w == WindowMonth || w == WindowAll
}

// LeaderboardEntry is one ranked row.
type LeaderboardEntry struct {
	Rank           int    `json:"rank"`
	UserID         uint   `json:"user_id"`
	Name           string `json:"name"`
	Points         int    `json:"points"`
	CompletedTasks int    `json:"completed_tasks"`
}

// Leaderboard ranks a household's members by points in a window. Each call
// recomputes from the current stats rows; there is no live cursor to restart.
type Leaderboard struct {
	db    *gorm.DB
	users *UserRegistry
}

// NewLeaderboard creates a ranker over db.
func NewLeaderboard(db *gorm.DB) *Leaderboard {
	return &Leaderboard{db: db, users: NewUserRegistry(db)}
}

// Rank returns the ordered leaderboard for a group. Sort key: window points
// descending, then completed tasks descending, then user id ascending. The
// tie-break chain fully orders entries, so ranks are dense 1..n with no
// shared positions.
func (b *Leaderboard) Rank(groupID uint, window Window) ([]LeaderboardEntry, error) {
	if !window.Valid() {
		return nil, &ValidationError{Field: "window", Reason: "must be week, month or all"}
	}

	members, err := b.users.InGroup(groupID)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return []LeaderboardEntry{}, nil
	}

	ids := make([]uint, len(members))
	names := make(map[uint]string, len(members))
	for i, u := range members {
		ids[i] = u.ID
		names[u.ID] = u.Name
	}

	var rows []models.UserStats
	if err := b.db.Where("user_id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, storeErr("load group stats", err)
	}
	byUser := make(map[uint]models.UserStats, len(rows))
	for _, r := range rows {
		byUser[r.UserID] = r
	}

	entries := make([]LeaderboardEntry, 0, len(members))
	for _, u := range members {
		stats := byUser[u.ID] // zero stats for members with no activity yet
		entries = append(entries, LeaderboardEntry{
			UserID:         u.ID,
			Name:           names[u.ID],
			Points:         windowPoints(stats, window),
			CompletedTasks: stats.CompletedTasks,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		if entries[i].CompletedTasks != entries[j].CompletedTasks {
			return entries[i].CompletedTasks > entries[j].CompletedTasks
		}
		return entries[i].UserID < entries[j].UserID
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

func windowPoints(s models.UserStats, w Window) int {
	switch w {
	case WindowWeek:
		return s.WeekPoints
	case WindowMonth:
		return s.MonthPoints
	default:
		return s.TotalPoints
	}
}
