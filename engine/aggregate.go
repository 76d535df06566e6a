package engine

import (
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/choretab/choretab/models"
)

// Aggregator recomputes UserStats wholesale from the ledger and the task
// table. Recomputation is a pure function of (ledger rows, task rows, now):
// running it twice against the same snapshot yields identical stats, and
// concurrent recomputes for the same user converge because the last writer
// persists the same row any other writer would have.
type Aggregator struct {
	db     *gorm.DB
	ledger *Ledger
	clock  Clock
	log    *zap.SugaredLogger
}

// NewAggregator creates an aggregator over db using clock for window and
// streak boundaries.
func NewAggregator(db *gorm.DB, clock Clock, log *zap.SugaredLogger) *Aggregator {
	return &Aggregator{db: db, ledger: NewLedger(db), clock: clock, log: log}
}

// Recompute rebuilds and persists the stats row for one user.
func (a *Aggregator) Recompute(userID uint) (*models.UserStats, error) {
	now := a.clock.now()

	total, err := a.ledger.SumFor(userID, nil, nil)
	if err != nil {
		return nil, err
	}
	week, err := a.windowSum(userID, a.clock.weekStart(now))
	if err != nil {
		return nil, err
	}
	month, err := a.windowSum(userID, a.clock.monthStart(now))
	if err != nil {
		return nil, err
	}
	year, err := a.windowSum(userID, a.clock.yearStart(now))
	if err != nil {
		return nil, err
	}

	// "Ever assigned" must survive reassignment: a rejected task re-claimed
	// by someone else still counts for its previous assignee. Claim records
	// in the history cover past assignments; the assignee column covers
	// tasks assigned outside the claim path.
	claimedIDs := a.db.Model(&models.TaskHistory{}).
		Select("task_id").
		Where("actor_id = ? AND to_status = ?", userID, models.StatusClaimed)
	var totalTasks, completedTasks int64
	if err := a.db.Model(&models.Task{}).
		Where("assignee_id = ? OR id IN (?)", userID, claimedIDs).
		Count(&totalTasks).Error; err != nil {
		return nil, storeErr("count tasks", err)
	}
	if err := a.db.Model(&models.Task{}).
		Where("assignee_id = ? AND status = ?", userID, models.StatusApproved).
		Count(&completedTasks).Error; err != nil {
		return nil, storeErr("count completed tasks", err)
	}

	var approvals []time.Time
	if err := a.db.Model(&models.Task{}).
		Where("assignee_id = ? AND status = ? AND approved_at IS NOT NULL", userID, models.StatusApproved).
		Pluck("approved_at", &approvals).Error; err != nil {
		return nil, storeErr("load approval dates", err)
	}
	current, best := a.streaks(approvals, now)

	lastActivity, err := a.lastActivity(userID)
	if err != nil {
		return nil, err
	}

	stats := &models.UserStats{
		UserID:         userID,
		TotalPoints:    total,
		WeekPoints:     week,
		MonthPoints:    month,
		YearPoints:     year,
		TotalTasks:     int(totalTasks),
		CompletedTasks: int(completedTasks),
		CurrentStreak:  current,
		BestStreak:     best,
		LastActivity:   lastActivity,
		UpdatedAt:      now,
	}

	if err := a.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(stats).Error; err != nil {
		return nil, storeErr("save user stats", err)
	}

	rank, err := a.groupRank(userID, total)
	if err != nil {
		return nil, err
	}
	stats.Rank = rank
	if err := a.db.Model(&models.UserStats{}).Where("user_id = ?", userID).
		Update("rank", rank).Error; err != nil {
		return nil, storeErr("save rank", err)
	}

	if a.log != nil {
		a.log.Debugw("recomputed stats", "user", userID, "total", total, "streak", current)
	}
	return stats, nil
}

func (a *Aggregator) windowSum(userID uint, from time.Time) (int, error) {
	return a.ledger.SumFor(userID, &from, nil)
}

// groupRank is the user's all-time position within their household: one plus
// the number of group members with a strictly higher total.
func (a *Aggregator) groupRank(userID uint, total int) (int, error) {
	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		// A ledger can hold adjustments for users the registry no longer
		// tracks; rank is meaningless for them.
		return 0, nil
	}
	var higher int64
	err := a.db.Model(&models.UserStats{}).
		Joins("JOIN users ON users.id = user_stats.user_id").
		Where("users.group_id = ? AND user_stats.total_points > ?", user.GroupID, total).
		Count(&higher).Error
	if err != nil {
		return 0, storeErr("rank user", err)
	}
	return int(higher) + 1, nil
}

func (a *Aggregator) lastActivity(userID uint) (*time.Time, error) {
	var latest *time.Time
	var entry models.PointsEntry
	err := a.db.Where("user_id = ?", userID).Order("created_at DESC").First(&entry).Error
	if err == nil {
		t := entry.CreatedAt
		latest = &t
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storeErr("load last entry", err)
	}

	var task models.Task
	err = a.db.Where("assignee_id = ? AND completed_at IS NOT NULL", userID).
		Order("completed_at DESC").First(&task).Error
	if err == nil {
		if latest == nil || task.CompletedAt.After(*latest) {
			latest = task.CompletedAt
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storeErr("load last completion", err)
	}
	return latest, nil
}

// streaks reduces approval timestamps to distinct calendar days in the
// configured timezone and scans the full descending list once. The running
// maximum covers every historical run, so an old streak longer than the
// current one still wins bestStreak. currentStreak counts only while the
// newest day is today or yesterday; otherwise the streak is cold.
func (a *Aggregator) streaks(approvals []time.Time, now time.Time) (current, best int) {
	if len(approvals) == 0 {
		return 0, 0
	}
	seen := make(map[int]struct{}, len(approvals))
	days := make([]int, 0, len(approvals))
	for _, t := range approvals {
		d := a.clock.epochDay(t)
		if _, ok := seen[d]; !ok {
			seen[d] = struct{}{}
			days = append(days, d)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(days)))

	today := a.clock.epochDay(now)
	run := 1
	best = 1
	firstRun := 1
	inFirstRun := true
	for i := 1; i < len(days); i++ {
		if days[i] == days[i-1]-1 {
			run++
			if inFirstRun {
				firstRun++
			}
		} else {
			inFirstRun = false
			run = 1
		}
		if run > best {
			best = run
		}
	}
	if days[0] == today || days[0] == today-1 {
		current = firstRun
	}
	return current, best
}
