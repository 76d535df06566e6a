package engine

import (
	"reflect"
	"testing"
	"time"

	"github.com/choretab/choretab/models"
)

// day builds a timestamp at noon UTC on 2026-03-<d>.
func day(d int) time.Time {
	return time.Date(2026, 3, d, 12, 0, 0, 0, time.UTC)
}

func seedEntry(t *testing.T, c *Coordinator, userID uint, delta int, at time.Time) {
	t.Helper()
	entry := &models.PointsEntry{
		UserID:    userID,
		Delta:     delta,
		Reason:    models.ReasonAdjustment,
		CreatedAt: at,
	}
	if err := c.db.Create(entry).Error; err != nil {
		t.Fatalf("failed to seed ledger entry: %v", err)
	}
}

// seedApprovedTask plants an already-approved task for streak fixtures.
func seedApprovedTask(t *testing.T, c *Coordinator, assignee uint, approvedAt time.Time) {
	t.Helper()
	assigneeID := assignee
	approver := uint(1)
	task := &models.Task{
		Title:       "fixture",
		Points:      5,
		Priority:    models.PriorityNormal,
		Status:      models.StatusApproved,
		CreatedBy:   1,
		AssigneeID:  &assigneeID,
		ApproverID:  &approver,
		ApprovedAt:  &approvedAt,
		CompletedAt: &approvedAt,
	}
	if err := c.db.Create(task).Error; err != nil {
		t.Fatalf("failed to seed approved task: %v", err)
	}
}

func TestAggregator_TotalsMatchLedger(t *testing.T) {
	// 2026-03-18 is a Wednesday; Monday weeks start on the 16th.
	now := time.Date(2026, 3, 18, 15, 0, 0, 0, time.UTC)
	c := newTestCoordinator(t, now)

	seedEntry(t, c, 2, 10, day(17))                                       // this week
	seedEntry(t, c, 2, 7, day(10))                                        // this month, last week
	seedEntry(t, c, 2, 5, time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC))  // this year
	seedEntry(t, c, 2, 3, time.Date(2025, 12, 31, 9, 0, 0, 0, time.UTC)) // last year

	stats, err := c.GetUserStats(2)
	if err != nil {
		t.Fatalf("GetUserStats() error = %v", err)
	}

	sum, err := c.ledger.SumFor(2, nil, nil)
	if err != nil {
		t.Fatalf("SumFor() error = %v", err)
	}
	if stats.TotalPoints != sum {
		t.Errorf("total %d diverged from ledger sum %d", stats.TotalPoints, sum)
	}
	if stats.TotalPoints != 25 {
		t.Errorf("expected total 25, got %d", stats.TotalPoints)
	}
	if stats.WeekPoints != 10 {
		t.Errorf("expected week 10, got %d", stats.WeekPoints)
	}
	if stats.MonthPoints != 17 {
		t.Errorf("expected month 17, got %d", stats.MonthPoints)
	}
	if stats.YearPoints != 22 {
		t.Errorf("expected year 22, got %d", stats.YearPoints)
	}
	if stats.LastActivity == nil || !stats.LastActivity.Equal(day(17)) {
		t.Errorf("expected last activity on the 17th, got %v", stats.LastActivity)
	}
}

func TestAggregator_TaskCounts(t *testing.T) {
	now := time.Date(2026, 3, 18, 15, 0, 0, 0, time.UTC)
	c := newTestCoordinator(t, now)

	approved := seedPendingTask(t, c, 1, 10)
	runLifecycle(t, c, approved.ID, 2)
	if _, err := c.ApproveTask(approved.ID, 1); err != nil {
		t.Fatalf("ApproveTask() error = %v", err)
	}

	open := seedPendingTask(t, c, 1, 5)
	if _, err := c.ClaimTask(open.ID, 2); err != nil {
		t.Fatalf("ClaimTask() error = %v", err)
	}

	unclaimed := seedPendingTask(t, c, 1, 5)
	_ = unclaimed

	stats, err := c.GetUserStats(2)
	if err != nil {
		t.Fatalf("GetUserStats() error = %v", err)
	}
	if stats.TotalTasks != 2 {
		t.Errorf("expected 2 assigned tasks, got %d", stats.TotalTasks)
	}
	if stats.CompletedTasks != 1 {
		t.Errorf("expected 1 completed task, got %d", stats.CompletedTasks)
	}
	if stats.TotalPoints != 10 {
		t.Errorf("expected 10 points, got %d", stats.TotalPoints)
	}
}

func TestAggregator_TaskCountsSurviveReassignment(t *testing.T) {
	now := time.Date(2026, 3, 18, 15, 0, 0, 0, time.UTC)
	c := newTestCoordinator(t, now)

	task := seedPendingTask(t, c, 1, 10)
	runLifecycle(t, c, task.ID, 2)
	if _, err := c.RejectTask(task.ID, 1, "redo it"); err != nil {
		t.Fatalf("RejectTask() error = %v", err)
	}
	if _, err := c.ClaimTask(task.ID, 3); err != nil {
		t.Fatalf("ClaimTask() after reject error = %v", err)
	}

	// The task moved on to user 3, but it was once assigned to user 2 and
	// must keep counting for them.
	previous, err := c.GetUserStats(2)
	if err != nil {
		t.Fatalf("GetUserStats(2) error = %v", err)
	}
	if previous.TotalTasks != 1 {
		t.Errorf("previous assignee TotalTasks = %d, want 1", previous.TotalTasks)
	}
	if previous.CompletedTasks != 0 {
		t.Errorf("previous assignee CompletedTasks = %d, want 0", previous.CompletedTasks)
	}

	current, err := c.GetUserStats(3)
	if err != nil {
		t.Fatalf("GetUserStats(3) error = %v", err)
	}
	if current.TotalTasks != 1 {
		t.Errorf("new assignee TotalTasks = %d, want 1", current.TotalTasks)
	}
}

func TestAggregator_Streaks(t *testing.T) {
	// Approvals on days {1,2,3} and {5,6,7,8} of March.
	seed := func(t *testing.T, c *Coordinator) {
		for _, d := range []int{1, 2, 3, 5, 6, 7, 8} {
			seedApprovedTask(t, c, 2, day(d))
		}
	}

	t.Run("current run counted while warm", func(t *testing.T) {
		now := time.Date(2026, 3, 8, 20, 0, 0, 0, time.UTC)
		c := newTestCoordinator(t, now)
		seed(t, c)

		stats, err := c.GetUserStats(2)
		if err != nil {
			t.Fatalf("GetUserStats() error = %v", err)
		}
		if stats.CurrentStreak != 4 {
			t.Errorf("expected current streak 4, got %d", stats.CurrentStreak)
		}
		if stats.BestStreak != 4 {
			t.Errorf("expected best streak 4, got %d", stats.BestStreak)
		}
	})

	t.Run("streak goes cold after a gap but best survives", func(t *testing.T) {
		now := time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)
		c := newTestCoordinator(t, now)
		seed(t, c)

		stats, err := c.GetUserStats(2)
		if err != nil {
			t.Fatalf("GetUserStats() error = %v", err)
		}
		if stats.CurrentStreak != 0 {
			t.Errorf("expected cold streak, got %d", stats.CurrentStreak)
		}
		if stats.BestStreak != 4 {
			t.Errorf("expected best streak 4, got %d", stats.BestStreak)
		}
	})

	t.Run("old longer run wins best", func(t *testing.T) {
		now := time.Date(2026, 3, 21, 20, 0, 0, 0, time.UTC)
		c := newTestCoordinator(t, now)
		// A five-day run long ago, then a two-day run ending today.
		for _, d := range []int{1, 2, 3, 4, 5, 20, 21} {
			seedApprovedTask(t, c, 2, day(d))
		}

		stats, err := c.GetUserStats(2)
		if err != nil {
			t.Fatalf("GetUserStats() error = %v", err)
		}
		if stats.CurrentStreak != 2 {
			t.Errorf("expected current streak 2, got %d", stats.CurrentStreak)
		}
		if stats.BestStreak != 5 {
			t.Errorf("expected best streak 5, got %d", stats.BestStreak)
		}
	})

	t.Run("yesterday keeps the streak warm", func(t *testing.T) {
		now := time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)
		c := newTestCoordinator(t, now)
		seed(t, c)

		stats, err := c.GetUserStats(2)
		if err != nil {
			t.Fatalf("GetUserStats() error = %v", err)
		}
		if stats.CurrentStreak != 4 {
			t.Errorf("expected current streak 4 with newest day yesterday, got %d", stats.CurrentStreak)
		}
	})

	t.Run("multiple approvals on one day count once", func(t *testing.T) {
		now := time.Date(2026, 3, 2, 20, 0, 0, 0, time.UTC)
		c := newTestCoordinator(t, now)
		seedApprovedTask(t, c, 2, day(1))
		seedApprovedTask(t, c, 2, day(1).Add(3*time.Hour))
		seedApprovedTask(t, c, 2, day(2))

		stats, err := c.GetUserStats(2)
		if err != nil {
			t.Fatalf("GetUserStats() error = %v", err)
		}
		if stats.CurrentStreak != 2 || stats.BestStreak != 2 {
			t.Errorf("expected streaks 2/2, got %d/%d", stats.CurrentStreak, stats.BestStreak)
		}
	})

	t.Run("no approvals", func(t *testing.T) {
		now := time.Date(2026, 3, 2, 20, 0, 0, 0, time.UTC)
		c := newTestCoordinator(t, now)
		stats, err := c.GetUserStats(2)
		if err != nil {
			t.Fatalf("GetUserStats() error = %v", err)
		}
		if stats.CurrentStreak != 0 || stats.BestStreak != 0 {
			t.Errorf("expected zero streaks, got %d/%d", stats.CurrentStreak, stats.BestStreak)
		}
	})
}

func TestAggregator_RecomputeIdempotent(t *testing.T) {
	now := time.Date(2026, 3, 18, 15, 0, 0, 0, time.UTC)
	c := newTestCoordinator(t, now)

	seedEntry(t, c, 2, 12, day(17))
	seedApprovedTask(t, c, 2, day(17))

	first, err := c.aggregator.Recompute(2)
	if err != nil {
		t.Fatalf("Recompute() error = %v", err)
	}
	second, err := c.aggregator.Recompute(2)
	if err != nil {
		t.Fatalf("Recompute() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("recompute not idempotent:\nfirst  %+v\nsecond %+v", first, second)
	}
}

func TestAggregator_GroupRank(t *testing.T) {
	now := time.Date(2026, 3, 18, 15, 0, 0, 0, time.UTC)
	c := newTestCoordinator(t, now)

	seedEntry(t, c, 1, 30, day(17))
	seedEntry(t, c, 2, 20, day(17))
	seedEntry(t, c, 3, 10, day(17))

	for _, userID := range []uint{1, 2, 3} {
		if _, err := c.GetUserStats(userID); err != nil {
			t.Fatalf("GetUserStats(%d) error = %v", userID, err)
		}
	}

	stats, err := c.GetUserStats(2)
	if err != nil {
		t.Fatalf("GetUserStats() error = %v", err)
	}
	if stats.Rank != 2 {
		t.Errorf("expected rank 2, got %d", stats.Rank)
	}
}

func TestClock_WeekStart(t *testing.T) {
	clock := testClock(time.Time{})

	wed := time.Date(2026, 3, 18, 15, 0, 0, 0, time.UTC)
	want := time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)
	if got := clock.weekStart(wed); !got.Equal(want) {
		t.Errorf("weekStart(wed) = %v, want %v", got, want)
	}

	// A Monday is its own week start.
	mon := time.Date(2026, 3, 16, 3, 0, 0, 0, time.UTC)
	if got := clock.weekStart(mon); !got.Equal(want) {
		t.Errorf("weekStart(mon) = %v, want %v", got, want)
	}

	clock.WeekStart = time.Sunday
	wantSun := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	if got := clock.weekStart(wed); !got.Equal(wantSun) {
		t.Errorf("weekStart(wed, sunday) = %v, want %v", got, wantSun)
	}
}
