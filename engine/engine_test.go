package engine

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/choretab/choretab/models"
)

// setupTestDB creates a throwaway SQLite database for one test. The immediate
// tx lock plus busy timeout lets concurrent write transactions queue instead
// of deadlocking on lock upgrades.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_txlock=immediate",
		filepath.Join(t.TempDir(), "engine.db"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.PointsEntry{},
		&models.TaskHistory{},
		&models.UserStats{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// testClock returns a deterministic clock frozen at now, UTC, Monday weeks.
func testClock(now time.Time) Clock {
	return Clock{
		Now:       func() time.Time { return now },
		Location:  time.UTC,
		WeekStart: time.Monday,
	}
}

func seedUser(t *testing.T, db *gorm.DB, id, groupID uint, name string) {
	t.Helper()
	user := &models.User{ID: id, Name: name, GroupID: groupID}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to seed user %d: %v", id, err)
	}
}

func seedPendingTask(t *testing.T, c *Coordinator, creator uint, points int) *models.Task {
	t.Helper()
	task, err := c.CreateTask(CreateTaskInput{
		Title:     "take out the trash",
		Category:  "kitchen",
		Points:    points,
		CreatedBy: creator,
	})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	return task
}

// runLifecycle drives a task from pending to completed.
func runLifecycle(t *testing.T, c *Coordinator, taskID string, assignee uint) {
	t.Helper()
	if _, err := c.ClaimTask(taskID, assignee); err != nil {
		t.Fatalf("ClaimTask() error = %v", err)
	}
	if _, err := c.StartTask(taskID, assignee); err != nil {
		t.Fatalf("StartTask() error = %v", err)
	}
	if _, err := c.CompleteTask(taskID, assignee); err != nil {
		t.Fatalf("CompleteTask() error = %v", err)
	}
}
