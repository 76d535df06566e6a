package engine

import (
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/choretab/choretab/models"
)

// Coordinator is the only component allowed to mutate the task table and the
// points ledger together. Every transition runs in one database transaction;
// the approve path couples the status flip, the ledger append and the history
// record so a failure rolls back all three.
type Coordinator struct {
	db          *gorm.DB
	tasks       *TaskStore
	ledger      *Ledger
	users       *UserRegistry
	aggregator  *Aggregator
	leaderboard *Leaderboard
	clock       Clock
	log         *zap.SugaredLogger
}

// NewCoordinator wires the engine over a caller-owned database handle. The
// caller opens and closes the handle; the coordinator holds no global state.
func NewCoordinator(db *gorm.DB, clock Clock, log *zap.SugaredLogger) *Coordinator {
	return &Coordinator{
		db:          db,
		tasks:       NewTaskStore(db),
		ledger:      NewLedger(db),
		users:       NewUserRegistry(db),
		aggregator:  NewAggregator(db, clock, log),
		leaderboard: NewLeaderboard(db),
		clock:       clock,
		log:         log,
	}
}

// CreateTaskInput carries the fields a creator supplies for a new task.
type CreateTaskInput struct {
	Title       string
	Description string
	Category    string
	Points      int
	Priority    string
	DueAt       *time.Time
	CreatedBy   uint
}

// CreateTask validates the input and inserts a pending task. Validation runs
// before any write, so a rejected input is never partially applied.
func (c *Coordinator) CreateTask(in CreateTaskInput) (*models.Task, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if in.Points < 0 {
		return nil, &ValidationError{Field: "points", Reason: "must be non-negative"}
	}
	if in.Priority == "" {
		in.Priority = models.PriorityNormal
	}
	if !models.ValidPriority(in.Priority) {
		return nil, &ValidationError{Field: "priority", Reason: "unknown priority"}
	}
	if ok, err := c.users.Exists(in.CreatedBy); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrNotFound
	}

	task := &models.Task{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Category:    in.Category,
		Points:      in.Points,
		Priority:    in.Priority,
		DueAt:       in.DueAt,
		Status:      models.StatusPending,
		CreatedBy:   in.CreatedBy,
	}
	if err := c.db.Create(task).Error; err != nil {
		return nil, storeErr("create task", err)
	}
	return task, nil
}

// ClaimTask assigns a pending (or rejected) task to userID.
func (c *Coordinator) ClaimTask(taskID string, userID uint) (*models.Task, error) {
	return c.transition(taskID, models.StatusClaimed, userID, "")
}

// StartTask moves a claimed task to in_progress; only the assignee may start.
func (c *Coordinator) StartTask(taskID string, userID uint) (*models.Task, error) {
	return c.transition(taskID, models.StatusInProgress, userID, "")
}

// CompleteTask marks the assignee's in-progress work done, pending review.
func (c *Coordinator) CompleteTask(taskID string, userID uint) (*models.Task, error) {
	return c.transition(taskID, models.StatusCompleted, userID, "")
}

// ApproveTask accepts completed work and awards the task's points to the
// assignee. The ledger entry is written in the same transaction as the status
// flip, and the optimistic guard makes the award at-most-once per task.
func (c *Coordinator) ApproveTask(taskID string, approverID uint) (*models.Task, error) {
	return c.transition(taskID, models.StatusApproved, approverID, "")
}

// RejectTask declines completed work. No points move; the assignee may rework
// via StartTask or another member may re-claim.
func (c *Coordinator) RejectTask(taskID string, approverID uint, comment string) (*models.Task, error) {
	return c.transition(taskID, models.StatusRejected, approverID, comment)
}

// transition applies one lifecycle step. The status read here becomes the
// expected status for the conditional update, so two callers racing on the
// same step cannot both succeed.
func (c *Coordinator) transition(taskID string, target models.TaskStatus, actorID uint, comment string) (*models.Task, error) {
	if ok, err := c.users.Exists(actorID); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrNotFound
	}

	current, err := c.tasks.GetTask(taskID)
	if err != nil {
		return nil, err
	}
	expected := current.Status
	now := c.clock.now()

	var updated *models.Task
	err = c.db.Transaction(func(tx *gorm.DB) error {
		task, err := c.tasks.ApplyTransition(tx, taskID, target, actorID, expected, now)
		if err != nil {
			return err
		}

		if target == models.StatusApproved {
			entry := &models.PointsEntry{
				UserID:    *task.AssigneeID,
				TaskID:    &task.ID,
				Delta:     task.Points,
				Reason:    models.ReasonTaskApproved,
				CreatedAt: now,
			}
			if err := c.ledger.Append(tx, entry, false); err != nil {
				return err
			}
		}

		history := &models.TaskHistory{
			TaskID:     taskID,
			ActorID:    actorID,
			FromStatus: expected,
			ToStatus:   target,
			Comment:    comment,
			CreatedAt:  now,
		}
		if err := tx.Create(history).Error; err != nil {
			return storeErr("record history", err)
		}

		updated = task
		return nil
	})
	if err != nil {
		return nil, storeErr("apply transition", err)
	}

	if target == models.StatusApproved && updated.AssigneeID != nil {
		// Stats are a cache; a failed refresh here just defers to the next
		// read, which recomputes from the ledger anyway.
		if _, err := c.aggregator.Recompute(*updated.AssigneeID); err != nil && c.log != nil {
			c.log.Warnw("stats refresh failed", "user", *updated.AssigneeID, "err", err)
		}
	}
	if c.log != nil {
		c.log.Infow("task transition", "task", taskID, "from", expected, "to", target, "actor", actorID)
	}
	return updated, nil
}

// AdjustPoints appends a manual ledger entry unattached to any task. Negative
// deltas require adminOverride, mirroring the ledger constraint.
func (c *Coordinator) AdjustPoints(userID uint, delta int, reason string, adminOverride bool) (*models.PointsEntry, error) {
	if ok, err := c.users.Exists(userID); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrNotFound
	}
	if reason == "" {
		reason = models.ReasonAdjustment
	}

	entry := &models.PointsEntry{
		UserID:    userID,
		Delta:     delta,
		Reason:    reason,
		CreatedAt: c.clock.now(),
	}
	err := c.db.Transaction(func(tx *gorm.DB) error {
		return c.ledger.Append(tx, entry, adminOverride)
	})
	if err != nil {
		return nil, err
	}

	if _, err := c.aggregator.Recompute(userID); err != nil && c.log != nil {
		c.log.Warnw("stats refresh failed", "user", userID, "err", err)
	}
	return entry, nil
}

// GetUserStats recomputes and returns the user's aggregate. Recomputing on
// read keeps the cache row honest: it can never drift from the ledger.
func (c *Coordinator) GetUserStats(userID uint) (*models.UserStats, error) {
	if ok, err := c.users.Exists(userID); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrNotFound
	}
	return c.aggregator.Recompute(userID)
}

// GetLeaderboard returns the ranked standings for a household group.
func (c *Coordinator) GetLeaderboard(groupID uint, window Window) ([]LeaderboardEntry, error) {
	return c.leaderboard.Rank(groupID, window)
}

// GetTask loads one task.
func (c *Coordinator) GetTask(taskID string) (*models.Task, error) {
	return c.tasks.GetTask(taskID)
}

// ListTasks returns tasks matching the filter.
func (c *Coordinator) ListTasks(f TaskFilter) ([]models.Task, error) {
	return c.tasks.ListTasks(f)
}

// ListHistory returns the audit trail for a task, oldest first. The engine
// itself never reads these rows; this exists for audit collaborators.
func (c *Coordinator) ListHistory(taskID string) ([]models.TaskHistory, error) {
	if _, err := c.tasks.GetTask(taskID); err != nil {
		return nil, err
	}
	var records []models.TaskHistory
	if err := c.db.Where("task_id = ?", taskID).Order("created_at ASC, id ASC").Find(&records).Error; err != nil {
		return nil, storeErr("list history", err)
	}
	return records, nil
}
