package engine

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/choretab/choretab/models"
)

// TaskStore owns task reads and the lifecycle state machine. All writes go
// through ApplyTransition, whose conditional update is the optimistic
// concurrency guard serializing competing callers on the same task.
type TaskStore struct {
	db *gorm.DB
}

// NewTaskStore creates a task store over db.
func NewTaskStore(db *gorm.DB) *TaskStore {
	return &TaskStore{db: db}
}

// GetTask loads a task by id.
func (s *TaskStore) GetTask(id string) (*models.Task, error) {
	return getTask(s.db, id)
}

func getTask(db *gorm.DB, id string) (*models.Task, error) {
	var task models.Task
	if err := db.First(&task, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, storeErr("load task", err)
	}
	return &task, nil
}

// TaskFilter narrows ListTasks. Zero values mean "any".
type TaskFilter struct {
	Status     models.TaskStatus
	AssigneeID uint
	CreatedBy  uint
	Category   string
}

// ListTasks returns tasks matching the filter, newest first.
func (s *TaskStore) ListTasks(f TaskFilter) ([]models.Task, error) {
	q := s.db.Model(&models.Task{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.AssigneeID != 0 {
		q = q.Where("assignee_id = ?", f.AssigneeID)
	}
	if f.CreatedBy != 0 {
		q = q.Where("created_by = ?", f.CreatedBy)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	var tasks []models.Task
	if err := q.Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, storeErr("list tasks", err)
	}
	return tasks, nil
}

// ApplyTransition moves the task to target if its status still equals
// expected. It checks the lifecycle table and actor guards first, then issues
// a conditional UPDATE; zero rows affected means another caller won the race.
// Per-transition timestamps are set only by the transition that produces them.
func (s *TaskStore) ApplyTransition(tx *gorm.DB, id string, target models.TaskStatus, actorID uint, expected models.TaskStatus, now time.Time) (*models.Task, error) {
	task, err := getTask(tx, id)
	if err != nil {
		return nil, err
	}
	if task.Status != expected {
		return nil, ErrConflict
	}
	if !models.CanTransition(expected, target) {
		// A claim that lost to an earlier claim reads better as "already
		// claimed" than as an illegal edge.
		if target == models.StatusClaimed && task.AssigneeID != nil {
			return nil, ErrAlreadyClaimed
		}
		return nil, ErrInvalidTransition
	}

	updates := map[string]interface{}{
		"status":     target,
		"updated_at": now,
	}

	switch target {
	case models.StatusClaimed:
		if expected == models.StatusPending {
			if task.AssigneeID != nil {
				return nil, ErrAlreadyClaimed
			}
			updates["claimed_at"] = now
		} else {
			// Re-claim of a rejected task: the actor takes it over and the
			// previous verdict is cleared.
			updates["approver_id"] = nil
		}
		updates["assignee_id"] = actorID
	case models.StatusInProgress:
		if task.AssigneeID == nil || *task.AssigneeID != actorID {
			return nil, ErrInvalidTransition
		}
		if expected == models.StatusRejected {
			updates["approver_id"] = nil
		}
	case models.StatusCompleted:
		if task.AssigneeID == nil || *task.AssigneeID != actorID {
			return nil, ErrInvalidTransition
		}
		if task.CompletedAt == nil {
			updates["completed_at"] = now
		}
	case models.StatusApproved, models.StatusRejected:
		// Separation of duties: whoever did the work cannot judge it.
		if task.AssigneeID == nil || *task.AssigneeID == actorID {
			return nil, ErrInvalidTransition
		}
		updates["approver_id"] = actorID
		if target == models.StatusApproved {
			updates["approved_at"] = now
		}
	default:
		return nil, ErrInvalidTransition
	}

	res := tx.Model(&models.Task{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(updates)
	if res.Error != nil {
		return nil, storeErr("transition task", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrConflict
	}
	return getTask(tx, id)
}
