package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/choretab/choretab/cache"
	"github.com/choretab/choretab/config"
	"github.com/choretab/choretab/engine"
	"github.com/choretab/choretab/middleware"
	"github.com/choretab/choretab/models"
	"github.com/choretab/choretab/utils"
)

// TaskController exposes the task lifecycle over HTTP. Every business rule
// lives behind the engine; this layer only decodes requests and maps errors.
type TaskController struct {
	engine *engine.Coordinator
	cache  *cache.Cache
	cfg    config.AppConfig
	log    *zap.SugaredLogger
}

// NewTaskController creates a controller over the engine.
func NewTaskController(eng *engine.Coordinator, c *cache.Cache, cfg config.AppConfig, log *zap.SugaredLogger) *TaskController {
	return &TaskController{engine: eng, cache: c, cfg: cfg, log: log}
}

type createTaskRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Points      int        `json:"points"`
	Priority    string     `json:"priority"`
	DueAt       *time.Time `json:"due_at"`
}

// Create inserts a new pending task owned by the acting user.
func (t *TaskController) Create(ctx *gin.Context) {
	actor, ok := middleware.ActorID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, utils.CodeUnauthorized, "unauthorized")
		return
	}
	var req createTaskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, utils.CodeBadRequest, "invalid request body")
		return
	}
	task, err := t.engine.CreateTask(engine.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Points:      req.Points,
		Priority:    req.Priority,
		DueAt:       req.DueAt,
		CreatedBy:   actor,
	})
	if err != nil {
		utils.EngineError(ctx, err)
		return
	}
	utils.Success(ctx, task)
}

// List returns tasks, optionally filtered by status, assignee or category.
func (t *TaskController) List(ctx *gin.Context) {
	filter := engine.TaskFilter{
		Status:   models.TaskStatus(ctx.Query("status")),
		Category: ctx.Query("category"),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		utils.Error(ctx, http.StatusBadRequest, utils.CodeBadRequest, "unknown status")
		return
	}
	if v := ctx.Query("assignee_id"); v != "" {
		id, ok := parseUintParam(v)
		if !ok {
			utils.Error(ctx, http.StatusBadRequest, utils.CodeBadRequest, "invalid assignee_id")
			return
		}
		filter.AssigneeID = id
	}
	tasks, err := t.engine.ListTasks(filter)
	if err != nil {
		utils.EngineError(ctx, err)
		return
	}
	utils.Success(ctx, tasks)
}

// Get returns one task by id.
func (t *TaskController) Get(ctx *gin.Context) {
	task, err := t.engine.GetTask(ctx.Param("id"))
	if err != nil {
		utils.EngineError(ctx, err)
		return
	}
	utils.Success(ctx, task)
}

// Claim assigns the task to the acting user.
func (t *TaskController) Claim(ctx *gin.Context) {
	t.transition(ctx, t.engine.ClaimTask)
}

// Start moves the acting user's claimed task to in_progress.
func (t *TaskController) Start(ctx *gin.Context) {
	t.transition(ctx, t.engine.StartTask)
}

// Complete marks the acting user's task done, awaiting review.
func (t *TaskController) Complete(ctx *gin.Context) {
	t.transition(ctx, t.engine.CompleteTask)
}

// Approve accepts completed work and awards its points.
func (t *TaskController) Approve(ctx *gin.Context) {
	actor, ok := middleware.ActorID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, utils.CodeUnauthorized, "unauthorized")
		return
	}
	task, err := t.engine.ApproveTask(ctx.Param("id"), actor)
	if err != nil {
		utils.EngineError(ctx, err)
		return
	}
	// Points moved, so cached aggregates for this group are stale.
	t.cache.InvalidateByPrefix("stats:")
	t.cache.InvalidateByPrefix("leaderboard:")
	utils.Success(ctx, task)
}

type rejectRequest struct {
	Comment string `json:"comment"`
}

// Reject declines completed work with an optional comment.
func (t *TaskController) Reject(ctx *gin.Context) {
	actor, ok := middleware.ActorID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, utils.CodeUnauthorized, "unauthorized")
		return
	}
	var req rejectRequest
	_ = ctx.ShouldBindJSON(&req)
	task, err := t.engine.RejectTask(ctx.Param("id"), actor, req.Comment)
	if err != nil {
		utils.EngineError(ctx, err)
		return
	}
	utils.Success(ctx, task)
}

// History returns the audit trail for a task.
func (t *TaskController) History(ctx *gin.Context) {
	records, err := t.engine.ListHistory(ctx.Param("id"))
	if err != nil {
		utils.EngineError(ctx, err)
		return
	}
	utils.Success(ctx, records)
}

type adjustRequest struct {
	UserID uint   `json:"user_id" binding:"required"`
	Delta  int    `json:"delta" binding:"required"`
	Reason string `json:"reason"`
}

// Adjust appends a manual ledger entry. Negative deltas are allowed only for
// configured admin users.
func (t *TaskController) Adjust(ctx *gin.Context) {
	actor, ok := middleware.ActorID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, utils.CodeUnauthorized, "unauthorized")
		return
	}
	var req adjustRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, utils.CodeBadRequest, "invalid request body")
		return
	}
	entry, err := t.engine.AdjustPoints(req.UserID, req.Delta, req.Reason, t.cfg.IsAdmin(actor))
	if err != nil {
		utils.EngineError(ctx, err)
		return
	}
	t.cache.InvalidateByPrefix("stats:")
	t.cache.InvalidateByPrefix("leaderboard:")
	utils.Success(ctx, entry)
}

func (t *TaskController) transition(ctx *gin.Context, op func(string, uint) (*models.Task, error)) {
	actor, ok := middleware.ActorID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, utils.CodeUnauthorized, "unauthorized")
		return
	}
	task, err := op(ctx.Param("id"), actor)
	if err != nil {
		utils.EngineError(ctx, err)
		return
	}
	utils.Success(ctx, task)
}

func parseUintParam(v string) (uint, bool) {
	id, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}
