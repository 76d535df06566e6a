package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/choretab/choretab/cache"
	"github.com/choretab/choretab/config"
	"github.com/choretab/choretab/engine"
	"github.com/choretab/choretab/models"
	"github.com/choretab/choretab/utils"
)

// StatsController serves derived aggregates: per-user stats and the household
// leaderboard. Both are read-through cached in Redis; the engine remains the
// source on every miss.
type StatsController struct {
	engine *engine.Coordinator
	cache  *cache.Cache
	ttl    time.Duration
	log    *zap.SugaredLogger
}

// NewStatsController creates a controller over the engine.
func NewStatsController(eng *engine.Coordinator, c *cache.Cache, cfg config.AppConfig, log *zap.SugaredLogger) *StatsController {
	return &StatsController{
		engine: eng,
		cache:  c,
		ttl:    time.Duration(cfg.StatsCacheTTLSec) * time.Second,
		log:    log,
	}
}

// GetUserStats returns the recomputed aggregate for one user.
func (s *StatsController) GetUserStats(ctx *gin.Context) {
	userID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, utils.CodeBadRequest, "invalid user id")
		return
	}

	key := fmt.Sprintf("stats:user:%d", userID)
	var cached models.UserStats
	if s.cache.GetJSON(key, &cached) {
		utils.Success(ctx, cached)
		return
	}

	stats, err := s.engine.GetUserStats(uint(userID))
	if err != nil {
		utils.EngineError(ctx, err)
		return
	}
	s.cache.SetJSON(key, stats, s.ttl)
	utils.Success(ctx, stats)
}

// GetLeaderboard returns ranked standings for a group and window.
func (s *StatsController) GetLeaderboard(ctx *gin.Context) {
	groupID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, utils.CodeBadRequest, "invalid group id")
		return
	}
	window := engine.Window(ctx.DefaultQuery("window", string(engine.WindowAll)))

	key := fmt.Sprintf("leaderboard:%d:%s", groupID, window)
	var cached []engine.LeaderboardEntry
	if s.cache.GetJSON(key, &cached) {
		utils.Success(ctx, cached)
		return
	}

	entries, err := s.engine.GetLeaderboard(uint(groupID), window)
	if err != nil {
		utils.EngineError(ctx, err)
		return
	}
	s.cache.SetJSON(key, entries, s.ttl)
	utils.Success(ctx, entries)
}
