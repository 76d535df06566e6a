package main

import (
	"log"

	"github.com/choretab/choretab/cache"
	"github.com/choretab/choretab/config"
	"github.com/choretab/choretab/models"
	"github.com/choretab/choretab/routes"
	"github.com/choretab/choretab/utils"
)

func main() {
	cfg := config.Load()

	logger, err := utils.NewLogger(cfg)
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	sugar := logger.Sugar()

	db, err := config.OpenDatabase(cfg,
		&models.User{},
		&models.Task{},
		&models.PointsEntry{},
		&models.TaskHistory{},
		&models.UserStats{},
	)
	if err != nil {
		sugar.Fatalf("database init failed: %v", err)
	}
	defer func() { _ = config.CloseDatabase(db) }()

	var store *cache.Cache
	if cfg.RedisHost != "" {
		store = cache.New(cache.NewRedis(cfg), sugar)
	}

	r := routes.SetupRouter(cfg, db, store, logger)

	sugar.Infof("starting server on port %s", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		sugar.Fatalf("server stopped with error: %v", err)
	}
}
