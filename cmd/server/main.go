package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/task-manager-api/internal/config"
	"github.com/iliyamo/task-manager-api/internal/database"
	"github.com/iliyamo/task-manager-api/internal/handler"
	"github.com/iliyamo/task-manager-api/internal/queue"
	"github.com/iliyamo/task-manager-api/internal/repository"
	"github.com/iliyamo/task-manager-api/internal/router"
	"github.com/iliyamo/task-manager-api/internal/service"
)

func main() {
	// A .env file is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	if err := database.EnsureSchema(ctx, db); err != nil {
		cancel()
		log.Fatalf("schema: %v", err)
	}
	cancel()

	rdb := config.NewRedisClient() // nil disables cache and rate limiting

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	tasks := repository.NewTaskRepo(db)
	categories := repository.NewCategoryRepo(db)

	authHandler := handler.NewAuthHandler(cfg, users, tokens)
	taskHandler := handler.NewTaskHandler(tasks, categories)
	categoryHandler := handler.NewCategoryHandler(categories)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, users, cfg.JWTSecret, rdb)
	router.RegisterTasks(e, taskHandler, users, cfg.JWTSecret)
	router.RegisterCategories(e, categoryHandler, rdb)

	// Background pieces: the completed-task consumer and the refresh
	// token purge job.  Neither failing should stop the API.
	go func() {
		if err := queue.StartTaskConsumer(); err != nil {
			log.Printf("task-consumer stopped: %v", err)
		}
	}()
	cleanup := service.NewTokenCleanup(tokens)
	if err := cleanup.Start(cfg.CleanupSpec); err != nil {
		log.Printf("token-cleanup: bad cron spec %q: %v", cfg.CleanupSpec, err)
	}
	defer cleanup.Stop()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
