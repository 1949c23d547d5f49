package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/task-manager-api/internal/config"
	"github.com/iliyamo/task-manager-api/internal/handler"
	"github.com/iliyamo/task-manager-api/internal/middleware"
	"github.com/iliyamo/task-manager-api/internal/repository"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth wires the auth endpoints.  Register, login, refresh and
// logout live under /v1/auth without any JWT requirement; /v1/me sits
// behind the JWT middleware.  The pre-auth group additionally carries the
// Redis rate limiter since those endpoints are the usual brute-force
// target.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, users *repository.UserRepo, jwtSecret string, rdb *redis.Client) {
	g := e.Group("/v1/auth")
	g.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret, users))
	auth.GET("/me", a.Me)
}

// RegisterTasks wires the task CRUD endpoints.  Every route requires a
// valid access token; handlers read the resolved user id from the
// context to scope their queries.
func RegisterTasks(e *echo.Echo, t *handler.TaskHandler, users *repository.UserRepo, jwtSecret string) {
	g := e.Group("/v1/tasks")
	g.Use(middleware.JWTAuth(jwtSecret, users))
	g.POST("", t.Create)
	g.GET("", t.List)
	g.GET("/:id", t.Get)
	g.PUT("/:id", t.Update)
	g.DELETE("/:id", t.Delete)
}

// RegisterCategories wires the category CRUD endpoints.  Categories are a
// global resource and intentionally carry no JWT middleware; the GET
// routes sit behind the Redis response cache and every mutation flushes
// it so reads never serve a record the client just changed or removed.
func RegisterCategories(e *echo.Echo, ch *handler.CategoryHandler, rdb *redis.Client) {
	cacheCfg := config.LoadCacheConfig()
	cacheMW := middleware.NewRedisCache(cacheCfg, rdb)
	flushMW := middleware.NewRedisCacheInvalidate(cacheCfg, rdb)
	g := e.Group("/v1/categories")
	g.POST("", ch.Create, flushMW)
	g.GET("", ch.List, cacheMW)
	g.GET("/:id", ch.Get, cacheMW)
	g.PUT("/:id", ch.Update, flushMW)
	g.DELETE("/:id", ch.Delete, flushMW)
}
