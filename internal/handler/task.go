package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/task-manager-api/internal/model"
	"github.com/iliyamo/task-manager-api/internal/queue"
	"github.com/iliyamo/task-manager-api/internal/repository"
	"github.com/iliyamo/task-manager-api/internal/service"
)

// TaskHandler bundles the repositories task endpoints need.  Categories
// are required because task reads eagerly resolve the referenced category
// and task writes validate that the reference exists.
type TaskHandler struct {
	Tasks      *repository.TaskRepo
	Categories *repository.CategoryRepo
}

func NewTaskHandler(tasks *repository.TaskRepo, categories *repository.CategoryRepo) *TaskHandler {
	if tasks == nil || categories == nil {
		panic("nil repository passed to NewTaskHandler")
	}
	return &TaskHandler{Tasks: tasks, Categories: categories}
}

// ----- DTOs -----

type createTaskReq struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Priority    *string `json:"priority"`
	CategoryID  *uint64 `json:"category_id"`
}

// normalizePriority matches a client value against the accepted priority
// labels, ignoring case, and returns the canonical spelling.
func normalizePriority(s string) (string, bool) {
	for _, p := range []string{model.PriorityLow, model.PriorityMedium, model.PriorityHigh} {
		if strings.EqualFold(strings.TrimSpace(s), p) {
			return p, true
		}
	}
	return "", false
}

// resolveCategory loads the category a task points at, if any.  A dangling
// reference is tolerated on the read side and simply yields no embed.
func (h *TaskHandler) resolveCategory(ctx context.Context, t *model.Task) *model.Category {
	if t.CategoryID == nil {
		return nil
	}
	cat, err := h.Categories.GetByID(ctx, *t.CategoryID)
	if err != nil {
		return nil
	}
	return cat
}

// Create handles POST /v1/tasks.  The owner is always the authenticated
// caller; completed starts false regardless of the payload.
func (h *TaskHandler) Create(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createTaskReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}
	if utf8.RuneCountInString(title) > 200 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title must be at most 200 characters"})
	}
	if req.Description != nil && utf8.RuneCountInString(*req.Description) > 1000 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "description must be at most 1000 characters"})
	}
	priority := model.PriorityDefault
	if req.Priority != nil {
		p, ok := normalizePriority(*req.Priority)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "priority must be one of Baja, Media, Alta"})
		}
		priority = p
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	var cat *model.Category
	if req.CategoryID != nil {
		cat, err = h.Categories.GetByID(ctx, *req.CategoryID)
		if err != nil {
			if errors.Is(err, repository.ErrCategoryNotFound) {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "category not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
		}
	}

	task := &model.Task{
		OwnerID:     ownerID,
		CategoryID:  req.CategoryID,
		Title:       title,
		Description: req.Description,
		Priority:    priority,
		Completed:   false,
	}
	if err := h.Tasks.Create(ctx, task); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create task"})
	}
	return c.JSON(http.StatusCreated, newTaskResp(task, cat))
}

// List handles GET /v1/tasks with optional priority and category_id
// filters plus skip/limit pagination.  Only the caller's tasks are ever
// returned.
func (h *TaskHandler) List(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var filter repository.TaskFilter
	if s := c.QueryParam("priority"); s != "" {
		p, ok := normalizePriority(s)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "priority must be one of Baja, Media, Alta"})
		}
		filter.Priority = &p
	}
	if s := c.QueryParam("category_id"); s != "" {
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category_id"})
		}
		filter.CategoryID = &n
	}
	skip, limit := parsePage(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	tasks, err := h.Tasks.ListByOwner(ctx, ownerID, filter, skip, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	out := make([]taskResp, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, newTaskResp(t, h.resolveCategory(ctx, t)))
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /v1/tasks/:id.  A task owned by another user is
// reported exactly like a missing one.
func (h *TaskHandler) Get(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	task, err := h.Tasks.GetByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "task not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, newTaskResp(task, h.resolveCategory(ctx, task)))
}

// Update handles PUT /v1/tasks/:id.  Only fields present in the body are
// touched; a field sent as explicit null clears the column where the
// schema allows it.  Every touched field is validated exactly as in
// Create.
func (h *TaskHandler) Update(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var patch repository.TaskPatch
	if err := c.Bind(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	if patch.Title.Set {
		if patch.Title.Null {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
		}
		title := strings.TrimSpace(patch.Title.Value)
		if title == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
		}
		if utf8.RuneCountInString(title) > 200 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "title must be at most 200 characters"})
		}
		patch.Title.Value = title
	}
	if patch.Description.Set && !patch.Description.Null && utf8.RuneCountInString(patch.Description.Value) > 1000 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "description must be at most 1000 characters"})
	}
	if patch.Priority.Set {
		if patch.Priority.Null {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "priority must be one of Baja, Media, Alta"})
		}
		p, ok := normalizePriority(patch.Priority.Value)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "priority must be one of Baja, Media, Alta"})
		}
		patch.Priority.Value = p
	}
	if patch.Completed.Set && patch.Completed.Null {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "completed must be a boolean"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	before, err := h.Tasks.GetByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "task not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	if patch.CategoryID.Set && !patch.CategoryID.Null {
		if _, err := h.Categories.GetByID(ctx, patch.CategoryID.Value); err != nil {
			if errors.Is(err, repository.ErrCategoryNotFound) {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "category not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
		}
	}

	task, err := h.Tasks.Update(ctx, id, ownerID, patch)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "task not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	// Completing a task is the one transition other systems care about.
	if !before.Completed && task.Completed {
		go func(t model.Task) {
			ev := queue.TaskCompletedEvent{
				TaskID:      t.ID,
				OwnerID:     t.OwnerID,
				Title:       t.Title,
				Priority:    t.Priority,
				CompletedAt: time.Now().UTC().Format(time.RFC3339),
			}
			if t.CategoryID != nil {
				ev.CategoryID = *t.CategoryID
			}
			if err := service.PublishTaskCompleted(context.Background(), ev); err != nil {
				log.Printf("task-events: publish failed for task %d: %v", t.ID, err)
			}
		}(*task)
	}

	return c.JSON(http.StatusOK, newTaskResp(task, h.resolveCategory(ctx, task)))
}

// Delete handles DELETE /v1/tasks/:id and returns the record as it was
// just before removal.
func (h *TaskHandler) Delete(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	task, err := h.Tasks.GetByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "task not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	cat := h.resolveCategory(ctx, task)
	if err := h.Tasks.DeleteByIDAndOwner(ctx, id, ownerID); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "task not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, newTaskResp(task, cat))
}
