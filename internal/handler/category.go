package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/task-manager-api/internal/model"
	"github.com/iliyamo/task-manager-api/internal/repository"
)

// CategoryHandler serves the global category resource.  These endpoints
// deliberately carry no authentication: categories have no owner and the
// reference behavior never restricted them.
type CategoryHandler struct {
	Categories *repository.CategoryRepo
}

func NewCategoryHandler(categories *repository.CategoryRepo) *CategoryHandler {
	if categories == nil {
		panic("nil repository passed to NewCategoryHandler")
	}
	return &CategoryHandler{Categories: categories}
}

type createCategoryReq struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

func validateCategoryName(raw string) (string, string) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", "name is required"
	}
	// Columns are utf8mb4 VARCHARs, so limits count runes, not bytes.
	if utf8.RuneCountInString(name) > 100 {
		return "", "name must be at most 100 characters"
	}
	return name, ""
}

// Create handles POST /v1/categories.
func (h *CategoryHandler) Create(c echo.Context) error {
	var req createCategoryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	name, msg := validateCategoryName(req.Name)
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	if req.Description != nil && utf8.RuneCountInString(*req.Description) > 500 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "description must be at most 500 characters"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	cat := &model.Category{Name: name, Description: req.Description}
	if err := h.Categories.Create(ctx, cat); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create category"})
	}
	return c.JSON(http.StatusCreated, newCategoryResp(cat))
}

// List handles GET /v1/categories with skip/limit pagination.
func (h *CategoryHandler) List(c echo.Context) error {
	skip, limit := parsePage(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	cats, err := h.Categories.List(ctx, skip, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	out := make([]categoryResp, 0, len(cats))
	for _, cat := range cats {
		out = append(out, newCategoryResp(cat))
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /v1/categories/:id.
func (h *CategoryHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	cat, err := h.Categories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, newCategoryResp(cat))
}

// Update handles PUT /v1/categories/:id with the same partial-update
// semantics as tasks: absent fields stay untouched.
func (h *CategoryHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var patch repository.CategoryPatch
	if err := c.Bind(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if patch.Name.Set {
		if patch.Name.Null {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
		}
		name, msg := validateCategoryName(patch.Name.Value)
		if msg != "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
		}
		patch.Name.Value = name
	}
	if patch.Description.Set && !patch.Description.Null && utf8.RuneCountInString(patch.Description.Value) > 500 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "description must be at most 500 characters"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	// Verify existence first so an update against a missing id is a clean 404.
	if _, err := h.Categories.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	cat, err := h.Categories.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, newCategoryResp(cat))
}

// Delete handles DELETE /v1/categories/:id and returns the removed
// record.  Tasks pointing at the category keep existing with a cleared
// reference.
func (h *CategoryHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	cat, err := h.Categories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if err := h.Categories.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, newCategoryResp(cat))
}
