package handler // handler defines http handlers

import (
    "context"
    "errors"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/task-manager-api/internal/model"
)

// getUserID extracts the user_id from echo.Context and converts it to uint64
func getUserID(c echo.Context) (uint64, error) {
    v := c.Get("user_id")
    switch t := v.(type) {
    case uint64:
        return t, nil
    case int:
        return uint64(t), nil
    case int64:
        return uint64(t), nil
    case float64:
        return uint64(t), nil
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil {
            return n, nil
        }
    }
    return 0, errors.New("invalid user_id in context")
}

// reqCtx bounds a handler's store calls with the usual five second budget.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
    return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

// parsePage reads skip/limit query parameters.  Absent or malformed
// values fall back to skip=0 and limit=100; limit caps a single page, it
// is never a total cap.
func parsePage(c echo.Context) (skip, limit int) {
    skip, limit = 0, 100
    if s := c.QueryParam("skip"); s != "" {
        if n, err := strconv.Atoi(s); err == nil && n >= 0 {
            skip = n
        }
    }
    if s := c.QueryParam("limit"); s != "" {
        if n, err := strconv.Atoi(s); err == nil && n >= 0 {
            limit = n
        }
    }
    return skip, limit
}

// ----- response shapes -----

// userResp is what the API returns for a user.  The password hash never
// appears here.
type userResp struct {
    ID        uint64    `json:"id"`
    Email     string    `json:"email"`
    IsActive  bool      `json:"is_active"`
    CreatedAt time.Time `json:"created_at"`
}

func newUserResp(u *model.User) userResp {
    return userResp{ID: u.ID, Email: u.Email, IsActive: u.IsActive, CreatedAt: u.CreatedAt}
}

type categoryResp struct {
    ID          uint64    `json:"id"`
    Name        string    `json:"name"`
    Description *string   `json:"description"`
    CreatedAt   time.Time `json:"created_at"`
}

func newCategoryResp(cat *model.Category) categoryResp {
    return categoryResp{ID: cat.ID, Name: cat.Name, Description: cat.Description, CreatedAt: cat.CreatedAt}
}

// taskResp embeds the resolved category when the task references one, so
// clients never have to chase the bare foreign key.
type taskResp struct {
    ID          uint64        `json:"id"`
    OwnerID     uint64        `json:"owner_id"`
    Title       string        `json:"title"`
    Description *string       `json:"description"`
    Priority    string        `json:"priority"`
    Completed   bool          `json:"completed"`
    CategoryID  *uint64       `json:"category_id"`
    Category    *categoryResp `json:"category"`
    CreatedAt   time.Time     `json:"created_at"`
    UpdatedAt   *time.Time    `json:"updated_at"`
}

func newTaskResp(t *model.Task, cat *model.Category) taskResp {
    resp := taskResp{
        ID:          t.ID,
        OwnerID:     t.OwnerID,
        Title:       t.Title,
        Description: t.Description,
        Priority:    t.Priority,
        Completed:   t.Completed,
        CategoryID:  t.CategoryID,
        CreatedAt:   t.CreatedAt,
        UpdatedAt:   t.UpdatedAt,
    }
    if cat != nil {
        cr := newCategoryResp(cat)
        resp.Category = &cr
    }
    return resp
}
