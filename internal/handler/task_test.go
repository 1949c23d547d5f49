package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/task-manager-api/internal/model"
	"github.com/iliyamo/task-manager-api/internal/repository"
)

// newTestContext builds an echo context carrying an authenticated user,
// the way the JWT middleware would leave it.
func newTestContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", uint64(1))
	return c, rec
}

func TestNormalizePriority(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"Alta", model.PriorityHigh, true},
		{"alta", model.PriorityHigh, true},
		{" MEDIA ", model.PriorityMedium, true},
		{"baja", model.PriorityLow, true},
		{"urgent", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := normalizePriority(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("normalizePriority(%q) = %q,%v; want %q,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestCreateTask_RejectsMissingTitle(t *testing.T) {
	h := &TaskHandler{}
	c, rec := newTestContext(t, http.MethodPost, "/v1/tasks", `{"title":"   "}`)
	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreateTask_RejectsOverlongTitle(t *testing.T) {
	h := &TaskHandler{}
	long := strings.Repeat("x", 201)
	c, rec := newTestContext(t, http.MethodPost, "/v1/tasks", `{"title":"`+long+`"}`)
	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

// Title and description limits count characters, not bytes, since the
// columns are utf8mb4.  150 two-byte runes exceed 200 bytes but must pass.
func TestCreateTask_CountsTitleRunesNotBytes(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	h := NewTaskHandler(repository.NewTaskRepo(db), repository.NewCategoryRepo(db))

	title := strings.Repeat("ñ", 150)
	now := time.Now().UTC()
	mock.ExpectExec("INSERT INTO tasks").
		WithArgs(int64(1), nil, title, nil, model.PriorityMedium, false).
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectQuery("SELECT .+ FROM tasks WHERE id = \\? AND owner_id = \\?").
		WithArgs(int64(9), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "owner_id", "category_id", "title", "description",
			"priority", "completed", "created_at", "updated_at",
		}).AddRow(int64(9), int64(1), nil, title, nil, "Media", false, now, nil))

	payload, err := json.Marshal(map[string]string{"title": title})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	c, rec := newTestContext(t, http.MethodPost, "/v1/tasks", string(payload))
	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateTask_RejectsOverlongMultibyteTitle(t *testing.T) {
	h := &TaskHandler{}
	payload, err := json.Marshal(map[string]string{"title": strings.Repeat("ñ", 201)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	c, rec := newTestContext(t, http.MethodPost, "/v1/tasks", string(payload))
	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreateTask_RejectsUnknownPriority(t *testing.T) {
	h := &TaskHandler{}
	c, rec := newTestContext(t, http.MethodPost, "/v1/tasks", `{"title":"X","priority":"urgent"}`)
	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid error body: %v", err)
	}
	if !strings.Contains(body["error"], "priority") {
		t.Fatalf("error should name the priority field, got %q", body["error"])
	}
}

func TestCreateTask_RequiresAuthenticatedUser(t *testing.T) {
	h := &TaskHandler{}
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/tasks", strings.NewReader(`{"title":"X"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec) // no user_id in context
	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestUpdateTask_RejectsNullTitle(t *testing.T) {
	h := &TaskHandler{}
	c, rec := newTestContext(t, http.MethodPut, "/v1/tasks/1", `{"title":null}`)
	c.SetParamNames("id")
	c.SetParamValues("1")
	if err := h.Update(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestUpdateTask_RejectsNullCompleted(t *testing.T) {
	h := &TaskHandler{}
	c, rec := newTestContext(t, http.MethodPut, "/v1/tasks/1", `{"completed":null}`)
	c.SetParamNames("id")
	c.SetParamValues("1")
	if err := h.Update(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestUpdateTask_RejectsBadID(t *testing.T) {
	h := &TaskHandler{}
	c, rec := newTestContext(t, http.MethodPut, "/v1/tasks/abc", `{"title":"X"}`)
	c.SetParamNames("id")
	c.SetParamValues("abc")
	if err := h.Update(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestListTasks_RejectsUnknownPriorityFilter(t *testing.T) {
	h := &TaskHandler{}
	c, rec := newTestContext(t, http.MethodGet, "/v1/tasks?priority=urgent", "")
	if err := h.List(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
