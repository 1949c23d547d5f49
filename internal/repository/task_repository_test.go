package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/iliyamo/task-manager-api/internal/model"
)

func taskRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "owner_id", "category_id", "title", "description",
		"priority", "completed", "created_at", "updated_at",
	})
}

func TestTaskRepoListByOwner_BindsOwnerInWhere(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewTaskRepo(db)

	now := time.Now().UTC()
	// The expectation pins the full statement, so a query missing the
	// owner clause cannot satisfy it.
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT "+taskColumns+" FROM tasks WHERE owner_id = ? ORDER BY id LIMIT ? OFFSET ?")).
		WithArgs(int64(7), 100, 0).
		WillReturnRows(taskRows().
			AddRow(int64(3), int64(7), nil, "write report", nil, "Media", false, now, nil))

	tasks, err := repo.ListByOwner(context.Background(), 7, TaskFilter{}, 0, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tasks) != 1 || tasks[0].OwnerID != 7 || tasks[0].Title != "write report" {
		t.Fatalf("unexpected result: %+v", tasks)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTaskRepoListByOwner_AppendsFilterClauses(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewTaskRepo(db)

	prio := "Alta"
	catID := uint64(2)
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT "+taskColumns+" FROM tasks WHERE owner_id = ? AND priority = ? AND category_id = ? ORDER BY id LIMIT ? OFFSET ?")).
		WithArgs(int64(7), "Alta", int64(2), 10, 5).
		WillReturnRows(taskRows())

	tasks, err := repo.ListByOwner(context.Background(), 7, TaskFilter{Priority: &prio, CategoryID: &catID}, 5, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("expected empty window, got %d tasks", len(tasks))
	}
	if tasks == nil {
		t.Fatalf("empty window must be a non-nil slice")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTaskRepoGetByIDAndOwner_ScopesToOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewTaskRepo(db)

	// A row owned by user 1 yields no result when user 99 asks for it.
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT "+taskColumns+" FROM tasks WHERE id = ? AND owner_id = ?")).
		WithArgs(int64(3), int64(99)).
		WillReturnError(sql.ErrNoRows)

	if _, err := repo.GetByIDAndOwner(context.Background(), 3, 99); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTaskRepoCreate_ReadsBackStoredRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewTaskRepo(db)

	now := time.Now().UTC()
	mock.ExpectExec("INSERT INTO tasks").
		WithArgs(int64(7), nil, "write report", nil, "Media", false).
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT "+taskColumns+" FROM tasks WHERE id = ? AND owner_id = ?")).
		WithArgs(int64(42), int64(7)).
		WillReturnRows(taskRows().
			AddRow(int64(42), int64(7), nil, "write report", nil, "Media", false, now, nil))

	task := &model.Task{OwnerID: 7, Title: "write report", Priority: "Media"}
	if err := repo.Create(context.Background(), task); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.ID != 42 {
		t.Fatalf("expected server-assigned id 42, got %d", task.ID)
	}
	if task.CreatedAt.IsZero() {
		t.Fatalf("created_at not populated from the stored row")
	}
	if task.UpdatedAt != nil {
		t.Fatalf("a fresh task must not carry updated_at")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
