// Package repository contains data access logic separated from HTTP
// handlers.  This file defines TaskRepo, the only repository that applies
// ownership scoping: every read and mutation carries `owner_id = ?` in its
// WHERE clause, so a task belonging to someone else is indistinguishable
// from a task that does not exist.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/task-manager-api/internal/model"
)

// ErrTaskNotFound is returned when a task cannot be found for the caller.
// It covers both a missing row and a row owned by another user.
var ErrTaskNotFound = errors.New("task not found")

// TaskFilter narrows List results.  Nil fields are ignored.
type TaskFilter struct {
	Priority   *string
	CategoryID *uint64
}

// TaskRepo encapsulates all database queries related to tasks.
type TaskRepo struct {
	db *sql.DB
}

// NewTaskRepo constructs a TaskRepo with the provided DB handle.
func NewTaskRepo(db *sql.DB) *TaskRepo {
	return &TaskRepo{db: db}
}

const taskColumns = "id, owner_id, category_id, title, description, priority, completed, created_at, updated_at"

func scanTask(row interface{ Scan(...any) error }) (*model.Task, error) {
	var (
		t     model.Task
		catID sql.NullInt64
		desc  sql.NullString
		upd   sql.NullTime
	)
	if err := row.Scan(&t.ID, &t.OwnerID, &catID, &t.Title, &desc, &t.Priority, &t.Completed, &t.CreatedAt, &upd); err != nil {
		return nil, err
	}
	if catID.Valid {
		v := uint64(catID.Int64)
		t.CategoryID = &v
	}
	if desc.Valid {
		v := desc.String
		t.Description = &v
	}
	if upd.Valid {
		v := upd.Time
		t.UpdatedAt = &v
	}
	return &t, nil
}

// Create inserts a new task.  OwnerID, Title and Priority must be set by
// the caller.  After the insert the row is read back so the caller
// receives the server-assigned id and created_at.
func (r *TaskRepo) Create(ctx context.Context, t *model.Task) error {
	const qInsert = `INSERT INTO tasks (owner_id, category_id, title, description, priority, completed)
	                 VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, qInsert, t.OwnerID, t.CategoryID, t.Title, t.Description, t.Priority, t.Completed)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	stored, err := r.GetByIDAndOwner(ctx, uint64(id), t.OwnerID)
	if err != nil {
		return err
	}
	*t = *stored
	return nil
}

// GetByIDAndOwner fetches a task by id but only if it belongs to the
// specified owner.  If the task does not exist or is owned by someone
// else, ErrTaskNotFound is returned.
func (r *TaskRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.Task, error) {
	const q = "SELECT " + taskColumns + " FROM tasks WHERE id = ? AND owner_id = ?"
	t, err := scanTask(r.db.QueryRowContext(ctx, q, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return t, nil
}

// ListByOwner returns the owner's tasks, optionally narrowed by priority
// and category equality, paginated by offset/limit.  A window beyond the
// available rows yields an empty slice, never an error.
func (r *TaskRepo) ListByOwner(ctx context.Context, ownerID uint64, f TaskFilter, offset, limit int) ([]*model.Task, error) {
	q := "SELECT " + taskColumns + " FROM tasks WHERE owner_id = ?"
	args := []any{ownerID}
	if f.Priority != nil {
		q += " AND priority = ?"
		args = append(args, *f.Priority)
	}
	if f.CategoryID != nil {
		q += " AND category_id = ?"
		args = append(args, *f.CategoryID)
	}
	q += " ORDER BY id LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies only the fields present in the patch and stamps
// updated_at.  An empty patch performs no write and returns the current
// row.  Not found / not owned both surface as ErrTaskNotFound.
func (r *TaskRepo) Update(ctx context.Context, id, ownerID uint64, p TaskPatch) (*model.Task, error) {
	if p.Empty() {
		return r.GetByIDAndOwner(ctx, id, ownerID)
	}
	set, args := buildTaskSet(p)
	q := "UPDATE tasks SET " + strings.Join(set, ", ") + ", updated_at = UTC_TIMESTAMP() WHERE id = ? AND owner_id = ?"
	args = append(args, id, ownerID)
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		return nil, err
	}
	// RowsAffected is 0 both for a missing row and for a write that left
	// every column unchanged, so the scoped re-read decides between the
	// updated record and ErrTaskNotFound.
	return r.GetByIDAndOwner(ctx, id, ownerID)
}

// buildTaskSet translates a patch into SET fragments and their arguments.
// Explicit nulls become NULL writes; absent fields produce nothing.
func buildTaskSet(p TaskPatch) ([]string, []any) {
	var set []string
	var args []any
	if p.Title.Set {
		set = append(set, "title = ?")
		args = append(args, p.Title.Value)
	}
	if p.Description.Set {
		set = append(set, "description = ?")
		if p.Description.Null {
			args = append(args, nil)
		} else {
			args = append(args, p.Description.Value)
		}
	}
	if p.Priority.Set {
		set = append(set, "priority = ?")
		args = append(args, p.Priority.Value)
	}
	if p.Completed.Set {
		set = append(set, "completed = ?")
		args = append(args, p.Completed.Value)
	}
	if p.CategoryID.Set {
		set = append(set, "category_id = ?")
		if p.CategoryID.Null {
			args = append(args, nil)
		} else {
			args = append(args, p.CategoryID.Value)
		}
	}
	return set, args
}

// DeleteByIDAndOwner removes a task owned by the caller.  ErrTaskNotFound
// is returned when nothing was deleted.
func (r *TaskRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ? AND owner_id = ?", id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTaskNotFound
	}
	return nil
}
