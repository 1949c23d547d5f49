// This file defines CategoryRepo.  Categories are a global resource with
// no owner column, so unlike tasks there is no scoping clause anywhere.
// Deleting a category clears the reference on every task that pointed at
// it; category_id is optional, so orphaned tasks simply lose the label.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/task-manager-api/internal/model"
)

// ErrCategoryNotFound is returned when a category lookup fails.
var ErrCategoryNotFound = errors.New("category not found")

// CategoryRepo encapsulates all database queries related to categories.
type CategoryRepo struct {
	db *sql.DB
}

// NewCategoryRepo constructs a CategoryRepo with the given DB handle.
func NewCategoryRepo(db *sql.DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

const categoryColumns = "id, name, description, created_at"

func scanCategory(row interface{ Scan(...any) error }) (*model.Category, error) {
	var (
		c    model.Category
		desc sql.NullString
	)
	if err := row.Scan(&c.ID, &c.Name, &desc, &c.CreatedAt); err != nil {
		return nil, err
	}
	if desc.Valid {
		v := desc.String
		c.Description = &v
	}
	return &c, nil
}

// Create inserts a new category and reads the row back so the caller
// receives the server-assigned id and created_at.
func (r *CategoryRepo) Create(ctx context.Context, c *model.Category) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO categories (name, description) VALUES (?, ?)", c.Name, c.Description)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	stored, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*c = *stored
	return nil
}

// GetByID fetches a category by id, returning ErrCategoryNotFound when no
// row exists.
func (r *CategoryRepo) GetByID(ctx context.Context, id uint64) (*model.Category, error) {
	const q = "SELECT " + categoryColumns + " FROM categories WHERE id = ?"
	c, err := scanCategory(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return c, nil
}

// List returns categories ordered by id, paginated by offset/limit.
func (r *CategoryRepo) List(ctx context.Context, offset, limit int) ([]*model.Category, error) {
	const q = "SELECT " + categoryColumns + " FROM categories ORDER BY id LIMIT ? OFFSET ?"
	rows, err := r.db.QueryContext(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies only the fields present in the patch.  An empty patch
// performs no write and returns the current row.
func (r *CategoryRepo) Update(ctx context.Context, id uint64, p CategoryPatch) (*model.Category, error) {
	if p.Empty() {
		return r.GetByID(ctx, id)
	}
	var set []string
	var args []any
	if p.Name.Set {
		set = append(set, "name = ?")
		args = append(args, p.Name.Value)
	}
	if p.Description.Set {
		set = append(set, "description = ?")
		if p.Description.Null {
			args = append(args, nil)
		} else {
			args = append(args, p.Description.Value)
		}
	}
	q := "UPDATE categories SET " + strings.Join(set, ", ") + " WHERE id = ?"
	args = append(args, id)
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a category and clears the reference on every task that
// pointed at it.  Both statements run in one transaction so a task can
// never keep a dangling category_id.  ErrCategoryNotFound is returned
// when the category does not exist.
func (r *CategoryRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			_ = tx.Commit()
		}
	}()
	if _, err = tx.ExecContext(ctx, "UPDATE tasks SET category_id = NULL WHERE category_id = ?", id); err != nil {
		return err
	}
	var res sql.Result
	if res, err = tx.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id); err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		err = ErrCategoryNotFound
		return err
	}
	return nil
}
