package model

import "time"

// Priority levels a task can carry.  The wire values are the Spanish
// labels the clients already send; PriorityDefault is applied when a
// create request omits the field.
const (
    PriorityLow     = "Baja"
    PriorityMedium  = "Media"
    PriorityHigh    = "Alta"
    PriorityDefault = PriorityMedium
)

// ValidPriority reports whether p is one of the accepted priority values.
func ValidPriority(p string) bool {
    return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Task represents a row in the `tasks` table.  Every task belongs to
// exactly one user; OwnerID is assigned at creation and never changes.
// CategoryID is an optional reference into the categories table.
//
// Fields:
//  ID          – primary key identifier.
//  OwnerID     – references users.id of the task owner.
//  CategoryID  – optional reference to categories.id (nullable).
//  Title       – short label, 1–200 characters after trimming.
//  Description – optional free text up to 1000 characters.
//  Priority    – one of Baja/Media/Alta.
//  Completed   – whether the task is done.
//  CreatedAt   – creation timestamp, immutable.
//  UpdatedAt   – set on every mutation; null until the first update.
type Task struct {
    ID          uint64     // tasks.id
    OwnerID     uint64     // tasks.owner_id
    CategoryID  *uint64    // tasks.category_id (nullable)
    Title       string     // tasks.title
    Description *string    // tasks.description (nullable)
    Priority    string     // tasks.priority
    Completed   bool       // tasks.completed
    CreatedAt   time.Time  // tasks.created_at
    UpdatedAt   *time.Time // tasks.updated_at (null until first update)
}
