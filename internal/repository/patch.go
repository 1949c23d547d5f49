// Partial update payloads.  JSON PATCH-style bodies need to tell three
// states apart for every field: absent (leave the column alone), null
// (clear the column) and present (write the value).  A plain pointer
// collapses the first two, so updates bind into Optional fields instead.
package repository

import "encoding/json"

// Optional wraps a field of an update payload.  Set reports whether the
// key appeared in the JSON body at all; Null reports whether it was an
// explicit JSON null.  Value is only meaningful when Set && !Null.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// UnmarshalJSON is only invoked by encoding/json when the key is present,
// which is exactly the signal Set captures.
func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Null = true
		return nil
	}
	return json.Unmarshal(b, &o.Value)
}

// TaskPatch carries the fields a task update may touch.  OwnerID is
// deliberately absent: ownership is assigned at creation and can never be
// reassigned through an update.
type TaskPatch struct {
	Title       Optional[string] `json:"title"`
	Description Optional[string] `json:"description"`
	Priority    Optional[string] `json:"priority"`
	Completed   Optional[bool]   `json:"completed"`
	CategoryID  Optional[uint64] `json:"category_id"`
}

// Empty reports whether the patch touches no field at all.
func (p TaskPatch) Empty() bool {
	return !p.Title.Set && !p.Description.Set && !p.Priority.Set && !p.Completed.Set && !p.CategoryID.Set
}

// CategoryPatch carries the fields a category update may touch.
type CategoryPatch struct {
	Name        Optional[string] `json:"name"`
	Description Optional[string] `json:"description"`
}

// Empty reports whether the patch touches no field at all.
func (p CategoryPatch) Empty() bool {
	return !p.Name.Set && !p.Description.Set
}
