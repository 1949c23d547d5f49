package repository

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestTaskPatch_AbsentNullAndPresent(t *testing.T) {
	var p TaskPatch
	body := `{"title":"Buy milk","description":null,"completed":true}`
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !p.Title.Set || p.Title.Null || p.Title.Value != "Buy milk" {
		t.Fatalf("title should be set to a value, got %+v", p.Title)
	}
	if !p.Description.Set || !p.Description.Null {
		t.Fatalf("description should be an explicit null, got %+v", p.Description)
	}
	if !p.Completed.Set || p.Completed.Null || !p.Completed.Value {
		t.Fatalf("completed should be set true, got %+v", p.Completed)
	}
	// Keys that never appeared must stay unset.
	if p.Priority.Set || p.CategoryID.Set {
		t.Fatalf("absent fields must not be marked set: %+v %+v", p.Priority, p.CategoryID)
	}
}

func TestTaskPatch_Empty(t *testing.T) {
	var p TaskPatch
	if err := json.Unmarshal([]byte(`{}`), &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.Empty() {
		t.Fatalf("a body without keys must produce an empty patch")
	}
	if err := json.Unmarshal([]byte(`{"completed":false}`), &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Empty() {
		t.Fatalf("completed=false is a real change, patch must not be empty")
	}
}

func TestBuildTaskSet_OnlyTouchedColumns(t *testing.T) {
	var p TaskPatch
	body := `{"priority":"Alta","category_id":null}`
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	set, args := buildTaskSet(p)

	clause := strings.Join(set, ", ")
	if clause != "priority = ?, category_id = ?" {
		t.Fatalf("unexpected SET clause: %q", clause)
	}
	if len(args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(args))
	}
	if args[0] != "Alta" {
		t.Fatalf("expected priority arg Alta, got %v", args[0])
	}
	if args[1] != nil {
		t.Fatalf("explicit null must write NULL, got %v", args[1])
	}
}

func TestBuildTaskSet_NeverTouchesOwner(t *testing.T) {
	// owner_id is not a patchable field at the type level; a client
	// sending it must see it ignored.
	var p TaskPatch
	body := `{"owner_id":42,"title":"X"}`
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	set, _ := buildTaskSet(p)
	for _, s := range set {
		if strings.Contains(s, "owner_id") {
			t.Fatalf("owner_id must never appear in SET: %v", set)
		}
	}
	if len(set) != 1 || set[0] != "title = ?" {
		t.Fatalf("expected only title to be touched, got %v", set)
	}
}

func TestCategoryPatch(t *testing.T) {
	var p CategoryPatch
	if err := json.Unmarshal([]byte(`{"description":"notes"}`), &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name.Set {
		t.Fatalf("name was absent and must stay unset")
	}
	if !p.Description.Set || p.Description.Null || p.Description.Value != "notes" {
		t.Fatalf("description should carry the value, got %+v", p.Description)
	}
	if p.Empty() {
		t.Fatalf("patch with description must not be empty")
	}
}
