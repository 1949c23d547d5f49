package model

import "time"

// Category represents a row in the `categories` table.  Categories are a
// global resource: they carry no owner reference and any caller may read
// or mutate them.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – label, 1–100 characters after trimming.
//  Description – optional free text up to 500 characters.
//  CreatedAt   – creation timestamp.
type Category struct {
    ID          uint64    // categories.id
    Name        string    // categories.name
    Description *string   // categories.description (nullable)
    CreatedAt   time.Time // categories.created_at
}
