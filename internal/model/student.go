package model

import "time"

// Student represents a persisted student record.
type Student struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Age       int       `json:"age"`
	Grade     string    `json:"grade"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StudentInput is the raw request body for create and update operations.
// Pointer fields distinguish "absent" from "zero value" so the same shape
// serves full creates and partial patches. Read-only fields (id, timestamps)
// are not part of this struct, so client-supplied values for them are
// ignored, as are unknown JSON keys.
type StudentInput struct {
	Name  *string `json:"name"`
	Age   *int    `json:"age"`
	Grade *string `json:"grade"`
	Email *string `json:"email"`
}

// StudentPatch is a validated partial update. Nil fields are left untouched.
type StudentPatch struct {
	Name  *string
	Age   *int
	Grade *string
	Email *string
}

// IsEmpty reports whether the patch carries no field changes.
func (p StudentPatch) IsEmpty() bool {
	return p.Name == nil && p.Age == nil && p.Grade == nil && p.Email == nil
}
