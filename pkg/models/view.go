package models

import (
	"encoding/json"
	"time"
)

// View visibilities. The value is informational only.
const (
	VisibilityPrivate = "private"
	VisibilityTeam    = "team"
	VisibilityOrg     = "org"
)

// SavedView is a named, user-scoped snapshot of grid state
type SavedView struct {
	ID         int             `json:"id"`
	UserID     int             `json:"user_id"`
	Resource   string          `json:"resource"`
	Name       string          `json:"name"`
	State      json.RawMessage `json:"state"`
	Visibility string          `json:"visibility"`
	IsDefault  bool            `json:"is_default"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// CreateViewRequest represents the body of POST /api/views
type CreateViewRequest struct {
	Name       string          `json:"name" validate:"required,max=100"`
	Resource   string          `json:"resource" validate:"required,max=64"`
	State      json.RawMessage `json:"state"`
	Visibility string          `json:"visibility" validate:"omitempty,oneof=private team org"`
	IsDefault  bool            `json:"is_default"`
}

// UpdateViewRequest represents the body of PATCH /api/views/:id. Nil
// fields are left untouched.
type UpdateViewRequest struct {
	Name       *string         `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	State      json.RawMessage `json:"state,omitempty"`
	Visibility *string         `json:"visibility,omitempty" validate:"omitempty,oneof=private team org"`
}

// Empty reports whether the request changes nothing
func (r UpdateViewRequest) Empty() bool {
	return r.Name == nil && len(r.State) == 0 && r.Visibility == nil
}

// DeleteViewResponse reports how many views were removed
type DeleteViewResponse struct {
	Deleted int64 `json:"deleted"`
}
