package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// IDList is a list of lead ids decoded leniently: numbers and numeric
// strings are accepted, anything that does not resolve to a non-zero
// integer is dropped.
type IDList []int

// UnmarshalJSON implements json.Unmarshaler
func (l *IDList) UnmarshalJSON(data []byte) error {
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		// Not an array: behave as if no ids were sent.
		*l = nil
		return nil
	}
	ids := make(IDList, 0, len(raw))
	for _, item := range raw {
		if id, ok := toID(item); ok {
			ids = append(ids, id)
		}
	}
	*l = ids
	return nil
}

func toID(v any) (int, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	case bool:
		if t {
			f = 1
		}
	default:
		return 0, false
	}
	if f == 0 || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) >= math.MaxInt64 {
		return 0, false
	}
	return int(f), true
}

// BulkDeleteRequest represents the body of POST /api/leads/bulk-delete
type BulkDeleteRequest struct {
	IDs IDList `json:"ids"`
}

// BulkDeleteResponse reports how many rows were removed
type BulkDeleteResponse struct {
	Deleted int64 `json:"deleted"`
}

// BulkEditRequest represents the body of POST /api/leads/bulk-edit
type BulkEditRequest struct {
	IDs    IDList `json:"ids"`
	Column string `json:"column"`
	Value  any    `json:"value"`
}

// BulkEditResponse reports how many rows were updated
type BulkEditResponse struct {
	Updated int64 `json:"updated"`
}

// BulkDuplicateRequest represents the body of POST /api/leads/bulk-duplicate.
// Copies, Prefix and Suffix stay untyped so the service can apply its own
// coercion rules.
type BulkDuplicateRequest struct {
	IDs    IDList `json:"ids"`
	Copies any    `json:"copies"`
	Prefix any    `json:"prefix"`
	Suffix any    `json:"suffix"`
}

// BulkDuplicateResponse lists the ids created, in creation order
type BulkDuplicateResponse struct {
	Duplicated int   `json:"duplicated"`
	IDs        []int `json:"ids"`
}
