package filters

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// Mode selects which predicate set of a State applies
type Mode string

const (
	ModeSimple   Mode = "simple"
	ModeAdvanced Mode = "advanced"
)

// Join connects a condition to the conditions before it
type Join string

const (
	JoinNone Join = ""
	JoinAnd  Join = "AND"
	JoinOr   Join = "OR"
)

// MarshalJSON renders JoinNone as null
func (j Join) MarshalJSON() ([]byte, error) {
	if j == JoinNone {
		return []byte("null"), nil
	}
	return json.Marshal(string(j))
}

// Condition is one typed advanced-filter clause
type Condition struct {
	ID       string   `json:"id"`
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    string   `json:"value"`
	Join     Join     `json:"join"`
}

// Advanced holds the ordered advanced conditions
type Advanced struct {
	Conditions []Condition `json:"conditions"`
}

// State is the canonical filter description of a list request
type State struct {
	Mode     Mode           `json:"mode"`
	Simple   map[string]any `json:"simple"`
	Advanced Advanced       `json:"advanced"`
}

// Empty returns a State that filters nothing
func Empty() State {
	return State{
		Mode:     ModeSimple,
		Simple:   map[string]any{},
		Advanced: Advanced{Conditions: []Condition{}},
	}
}

// Parse decodes a filters query parameter and normalizes it. A blank
// payload yields Empty. On malformed JSON the error is returned together
// with Empty so callers can log it and carry on unfiltered.
func Parse(raw string) (State, error) {
	if strings.TrimSpace(raw) == "" {
		return Empty(), nil
	}
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return Empty(), fmt.Errorf("invalid filters payload: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return Empty(), errors.New("invalid filters payload: trailing data")
	}
	return Normalize(v), nil
}

// Normalize converts an untrusted decoded JSON value into a well-formed
// State. Objects without mode, simple or advanced keys are read as a legacy
// flat simple-filter map. Normalize never fails and is idempotent.
func Normalize(raw any) State {
	obj, ok := raw.(map[string]any)
	if !ok {
		return Empty()
	}

	_, hasMode := obj["mode"]
	_, hasSimple := obj["simple"]
	_, hasAdvanced := obj["advanced"]
	if !hasMode && !hasSimple && !hasAdvanced {
		state := Empty()
		state.Simple = sanitizeSimple(obj)
		return state
	}

	mode := ModeSimple
	if m, _ := obj["mode"].(string); m == string(ModeAdvanced) {
		mode = ModeAdvanced
	}
	return State{
		Mode:     mode,
		Simple:   sanitizeSimple(obj["simple"]),
		Advanced: Advanced{Conditions: normalizeConditions(obj["advanced"])},
	}
}

func sanitizeSimple(raw any) map[string]any {
	out := map[string]any{}
	obj, ok := raw.(map[string]any)
	if !ok {
		return out
	}
	for key, value := range obj {
		switch v := value.(type) {
		case nil:
		case string:
			if s := norm.NFC.String(strings.TrimSpace(v)); s != "" {
				out[key] = s
			}
		default:
			out[key] = v
		}
	}
	return out
}

func normalizeConditions(raw any) []Condition {
	conditions := []Condition{}
	obj, ok := raw.(map[string]any)
	if !ok {
		return conditions
	}
	items, _ := obj["conditions"].([]any)
	legacy := JoinAnd
	if logic, _ := obj["logic"].(string); logic == string(JoinOr) {
		legacy = JoinOr
	}

	for _, item := range items {
		c, _ := item.(map[string]any)
		key, _ := c["field"].(string)
		if key == "" {
			key, _ = c["key"].(string)
		}
		field, ok := LookupField(key)
		if !ok {
			continue
		}

		op, _ := c["operator"].(string)
		if op == "" {
			op = string(DefaultOperator(field.Type, truthy(c["negate"])))
		}

		join := legacy
		switch j, _ := c["join"].(string); Join(j) {
		case JoinAnd, JoinOr:
			join = Join(j)
		}
		if len(conditions) == 0 {
			join = JoinNone
		}

		id := stringify(c["id"])
		if id == "" {
			id = key + "-" + uuid.NewString()
		}

		conditions = append(conditions, Condition{
			ID:       id,
			Field:    key,
			Operator: Operator(op),
			Value:    norm.NFC.String(stringify(c["value"])),
			Join:     join,
		})
	}
	return conditions
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := t.Float64()
		return err == nil && f != 0
	case float64:
		return t != 0
	default:
		return true
	}
}
