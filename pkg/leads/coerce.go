package leads

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/jordanlanch/leadgrid/pkg/domain"
	"github.com/jordanlanch/leadgrid/pkg/models"
)

// Validation messages shown to users verbatim
const (
	MsgInvalidNumber = "Enter a valid number."
	MsgInvalidDate   = "Provide a date in YYYY-MM-DD format."
	MsgStageEmpty    = "Stage cannot be empty."
	MsgStageInvalid  = "Invalid stage selection."
	MsgSourceEmpty   = "Source cannot be empty."
	MsgSourceInvalid = "Invalid source selection."
	MsgRequired      = "This field is required."
)

// EditableColumns lists the columns Patch and BulkEdit may write, in the
// order they are applied.
var EditableColumns = []string{
	"company_name",
	"contact_name",
	"email",
	"phone",
	"country",
	"stage",
	"source",
	"owner",
	"annual_revenue",
	"next_action_date",
	"notes",
}

var requiredColumns = map[string]bool{
	"company_name": true,
	"contact_name": true,
	"email":        true,
	"stage":        true,
	"source":       true,
	"owner":        true,
}

// IsEditable reports whether column may be written by Patch or BulkEdit
func IsEditable(column string) bool {
	return slices.Contains(EditableColumns, column)
}

// CoerceColumnValue validates raw for column and returns the value to
// store. A nil result means NULL. Failures are validation errors carrying
// a user-facing message.
func CoerceColumnValue(column string, raw any) (any, error) {
	value := raw
	if s, ok := value.(string); ok {
		if s = strings.TrimSpace(s); s == "" {
			value = nil
		} else {
			value = s
		}
	}

	switch column {
	case "annual_revenue":
		if value == nil {
			return nil, nil
		}
		n, ok := toNumber(value)
		if !ok {
			return nil, domain.NewValidationError(MsgInvalidNumber)
		}
		return n, nil

	case "next_action_date":
		if value == nil {
			return nil, nil
		}
		d, err := models.ParseDate(toString(value))
		if err != nil {
			return nil, domain.NewValidationError(MsgInvalidDate)
		}
		return d.Date, nil

	case "stage":
		if value == nil {
			return nil, domain.NewValidationError(MsgStageEmpty)
		}
		stage := strings.TrimSpace(toString(value))
		if !slices.Contains(models.Stages, stage) {
			return nil, domain.NewValidationError(MsgStageInvalid)
		}
		return stage, nil

	case "source":
		if value == nil {
			return nil, domain.NewValidationError(MsgSourceEmpty)
		}
		source := strings.TrimSpace(toString(value))
		if !slices.Contains(models.Sources, source) {
			return nil, domain.NewValidationError(MsgSourceInvalid)
		}
		return source, nil
	}

	if requiredColumns[column] {
		if value == nil {
			return nil, domain.NewValidationError(MsgRequired)
		}
		s := strings.TrimSpace(toString(value))
		if s == "" {
			return nil, domain.NewValidationError(MsgRequired)
		}
		return s, nil
	}

	if value == nil {
		return nil, nil
	}
	if s := strings.TrimSpace(toString(value)); s != "" {
		return s, nil
	}
	return nil, nil
}

// toNumber converts a JSON scalar to a finite float. Booleans count as 0
// and 1.
func toNumber(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case int:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(t, 64)
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
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// ParseCopies reads the copies field of a duplicate request. Missing means
// one copy; anything that is not a positive integer fails; values above
// MaxCopies are clamped.
func ParseCopies(raw any) (int, error) {
	if raw == nil {
		return 1, nil
	}
	var n float64
	switch t := raw.(type) {
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, errInvalidCopies
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, errInvalidCopies
		}
		n = parsed
	default:
		parsed, ok := toNumber(raw)
		if !ok {
			return 0, errInvalidCopies
		}
		n = parsed
	}
	if n != math.Trunc(n) || n < 1 || math.IsInf(n, 0) {
		return 0, errInvalidCopies
	}
	if n > MaxCopies {
		return MaxCopies, nil
	}
	return int(n), nil
}

// FormatDuplicateName builds the company name of copy index (0-based) out
// of copies. A blank base becomes "Untitled Lead". The trimmed prefix and a
// space go in front, the suffix is appended verbatim, and when more than
// one copy is made a 1-based counter closes the name.
func FormatDuplicateName(base, prefix, suffix string, index, copies int) string {
	name := strings.TrimSpace(base)
	if name == "" {
		name = "Untitled Lead"
	}
	if p := strings.TrimSpace(prefix); p != "" {
		name = strings.TrimSpace(p + " " + name)
	}
	if suffix != "" {
		name += suffix
	}
	if copies > 1 {
		name = strings.TrimSpace(name + " " + strconv.Itoa(index+1))
	}
	return name
}
