package filters

// FieldType is the semantic type of a filterable field. It decides which
// operators apply and how values are bound.
type FieldType int

const (
	Text FieldType = iota
	Select
	Number
	Date
)

func (t FieldType) String() string {
	switch t {
	case Text:
		return "text"
	case Select:
		return "select"
	case Number:
		return "number"
	case Date:
		return "date"
	default:
		return "unknown"
	}
}

// Operator is an advanced-filter comparison
type Operator string

// Text operators
const (
	OpContains    Operator = "contains"
	OpNotContains Operator = "not_contains"
	OpIs          Operator = "is"
	OpIsNot       Operator = "is_not"
	OpStartsWith  Operator = "starts_with"
	OpEndsWith    Operator = "ends_with"
)

// Number operators
const (
	OpEq  Operator = "eq"
	OpNeq Operator = "neq"
	OpGt  Operator = "gt"
	OpGte Operator = "gte"
	OpLt  Operator = "lt"
	OpLte Operator = "lte"
)

// Date operators
const (
	OpOn         Operator = "on"
	OpBefore     Operator = "before"
	OpAfter      Operator = "after"
	OpOnOrBefore Operator = "on_or_before"
	OpOnOrAfter  Operator = "on_or_after"
)

// Field maps a client-facing filter key to its column and type
type Field struct {
	Key    string
	Column string
	Type   FieldType
}

var fields = map[string]Field{
	"company":          {Key: "company", Column: "company_name", Type: Text},
	"contact":          {Key: "contact", Column: "contact_name", Type: Text},
	"email":            {Key: "email", Column: "email", Type: Text},
	"country":          {Key: "country", Column: "country", Type: Text},
	"stage":            {Key: "stage", Column: "stage", Type: Select},
	"source":           {Key: "source", Column: "source", Type: Select},
	"owner":            {Key: "owner", Column: "owner", Type: Select},
	"annual_revenue":   {Key: "annual_revenue", Column: "annual_revenue", Type: Number},
	"created_at":       {Key: "created_at", Column: "created_at", Type: Date},
	"next_action_date": {Key: "next_action_date", Column: "next_action_date", Type: Date},
}

// LookupField returns the metadata for key
func LookupField(key string) (Field, bool) {
	f, ok := fields[key]
	return f, ok
}

// DefaultOperator returns the operator used when a condition names none.
// negate selects the negated counterpart.
func DefaultOperator(t FieldType, negate bool) Operator {
	switch t {
	case Select:
		if negate {
			return OpIsNot
		}
		return OpIs
	case Number:
		if negate {
			return OpNeq
		}
		return OpEq
	case Date:
		if negate {
			return OpBefore
		}
		return OpOn
	default:
		if negate {
			return OpNotContains
		}
		return OpContains
	}
}

// Operators lists the operators a field type understands, in display order
func Operators(t FieldType) []Operator {
	switch t {
	case Select:
		return []Operator{OpIs, OpIsNot}
	case Number:
		return []Operator{OpEq, OpNeq, OpGt, OpGte, OpLt, OpLte}
	case Date:
		return []Operator{OpOn, OpBefore, OpAfter, OpOnOrBefore, OpOnOrAfter}
	default:
		return []Operator{OpContains, OpNotContains, OpIs, OpIsNot, OpStartsWith, OpEndsWith}
	}
}

// resolveOperator maps op onto the operators valid for t. Unknown operators
// fall back to the type's non-negated default.
func resolveOperator(t FieldType, op Operator) Operator {
	for _, known := range Operators(t) {
		if known == op {
			return op
		}
	}
	return DefaultOperator(t, false)
}
