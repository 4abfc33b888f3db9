package filters

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/jordanlanch/leadgrid/pkg/models"
)

type simpleColumn struct {
	key    string
	column string
}

var (
	simpleText = []simpleColumn{
		{"company", "company_name"},
		{"contact", "contact_name"},
		{"email", "email"},
		{"country", "country"},
	}
	simpleExact = []simpleColumn{
		{"stage", "stage"},
		{"source", "source"},
		{"owner", "owner"},
	}
)

// Compile builds the WHERE predicate for s. Only the predicate set named by
// s.Mode is applied. It returns nil when nothing filters.
//
// Every user value is bound as an argument. Call Compile once per statement;
// predicates must not be shared between statements.
func Compile(s State) *entsql.Predicate {
	if s.Mode == ModeAdvanced {
		return compileAdvanced(s.Advanced.Conditions)
	}
	return compileSimple(s.Simple)
}

func compileSimple(simple map[string]any) *entsql.Predicate {
	var preds []*entsql.Predicate

	for _, f := range simpleText {
		if v, ok := textValue(simple[f.key]); ok {
			preds = append(preds, entsql.Contains(f.column, v))
		}
	}
	for _, f := range simpleExact {
		if v, ok := textValue(simple[f.key]); ok {
			preds = append(preds, entsql.EQ(f.column, v))
		}
	}

	if raw, ok := simple["minRevenue"]; ok {
		if n, ok := toFloat(raw); ok {
			preds = append(preds, entsql.GTE("annual_revenue", n))
		}
	}
	if raw, ok := simple["maxRevenue"]; ok {
		if n, ok := toFloat(raw); ok {
			preds = append(preds, entsql.LTE("annual_revenue", n))
		}
	}

	dateRanges := []struct {
		key    string
		column string
		op     entsql.Op
	}{
		{"createdFrom", "created_at", entsql.OpGTE},
		{"createdTo", "created_at", entsql.OpLTE},
		{"nextBefore", "next_action_date", entsql.OpLTE},
		{"nextAfter", "next_action_date", entsql.OpGTE},
	}
	for _, r := range dateRanges {
		v, ok := textValue(simple[r.key])
		if !ok {
			continue
		}
		if d, ok := dateArg(v); ok {
			preds = append(preds, dateCompare(r.column, r.op, d))
		}
	}

	return and(preds)
}

func and(preds []*entsql.Predicate) *entsql.Predicate {
	switch len(preds) {
	case 0:
		return nil
	case 1:
		return preds[0]
	default:
		return entsql.And(preds...)
	}
}

// compileAdvanced folds the conditions strictly left to right: each
// condition is joined to everything before it, so "a OR b AND c" reads
// "(a OR b) AND c".
func compileAdvanced(conditions []Condition) *entsql.Predicate {
	var chain *entsql.Predicate
	for _, c := range conditions {
		p := compileCondition(c)
		switch {
		case p == nil:
		case chain == nil:
			chain = p
		case c.Join == JoinOr:
			chain = entsql.Or(chain, p)
		default:
			chain = entsql.And(chain, p)
		}
	}
	return chain
}

func compileCondition(c Condition) *entsql.Predicate {
	field, ok := LookupField(c.Field)
	if !ok {
		return nil
	}
	value := strings.TrimSpace(c.Value)
	if value == "" {
		return nil
	}
	col := field.Column
	op := resolveOperator(field.Type, c.Operator)

	switch field.Type {
	case Text:
		switch op {
		case OpNotContains:
			return entsql.Not(entsql.Contains(col, value))
		case OpIs:
			return entsql.EQ(col, value)
		case OpIsNot:
			return entsql.NEQ(col, value)
		case OpStartsWith:
			return entsql.HasPrefix(col, value)
		case OpEndsWith:
			return entsql.HasSuffix(col, value)
		default:
			return entsql.Contains(col, value)
		}
	case Select:
		if op == OpIsNot {
			return entsql.NEQ(col, value)
		}
		return entsql.EQ(col, value)
	case Number:
		n, ok := toFloat(value)
		if !ok {
			return nil
		}
		switch op {
		case OpNeq:
			return entsql.NEQ(col, n)
		case OpGt:
			return entsql.GT(col, n)
		case OpGte:
			return entsql.GTE(col, n)
		case OpLt:
			return entsql.LT(col, n)
		case OpLte:
			return entsql.LTE(col, n)
		default:
			return entsql.EQ(col, n)
		}
	case Date:
		d, ok := dateArg(value)
		if !ok {
			return nil
		}
		switch op {
		case OpBefore:
			return dateCompare(col, entsql.OpLT, d)
		case OpAfter:
			return dateCompare(col, entsql.OpGT, d)
		case OpOnOrBefore:
			return dateCompare(col, entsql.OpLTE, d)
		case OpOnOrAfter:
			return dateCompare(col, entsql.OpGTE, d)
		default:
			return dateCompare(col, entsql.OpEQ, d)
		}
	default:
		return nil
	}
}

// dateCompare compares the calendar date of col with a YYYY-MM-DD argument,
// ignoring time of day.
func dateCompare(col string, op entsql.Op, date string) *entsql.Predicate {
	return entsql.P(func(b *entsql.Builder) {
		b.WriteString("DATE(").Ident(col).WriteByte(')')
		b.WriteOp(op)
		b.Arg(date)
	})
}

// dateArg extracts the calendar date of a YYYY-MM-DD value, optionally
// followed by a time part.
func dateArg(v string) (string, bool) {
	if len(v) > len(models.DateLayout) {
		if sep := v[len(models.DateLayout)]; sep != 'T' && sep != ' ' {
			return "", false
		}
		v = v[:len(models.DateLayout)]
	}
	d, err := models.ParseDate(v)
	if err != nil {
		return "", false
	}
	return d.Date, true
}

// textValue reports the string form of a simple filter value and whether
// it selects anything. Empty strings, zero and false select nothing.
func textValue(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, t != ""
	case json.Number:
		f, err := t.Float64()
		return t.String(), err != nil || f != 0
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), t != 0
	case bool:
		return "true", t
	default:
		return "", false
	}
}

// toFloat parses v as a finite number
func toFloat(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	case json.Number:
		parsed, err := strconv.ParseFloat(t.String(), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	case float64:
		f = t
	case int:
		f = float64(t)
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
