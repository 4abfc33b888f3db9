package filters

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Blank(t *testing.T) {
	state, err := Parse("   ")
	require.NoError(t, err)
	assert.Equal(t, Empty(), state)
}

func TestParse_Malformed(t *testing.T) {
	for _, raw := range []string{"{", "not json", `{"company":"a"} trailing`} {
		state, err := Parse(raw)
		assert.Error(t, err, raw)
		assert.Equal(t, Empty(), state, raw)
	}
}

func TestNormalize_NonObject(t *testing.T) {
	for _, raw := range []any{nil, "stage", 42.0, []any{"a"}} {
		assert.Equal(t, Empty(), Normalize(raw))
	}
}

func TestNormalize_LegacyFlatMap(t *testing.T) {
	state, err := Parse(`{"company":"  Acme ","stage":"Won","owner":"","country":null,"minRevenue":1000}`)
	require.NoError(t, err)

	assert.Equal(t, ModeSimple, state.Mode)
	assert.Equal(t, map[string]any{
		"company":    "Acme",
		"stage":      "Won",
		"minRevenue": json.Number("1000"),
	}, state.Simple)
	assert.Empty(t, state.Advanced.Conditions)
}

func TestNormalize_ModeSelection(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Mode
	}{
		{"advanced", `{"mode":"advanced"}`, ModeAdvanced},
		{"simple", `{"mode":"simple"}`, ModeSimple},
		{"unknown mode", `{"mode":"fancy"}`, ModeSimple},
		{"only simple key", `{"simple":{"stage":"Won"}}`, ModeSimple},
		{"only advanced key", `{"advanced":{"conditions":[]}}`, ModeSimple},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, err := Parse(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, state.Mode)
		})
	}
}

func TestNormalize_AdvancedConditions(t *testing.T) {
	raw := `{
		"mode": "advanced",
		"advanced": {
			"logic": "OR",
			"conditions": [
				{"field": "unknown", "value": "x"},
				{"key": "stage", "value": "Won", "join": "AND"},
				{"field": "annual_revenue", "operator": "gt", "value": 100000},
				{"field": "company", "negate": true, "value": "Acme", "join": "AND"},
				{"field": "next_action_date", "id": "keep-me", "value": "2024-05-01"}
			]
		}
	}`
	state, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, state.Advanced.Conditions, 4)

	first := state.Advanced.Conditions[0]
	assert.Equal(t, "stage", first.Field)
	assert.Equal(t, OpIs, first.Operator)
	assert.Equal(t, "Won", first.Value)
	assert.Equal(t, JoinNone, first.Join, "first condition never joins")
	assert.NotEmpty(t, first.ID)

	revenue := state.Advanced.Conditions[1]
	assert.Equal(t, OpGt, revenue.Operator)
	assert.Equal(t, "100000", revenue.Value)
	assert.Equal(t, JoinOr, revenue.Join, "falls back to legacy logic")

	company := state.Advanced.Conditions[2]
	assert.Equal(t, OpNotContains, company.Operator)
	assert.Equal(t, JoinAnd, company.Join)

	next := state.Advanced.Conditions[3]
	assert.Equal(t, "keep-me", next.ID)
	assert.Equal(t, OpOn, next.Operator)
	assert.Equal(t, JoinOr, next.Join)
}

func TestNormalize_NegatedDefaults(t *testing.T) {
	tests := []struct {
		field string
		want  Operator
	}{
		{"stage", OpIsNot},
		{"annual_revenue", OpNeq},
		{"created_at", OpBefore},
		{"email", OpNotContains},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			state := Normalize(map[string]any{
				"mode": "advanced",
				"advanced": map[string]any{
					"conditions": []any{map[string]any{"field": tt.field, "negate": true, "value": "1"}},
				},
			})
			require.Len(t, state.Advanced.Conditions, 1)
			assert.Equal(t, tt.want, state.Advanced.Conditions[0].Operator)
		})
	}
}

func TestNormalize_UnicodeComposition(t *testing.T) {
	state := Normalize(map[string]any{"country": "Sa\u0303o Tome\u0301"})
	assert.Equal(t, "S\u00e3o Tom\u00e9", state.Simple["country"])
}

func TestNormalize_Idempotent(t *testing.T) {
	raw := `{
		"mode": "advanced",
		"simple": {"company": " Acme ", "maxRevenue": "5000"},
		"advanced": {"conditions": [
			{"field": "bogus", "value": "x"},
			{"field": "stage", "operator": "is", "value": "Won"},
			{"field": "owner", "operator": "is_not", "value": "Teammate A", "join": "OR"},
			{"field": "created_at", "value": "2024-01-01"}
		]}
	}`
	once, err := Parse(raw)
	require.NoError(t, err)

	encoded, err := json.Marshal(once)
	require.NoError(t, err)
	twice, err := Parse(string(encoded))
	require.NoError(t, err)

	assert.Equal(t, once, twice)

	onceSQL, onceArgs := render(Compile(once))
	twiceSQL, twiceArgs := render(Compile(twice))
	assert.Equal(t, onceSQL, twiceSQL)
	assert.Equal(t, onceArgs, twiceArgs)
}

func TestJoin_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(Condition{Field: "stage", Operator: OpIs, Value: "Won"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"","field":"stage","operator":"is","value":"Won","join":null}`, string(b))
}
