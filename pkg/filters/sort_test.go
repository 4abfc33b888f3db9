package filters

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortColumn(t *testing.T) {
	assert.Equal(t, "annual_revenue", SortColumn("annual_revenue"))
	assert.Equal(t, "next_action_date", SortColumn("next_action_date"))
	assert.Equal(t, "id", SortColumn("notes"))
	assert.Equal(t, "id", SortColumn("id; DROP TABLE leads"))
	assert.Equal(t, "id", SortColumn(""))
}

func TestSortDesc(t *testing.T) {
	assert.True(t, SortDesc("desc"))
	assert.True(t, SortDesc("DESC"))
	assert.False(t, SortDesc("asc"))
	assert.False(t, SortDesc("descending"))
	assert.False(t, SortDesc(""))
}

func TestParsePaging(t *testing.T) {
	tests := []struct {
		name     string
		page     string
		size     string
		wantPage int
		wantSize int
	}{
		{"defaults", "", "", 1, 25},
		{"explicit", "3", "50", 3, 50},
		{"page below one", "0", "10", 1, 10},
		{"negative page", "-4", "10", 1, 10},
		{"size zero", "1", "0", 1, 1},
		{"size above max", "1", "500", 1, 200},
		{"trailing garbage", "2abc", "30px", 2, 30},
		{"not a number", "abc", "lots", 1, 25},
		{"page beyond max", "92233720368547759", "200", MaxPage, 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, size := ParsePaging(tt.page, tt.size)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantSize, size)
		})
	}
}

func TestClampPaging(t *testing.T) {
	page, size := ClampPaging(0, 0)
	assert.Equal(t, 1, page)
	assert.Equal(t, DefaultPageSize, size)

	page, size = ClampPaging(7, -3)
	assert.Equal(t, 7, page)
	assert.Equal(t, 1, size)

	page, size = ClampPaging(math.MaxInt, MaxPageSize)
	assert.Equal(t, MaxPage, page)
	assert.Positive(t, (page-1)*size, "offset must not overflow")
}
