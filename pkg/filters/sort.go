package filters

import (
	"math"
	"strconv"
	"strings"
)

// Paging bounds for list requests
const (
	DefaultPageSize = 25
	MaxPageSize     = 200
	DefaultSort     = "id"

	// MaxPage keeps (page-1)*MaxPageSize within int
	MaxPage = math.MaxInt / MaxPageSize
)

var sortColumns = map[string]bool{
	"id":               true,
	"company_name":     true,
	"contact_name":     true,
	"email":            true,
	"country":          true,
	"stage":            true,
	"source":           true,
	"owner":            true,
	"annual_revenue":   true,
	"next_action_date": true,
	"created_at":       true,
}

// SortColumn returns col when it is sortable and the default column otherwise
func SortColumn(col string) string {
	if sortColumns[col] {
		return col
	}
	return DefaultSort
}

// SortDesc reports whether dir asks for descending order. Anything other
// than "desc" sorts ascending.
func SortDesc(dir string) bool {
	return strings.EqualFold(strings.TrimSpace(dir), "desc")
}

// ClampPaging bounds page to [1, MaxPage] and size to [1, MaxPageSize].
// A zero size selects DefaultPageSize.
func ClampPaging(page, size int) (int, int) {
	switch {
	case page < 1:
		page = 1
	case page > MaxPage:
		page = MaxPage
	}
	switch {
	case size == 0:
		size = DefaultPageSize
	case size < 1:
		size = 1
	case size > MaxPageSize:
		size = MaxPageSize
	}
	return page, size
}

// ParsePaging reads raw page and pageSize query values. Each value is read
// up to its first non-digit; values that do not start with a number fall
// back to the defaults.
func ParsePaging(pageRaw, sizeRaw string) (int, int) {
	page, ok := leadingInt(pageRaw)
	if !ok {
		page = 1
	}
	size, ok := leadingInt(sizeRaw)
	if !ok {
		size = DefaultPageSize
	} else if size == 0 {
		size = 1
	}
	return ClampPaging(page, size)
}

func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
