package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func TestPaginateWindows(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		page     int
		perPage  int
		items    []int
		lastPage int
		from     int
		to       int
	}{
		{name: "first page", total: 25, page: 1, perPage: 10, items: seq(10), lastPage: 3, from: 1, to: 10},
		{name: "partial last page", total: 25, page: 3, perPage: 10, items: []int{21, 22, 23, 24, 25}, lastPage: 3, from: 21, to: 25},
		{name: "exact multiple", total: 20, page: 2, perPage: 10, items: []int{11, 12, 13, 14, 15, 16, 17, 18, 19, 20}, lastPage: 2, from: 11, to: 20},
		{name: "beyond last page", total: 25, page: 4, perPage: 10, items: []int{}, lastPage: 3},
		{name: "empty input", total: 0, page: 1, perPage: 10, items: []int{}, lastPage: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := Paginate(seq(tt.total), tt.page, tt.perPage)
			assert.Equal(t, tt.items, page.Items)
			assert.Equal(t, tt.total, page.Total)
			assert.Equal(t, tt.lastPage, page.LastPage)
			assert.Equal(t, tt.from, page.From)
			assert.Equal(t, tt.to, page.To)
			assert.LessOrEqual(t, len(page.Items), page.PerPage)
		})
	}
}

func TestPaginateClampsArguments(t *testing.T) {
	page := Paginate(seq(250), 0, 500)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, MaxPerPage, page.PerPage)
	assert.Len(t, page.Items, MaxPerPage)

	page = Paginate(seq(5), -3, 0)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, DefaultPerPage, page.PerPage)
	assert.Len(t, page.Items, 5)
}

func TestPaginateDoesNotAliasTail(t *testing.T) {
	items := seq(6)
	page := Paginate(items, 1, 3)
	page.Items = append(page.Items, 99)
	assert.Equal(t, 4, items[3])
}
