// Package pagination windows an in-memory slice into pages.
package pagination

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// Page is one window over a larger result set.
type Page[T any] struct {
	Items    []T
	Total    int
	Page     int
	PerPage  int
	LastPage int
	// From and To are the 1-based positions of the first and last item; both
	// are zero when Items is empty.
	From int
	To   int
}

// Paginate returns the page-th window of perPage items. A page past the end
// yields an empty window rather than an error. Out of range arguments are
// clamped: page to 1 and perPage to DefaultPerPage / MaxPerPage.
func Paginate[T any](items []T, page, perPage int) Page[T] {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	total := len(items)
	lastPage := (total + perPage - 1) / perPage
	if lastPage < 1 {
		lastPage = 1
	}

	result := Page[T]{
		Items:    []T{},
		Total:    total,
		Page:     page,
		PerPage:  perPage,
		LastPage: lastPage,
	}

	start := (page - 1) * perPage
	if start >= total {
		return result
	}
	end := start + perPage
	if end > total {
		end = total
	}

	result.Items = items[start:end:end]
	result.From = start + 1
	result.To = end
	return result
}
