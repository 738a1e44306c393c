package models

// Pagination contains pagination metadata returned in list responses.
// From and To are 1-based positions and are omitted for an empty page.
type Pagination struct {
	CurrentPage int  `json:"current_page"`
	PerPage     int  `json:"per_page"`
	LastPage    int  `json:"last_page"`
	Total       int  `json:"total"`
	From        *int `json:"from"`
	To          *int `json:"to"`
}
