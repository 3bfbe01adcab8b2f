package domain

// Page is the shared paging request for every listing operation: recipe
// search, review listing and the feed. Pages are 1-based.
type Page struct {
	Number int `json:"page"`
	Size   int `json:"size"`
}

// Offset returns the row offset for the page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// PageResult is one page of a listing plus the total number of rows
// matching the filter predicate before paging was applied.
type PageResult[T any] struct {
	Items []T   `json:"items"`
	Page  int   `json:"page"`
	Size  int   `json:"size"`
	Total int64 `json:"total"`
}

// Sort keys recognized by recipe search. Anything else falls back to the
// default order (ascending id).
const (
	RecipeSortRatingDesc  = "rating_desc"
	RecipeSortDateDesc    = "date_desc"
	RecipeSortCaloriesAsc = "calories_asc"
)

// Sort key recognized by review listing. Anything else falls back to the
// default order (most recently modified first).
const ReviewSortLikesDesc = "likes_desc"
