package shared

import "time"

// Page size bounds applied to every listing.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Filter narrows and pages a listing. Filters holds column equality
// conditions; each repository decides which keys it honours. From and To
// bound the listing's date column inclusively.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Filters  map[string]any
	From     *time.Time
	To       *time.Time
}

// DefaultFilter returns a filter with default values
func DefaultFilter() Filter {
	return Filter{
		Page:     1,
		PageSize: DefaultPageSize,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Filters:  make(map[string]any),
	}
}

// Limit is PageSize clamped to [1, MaxPageSize], DefaultPageSize when unset.
func (f Filter) Limit() int {
	if f.PageSize <= 0 {
		return DefaultPageSize
	}
	return min(f.PageSize, MaxPageSize)
}

// Offset is the number of rows before the requested page. Pages start at 1.
func (f Filter) Offset() int {
	return max(f.Page-1, 0) * f.Limit()
}

// Paginated is one page of a listing plus the size of the whole listing.
type Paginated[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginated wraps items as page of a listing with total rows.
func NewPaginated[T any](items []T, total int64, page, pageSize int) Paginated[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return Paginated[T]{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: int((total + int64(pageSize) - 1) / int64(pageSize)),
	}
}
