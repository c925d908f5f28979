// Package store defines storage-level types and errors shared by the
// concrete store implementations.
package store

// Page sizing limits for library listings.
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// PageParams contains page-number pagination parameters.
type PageParams struct {
	Page  int // 1-based page number (defaults to 1)
	Limit int // Items per page (defaults to 20, capped at 100)
}

// PageResult contains one page of data plus pagination metadata.
type PageResult[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Validate checks and corrects pagination parameters.
func (p *PageParams) Validate() {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
}

// Offset returns the row offset for the validated parameters.
func (p PageParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// NewPageResult assembles a page result, deriving TotalPages from the total
// row count. An empty page still reports the true total.
func NewPageResult[T any](items []T, params PageParams, total int) PageResult[T] {
	totalPages := 0
	if total > 0 {
		totalPages = (total + params.Limit - 1) / params.Limit
	}
	return PageResult[T]{
		Items:      items,
		Page:       params.Page,
		Limit:      params.Limit,
		Total:      total,
		TotalPages: totalPages,
	}
}
