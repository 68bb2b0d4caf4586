// Package pagination holds page request parsing and page envelopes for
// list endpoints.
package pagination

import (
	"math"

	"gorm.io/gorm"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// PageRequest holds pagination parameters parsed from query strings or flags.
type PageRequest struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=200"`
}

// Normalize fills in defaults and clamps out-of-range values so that
// callers outside Gin binding get the same bounds.
func (p *PageRequest) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	switch {
	case p.PageSize < 1:
		p.PageSize = DefaultPageSize
	case p.PageSize > MaxPageSize:
		p.PageSize = MaxPageSize
	}
}

// Offset returns the row offset of the current page.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// PageResponse wraps one page of items with its position in the result.
type PageResponse[T any] struct {
	Data       []T   `json:"data"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// NewPageResponse creates a PageResponse from one page of data and the total count.
func NewPageResponse[T any](data []T, req PageRequest, totalItems int64) PageResponse[T] {
	totalPages := 0
	if req.PageSize > 0 {
		totalPages = int(math.Ceil(float64(totalItems) / float64(req.PageSize)))
	}
	if data == nil {
		data = []T{}
	}
	return PageResponse[T]{
		Data:       data,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}
}

// Paginate returns a GORM scope limiting a query to the requested page.
func Paginate(req PageRequest) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(req.Offset()).Limit(req.PageSize)
	}
}
