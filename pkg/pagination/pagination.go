package pagination

import (
	"net/http"
	"strconv"
)

const (
	// DefaultSize is the standard page size when one is not provided.
	DefaultSize = 24
	// MaxSize caps how many rows any page query can request.
	MaxSize = 100
)

// Page holds normalized page/size inputs from controllers.
type Page struct {
	Number int
	Size   int
}

// Result wraps a page of rows with total counts for response envelopes.
type Result[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// FromRequest reads ?page and ?size query parameters with clamping.
func FromRequest(r *http.Request) Page {
	page := atoiDefault(r.URL.Query().Get("page"), 1)
	size := atoiDefault(r.URL.Query().Get("size"), DefaultSize)
	return Normalize(Page{Number: page, Size: size})
}

// Normalize enforces the configured default and maximum sizes.
func Normalize(p Page) Page {
	if p.Number <= 0 {
		p.Number = 1
	}
	if p.Size <= 0 {
		p.Size = DefaultSize
	}
	if p.Size > MaxSize {
		p.Size = MaxSize
	}
	return p
}

// Offset returns the SQL offset for the page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// NewResult assembles a Result computing the page count from the total.
func NewResult[T any](items []T, p Page, total int64) Result[T] {
	totalPages := int((total + int64(p.Size) - 1) / int64(p.Size))
	if items == nil {
		items = []T{}
	}
	return Result[T]{
		Items:      items,
		Page:       p.Number,
		Size:       p.Size,
		Total:      total,
		TotalPages: totalPages,
	}
}

func atoiDefault(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
