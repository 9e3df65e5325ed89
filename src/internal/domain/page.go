package domain

import (
	"fmt"
	"math"
	"strings"
)

type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	DefaultSortBy   = "createdAt"
)

// LoanSortFields lists the loan fields a page may be ordered by.
var LoanSortFields = map[string]struct{}{
	"createdAt":       {},
	"updatedAt":       {},
	"clientName":      {},
	"loanType":        {},
	"requestedAmount": {},
	"status":          {},
	"tenureMonths":    {},
}

type PageRequest struct {
	Page      int
	Size      int
	SortBy    string
	Direction SortDirection
}

// Normalize fills defaults and rejects out-of-range values. Page is zero-based.
func (p PageRequest) Normalize() (PageRequest, error) {
	if p.Page < 0 {
		return PageRequest{}, fmt.Errorf("%w: page cannot be negative", ErrInvalidInput)
	}
	if p.Size == 0 {
		p.Size = DefaultPageSize
	}
	if p.Size < 0 || p.Size > MaxPageSize {
		return PageRequest{}, fmt.Errorf("%w: size must be between 1 and %d", ErrInvalidInput, MaxPageSize)
	}
	// Offset must stay representable for any permitted size.
	if p.Page > math.MaxInt/MaxPageSize {
		return PageRequest{}, fmt.Errorf("%w: page cannot exceed %d", ErrInvalidInput, math.MaxInt/MaxPageSize)
	}
	if strings.TrimSpace(p.SortBy) == "" {
		p.SortBy = DefaultSortBy
	}
	if _, ok := LoanSortFields[p.SortBy]; !ok {
		return PageRequest{}, fmt.Errorf("%w: cannot sort by %q", ErrInvalidInput, p.SortBy)
	}
	switch SortDirection(strings.ToUpper(string(p.Direction))) {
	case SortAsc:
		p.Direction = SortAsc
	case SortDesc, "":
		p.Direction = SortDesc
	default:
		return PageRequest{}, fmt.Errorf("%w: direction must be ASC or DESC", ErrInvalidInput)
	}
	return p, nil
}

func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

type Page[T any] struct {
	Items      []T
	Page       int
	Size       int
	TotalItems int64
	TotalPages int
}

func NewPage[T any](items []T, page PageRequest, total int64) Page[T] {
	totalPages := 0
	if page.Size > 0 {
		totalPages = int((total + int64(page.Size) - 1) / int64(page.Size))
	}
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:      items,
		Page:       page.Page,
		Size:       page.Size,
		TotalItems: total,
		TotalPages: totalPages,
	}
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
