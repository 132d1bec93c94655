// Package shared holds listing helpers common to the master-data packages.
package shared

import (
	"net/url"
	"strconv"
	"strings"
)

// ListFilters represents standard list filters.
type ListFilters struct {
	Page     int
	Limit    int
	Search   string
	SortBy   string
	SortDir  string
	Category string
	Supplier string
}

// FiltersFromQuery reads page, limit, search, sort and dir from the query
// string and normalises them.
func FiltersFromQuery(q url.Values) ListFilters {
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return ListFilters{
		Page:     page,
		Limit:    limit,
		Search:   strings.TrimSpace(q.Get("search")),
		SortBy:   q.Get("sort"),
		SortDir:  q.Get("dir"),
		Category: strings.TrimSpace(q.Get("category")),
	}.Normalize()
}

// Normalize clamps page and limit into their allowed ranges.
func (f ListFilters) Normalize() ListFilters {
	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.Limit < 1 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	if f.SortDir != SortDesc {
		f.SortDir = SortAsc
	}
	return f
}

// Offset returns the row offset for the current page.
func (f ListFilters) Offset() int {
	return (f.Page - 1) * f.Limit
}

// Page is a slice of results plus the unpaginated total.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}
