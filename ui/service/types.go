package service

import (
	"strings"
	"unicode/utf8"

	"github.com/youssefsiam38/motoadmin"
	"github.com/youssefsiam38/motoadmin/storage"
)

// Validation constants for query parameters
const (
	// MaxPage bounds the page query parameter
	MaxPage = 100000
	// MaxSearchLength bounds the search query parameter
	MaxSearchLength = 100
)

// ValidatePage ensures page is within acceptable bounds.
func ValidatePage(page int) int {
	if page < 1 {
		return 1
	}
	if page > MaxPage {
		return MaxPage
	}
	return page
}

// ValidateSearch trims the search term and caps its length in bytes,
// cutting only at a character boundary. Invalid UTF-8 is replaced.
func ValidateSearch(search string) string {
	search = strings.ToValidUTF8(strings.TrimSpace(search), "\uFFFD")
	if len(search) > MaxSearchLength {
		cut := MaxSearchLength
		for cut > 0 && !utf8.RuneStart(search[cut]) {
			cut--
		}
		search = search[:cut]
	}
	return search
}

// Page is one page of a list.
type Page[T any] struct {
	Items      []T    `json:"items"`
	Page       int    `json:"page"`
	TotalPages int    `json:"total_pages"`
	PageSize   int    `json:"page_size"`
	Search     string `json:"search,omitempty"`
	// TotalCount is the number of matching items, or -1 when the API
	// paginated the list and did not say.
	TotalCount int `json:"total_count"`
}

// Number returns the 1-based row number of the item at index i,
// counted across pages.
func (p *Page[T]) Number(i int) int {
	return (p.Page-1)*p.PageSize + i + 1
}

// HasPrev reports whether there is a page before this one.
func (p *Page[T]) HasPrev() bool {
	return p.Page > 1
}

// HasNext reports whether there is a page after this one.
func (p *Page[T]) HasNext() bool {
	return p.Page < p.TotalPages
}

// Pages returns every page number, for pagination controls.
func (p *Page[T]) Pages() []int {
	pages := make([]int, 0, p.TotalPages)
	for i := 1; i <= p.TotalPages; i++ {
		pages = append(pages, i)
	}
	return pages
}

// Dashboard is everything the dashboard page shows.
type Dashboard struct {
	Stats motoadmin.DashboardStats `json:"stats"`
	// StatsUnavailable is set when the API could not be reached and
	// Stats holds zeros.
	StatsUnavailable bool                  `json:"stats_unavailable,omitempty"`
	Activities       []*storage.AuditEntry `json:"activities"`
}
