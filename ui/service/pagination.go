package service

import "strings"

// TotalPages returns how many pages of size hold count items.
func TotalPages(count, size int) int {
	if count <= 0 || size <= 0 {
		return 0
	}
	return (count + size - 1) / size
}

// ClampPage moves page into [1, totalPages]. With no pages it returns 1.
func ClampPage(page, totalPages int) int {
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return page
}

// Paginate returns the page of items for the requested page number,
// clamping it into range.
func Paginate[T any](items []T, page, size int) *Page[T] {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := TotalPages(len(items), size)
	page = ClampPage(page, total)

	start := (page - 1) * size
	end := min(start+size, len(items))
	pageItems := make([]T, 0, end-start)
	if start < end {
		pageItems = append(pageItems, items[start:end]...)
	}
	return &Page[T]{
		Items:      pageItems,
		Page:       page,
		TotalPages: total,
		PageSize:   size,
		TotalCount: len(items),
	}
}

// Filter keeps the items whose fields(item), joined by single spaces,
// contain search, ignoring case. A search may therefore span adjacent
// fields ("mt-07 yamaha"). An empty search keeps everything.
func Filter[T any](items []T, search string, fields func(T) []string) []T {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return items
	}
	var out []T
	for _, item := range items {
		if strings.Contains(strings.ToLower(strings.Join(fields(item), " ")), search) {
			out = append(out, item)
		}
	}
	return out
}
