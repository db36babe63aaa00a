package service

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}

	p := Paginate(items, 1, 5)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, p.Items)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 11, p.TotalCount)

	p = Paginate(items, 3, 5)
	assert.Equal(t, []int{11}, p.Items)
	assert.Equal(t, 11, p.Number(0))

	// Out of range pages are clamped.
	assert.Equal(t, 3, Paginate(items, 99, 5).Page)
	assert.Equal(t, 1, Paginate(items, -2, 5).Page)

	empty := Paginate([]int{}, 4, 5)
	assert.Equal(t, 1, empty.Page)
	assert.Equal(t, 0, empty.TotalPages)
	assert.Empty(t, empty.Items)
	assert.False(t, empty.HasNext())
}

func TestFilter(t *testing.T) {
	words := []string{"Honda CBR", "Yamaha R1", "honda shadow", "Ducati"}
	fields := func(s string) []string { return strings.Fields(s) }

	assert.Equal(t, []string{"Honda CBR", "honda shadow"}, Filter(words, "HONDA", fields))
	assert.Equal(t, words, Filter(words, "", fields))
	assert.Equal(t, words, Filter(words, "   ", fields))
	assert.Empty(t, Filter(words, "bmw", fields))

	// Fields are matched as one space-joined string.
	assert.Equal(t, []string{"Yamaha R1"}, Filter(words, "yamaha r1", fields))
	assert.Empty(t, Filter(words, "cbr yamaha", fields))
}

func TestTotalPagesAndClamp(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 5))
	assert.Equal(t, 1, TotalPages(5, 5))
	assert.Equal(t, 2, TotalPages(6, 5))

	assert.Equal(t, 1, ClampPage(0, 0))
	assert.Equal(t, 2, ClampPage(7, 2))
	assert.Equal(t, 2, ClampPage(2, 4))
}

func TestValidateQuery(t *testing.T) {
	assert.Equal(t, 1, ValidatePage(-1))
	assert.Equal(t, MaxPage, ValidatePage(MaxPage+1))
	assert.Equal(t, "abc", ValidateSearch("  abc "))
	assert.Len(t, ValidateSearch(strings.Repeat("x", 500)), MaxSearchLength)

	long := ValidateSearch("a" + strings.Repeat("é", 60))
	assert.True(t, utf8.ValidString(long))
	assert.LessOrEqual(t, len(long), MaxSearchLength)
	assert.Equal(t, MaxSearchLength-1, len(long))

	assert.True(t, utf8.ValidString(ValidateSearch("bad\xffbyte")))
}
