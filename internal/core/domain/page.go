package domain

import "fmt"

// PageSize is the number of samples shown per dashboard page.
const PageSize = 4

// PageCount returns how many pages n samples fill.
func PageCount(n int) int {
	if n <= 0 {
		return 0
	}
	return (n + PageSize - 1) / PageSize
}

// PageBounds returns the half-open sample range for a 0-based page.
func PageBounds(n, page int) (start, end int, err error) {
	if page < 0 || page >= PageCount(n) {
		return 0, 0, ErrPageOutOfRange
	}
	start = page * PageSize
	end = start + PageSize
	if end > n {
		end = n
	}
	return start, end, nil
}

// PageLabel is the 1-based "i of N" caption of a 0-based page.
func PageLabel(page, pageCount int) string {
	return fmt.Sprintf("%d of %d", page+1, pageCount)
}

// CategoryLabel captions a category with its size.
func CategoryLabel(name string, samples int) string {
	return fmt.Sprintf("%s (%d samples)", name, samples)
}
