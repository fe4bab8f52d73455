// Package pagination computes the page-number controls shown under the
// catalog grid.
package pagination

// WindowSize is the maximum number of page buttons rendered at once.
const WindowSize = 3

// Window is the set of page controls for one position in a result set.
type Window struct {
	Page       int
	Pages      []int
	TotalPages int
	HasPrev    bool
	HasNext    bool
}

// TotalPages returns ceil(total/pageSize), never less than 1.
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}

// Compute returns the sliding window of up to three pages around page.
// The window stays full near the last page.
func Compute(page, total, pageSize int) Window {
	totalPages := TotalPages(total, pageSize)

	start := max(1, page-1)
	end := min(totalPages, start+WindowSize-1)
	if end-start < WindowSize-1 {
		start = max(1, end-(WindowSize-1))
	}

	pages := make([]int, 0, WindowSize)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}

	return Window{
		Page:       page,
		Pages:      pages,
		TotalPages: totalPages,
		HasPrev:    page > 1,
		HasNext:    page < totalPages && total > 0,
	}
}

// Clamp bounds page to [1, TotalPages(total, pageSize)].
func Clamp(page, total, pageSize int) int {
	return min(max(page, 1), TotalPages(total, pageSize))
}
