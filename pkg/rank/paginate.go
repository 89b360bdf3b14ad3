package rank

import (
	domain "github.com/gamedealer/gamedealer/pkg/types"
)

// Paginate splits ranked entries into fixed-size pages by pure slicing:
// no reordering, the last page may be shorter, and concatenating all pages
// reproduces the input exactly. A non-positive pageSize returns
// ErrInvalidArgument.
func Paginate(entries []domain.RankedEntry, pageSize int) ([]domain.Page, error) {
	if pageSize <= 0 {
		return nil, domain.InvalidArgumentf("page size must be positive, got %d", pageSize)
	}
	if len(entries) == 0 {
		return nil, nil
	}

	pages := make([]domain.Page, 0, (len(entries)+pageSize-1)/pageSize)
	for start := 0; start < len(entries); start += pageSize {
		end := min(start+pageSize, len(entries))
		pages = append(pages, domain.Page(entries[start:end]))
	}
	return pages, nil
}
