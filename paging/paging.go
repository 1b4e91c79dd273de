// Package paging slices in-memory result sets for list endpoints.
package paging

// Slice returns items[offset:offset+limit]. A negative offset is treated as
// zero and a limit of zero or less means no limit.
func Slice[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
