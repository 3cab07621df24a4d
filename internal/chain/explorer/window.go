package explorer

import (
	"context"
	"encoding/json"
	"fmt"
)

// PageFunc fetches the 1-based page number page of size records from a
// provider that paginates by page number only.
type PageFunc func(ctx context.Context, page, size int) ([]json.RawMessage, error)

// FetchWindow serves a (limit, offset) request from a page-numbered provider.
// The fetcher advances by less than a full page, so offset is generally not a
// multiple of limit. The window is cut from the provider pages of size
// min(limit, maxPageSize) that cover [offset, offset+limit). A short provider
// page ends the window early.
func FetchWindow(ctx context.Context, limit, offset, maxPageSize int, fn PageFunc) ([]json.RawMessage, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("window limit must be positive, got %d", limit)
	}
	if offset < 0 {
		return nil, fmt.Errorf("window offset must not be negative, got %d", offset)
	}

	size := limit
	if maxPageSize > 0 && size > maxPageSize {
		size = maxPageSize
	}
	first := offset/size + 1
	last := (offset+limit-1)/size + 1

	covered := make([]json.RawMessage, 0, (last-first+1)*size)
	for page := first; page <= last; page++ {
		records, err := fn(ctx, page, size)
		if err != nil {
			return nil, fmt.Errorf("page %d (size %d): %w", page, size, err)
		}
		covered = append(covered, records...)
		if len(records) < size {
			break
		}
	}

	skip := offset - (first-1)*size
	if skip >= len(covered) {
		return []json.RawMessage{}, nil
	}
	end := min(skip+limit, len(covered))
	return covered[skip:end], nil
}
