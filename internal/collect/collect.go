package collect

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// FetchFunc requests one page of at most limit records starting at offset.
// Query parameters other than paging are bound by the caller.
type FetchFunc[T any] func(ctx context.Context, limit, offset int) ([]T, error)

// Collect calls fetch with increasing offsets until a page comes back empty,
// returning every record in upstream order. A failed page voids the whole
// collection: no partial data is returned.
func Collect[T any](ctx context.Context, fetch FetchFunc[T], limit int, logger *zap.Logger) ([]T, error) {
	if fetch == nil {
		return nil, fmt.Errorf("fetch func is nil")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("page size must be greater than zero")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var out []T
	for offset := 0; ; offset += limit {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		page, err := fetch(ctx, limit, offset)
		if err != nil {
			return nil, fmt.Errorf("fetch page at offset %d: %w", offset, err)
		}
		logger.Debug("page fetched", zap.Int("offset", offset), zap.Int("records", len(page)))

		if len(page) == 0 {
			break
		}
		out = append(out, page...)
	}

	if out == nil {
		out = []T{}
	}
	return out, nil
}
