// Package store defines the forecast dataset loading interface and the
// single-slot memoized decorator the server wraps around concrete stores.
package store

import (
	"context"

	"go.ngs.io/gefs-api/internal/domain"
)

// Loader loads a regional forecast dataset ready for derived products:
// spatially subset, initial lead step removed, valid_time attached.
type Loader interface {
	Load(ctx context.Context) (*domain.Dataset, error)

	// Key identifies the loader's source and parameters; the cache uses it
	// to decide whether a previous load can be reused.
	Key() string
}
