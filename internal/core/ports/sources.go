package ports

import (
	"context"

	"github.com/naturkollen/skyddadnatur/internal/core/domain"
)

// AreaSource is an upstream protected-area registry. Geometry and
// extent WKT come back in the national grid (EPSG:3006); reprojection
// is the caller's job.
type AreaSource interface {
	// Source names the registry this client talks to.
	Source() domain.Source

	// List returns areas matching the filter.
	List(ctx context.Context, filter domain.AreaFilter) ([]domain.Area, error)

	// Geometry returns one area's boundary as WKT in EPSG:3006.
	// status narrows to a registration status when non-empty.
	Geometry(ctx context.Context, id, status string) (string, error)

	// Extent returns the upstream-computed combined extent of the
	// given areas as WKT in EPSG:3006. Known to fail for more than
	// one id; callers must be prepared to compute the extent
	// themselves.
	Extent(ctx context.Context, ids []string) (string, error)
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
