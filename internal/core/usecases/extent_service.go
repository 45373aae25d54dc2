package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/naturkollen/skyddadnatur/internal/core/domain"
	"github.com/naturkollen/skyddadnatur/internal/core/ports"
	"github.com/naturkollen/skyddadnatur/internal/pkg/metrics"
	"github.com/naturkollen/skyddadnatur/internal/pkg/wkt"
)

// extentFetchConcurrency caps simultaneous per-area geometry fetches
// during fallback computation. The registries are rate sensitive;
// this is a process-wide policy constant, not per-call configuration.
const extentFetchConcurrency = 2

// GeometryProvider supplies single-area geometry already reprojected
// to WGS 84. Implemented by AreaService.
type GeometryProvider interface {
	Geometry(ctx context.Context, source domain.Source, id, status string) (*domain.Geometry, error)
}

// ExtentService resolves the combined extent of a set of areas. It
// first asks the upstream aggregate endpoint; when that fails or
// returns something that is not a polygon, it recomputes the extent
// client-side from the individual geometries. The aggregate endpoint
// is known to fail for more than one id, so the fallback is a
// permanent strategy, not a transient retry; the primary is still
// attempted on every call so an upstream fix is picked up without a
// deploy.
type ExtentService struct {
	sources map[domain.Source]ports.AreaSource
	geoms   GeometryProvider
}

// NewExtentService creates a new ExtentService.
func NewExtentService(sources map[domain.Source]ports.AreaSource, geoms GeometryProvider) *ExtentService {
	return &ExtentService{sources: sources, geoms: geoms}
}

// GetAreasExtent returns the combined bounding box of the given areas
// as a WKT polygon in WGS 84. The result is invariant to id order.
// Any per-area failure during fallback fails the whole call; there is
// no partial result.
func (s *ExtentService) GetAreasExtent(ctx context.Context, source domain.Source, ids []string) (*domain.Extent, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("at least one area id is required")
	}
	src, ok := s.sources[source]
	if !ok {
		return nil, fmt.Errorf("unknown source %q", source)
	}

	if raw, err := src.Extent(ctx, ids); err == nil && validExtent(raw) {
		metrics.ExtentPrimaryHits.WithLabelValues(string(source)).Inc()
		return &domain.Extent{
			IDs:    ids,
			Source: source,
			CRS:    domain.CRSWGS84,
			WKT:    wkt.Reproject(raw),
		}, nil
	} else if err != nil {
		slog.Warn("bulk extent endpoint failed, computing extent client-side",
			"source", source, "ids", len(ids), "error", err)
	} else {
		// A 200 with a non-polygon body is the registry's known
		// multi-id defect; treat it exactly like a hard failure.
		slog.Warn("bulk extent endpoint returned malformed extent, computing client-side",
			"source", source, "ids", len(ids))
	}

	metrics.ExtentFallbacks.WithLabelValues(string(source)).Inc()
	return s.computeExtent(ctx, source, ids)
}

// validExtent accepts a non-empty response beginning with POLYGON.
func validExtent(raw string) bool {
	return raw != "" && strings.HasPrefix(raw, "POLYGON")
}

// computeExtent fetches each area's geometry under bounded concurrency,
// extracts per-area bounding boxes, and combines them. Results land in
// a slot keyed by original position so identifier association survives
// out-of-order completion.
func (s *ExtentService) computeExtent(ctx context.Context, source domain.Source, ids []string) (*domain.Extent, error) {
	boxes := make([]domain.BoundingBox, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(extentFetchConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			geom, err := s.geoms.Geometry(ctx, source, id, "")
			if err != nil {
				return fmt.Errorf("area %s: %w", id, err)
			}
			box, err := wkt.ExtractBoundingBox(geom.WKT)
			if err != nil {
				return fmt.Errorf("area %s: %w", id, err)
			}
			boxes[i] = box
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	combined, err := wkt.CombineBoundingBoxes(boxes)
	if err != nil {
		return nil, err
	}

	return &domain.Extent{
		IDs:    ids,
		Source: source,
		CRS:    domain.CRSWGS84,
		WKT:    wkt.BoundingBoxToWKT(combined),
	}, nil
}
