package usecases

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/naturkollen/skyddadnatur/internal/core/domain"
	"github.com/naturkollen/skyddadnatur/internal/core/ports"
	"github.com/naturkollen/skyddadnatur/internal/pkg/metrics"
	"github.com/naturkollen/skyddadnatur/internal/pkg/wkt"
)

// AreaService handles area listing and single-area geometry lookups.
type AreaService struct {
	sources map[domain.Source]ports.AreaSource
	cache   ports.CacheService
}

// NewAreaService creates a new AreaService.
func NewAreaService(sources map[domain.Source]ports.AreaSource, cache ports.CacheService) *AreaService {
	return &AreaService{sources: sources, cache: cache}
}

func (s *AreaService) resolve(source domain.Source) (ports.AreaSource, error) {
	src, ok := s.sources[source]
	if !ok {
		return nil, fmt.Errorf("unknown source %q", source)
	}
	return src, nil
}

// List returns areas from one registry matching the filter.
func (s *AreaService) List(ctx context.Context, source domain.Source, filter domain.AreaFilter) ([]domain.Area, error) {
	src, err := s.resolve(source)
	if err != nil {
		return nil, err
	}
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 100
	}

	cacheKey := fmt.Sprintf("areas:list:%s:%s:%s:%s:%s:%d",
		source, filter.Name, filter.CountyCode, filter.Municipality, filter.Status, filter.Limit)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var areas []domain.Area
			if err := json.Unmarshal(data, &areas); err == nil {
				metrics.CacheHits.WithLabelValues("list").Inc()
				return areas, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("list").Inc()
	}

	areas, err := src.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	// Registry contents change on the scale of days.
	if s.cache != nil {
		if data, err := json.Marshal(areas); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 600)
		}
	}

	return areas, nil
}

// Geometry returns one area's boundary reprojected to WGS 84. status
// narrows to a registration status when non-empty.
func (s *AreaService) Geometry(ctx context.Context, source domain.Source, id, status string) (*domain.Geometry, error) {
	if id == "" {
		return nil, fmt.Errorf("area id must not be empty")
	}
	src, err := s.resolve(source)
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("areas:geometry:%s:%s:%s", source, id, status)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var geom domain.Geometry
			if err := json.Unmarshal(data, &geom); err == nil {
				metrics.CacheHits.WithLabelValues("geometry").Inc()
				return &geom, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("geometry").Inc()
	}

	raw, err := src.Geometry(ctx, id, status)
	if err != nil {
		return nil, err
	}

	geom := &domain.Geometry{
		ID:     id,
		Source: source,
		CRS:    domain.CRSWGS84,
		WKT:    wkt.Reproject(raw),
	}

	// Boundaries are effectively immutable between registry decisions.
	if s.cache != nil {
		if data, err := json.Marshal(geom); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 3600)
		}
	}

	return geom, nil
}
