package http

import (
	"github.com/naturkollen/skyddadnatur/internal/core/domain"
	"github.com/naturkollen/skyddadnatur/internal/core/ports"
	"github.com/naturkollen/skyddadnatur/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Areas   *usecases.AreaService
	Extents *usecases.ExtentService
	Sources map[domain.Source]ports.AreaSource
	Cache   ports.CacheService
}
