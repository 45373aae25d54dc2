// Package proj converts between the Swedish national grid and WGS 84.
package proj

import "github.com/naturkollen/skyddadnatur/internal/core/domain"

// Projection converts between a projected CRS and WGS 84.
type Projection interface {
	// ToWGS84 converts a projected grid point to WGS 84
	// longitude/latitude (degrees).
	ToWGS84(p domain.Point) domain.GeoPoint

	// FromWGS84 converts a WGS 84 coordinate to the projected grid.
	FromWGS84(g domain.GeoPoint) domain.Point

	// EPSG returns the EPSG code of the projected CRS.
	EPSG() int
}
