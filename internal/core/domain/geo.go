package domain

// Point is a coordinate pair in the Swedish national grid
// (SWEREF99 TM, EPSG:3006). Units are meters.
type Point struct {
	East  float64 `json:"east"`
	North float64 `json:"north"`
}

// GeoPoint is a geographic coordinate in WGS 84 (EPSG:4326), degrees.
// WKT serializes coordinates as "x y", i.e. "lon lat".
type GeoPoint struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// BoundingBox is an axis-aligned rectangle. The coordinate space is
// whatever the coordinates it was computed from were in; callers carry
// that context themselves.
type BoundingBox struct {
	MinX float64 `json:"min_x"`
	MaxX float64 `json:"max_x"`
	MinY float64 `json:"min_y"`
	MaxY float64 `json:"max_y"`
}
