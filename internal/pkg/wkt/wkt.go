// Package wkt rewrites and measures Well-Known Text geometry strings.
//
// It deliberately does not parse the WKT grammar. Upstream geometries
// are plain 2D POLYGON/MULTIPOLYGON/POINT/LINESTRING shapes with no
// Z/M dimension and no SRID prefix, so every run of two whitespace-
// separated signed decimal numbers is a coordinate pair. Structural
// tokens (keywords, parentheses, commas) pass through untouched.
package wkt

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/naturkollen/skyddadnatur/internal/core/domain"
	"github.com/naturkollen/skyddadnatur/internal/pkg/proj"
)

var (
	// ErrEmptyGeometry is returned when a WKT string yields no
	// coordinate pairs during extraction.
	ErrEmptyGeometry = errors.New("wkt: geometry contains no coordinates")

	// ErrEmptyInput is returned when combining zero bounding boxes;
	// there is no identity box.
	ErrEmptyInput = errors.New("wkt: no bounding boxes to combine")
)

// coordPair is the single definition of "coordinate pair": two
// whitespace-separated signed decimal numbers. Shared by the rewriter
// and the extractor so the two cannot drift apart.
var coordPair = regexp.MustCompile(`(-?\d+\.?\d*)\s+(-?\d+\.?\d*)`)

var sweref = &proj.SWEREF99TM{}

// Reproject rewrites every coordinate pair in src from SWEREF99 TM to
// WGS 84, formatted as "lon lat" with six decimals (~0.11 m). A string
// with no coordinate pairs is returned unchanged, including malformed
// or empty geometry; the upstream source is trusted to emit valid WKT
// or an explicit error.
func Reproject(src string) string {
	return coordPair.ReplaceAllStringFunc(src, func(match string) string {
		fields := coordPair.FindStringSubmatch(match)
		east, _ := strconv.ParseFloat(fields[1], 64)
		north, _ := strconv.ParseFloat(fields[2], 64)
		g := sweref.ToWGS84(domain.Point{East: east, North: north})
		return fmt.Sprintf("%.6f %.6f", g.Lon, g.Lat)
	})
}

// ExtractBoundingBox folds every coordinate pair in wkt into a min/max
// rectangle. A single point yields a valid zero-area box; zero pairs
// yield ErrEmptyGeometry.
func ExtractBoundingBox(wkt string) (domain.BoundingBox, error) {
	matches := coordPair.FindAllStringSubmatch(wkt, -1)
	if len(matches) == 0 {
		return domain.BoundingBox{}, ErrEmptyGeometry
	}

	box := domain.BoundingBox{
		MinX: math.Inf(1), MaxX: math.Inf(-1),
		MinY: math.Inf(1), MaxY: math.Inf(-1),
	}
	for _, m := range matches {
		x, _ := strconv.ParseFloat(m[1], 64)
		y, _ := strconv.ParseFloat(m[2], 64)
		box.MinX = math.Min(box.MinX, x)
		box.MaxX = math.Max(box.MaxX, x)
		box.MinY = math.Min(box.MinY, y)
		box.MaxY = math.Max(box.MaxY, y)
	}
	return box, nil
}

// CombineBoundingBoxes reduces boxes element-wise to their union. The
// reduction is commutative and associative, so the result is invariant
// to input order.
func CombineBoundingBoxes(boxes []domain.BoundingBox) (domain.BoundingBox, error) {
	if len(boxes) == 0 {
		return domain.BoundingBox{}, ErrEmptyInput
	}

	combined := boxes[0]
	for _, b := range boxes[1:] {
		combined.MinX = math.Min(combined.MinX, b.MinX)
		combined.MaxX = math.Max(combined.MaxX, b.MaxX)
		combined.MinY = math.Min(combined.MinY, b.MinY)
		combined.MaxY = math.Max(combined.MaxY, b.MaxY)
	}
	return combined, nil
}

// BoundingBoxToWKT serializes box as a closed five-vertex POLYGON ring,
// counter-clockwise from (minX,minY). The vertex order and number
// formatting match the upstream extent endpoint byte for byte, so
// callers cannot tell the fallback path from the primary one.
func BoundingBoxToWKT(box domain.BoundingBox) string {
	var b strings.Builder
	b.WriteString("POLYGON ((")
	fmt.Fprintf(&b, "%.6f %.6f, ", box.MinX, box.MinY)
	fmt.Fprintf(&b, "%.6f %.6f, ", box.MaxX, box.MinY)
	fmt.Fprintf(&b, "%.6f %.6f, ", box.MaxX, box.MaxY)
	fmt.Fprintf(&b, "%.6f %.6f, ", box.MinX, box.MaxY)
	fmt.Fprintf(&b, "%.6f %.6f", box.MinX, box.MinY)
	b.WriteString("))")
	return b.String()
}
