package proj

import (
	"math"

	"github.com/naturkollen/skyddadnatur/internal/core/domain"
)

// SWEREF99TM implements Projection for EPSG:3006 (SWEREF99 TM), the
// official Swedish national grid: a transverse mercator projection on
// the GRS 80 ellipsoid, UTM zone 33 parameters (central meridian 15°E,
// scale 0.9996, false easting 500 000 m). SWEREF 99 is realized so
// close to WGS 84 that the datum shift is zero; the conversion is the
// map projection alone.
//
// Uses Krüger's series as published by Lantmäteriet ("Gauss Conformal
// Projection (Transverse Mercator)"), accurate to well under a
// millimeter inside Sweden.
type SWEREF99TM struct{}

func (p *SWEREF99TM) EPSG() int { return 3006 }

// GRS 80 ellipsoid and SWEREF99 TM projection parameters.
const (
	axis          = 6378137.0         // semi-major axis (m)
	flattening    = 1 / 298.257222101 // GRS 80
	centralLonDeg = 15.0
	scale         = 0.9996
	falseEasting  = 500000.0
	falseNorthing = 0.0
	degreesPerRad = 180.0 / math.Pi
	centralLonRad = centralLonDeg / degreesPerRad
)

// Derived constants, computed once at process start.
var (
	e2 = flattening * (2 - flattening) // first eccentricity squared
	e4 = e2 * e2
	e6 = e4 * e2
	e8 = e6 * e2

	n    = flattening / (2 - flattening)
	aHat = axis / (1 + n) * (1 + n*n/4 + n*n*n*n/64)

	// Forward series coefficients.
	beta1 = n/2 - 2*n*n/3 + 5*n*n*n/16 + 41*n*n*n*n/180
	beta2 = 13*n*n/48 - 3*n*n*n/5 + 557*n*n*n*n/1440
	beta3 = 61*n*n*n/240 - 103*n*n*n*n/140
	beta4 = 49561 * n * n * n * n / 161280

	// Inverse series coefficients.
	delta1 = n/2 - 2*n*n/3 + 37*n*n*n/96 - n*n*n*n/360
	delta2 = n*n/48 + n*n*n/15 - 437*n*n*n*n/1440
	delta3 = 17*n*n*n/480 - 37*n*n*n*n/840
	delta4 = 4397 * n * n * n * n / 161280

	// Conformal latitude coefficients.
	astar = e2 + e4 + e6 + e8
	bstar = -(7*e4 + 17*e6 + 30*e8) / 6
	cstar = (224*e6 + 889*e8) / 120
	dstar = -(4279 * e8) / 1260

	fwdA = e2
	fwdB = (5*e4 - e6) / 6
	fwdC = (104*e6 - 45*e8) / 120
	fwdD = (1237 * e8) / 1260
)

// ToWGS84 converts a SWEREF99 TM grid point to a WGS 84 coordinate in
// degrees. No range validation: out-of-range or NaN input produces a
// mathematically defined but meaningless result.
func (p *SWEREF99TM) ToWGS84(pt domain.Point) domain.GeoPoint {
	xi := (pt.North - falseNorthing) / (scale * aHat)
	eta := (pt.East - falseEasting) / (scale * aHat)

	xiPrime := xi -
		delta1*math.Sin(2*xi)*math.Cosh(2*eta) -
		delta2*math.Sin(4*xi)*math.Cosh(4*eta) -
		delta3*math.Sin(6*xi)*math.Cosh(6*eta) -
		delta4*math.Sin(8*xi)*math.Cosh(8*eta)
	etaPrime := eta -
		delta1*math.Cos(2*xi)*math.Sinh(2*eta) -
		delta2*math.Cos(4*xi)*math.Sinh(4*eta) -
		delta3*math.Cos(6*xi)*math.Sinh(6*eta) -
		delta4*math.Cos(8*xi)*math.Sinh(8*eta)

	phiStar := math.Asin(math.Sin(xiPrime) / math.Cosh(etaPrime))
	deltaLon := math.Atan(math.Sinh(etaPrime) / math.Cos(xiPrime))

	sinPhi := math.Sin(phiStar)
	phi := phiStar + sinPhi*math.Cos(phiStar)*
		(astar+
			bstar*sinPhi*sinPhi+
			cstar*sinPhi*sinPhi*sinPhi*sinPhi+
			dstar*sinPhi*sinPhi*sinPhi*sinPhi*sinPhi*sinPhi)

	return domain.GeoPoint{
		Lon: (centralLonRad + deltaLon) * degreesPerRad,
		Lat: phi * degreesPerRad,
	}
}

// FromWGS84 converts a WGS 84 coordinate in degrees to a SWEREF99 TM
// grid point.
func (p *SWEREF99TM) FromWGS84(g domain.GeoPoint) domain.Point {
	phi := g.Lat / degreesPerRad
	deltaLon := g.Lon/degreesPerRad - centralLonRad

	sinPhi := math.Sin(phi)
	phiStar := phi - sinPhi*math.Cos(phi)*
		(fwdA+
			fwdB*sinPhi*sinPhi+
			fwdC*sinPhi*sinPhi*sinPhi*sinPhi+
			fwdD*sinPhi*sinPhi*sinPhi*sinPhi*sinPhi*sinPhi)

	xiPrime := math.Atan(math.Tan(phiStar) / math.Cos(deltaLon))
	etaPrime := math.Atanh(math.Cos(phiStar) * math.Sin(deltaLon))

	xi := xiPrime +
		beta1*math.Sin(2*xiPrime)*math.Cosh(2*etaPrime) +
		beta2*math.Sin(4*xiPrime)*math.Cosh(4*etaPrime) +
		beta3*math.Sin(6*xiPrime)*math.Cosh(6*etaPrime) +
		beta4*math.Sin(8*xiPrime)*math.Cosh(8*etaPrime)
	eta := etaPrime +
		beta1*math.Cos(2*xiPrime)*math.Sinh(2*etaPrime) +
		beta2*math.Cos(4*xiPrime)*math.Sinh(4*etaPrime) +
		beta3*math.Cos(6*xiPrime)*math.Sinh(6*etaPrime) +
		beta4*math.Cos(8*xiPrime)*math.Sinh(8*etaPrime)

	return domain.Point{
		East:  scale*aHat*eta + falseEasting,
		North: scale*aHat*xi + falseNorthing,
	}
}
