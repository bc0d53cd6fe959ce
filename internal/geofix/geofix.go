// Package geofix projects a local range/bearing fix (internal/resolver's
// output) onto a geodetic waypoint given a known anchor position and
// heading, and reports that waypoint in UTM as a convenience.
//
// The offset is the direct geodesic problem solved on a sphere, which
// is far inside the error budget at the sub-kilometer ranges this
// system resolves; the UTM rendering goes through
// coordconv.DefaultUTMConverter.
package geofix

import (
	"fmt"
	"math"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
	"github.com/tzneal/coordconv"
)

// earthRadiusM is the mean Earth radius used for the spherical direct
// geodesic computation; adequate for the sub-kilometer ranges this
// system resolves.
const earthRadiusM = 6_371_000.0

// LatLon is a geodetic position in decimal degrees.
type LatLon struct {
	LatDeg float64
	LonDeg float64
}

// Fix is a projected target waypoint plus its UTM rendering.
type Fix struct {
	Position LatLon

	UTMZone       int
	UTMHemisphere rune
	UTMEasting    float64
	UTMNorthing   float64
}

// Project takes an anchor position, the anchor array's heading
// (degrees clockwise from true north, boresight direction), and a
// local range/bearing fix (rangeM, bearingRad; bearingRad positive
// per internal/resolver.Geometry's convention, measured from
// boresight) and returns the target's absolute geodetic position.
//
// A zero range returns the anchor position unchanged, independent of
// heading or bearing.
func Project(anchor LatLon, headingDeg float64, rangeM float64, bearingRad float64) (Fix, error) {
	if rangeM == 0 {
		return fixFromLatLon(anchor)
	}

	absBearingRad := d2r(headingDeg) + bearingRad
	lat1 := d2r(anchor.LatDeg)
	lon1 := d2r(anchor.LonDeg)
	delta := rangeM / earthRadiusM

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(delta) + math.Cos(lat1)*math.Sin(delta)*math.Cos(absBearingRad))
	lon2 := lon1 + math.Atan2(
		math.Sin(absBearingRad)*math.Sin(delta)*math.Cos(lat1),
		math.Cos(delta)-math.Sin(lat1)*math.Sin(lat2),
	)

	return fixFromLatLon(LatLon{LatDeg: r2d(lat2), LonDeg: r2d(lon2)})
}

func fixFromLatLon(pos LatLon) (Fix, error) {
	latlng := s2.LatLng{
		Lat: s1.Angle(d2r(pos.LatDeg)),
		Lng: s1.Angle(d2r(pos.LonDeg)),
	}

	utm, err := coordconv.DefaultUTMConverter.ConvertFromGeodetic(latlng, 0)
	if err != nil {
		return Fix{Position: pos}, fmt.Errorf("geofix: convert to UTM: %w", err)
	}

	return Fix{
		Position:      pos,
		UTMZone:       utm.Zone,
		UTMHemisphere: hemisphereRune(utm.Hemisphere),
		UTMEasting:    utm.Easting,
		UTMNorthing:   utm.Northing,
	}, nil
}

func hemisphereRune(h coordconv.Hemisphere) rune {
	switch h {
	case coordconv.HemisphereNorth:
		return 'N'
	case coordconv.HemisphereSouth:
		return 'S'
	default:
		return '?'
	}
}

func d2r(deg float64) float64 { return deg * math.Pi / 180 }
func r2d(rad float64) float64 { return rad * 180 / math.Pi }
