// Package astro provides coordinate transformations between catalog
// positions and the cartesian frames used to re-centre a sky on an exoplanet.
package astro

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/golang/geo/s2"
)

// SkyCoord is an equatorial position with optional distance.
type SkyCoord struct {
	RAdeg  float64 // Right Ascension in degrees (0-360)
	DecDeg float64 // Declination in degrees (-90 to +90)

	// Distance in parsecs. Zero means the coordinate is a direction only.
	DistPc float64
}

// EquatorialToCartesian converts RA/Dec/distance into heliocentric
// cartesian coordinates in parsecs. X points at RA 0, Z at the north
// celestial pole.
func EquatorialToCartesian(c SkyCoord) r3.Vector {
	ra := degToRad(c.RAdeg)
	dec := degToRad(c.DecDeg)

	return r3.Vector{
		X: c.DistPc * math.Cos(dec) * math.Cos(ra),
		Y: c.DistPc * math.Cos(dec) * math.Sin(ra),
		Z: c.DistPc * math.Sin(dec),
	}
}

// CartesianToEquatorial converts a cartesian position back into RA/Dec and
// distance. The zero vector maps to the zero coordinate.
func CartesianToEquatorial(v r3.Vector) SkyCoord {
	dist := v.Norm()
	if dist == 0 {
		return SkyCoord{}
	}

	ll := s2.LatLngFromPoint(s2.Point{Vector: v})
	return SkyCoord{
		RAdeg:  normalizeDeg(ll.Lng.Degrees()),
		DecDeg: ll.Lat.Degrees(),
		DistPc: dist,
	}
}

// Relocate returns where target appears in the sky of an observer at the
// given position. Both coordinates must carry distances.
func Relocate(target, observer SkyCoord) SkyCoord {
	t := EquatorialToCartesian(target)
	o := EquatorialToCartesian(observer)
	return CartesianToEquatorial(t.Sub(o))
}

// SunFrom returns the Sun's position as seen from a body at the given
// heliocentric position.
func SunFrom(position SkyCoord) SkyCoord {
	return Relocate(SkyCoord{}, position)
}

// AngularSeparation returns the angle between two directions in degrees.
func AngularSeparation(a, b SkyCoord) float64 {
	va := EquatorialToCartesian(SkyCoord{RAdeg: a.RAdeg, DecDeg: a.DecDeg, DistPc: 1})
	vb := EquatorialToCartesian(SkyCoord{RAdeg: b.RAdeg, DecDeg: b.DecDeg, DistPc: 1})
	return va.Angle(vb).Degrees()
}

// normalizeDeg wraps an angle to 0-360.
func normalizeDeg(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	return a
}

// degToRad converts degrees to radians.
func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}
