package starfield

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/geo/r3"
)

const (
	// DefaultCount is the number of stars generated per planet.
	DefaultCount = 10000

	// DefaultRadius is the radius of the star sphere in scene units.
	DefaultRadius = 5000.0

	// MaxDistinctPoints is the number of points a single generator yields
	// before the sequence repeats. Each point consumes two draws.
	MaxDistinctPoints = Period / 2

	// MaxRadius is the largest radius whose points still fit the float32
	// vertex buffer.
	MaxRadius = math.MaxFloat32
)

var (
	// ErrInvalidCount is returned for a negative point count.
	ErrInvalidCount = errors.New("invalid point count")

	// ErrInvalidRadius is returned for a radius that is not a positive finite
	// number no larger than MaxRadius.
	ErrInvalidRadius = errors.New("invalid sphere radius")
)

// Point is a star position on the sphere.
type Point = r3.Vector

// Sample draws n points uniformly distributed over the surface of a sphere of
// the given radius centred on the origin.
//
// Each point consumes two draws u, v. The polar angle uses inverse-CDF
// sampling, theta = acos(2u-1), so points are uniform in area rather than in
// angle. Points are returned in draw order.
func Sample(n int, radius float64, rng Source) ([]Point, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCount, n)
	}
	if radius <= 0 || math.IsNaN(radius) || radius > MaxRadius {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRadius, radius)
	}

	points := make([]Point, 0, n)
	for i := 0; i < n; i++ {
		u := rng.Next()
		v := rng.Next()

		theta := math.Acos(2*u - 1)
		phi := v * 2 * math.Pi

		sinTheta := math.Sin(theta)
		points = append(points, Point{
			X: radius * sinTheta * math.Cos(phi),
			Y: radius * sinTheta * math.Sin(phi),
			Z: radius * math.Cos(theta),
		})
	}
	return points, nil
}

// Generate builds the starfield for a seed with a fresh generator.
// Identical arguments always produce identical output.
func Generate(seed int64, count int, radius float64) ([]Point, error) {
	return Sample(count, radius, NewLCG(seed))
}

// Exhausts reports whether count points would wrap the generator period and
// start repeating earlier stars.
func Exhausts(count int) bool {
	return count > MaxDistinctPoints
}

// Flatten packs points into an xyz float32 vertex buffer.
func Flatten(points []Point) []float32 {
	buf := make([]float32, 0, len(points)*3)
	for _, p := range points {
		buf = append(buf, float32(p.X), float32(p.Y), float32(p.Z))
	}
	return buf
}
