// Package scene assembles the immutable star-map scene for one planet and
// advances its per-frame animation state.
package scene

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"

	"github.com/litescript/ls-exosky/internal/astro"
	"github.com/litescript/ls-exosky/internal/logging"
	"github.com/litescript/ls-exosky/internal/planet"
	"github.com/litescript/ls-exosky/internal/starfield"
)

// DefaultRotationSpeed is the star-field rotation per frame, in radians.
const DefaultRotationSpeed = 0.0005

// Config controls scene generation.
type Config struct {
	StarCount  int
	StarRadius float64
}

// DefaultConfig returns the star-map defaults.
func DefaultConfig() Config {
	return Config{
		StarCount:  starfield.DefaultCount,
		StarRadius: starfield.DefaultRadius,
	}
}

// Scene is everything the renderer needs for one planet. It is built once
// and never mutated afterwards.
type Scene struct {
	Planet planet.Descriptor
	Radius float64
	Stars  []starfield.Point
	Buffer []float32 // flat xyz, same order as Stars
	Bodies []planet.Body
}

// Build generates the starfield for a planet and assembles its scene.
func Build(desc planet.Descriptor, cfg Config, logger *logging.Logger) (*Scene, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	if starfield.Exhausts(cfg.StarCount) {
		logger.Warn("%s: %d stars exceeds %d distinct points, pattern will repeat",
			desc.ID, cfg.StarCount, starfield.MaxDistinctPoints)
	}

	stars, err := starfield.Generate(desc.Seed, cfg.StarCount, cfg.StarRadius)
	if err != nil {
		return nil, fmt.Errorf("generate starfield for %s: %w", desc.ID, err)
	}

	logger.Debug("%s: generated %d stars (seed %d, radius %.0f)",
		desc.ID, len(stars), desc.Seed, cfg.StarRadius)

	return &Scene{
		Planet: desc,
		Radius: cfg.StarRadius,
		Stars:  stars,
		Buffer: starfield.Flatten(stars),
		Bodies: desc.Bodies,
	}, nil
}

// StarDirection returns star i rotated by the frame's star-field rotation.
func (s *Scene) StarDirection(i int, f Frame) r3.Vector {
	return f.Rotate(s.Stars[i])
}

// SunDirection returns where Sol sits on the star sphere, rotated with the
// stars.
func (s *Scene) SunDirection(f Frame) r3.Vector {
	sun := s.Planet.SunPosition()
	dir := astro.EquatorialToCartesian(astro.SkyCoord{RAdeg: sun.RAdeg, DecDeg: sun.DecDeg, DistPc: 1})
	return f.Rotate(EquatorialToScene(dir).Mul(s.Radius))
}

// EquatorialToScene maps an equatorial vector (Z at the celestial pole) into
// scene axes, where Y is up and the default view looks down -Z.
func EquatorialToScene(v r3.Vector) r3.Vector {
	return r3.Vector{X: v.X, Y: v.Z, Z: -v.Y}
}

// Frame is the per-frame animation state.
type Frame struct {
	RotationY float64 // star-field rotation about Y, radians in [0, 2pi)
	Tick      int
}

// Advance returns the next frame. It never modifies its input.
func Advance(f Frame, speed float64) Frame {
	r := math.Mod(f.RotationY+speed, 2*math.Pi)
	if r < 0 {
		r += 2 * math.Pi
	}
	return Frame{RotationY: r, Tick: f.Tick + 1}
}

// Rotate applies the frame's star-field rotation about Y.
func (f Frame) Rotate(v r3.Vector) r3.Vector {
	sin, cos := math.Sincos(f.RotationY)
	return r3.Vector{
		X: v.X*cos + v.Z*sin,
		Y: v.Y,
		Z: -v.X*sin + v.Z*cos,
	}
}
