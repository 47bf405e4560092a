// Package planet holds the static exoplanet registry.
package planet

import (
	"errors"
	"fmt"

	"github.com/golang/geo/r3"

	"github.com/litescript/ls-exosky/internal/astro"
)

// ErrNotFound is returned when a planet id is not in the registry.
var ErrNotFound = errors.New("planet not found")

// Color is a 24-bit RGB color (0xRRGGBB).
type Color uint32

// RGB splits the color into components.
func (c Color) RGB() (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// Hex returns the color as "#RRGGBB".
func (c Color) Hex() string {
	r, g, b := c.RGB()
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

// Blend mixes the color over a background with the given opacity (0-1).
func (c Color) Blend(bg Color, opacity float64) Color {
	if opacity <= 0 {
		return bg
	}
	if opacity >= 1 {
		return c
	}
	r1, g1, b1 := c.RGB()
	r2, g2, b2 := bg.RGB()
	mix := func(a, b uint8) uint32 {
		return uint32(float64(a)*opacity + float64(b)*(1-opacity) + 0.5)
	}
	return Color(mix(r1, r2)<<16 | mix(g1, g2)<<8 | mix(b1, b2))
}

// BodyKind distinguishes decorative scene bodies.
type BodyKind string

const (
	BodyMoon BodyKind = "moon"
	BodyStar BodyKind = "star"
)

// Body is a decorative sphere placed in a planet's scene.
type Body struct {
	Name     string
	Kind     BodyKind
	Radius   float64
	Color    Color
	Position r3.Vector
}

// Descriptor is the static record for one exoplanet.
type Descriptor struct {
	ID              string
	Name            string
	Seed            int64
	AtmosphereColor Color
	Description     string

	// Host star, heliocentric J2000.
	HostName string
	Host     astro.SkyCoord

	Bodies []Body
}

// SunPosition returns where Sol appears in the planet's sky. The planet is
// taken to sit at its host star.
func (d Descriptor) SunPosition() astro.SkyCoord {
	return astro.SunFrom(d.Host)
}

// clone returns a deep copy so callers cannot mutate registry data.
func (d Descriptor) clone() Descriptor {
	if d.Bodies != nil {
		bodies := make([]Body, len(d.Bodies))
		copy(bodies, d.Bodies)
		d.Bodies = bodies
	}
	return d
}
