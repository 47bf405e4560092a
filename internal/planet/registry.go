package planet

import (
	"fmt"

	"github.com/golang/geo/r3"

	"github.com/litescript/ls-exosky/internal/astro"
)

// AtmosphereRadius is the radius of the atmosphere shell around the observer.
const AtmosphereRadius = 1000.0

// AtmosphereOpacity is the opacity of the atmosphere tint.
const AtmosphereOpacity = 0.2

// registry is ordered as the selection menu shows it.
var registry = []Descriptor{
	{
		ID:              "kepler-22b",
		Name:            "Kepler-22b",
		Seed:            1,
		AtmosphereColor: 0x1e90ff, // DodgerBlue
		Description:     "Kepler-22b: A potentially habitable exoplanet located in the habitable zone.",
		HostName:        "Kepler-22",
		Host:            astro.SkyCoord{RAdeg: 289.218, DecDeg: 47.884, DistPc: 195},
		Bodies: []Body{
			{Name: "keplerMoon", Kind: BodyMoon, Radius: 100, Color: 0xaaaaaa, Position: r3.Vector{X: 300, Y: 0, Z: -500}},
		},
	},
	{
		ID:              "proxima-centauri-b",
		Name:            "Proxima Centauri b",
		Seed:            2,
		AtmosphereColor: 0xff4500, // OrangeRed
		Description:     "Proxima Centauri b: An exoplanet orbiting within the habitable zone of Proxima Centauri.",
		HostName:        "Proxima Centauri",
		Host:            astro.SkyCoord{RAdeg: 217.429, DecDeg: -62.679, DistPc: 1.301},
		Bodies: []Body{
			{Name: "proximaStar", Kind: BodyStar, Radius: 200, Color: 0xff4500, Position: r3.Vector{X: 0, Y: 0, Z: -1000}},
			{Name: "proximaMoon", Kind: BodyMoon, Radius: 50, Color: 0x555555, Position: r3.Vector{X: 200, Y: 0, Z: -300}},
		},
	},
	{
		ID:              "gliese-667-cc",
		Name:            "Gliese 667 Cc",
		Seed:            3,
		AtmosphereColor: 0x32cd32, // LimeGreen
		Description:     "Gliese 667 Cc: An exoplanet located within the habitable zone of its star.",
		HostName:        "Gliese 667 C",
		Host:            astro.SkyCoord{RAdeg: 259.745, DecDeg: -34.990, DistPc: 7.24},
		Bodies: []Body{
			{Name: "glieseMoon1", Kind: BodyMoon, Radius: 80, Color: 0x888888, Position: r3.Vector{X: 250, Y: 150, Z: -400}},
			{Name: "glieseMoon2", Kind: BodyMoon, Radius: 60, Color: 0xcccccc, Position: r3.Vector{X: -250, Y: -150, Z: -400}},
		},
	},
	{
		ID:              "trappist-1e",
		Name:            "TRAPPIST-1e",
		Seed:            4,
		AtmosphereColor: 0xffa500, // Orange
		Description:     "TRAPPIST-1e: An exoplanet in the habitable zone of TRAPPIST-1.",
		HostName:        "TRAPPIST-1",
		Host:            astro.SkyCoord{RAdeg: 346.622, DecDeg: -5.041, DistPc: 12.43},
		Bodies: []Body{
			{Name: "trappistStar", Kind: BodyStar, Radius: 300, Color: 0x00ff00, Position: r3.Vector{X: 0, Y: 0, Z: -1000}},
			{Name: "trappistMoon1", Kind: BodyMoon, Radius: 40, Color: 0xffa500, Position: r3.Vector{X: 180, Y: -100, Z: -350}},
			{Name: "trappistMoon2", Kind: BodyMoon, Radius: 40, Color: 0x1e90ff, Position: r3.Vector{X: -180, Y: 100, Z: -350}},
		},
	},
}

// Lookup returns the descriptor for an exact planet id.
func Lookup(id string) (Descriptor, error) {
	for _, d := range registry {
		if d.ID == id {
			return d.clone(), nil
		}
	}
	return Descriptor{}, fmt.Errorf("%w: %q", ErrNotFound, id)
}

// All returns every descriptor in menu order.
func All() []Descriptor {
	out := make([]Descriptor, len(registry))
	for i, d := range registry {
		out[i] = d.clone()
	}
	return out
}

// IDs returns the planet ids in menu order.
func IDs() []string {
	ids := make([]string, len(registry))
	for i, d := range registry {
		ids[i] = d.ID
	}
	return ids
}
