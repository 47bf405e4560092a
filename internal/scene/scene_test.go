package scene

import (
	"errors"
	"math"
	"testing"

	"github.com/golang/geo/r3"

	"github.com/litescript/ls-exosky/internal/astro"
	"github.com/litescript/ls-exosky/internal/planet"
	"github.com/litescript/ls-exosky/internal/starfield"
)

func TestBuild(t *testing.T) {
	desc, err := planet.Lookup("gliese-667-cc")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}

	cfg := Config{StarCount: 500, StarRadius: 5000}
	sc, err := Build(desc, cfg, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if len(sc.Stars) != 500 {
		t.Errorf("stars = %d, want 500", len(sc.Stars))
	}
	if len(sc.Buffer) != 1500 {
		t.Errorf("buffer = %d, want 1500", len(sc.Buffer))
	}
	if len(sc.Bodies) != 2 {
		t.Errorf("bodies = %d, want 2", len(sc.Bodies))
	}

	want, _ := starfield.Generate(desc.Seed, 500, 5000)
	for i := range want {
		if sc.Stars[i] != want[i] {
			t.Fatalf("star %d = %v, want %v", i, sc.Stars[i], want[i])
		}
	}
}

func TestBuild_SamePlanetSamePattern(t *testing.T) {
	desc, _ := planet.Lookup("kepler-22b")
	cfg := Config{StarCount: 100, StarRadius: 5000}

	a, err := Build(desc, cfg, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	b, err := Build(desc, cfg, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	for i := range a.Buffer {
		if a.Buffer[i] != b.Buffer[i] {
			t.Fatalf("buffer[%d] differs between builds", i)
		}
	}
}

func TestBuild_InvalidConfig(t *testing.T) {
	desc, _ := planet.Lookup("kepler-22b")

	_, err := Build(desc, Config{StarCount: 10, StarRadius: -1}, nil)
	if !errors.Is(err, starfield.ErrInvalidRadius) {
		t.Errorf("err = %v, want ErrInvalidRadius", err)
	}

	_, err = Build(desc, Config{StarCount: -5, StarRadius: 10}, nil)
	if !errors.Is(err, starfield.ErrInvalidCount) {
		t.Errorf("err = %v, want ErrInvalidCount", err)
	}
}

func TestAdvance(t *testing.T) {
	f := Frame{}
	next := Advance(f, DefaultRotationSpeed)

	if f.RotationY != 0 || f.Tick != 0 {
		t.Error("Advance mutated its input")
	}
	if math.Abs(next.RotationY-DefaultRotationSpeed) > 1e-15 {
		t.Errorf("RotationY = %v, want %v", next.RotationY, DefaultRotationSpeed)
	}
	if next.Tick != 1 {
		t.Errorf("Tick = %d, want 1", next.Tick)
	}
}

func TestAdvance_Wraps(t *testing.T) {
	tests := []struct {
		name  string
		start float64
		speed float64
		want  float64
	}{
		{"past 2pi", 2*math.Pi - 0.1, 0.3, 0.2},
		{"negative speed", 0.1, -0.3, 2*math.Pi - 0.2},
		{"zero speed", 1, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Advance(Frame{RotationY: tt.start}, tt.speed)
			if math.Abs(got.RotationY-tt.want) > 1e-9 {
				t.Errorf("RotationY = %v, want %v", got.RotationY, tt.want)
			}
			if got.RotationY < 0 || got.RotationY >= 2*math.Pi {
				t.Errorf("RotationY %v outside [0, 2pi)", got.RotationY)
			}
		})
	}
}

func TestStarDirection(t *testing.T) {
	sc := &Scene{Stars: []starfield.Point{{X: 1, Y: 2, Z: 0}}}

	tests := []struct {
		angle float64
		want  r3.Vector
	}{
		{0, r3.Vector{X: 1, Y: 2, Z: 0}},
		{math.Pi / 2, r3.Vector{X: 0, Y: 2, Z: -1}},
		{math.Pi, r3.Vector{X: -1, Y: 2, Z: 0}},
	}

	for _, tt := range tests {
		got := sc.StarDirection(0, Frame{RotationY: tt.angle})
		if got.Sub(tt.want).Norm() > 1e-9 {
			t.Errorf("StarDirection(angle=%v) = %v, want %v", tt.angle, got, tt.want)
		}
		// Rotation keeps the star on its sphere.
		if math.Abs(got.Norm()-sc.Stars[0].Norm()) > 1e-9 {
			t.Errorf("rotation changed radius: %v", got.Norm())
		}
	}
}

func TestSunDirection(t *testing.T) {
	desc, _ := planet.Lookup("kepler-22b")
	sc, err := Build(desc, Config{StarCount: 1, StarRadius: 5000}, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	sun := sc.SunDirection(Frame{})
	if math.Abs(sun.Norm()-5000) > 1e-6 {
		t.Errorf("sun distance = %v, want 5000", sun.Norm())
	}

	// Sol sits opposite the host star as seen from Earth.
	host := astro.EquatorialToCartesian(astro.SkyCoord{RAdeg: desc.Host.RAdeg, DecDeg: desc.Host.DecDeg, DistPc: 1})
	want := EquatorialToScene(host.Mul(-5000))
	if sun.Sub(want).Norm() > 1e-6 {
		t.Errorf("SunDirection = %v, want %v", sun, want)
	}

	// Sol turns with the stars.
	f := Frame{RotationY: 1.2}
	if got := sc.SunDirection(f); got.Sub(f.Rotate(want)).Norm() > 1e-6 {
		t.Errorf("rotated SunDirection = %v, want %v", got, f.Rotate(want))
	}
}

func TestEquatorialToScene(t *testing.T) {
	tests := []struct {
		in, want r3.Vector
	}{
		{r3.Vector{X: 0, Y: 0, Z: 1}, r3.Vector{X: 0, Y: 1, Z: 0}}, // pole is up
		{r3.Vector{X: 1, Y: 0, Z: 0}, r3.Vector{X: 1, Y: 0, Z: 0}},
		{r3.Vector{X: 0, Y: 1, Z: 0}, r3.Vector{X: 0, Y: 0, Z: -1}},
	}
	for _, tt := range tests {
		if got := EquatorialToScene(tt.in); got != tt.want {
			t.Errorf("EquatorialToScene(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
