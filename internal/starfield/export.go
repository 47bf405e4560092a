package starfield

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"time"
)

// Export is the JSON-serializable representation of a generated starfield.
type Export struct {
	PlanetID    string    `json:"planet_id"`
	Seed        int64     `json:"seed"`
	Count       int       `json:"count"`
	Radius      float64   `json:"radius"`
	GeneratedAt time.Time `json:"generated_at"`
	Repeats     bool      `json:"repeats,omitempty"`
	Positions   []float32 `json:"positions"`
}

// NewExport packages points for serialization.
func NewExport(planetID string, seed int64, radius float64, points []Point, generatedAt time.Time) *Export {
	return &Export{
		PlanetID:    planetID,
		Seed:        seed,
		Count:       len(points),
		Radius:      radius,
		GeneratedAt: generatedAt,
		Repeats:     Exhausts(len(points)),
		Positions:   Flatten(points),
	}
}

// WriteJSON writes the export as indented JSON.
func (e *Export) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}

// WriteBinary writes the positions as little-endian float32 xyz triples,
// ready to upload as a vertex buffer.
func (e *Export) WriteBinary(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, e.Positions); err != nil {
		return fmt.Errorf("write positions: %w", err)
	}
	return nil
}

// Stats summarizes a starfield.
type Stats struct {
	Count     int
	MinRadius float64
	MaxRadius float64
	MeanZ     float64 // mean of z/r, ~0 for a uniform sphere
}

// ComputeStats measures points against the sphere they were sampled on.
func ComputeStats(points []Point) Stats {
	s := Stats{Count: len(points)}
	if len(points) == 0 {
		return s
	}

	s.MinRadius = math.Inf(1)
	var sumZ float64
	for _, p := range points {
		r := p.Norm()
		if r < s.MinRadius {
			s.MinRadius = r
		}
		if r > s.MaxRadius {
			s.MaxRadius = r
		}
		if r > 0 {
			sumZ += p.Z / r
		}
	}
	s.MeanZ = sumZ / float64(len(points))
	return s
}

// WriteSummary writes a text summary of a starfield and its first points.
func WriteSummary(w io.Writer, title string, seed int64, points []Point, limit int) {
	stats := ComputeStats(points)

	fmt.Fprintf(w, "%s (seed %d)\n", title, seed)
	fmt.Fprintln(w, strings.Repeat("─", 60))
	fmt.Fprintf(w, "Stars:   %d\n", stats.Count)
	if stats.Count == 0 {
		return
	}
	fmt.Fprintf(w, "Radius:  %.3f .. %.3f\n", stats.MinRadius, stats.MaxRadius)
	fmt.Fprintf(w, "Mean z/r: %+.4f\n", stats.MeanZ)
	if Exhausts(stats.Count) {
		fmt.Fprintf(w, "Warning: more than %d stars, pattern repeats\n", MaxDistinctPoints)
	}

	if limit <= 0 {
		return
	}
	if limit > len(points) {
		limit = len(points)
	}

	fmt.Fprintln(w, strings.Repeat("─", 60))
	fmt.Fprintf(w, "%-6s %16s %16s %16s\n", "#", "x", "y", "z")
	for i := 0; i < limit; i++ {
		p := points[i]
		fmt.Fprintf(w, "%-6d %16.4f %16.4f %16.4f\n", i, p.X, p.Y, p.Z)
	}
}
