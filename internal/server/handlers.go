package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/litescript/ls-exosky/internal/astro"
	"github.com/litescript/ls-exosky/internal/planet"
	"github.com/litescript/ls-exosky/internal/starfield"
)

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Planets   int    `json:"planets"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type skyCoordJSON struct {
	RAdeg  float64 `json:"ra_deg"`
	DecDeg float64 `json:"dec_deg"`
	DistPc float64 `json:"distance_pc"`
}

type bodyJSON struct {
	Name     string     `json:"name"`
	Kind     string     `json:"kind"`
	Radius   float64    `json:"radius"`
	Color    string     `json:"color"`
	Position [3]float64 `json:"position"`
}

type planetJSON struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Seed            int64        `json:"seed"`
	AtmosphereColor string       `json:"atmosphere_color"`
	Description     string       `json:"description"`
	HostName        string       `json:"host_name"`
	Host            skyCoordJSON `json:"host"`
	Sun             skyCoordJSON `json:"sun"`
	Bodies          []bodyJSON   `json:"bodies,omitempty"`
}

func toSkyCoordJSON(c astro.SkyCoord) skyCoordJSON {
	return skyCoordJSON{RAdeg: c.RAdeg, DecDeg: c.DecDeg, DistPc: c.DistPc}
}

func toPlanetJSON(d planet.Descriptor) planetJSON {
	p := planetJSON{
		ID:              d.ID,
		Name:            d.Name,
		Seed:            d.Seed,
		AtmosphereColor: d.AtmosphereColor.Hex(),
		Description:     d.Description,
		HostName:        d.HostName,
		Host:            toSkyCoordJSON(d.Host),
		Sun:             toSkyCoordJSON(d.SunPosition()),
	}
	for _, b := range d.Bodies {
		p.Bodies = append(p.Bodies, bodyJSON{
			Name:     b.Name,
			Kind:     string(b.Kind),
			Radius:   b.Radius,
			Color:    b.Color.Hex(),
			Position: [3]float64{b.Position.X, b.Position.Y, b.Position.Z},
		})
	}
	return p
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		Timestamp: s.now().UTC().Format(time.RFC3339),
		Planets:   len(planet.IDs()),
	})
}

func (s *Server) handlePlanets(w http.ResponseWriter, r *http.Request) {
	all := planet.All()
	out := make([]planetJSON, 0, len(all))
	for _, d := range all {
		out = append(out, toPlanetJSON(d))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePlanet(w http.ResponseWriter, r *http.Request) {
	desc, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toPlanetJSON(desc))
}

func (s *Server) handleStarfield(w http.ResponseWriter, r *http.Request) {
	desc, ok := s.lookup(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	count := s.scene.StarCount
	if v := q.Get("count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid count %q", v))
			return
		}
		count = n
	}
	if count > MaxStarCount {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("count exceeds %d", MaxStarCount))
		return
	}

	radius := s.scene.StarRadius
	if v := q.Get("radius"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid radius %q", v))
			return
		}
		radius = f
	}

	points, err := starfield.Generate(desc.Seed, count, radius)
	switch {
	case errors.Is(err, starfield.ErrInvalidCount), errors.Is(err, starfield.ErrInvalidRadius):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.logger.Error("generate %s: %v", desc.ID, err)
		writeError(w, http.StatusInternalServerError, "starfield generation failed")
		return
	}
	if starfield.Exhausts(count) {
		s.logger.Warn("%s: %d stars repeats the generator period", desc.ID, count)
	}

	export := starfield.NewExport(desc.ID, desc.Seed, radius, points, s.now().UTC())

	switch format := q.Get("format"); format {
	case "", "json":
		var buf bytes.Buffer
		if err := export.WriteJSON(&buf); err != nil {
			s.logger.Error("encode starfield JSON for %s: %v", desc.ID, err)
			writeError(w, http.StatusInternalServerError, "starfield encoding failed")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := buf.WriteTo(w); err != nil {
			s.logger.Error("write starfield JSON: %v", err)
		}
	case "binary":
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("X-Star-Count", strconv.Itoa(export.Count))
		w.Header().Set("X-Star-Seed", strconv.FormatInt(export.Seed, 10))
		w.Header().Set("Content-Length", strconv.Itoa(len(export.Positions)*4))
		if err := export.WriteBinary(w); err != nil {
			s.logger.Error("write starfield binary: %v", err)
		}
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown format %q", format))
	}
}

// lookup resolves the {id} path value, writing a 404 when it is unknown.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (planet.Descriptor, bool) {
	id := r.PathValue("id")
	desc, err := planet.Lookup(id)
	if err != nil {
		if errors.Is(err, planet.ErrNotFound) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("exoplanet %q not found", id))
			return planet.Descriptor{}, false
		}
		s.logger.Error("lookup %q: %v", id, err)
		writeError(w, http.StatusInternalServerError, "lookup failed")
		return planet.Descriptor{}, false
	}
	return desc, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
