package server

import (
	"encoding/binary"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/litescript/ls-exosky/internal/config"
	"github.com/litescript/ls-exosky/internal/scene"
	"github.com/litescript/ls-exosky/internal/starfield"
)

func newTestServer(rl config.RateLimitConfig) *Server {
	cfg := config.ServerConfig{
		Addr:        ":0",
		CORSOrigins: []string{"http://localhost:3000"},
		RateLimit:   rl,
	}
	s := New(cfg, scene.Config{StarCount: 16, StarRadius: 5000}, nil)
	s.now = func() time.Time { return time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC) }
	return s
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	h := newTestServer(config.RateLimitConfig{}).Handler()
	rec := get(t, h, "/api/health")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body healthResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "healthy" || body.Planets != 4 {
		t.Errorf("body = %+v", body)
	}
	if body.Timestamp != "2024-01-15T10:00:00Z" {
		t.Errorf("Timestamp = %q", body.Timestamp)
	}
}

func TestPlanets(t *testing.T) {
	h := newTestServer(config.RateLimitConfig{}).Handler()
	rec := get(t, h, "/api/planets")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body []planetJSON
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}

	want := []string{"kepler-22b", "proxima-centauri-b", "gliese-667-cc", "trappist-1e"}
	if len(body) != len(want) {
		t.Fatalf("planets = %d, want %d", len(body), len(want))
	}
	for i, id := range want {
		if body[i].ID != id {
			t.Errorf("planet[%d] = %q, want %q", i, body[i].ID, id)
		}
	}
}

func TestPlanet(t *testing.T) {
	h := newTestServer(config.RateLimitConfig{}).Handler()

	t.Run("known", func(t *testing.T) {
		rec := get(t, h, "/api/planets/kepler-22b")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var body planetJSON
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Seed != 1 || body.AtmosphereColor != "#1E90FF" {
			t.Errorf("body = %+v", body)
		}
		if len(body.Bodies) != 1 || body.Bodies[0].Name != "keplerMoon" {
			t.Errorf("bodies = %+v", body.Bodies)
		}
		if math.Abs(body.Sun.DistPc-body.Host.DistPc) > 1e-9 {
			t.Errorf("sun distance %v, want %v", body.Sun.DistPc, body.Host.DistPc)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		rec := get(t, h, "/api/planets/nonexistent-id")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
		var body errorResponse
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Error == "" {
			t.Error("empty error message")
		}
	})
}

func TestStarfield_JSON(t *testing.T) {
	h := newTestServer(config.RateLimitConfig{}).Handler()
	rec := get(t, h, "/api/planets/kepler-22b/starfield?count=4&radius=5000")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}
	var body starfield.Export
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Count != 4 || len(body.Positions) != 12 {
		t.Fatalf("count = %d positions = %d", body.Count, len(body.Positions))
	}
	if got, want := body.Positions[0], float32(-4162.248276166524); got != want {
		t.Errorf("positions[0] = %v, want %v", got, want)
	}
}

func TestStarfield_Defaults(t *testing.T) {
	h := newTestServer(config.RateLimitConfig{}).Handler()
	rec := get(t, h, "/api/planets/trappist-1e/starfield")

	var body starfield.Export
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Count != 16 || body.Radius != 5000 || body.Seed != 4 {
		t.Errorf("export = count %d radius %v seed %d", body.Count, body.Radius, body.Seed)
	}
}

func TestStarfield_Binary(t *testing.T) {
	h := newTestServer(config.RateLimitConfig{}).Handler()
	rec := get(t, h, "/api/planets/kepler-22b/starfield?count=4&format=binary")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/octet-stream" {
		t.Errorf("Content-Type = %q", ct)
	}
	if rec.Header().Get("X-Star-Count") != "4" {
		t.Errorf("X-Star-Count = %q", rec.Header().Get("X-Star-Count"))
	}
	data := rec.Body.Bytes()
	if len(data) != 48 {
		t.Fatalf("body length = %d, want 48", len(data))
	}
	y := math.Float32frombits(binary.LittleEndian.Uint32(data[4:]))
	if want := float32(-1218.6600512209775); y != want {
		t.Errorf("star 0 y = %v, want %v", y, want)
	}
}

func TestStarfield_BadRequests(t *testing.T) {
	h := newTestServer(config.RateLimitConfig{}).Handler()

	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"negative count", "/api/planets/kepler-22b/starfield?count=-1", http.StatusBadRequest},
		{"non-numeric count", "/api/planets/kepler-22b/starfield?count=many", http.StatusBadRequest},
		{"too many", "/api/planets/kepler-22b/starfield?count=200001", http.StatusBadRequest},
		{"zero radius", "/api/planets/kepler-22b/starfield?radius=0", http.StatusBadRequest},
		{"bad radius", "/api/planets/kepler-22b/starfield?radius=far", http.StatusBadRequest},
		{"radius beyond float32", "/api/planets/kepler-22b/starfield?count=2&radius=1e39", http.StatusBadRequest},
		{"binary radius beyond float32", "/api/planets/kepler-22b/starfield?count=2&radius=1e39&format=binary", http.StatusBadRequest},
		{"bad format", "/api/planets/kepler-22b/starfield?format=xml", http.StatusBadRequest},
		{"unknown planet", "/api/planets/nonexistent-id/starfield", http.StatusNotFound},
		{"zero count", "/api/planets/kepler-22b/starfield?count=0", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := get(t, h, tt.target); rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body)
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	h := newTestServer(config.RateLimitConfig{
		Enabled:           true,
		RequestsPerSecond: 0.001,
		BurstSize:         2,
	}).Handler()

	for i := 0; i < 2; i++ {
		if rec := get(t, h, "/api/health"); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i, rec.Code)
		}
	}

	rec := get(t, h, "/api/health")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "1" {
		t.Errorf("Retry-After = %q", rec.Header().Get("Retry-After"))
	}

	// Another client has its own bucket.
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.RemoteAddr = "203.0.113.9:4444"
	other := httptest.NewRecorder()
	h.ServeHTTP(other, req)
	if other.Code != http.StatusOK {
		t.Errorf("other client status = %d, want 200", other.Code)
	}
}

func TestRateLimiter_Prune(t *testing.T) {
	rl := NewRateLimiter(config.RateLimitConfig{Enabled: true, RequestsPerSecond: 10, BurstSize: 5}, nil)
	rl.getLimiter("192.0.2.1").Allow()

	rl.prune(time.Now().Add(time.Hour))
	if len(rl.clients) != 0 {
		t.Errorf("clients = %d after prune, want 0", len(rl.clients))
	}
}

func TestCORS(t *testing.T) {
	h := newTestServer(config.RateLimitConfig{}).Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/planets", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Allow-Origin = %q, want http://localhost:3000", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/planets", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("disallowed origin got Allow-Origin %q", got)
	}
}
