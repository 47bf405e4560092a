package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/litescript/ls-exosky/internal/planet"
)

// testOptions returns options reading an empty .env file from a temp dir.
func testOptions(t *testing.T) options {
	t.Helper()
	envFile := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(envFile, nil, 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	return options{envFile: envFile, pointLimit: 3, set: map[string]bool{}}
}

func TestRun_FailureRecordedInLogFile(t *testing.T) {
	opts := testOptions(t)
	opts.logFile = filepath.Join(t.TempDir(), "exosky.log")
	opts.set["log-file"] = true
	opts.planetID = "nonexistent-id"

	var out bytes.Buffer
	err := run(context.Background(), opts, &out)
	if !errors.Is(err, planet.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	data, err := os.ReadFile(opts.logFile)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if log := string(data); !strings.Contains(log, "exiting") || !strings.Contains(log, "nonexistent-id") {
		t.Errorf("log file missing exit record:\n%s", log)
	}
}

func TestRun_InvalidFlagOverride(t *testing.T) {
	opts := testOptions(t)
	opts.listMode = true
	opts.radius = -1
	opts.set["radius"] = true

	if err := run(context.Background(), opts, &bytes.Buffer{}); err == nil {
		t.Error("expected validation error for negative radius")
	}
}

func TestRun_Headless(t *testing.T) {
	tests := []struct {
		name  string
		setup func(o *options)
		want  []string
	}{
		{
			name:  "list",
			setup: func(o *options) { o.listMode = true },
			want:  []string{"kepler-22b", "trappist-1e", "Distance"},
		},
		{
			name: "summary",
			setup: func(o *options) {
				o.planetID = "proxima-centauri-b"
				o.count = 16
				o.set["count"] = true
			},
			want: []string{"Stars:   16", "Host:", "Sol:"},
		},
		{
			name: "list and summary",
			setup: func(o *options) {
				o.listMode = true
				o.planetID = "gliese-667-cc"
				o.summaryMode = true
			},
			want: []string{"ID", "(seed 3)", "Sol:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions(t)
			tt.setup(&opts)

			var out bytes.Buffer
			if err := run(context.Background(), opts, &out); err != nil {
				t.Fatalf("run: %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(out.String(), w) {
					t.Errorf("output missing %q:\n%s", w, out.String())
				}
			}
		})
	}
}

func TestRun_JSONToStdout(t *testing.T) {
	opts := testOptions(t)
	opts.planetID = "kepler-22b"
	opts.jsonPath = "-"
	opts.count = 4
	opts.set["count"] = true

	var out bytes.Buffer
	if err := run(context.Background(), opts, &out); err != nil {
		t.Fatalf("run: %v", err)
	}

	var body struct {
		PlanetID  string    `json:"planet_id"`
		Count     int       `json:"count"`
		Positions []float32 `json:"positions"`
	}
	if err := json.Unmarshal(out.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v\n%s", err, out.String())
	}
	if body.PlanetID != "kepler-22b" || body.Count != 4 || len(body.Positions) != 12 {
		t.Errorf("export = %+v, want kepler-22b with 4 stars", body)
	}
}

func TestRun_MissingPlanet(t *testing.T) {
	opts := testOptions(t)
	opts.summaryMode = true

	err := run(context.Background(), opts, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "--planet is required") {
		t.Errorf("err = %v, want missing planet error", err)
	}
}
