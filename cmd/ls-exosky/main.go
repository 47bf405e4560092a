// Command ls-exosky renders the night sky of nearby exoplanets in the terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/litescript/ls-exosky/internal/config"
	"github.com/litescript/ls-exosky/internal/logging"
	"github.com/litescript/ls-exosky/internal/planet"
	"github.com/litescript/ls-exosky/internal/server"
	"github.com/litescript/ls-exosky/internal/starfield"
	"github.com/litescript/ls-exosky/internal/state"
	"github.com/litescript/ls-exosky/internal/ui"
	"github.com/litescript/ls-exosky/internal/version"
)

// options holds the command-line flags.
type options struct {
	envFile     string
	logLevel    string
	logFile     string
	count       int
	radius      float64
	addr        string
	planetID    string
	summaryMode bool
	jsonPath    string
	binaryPath  string
	listMode    bool
	serveMode   bool
	pointLimit  int

	// set records the flags given explicitly on the command line.
	set map[string]bool
}

func (o options) headless() bool {
	return o.listMode || o.planetID != "" || o.summaryMode || o.jsonPath != "" || o.binaryPath != ""
}

func main() {
	var opts options
	flag.StringVar(&opts.envFile, "env-file", "", "Read settings from this .env file (default: ./.env if present)")
	flag.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&opts.logFile, "log-file", "", "Write logs to file instead of stderr")
	flag.IntVar(&opts.count, "count", 0, "Stars per planet (default from EXOSKY_STAR_COUNT)")
	flag.Float64Var(&opts.radius, "radius", 0, "Star sphere radius (default from EXOSKY_STAR_RADIUS)")
	flag.StringVar(&opts.addr, "addr", "", "Listen address for --serve (default from EXOSKY_ADDR)")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.StringVar(&opts.planetID, "planet", "", "Planet id for headless output")
	flag.BoolVar(&opts.summaryMode, "summary", false, "Print text summary of a planet's starfield")
	flag.StringVar(&opts.jsonPath, "json", "", "Export starfield JSON to file (use - for stdout)")
	flag.StringVar(&opts.binaryPath, "binary", "", "Export starfield as float32 xyz to file (use - for stdout)")
	flag.IntVar(&opts.pointLimit, "points", 10, "Points listed by --summary")
	flag.BoolVar(&opts.listMode, "list", false, "List known planets")
	flag.BoolVar(&opts.serveMode, "serve", false, "Serve the starfield HTTP API")
	flag.Parse()

	if *showVersion {
		fmt.Printf("ls-exosky v%s\n", version.Version)
		return
	}

	opts.set = map[string]bool{}
	flag.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := run(ctx, opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}
}

// run loads configuration and executes the selected mode. The logger is
// closed before run returns, on failure as well as success.
func run(ctx context.Context, opts options, stdout io.Writer) (err error) {
	cfg, err := config.Load(opts.envFile)
	if err != nil {
		return err
	}

	// Explicit flags win over environment and .env values
	if opts.set["log-level"] {
		cfg.Logging.Level = opts.logLevel
	}
	if opts.set["log-file"] {
		cfg.Logging.File = opts.logFile
	}
	if opts.set["count"] {
		cfg.Scene.StarCount = opts.count
	}
	if opts.set["radius"] {
		cfg.Scene.StarRadius = opts.radius
	}
	if opts.set["addr"] {
		cfg.Server.Addr = opts.addr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// The TUI owns the terminal, so it only logs to a file.
	logger, err := newLogger(cfg.Logging, !opts.headless() && !opts.serveMode)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil && cfg.Logging.File != "" {
			logger.Error("exiting: %v", err)
		}
		if cerr := logger.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close log: %w", cerr)
		}
	}()

	switch {
	case opts.serveMode:
		srv := server.New(cfg.Server, cfg.Scene, logger)
		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("server: %w", err)
		}

	case opts.headless():
		return runHeadless(cfg, opts, logger, stdout)

	default:
		model := ui.New(ui.Options{
			State: state.Config{
				Timing:     cfg.Timing,
				Scene:      cfg.Scene,
				MaxHistory: state.DefaultConfig().MaxHistory,
			},
			RotationSpeed: cfg.RotationSpeed,
			Logger:        logger,
		})

		p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
		if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("running TUI: %w", err)
		}
	}
	return nil
}

func newLogger(cfg config.LoggingConfig, tui bool) (*logging.Logger, error) {
	level := logging.ParseLevel(cfg.Level)
	switch {
	case cfg.File != "":
		return logging.NewFile(cfg.File, level)
	case tui:
		return logging.Discard(), nil
	default:
		return logging.New(level), nil
	}
}

// runHeadless handles all headless modes without starting the TUI.
func runHeadless(cfg *config.Config, opts options, logger *logging.Logger, w io.Writer) error {
	if opts.listMode {
		writePlanetList(w)
		if opts.planetID == "" {
			return nil
		}
		fmt.Fprintln(w)
	}

	if opts.planetID == "" {
		return fmt.Errorf("--planet is required (one of: %s)", strings.Join(planet.IDs(), ", "))
	}

	desc, err := planet.Lookup(opts.planetID)
	if err != nil {
		return err
	}

	if starfield.Exhausts(cfg.Scene.StarCount) {
		logger.Warn("%d stars exceeds %d distinct points, pattern will repeat",
			cfg.Scene.StarCount, starfield.MaxDistinctPoints)
	}
	points, err := starfield.Generate(desc.Seed, cfg.Scene.StarCount, cfg.Scene.StarRadius)
	if err != nil {
		return fmt.Errorf("generate starfield for %s: %w", desc.ID, err)
	}
	logger.Debug("generated %d stars for %s", len(points), desc.ID)

	export := starfield.NewExport(desc.ID, desc.Seed, cfg.Scene.StarRadius, points, time.Now().UTC())

	if opts.jsonPath != "" {
		if err := writeTo(opts.jsonPath, w, export.WriteJSON); err != nil {
			return fmt.Errorf("write JSON: %w", err)
		}
	}

	if opts.binaryPath != "" {
		if f, ok := w.(*os.File); ok && opts.binaryPath == "-" && term.IsTerminal(int(f.Fd())) {
			return errors.New("refusing to write binary output to a terminal")
		}
		if err := writeTo(opts.binaryPath, w, export.WriteBinary); err != nil {
			return fmt.Errorf("write binary: %w", err)
		}
	}

	// Summary is the default when no export was requested
	if opts.summaryMode || (opts.jsonPath == "" && opts.binaryPath == "") {
		starfield.WriteSummary(w, desc.Name, desc.Seed, points, opts.pointLimit)
		sun := desc.SunPosition()
		fmt.Fprintf(w, "Host:    %s (%.2f pc)\n", desc.HostName, desc.Host.DistPc)
		fmt.Fprintf(w, "Sol:     RA %.2f° Dec %+.2f°\n", sun.RAdeg, sun.DecDeg)
	}

	return nil
}

// writeTo writes via fn to path, or to stdout for "-".
func writeTo(path string, stdout io.Writer, fn func(io.Writer) error) error {
	if path == "-" {
		return fn(stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writePlanetList(w io.Writer) {
	fmt.Fprintf(w, "%-20s %-20s %6s %-18s %10s\n", "ID", "Name", "Seed", "Host", "Distance")
	fmt.Fprintln(w, strings.Repeat("─", 78))
	for _, p := range planet.All() {
		fmt.Fprintf(w, "%-20s %-20s %6d %-18s %7.2f pc\n", p.ID, p.Name, p.Seed, p.HostName, p.Host.DistPc)
	}
}
