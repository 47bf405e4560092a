// Package state implements the explorer's view state machine.
//
// The machine moves between Intro, Selecting and Rendering. Fades and other
// delays are never waited on directly: the machine asks an injected Scheduler
// to deliver an Event later, so it can be driven by Bubble Tea ticks in the
// UI and by a recording scheduler in tests.
package state

import (
	"errors"
	"fmt"
	"time"

	"github.com/litescript/ls-exosky/internal/logging"
	"github.com/litescript/ls-exosky/internal/planet"
	"github.com/litescript/ls-exosky/internal/scene"
)

// ErrWrongState is returned when a transition is requested from a state that
// does not allow it.
var ErrWrongState = errors.New("transition not allowed in current state")

// State is a top-level explorer view.
type State int

const (
	StateIntro State = iota
	StateSelecting
	StateRendering
)

func (s State) String() string {
	switch s {
	case StateIntro:
		return "Intro"
	case StateSelecting:
		return "Selecting"
	case StateRendering:
		return "Rendering"
	default:
		return "Unknown"
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// EventType identifies a scheduled event.
type EventType string

const (
	EventIntroElapsed       EventType = "INTRO_ELAPSED"
	EventTransitionComplete EventType = "TRANSITION_COMPLETE"
	EventLoadingDone        EventType = "LOADING_DONE"
)

// Event is delivered back to the machine by a Scheduler. Gen ties the event
// to the transition that scheduled it; events from superseded transitions
// are dropped.
type Event struct {
	Type EventType
	Gen  int
}

// Scheduler delivers an event to Machine.Dispatch after a delay.
// Scheduled events are fire-and-forget and cannot be cancelled.
type Scheduler interface {
	Schedule(delay time.Duration, ev Event)
}

// SchedulerFunc adapts a function to the Scheduler interface.
type SchedulerFunc func(delay time.Duration, ev Event)

// Schedule implements Scheduler.
func (f SchedulerFunc) Schedule(delay time.Duration, ev Event) {
	f(delay, ev)
}

// Timing holds the transition pacing delays.
type Timing struct {
	Intro   time.Duration // intro screen before the menu fades in
	Fade    time.Duration // fade-out before the next view appears
	Loading time.Duration // loading indicator after the star map appears
}

// DefaultTiming returns the standard pacing.
func DefaultTiming() Timing {
	return Timing{
		Intro:   10 * time.Second,
		Fade:    1 * time.Second,
		Loading: 2 * time.Second,
	}
}

// Config holds configuration for the machine.
type Config struct {
	Timing     Timing
	Scene      scene.Config
	MaxHistory int
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		Timing:     DefaultTiming(),
		Scene:      scene.DefaultConfig(),
		MaxHistory: 50,
	}
}

// Transition records one completed state change.
type Transition struct {
	From      State     `json:"from"`
	To        State     `json:"to"`
	PlanetID  string    `json:"planet_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Machine is the explorer state machine. It is owned by a single event loop
// and is not safe for concurrent use.
type Machine struct {
	cfg    Config
	sched  Scheduler
	logger *logging.Logger
	now    func() time.Time

	state  State
	fading bool
	target State
	gen    int

	pending *planet.Descriptor
	scene   *scene.Scene
	frame   scene.Frame
	loading bool
	lastErr error

	// Transition log (ring buffer)
	history    []Transition
	maxHistory int
	writeAt    int
}

// NewMachine creates a machine in the Intro state.
func NewMachine(cfg Config, sched Scheduler, logger *logging.Logger) *Machine {
	if logger == nil {
		logger = logging.Discard()
	}
	maxHistory := cfg.MaxHistory
	if maxHistory <= 0 {
		maxHistory = 50
	}
	return &Machine{
		cfg:        cfg,
		sched:      sched,
		logger:     logger,
		now:        time.Now,
		state:      StateIntro,
		maxHistory: maxHistory,
		history:    make([]Transition, 0, maxHistory),
	}
}

// Start arms the intro timer.
func (m *Machine) Start() {
	m.logger.Debug("intro for %v", m.cfg.Timing.Intro)
	m.sched.Schedule(m.cfg.Timing.Intro, Event{Type: EventIntroElapsed, Gen: m.gen})
}

// IntroElapsed ends the intro and fades towards the selection menu.
// Calling it early skips the intro.
func (m *Machine) IntroElapsed() {
	if m.state != StateIntro || m.fading {
		m.logger.Debug("ignoring intro elapse in %s", m.state)
		return
	}
	m.beginFade(StateSelecting)
}

// SelectPlanet starts the transition to the star map for a planet. An
// unknown id leaves the current view in place and returns an error wrapping
// planet.ErrNotFound.
func (m *Machine) SelectPlanet(id string) error {
	if m.state != StateSelecting || m.fading {
		return fmt.Errorf("select %q in %s: %w", id, m.state, ErrWrongState)
	}

	desc, err := planet.Lookup(id)
	if err != nil {
		m.logger.Error("exoplanet data not found for %q", id)
		m.lastErr = err
		return err
	}

	m.logger.Info("selected %s", desc.ID)
	m.lastErr = nil
	m.pending = &desc
	m.beginFade(StateRendering)
	return nil
}

// Back fades from the star map to the selection menu.
func (m *Machine) Back() error {
	if m.state != StateRendering || m.fading {
		return fmt.Errorf("back in %s: %w", m.state, ErrWrongState)
	}
	m.beginFade(StateSelecting)
	return nil
}

// TransitionComplete finishes the fade in progress and enters its target
// state. Entering Rendering builds the scene synchronously.
func (m *Machine) TransitionComplete() {
	if !m.fading {
		m.logger.Debug("no transition in progress in %s", m.state)
		return
	}

	from := m.state
	m.fading = false

	switch m.target {
	case StateRendering:
		desc := *m.pending
		m.pending = nil

		sc, err := scene.Build(desc, m.cfg.Scene, m.logger)
		if err != nil {
			m.logger.Error("render %s: %v", desc.ID, err)
			m.lastErr = err
			m.enter(from, StateSelecting, desc.ID)
			return
		}

		m.scene = sc
		m.frame = scene.Frame{}
		m.loading = true
		m.enter(from, StateRendering, desc.ID)
		m.sched.Schedule(m.cfg.Timing.Loading, Event{Type: EventLoadingDone, Gen: m.gen})

	default:
		m.scene = nil
		m.loading = false
		m.enter(from, m.target, "")
	}
}

// Dispatch delivers a scheduled event. Events from superseded transitions
// are ignored.
func (m *Machine) Dispatch(ev Event) {
	if ev.Gen != m.gen {
		m.logger.Debug("dropping stale %s (gen %d, current %d)", ev.Type, ev.Gen, m.gen)
		return
	}

	switch ev.Type {
	case EventIntroElapsed:
		m.IntroElapsed()
	case EventTransitionComplete:
		m.TransitionComplete()
	case EventLoadingDone:
		if m.state == StateRendering {
			m.loading = false
		}
	default:
		m.logger.Warn("unknown event %q", ev.Type)
	}
}

// Tick advances the star-map animation by one frame. It is a no-op outside
// the Rendering state.
func (m *Machine) Tick(speed float64) {
	if m.state != StateRendering || m.scene == nil {
		return
	}
	m.frame = scene.Advance(m.frame, speed)
}

func (m *Machine) beginFade(target State) {
	m.gen++
	m.fading = true
	m.target = target
	m.logger.Debug("fading %s -> %s", m.state, target)
	m.sched.Schedule(m.cfg.Timing.Fade, Event{Type: EventTransitionComplete, Gen: m.gen})
}

func (m *Machine) enter(from, to State, planetID string) {
	m.gen++
	m.state = to
	m.addTransition(Transition{From: from, To: to, PlanetID: planetID, Timestamp: m.now()})
	m.logger.Info("%s -> %s", from, to)
}

// addTransition adds a transition to the ring buffer.
func (m *Machine) addTransition(t Transition) {
	if len(m.history) < m.maxHistory {
		m.history = append(m.history, t)
	} else {
		m.history[m.writeAt] = t
		m.writeAt = (m.writeAt + 1) % m.maxHistory
	}
}

// History returns completed transitions, oldest first.
func (m *Machine) History() []Transition {
	if len(m.history) == 0 {
		return nil
	}

	if len(m.history) < m.maxHistory {
		result := make([]Transition, len(m.history))
		copy(result, m.history)
		return result
	}

	result := make([]Transition, m.maxHistory)
	for i := 0; i < m.maxHistory; i++ {
		result[i] = m.history[(m.writeAt+i)%m.maxHistory]
	}
	return result
}

// Snapshot is a read-only view of the machine for rendering.
type Snapshot struct {
	State     State
	Fading    bool
	Target    State
	Loading   bool
	PlanetID  string       // planet being faded towards or shown
	Scene     *scene.Scene // non-nil only in Rendering; never mutated
	Frame     scene.Frame
	LastError error
}

// Snapshot returns the current view state.
func (m *Machine) Snapshot() Snapshot {
	snap := Snapshot{
		State:     m.state,
		Fading:    m.fading,
		Target:    m.target,
		Loading:   m.loading,
		Scene:     m.scene,
		Frame:     m.frame,
		LastError: m.lastErr,
	}
	switch {
	case m.pending != nil:
		snap.PlanetID = m.pending.ID
	case m.scene != nil:
		snap.PlanetID = m.scene.Planet.ID
	}
	return snap
}

// State returns the current state.
func (m *Machine) State() State {
	return m.state
}
