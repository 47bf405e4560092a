package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/golang/geo/r3"
	"github.com/golang/geo/s2"

	"github.com/litescript/ls-exosky/internal/planet"
	"github.com/litescript/ls-exosky/internal/scene"
	"github.com/litescript/ls-exosky/internal/state"
)

const (
	// Field of view in degrees
	fovAz = 120.0 // horizontal FOV
	fovEl = 60.0  // vertical FOV

	// Camera panning
	panStepAz = 15.0
	panStepEl = 10.0
	maxCamEl  = 75.0

	// Animation
	animDuration  = 400 * time.Millisecond
	animFrameRate = 30 * time.Millisecond

	// Star glyphs by brightness class
	glyphStarBright = '✦'
	glyphStarMedium = '•'
	glyphStarDim    = '·'

	colorStarBright = "255"
	colorStarMedium = "250"
	colorStarDim    = "244"

	glyphSun     = '☉'
	colorSun     = "#FFD700"
	glyphBody    = '●'
	colorLabel   = "#d0e8ff"
	colorReticle = "60"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// StarMapModel renders a planet's rotating star sphere from the planet's
// surface.
type StarMapModel struct {
	width  int
	height int

	// Camera position (center of view)
	camAz float64
	camEl float64

	// Animation state
	animating   bool
	animStartAz float64
	animStartEl float64
	animTargAz  float64
	animTargEl  float64
	animStart   time.Time

	labels   bool
	showInfo bool
	animTick int

	scene    *scene.Scene
	snapshot state.Snapshot
}

// NewStarMapModel creates a star map looking at the default horizon.
func NewStarMapModel() StarMapModel {
	return StarMapModel{
		labels:   true,
		showInfo: true,
	}
}

// SetSize updates the viewport size.
func (m StarMapModel) SetSize(width, height int) StarMapModel {
	m.width = width
	m.height = height
	return m
}

// SetScene switches to a new scene and re-homes the camera.
func (m StarMapModel) SetScene(sc *scene.Scene) StarMapModel {
	m.scene = sc
	m.camAz = 0
	m.camEl = 0
	m.animating = false
	return m
}

// UpdateData updates with the latest machine snapshot.
func (m StarMapModel) UpdateData(snapshot state.Snapshot) StarMapModel {
	m.snapshot = snapshot
	return m
}

// SetAnimTick sets the spinner frame.
func (m StarMapModel) SetAnimTick(tick int) StarMapModel {
	m.animTick = tick
	return m
}

// camTickMsg is sent during camera animation
type camTickMsg time.Time

func camTick() tea.Cmd {
	return tea.Tick(animFrameRate, func(t time.Time) tea.Msg {
		return camTickMsg(t)
	})
}

// Update handles messages.
func (m StarMapModel) Update(msg tea.Msg) (StarMapModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "left":
			return m.lookAt(m.camAz-panStepAz, m.camEl)
		case "right":
			return m.lookAt(m.camAz+panStepAz, m.camEl)
		case "up":
			return m.lookAt(m.camAz, m.camEl+panStepEl)
		case "down":
			return m.lookAt(m.camAz, m.camEl-panStepEl)
		case "h":
			return m.lookAt(0, 0)
		case "s":
			if m.scene != nil {
				az, el := skyAngles(m.scene.SunDirection(m.snapshot.Frame))
				return m.lookAt(az, el)
			}
		case "l":
			m.labels = !m.labels
		case "i":
			m.showInfo = !m.showInfo
		}

	case camTickMsg:
		if m.animating {
			return m.updateAnimation()
		}
	}

	return m, nil
}

// lookAt starts a camera animation towards az/el.
func (m StarMapModel) lookAt(az, el float64) (StarMapModel, tea.Cmd) {
	el = math.Max(-maxCamEl, math.Min(maxCamEl, el))

	m.animating = true
	m.animStartAz = m.camAz
	m.animStartEl = m.camEl
	m.animTargAz = az
	m.animTargEl = el
	m.animStart = time.Now()

	return m, camTick()
}

func (m StarMapModel) updateAnimation() (StarMapModel, tea.Cmd) {
	elapsed := time.Since(m.animStart)
	t := float64(elapsed) / float64(animDuration)

	if t >= 1.0 {
		m.animating = false
		m.camAz = normalizeAngle(m.animTargAz)
		m.camEl = m.animTargEl
		return m, nil
	}

	// Ease-out cubic
	t = 1 - math.Pow(1-t, 3)

	m.camAz = lerpAngle(m.animStartAz, m.animTargAz, t)
	m.camEl = lerp(m.animStartEl, m.animTargEl, t)

	return m, camTick()
}

// View renders the star map.
func (m StarMapModel) View() string {
	if m.width < 20 || m.height < 10 {
		return "Star map requires larger terminal"
	}
	if m.scene == nil {
		return ""
	}

	// Header, status and footer lines
	viewHeight := m.height - 3

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderSkyCanvas(m.width, viewHeight))
	b.WriteString("\n")
	b.WriteString(m.renderStatus())

	return b.String()
}

func (m StarMapModel) renderHeader() string {
	desc := m.scene.Planet

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(desc.AtmosphereColor.Hex()))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(colorLabel))

	title := titleStyle.Render(desc.Name)
	host := dimStyle.Render("orbiting " + desc.HostName)
	stars := dimStyle.Render(fmt.Sprintf("%d stars · seed %d", len(m.scene.Stars), desc.Seed))
	compass := dimStyle.Render(fmt.Sprintf("Az:%.0f° El:%.0f°", normalizeDeg360(m.camAz), m.camEl))

	header := fmt.Sprintf("%s | %s | %s | %s", title, host, stars, compass)
	if m.snapshot.Loading {
		spinner := spinnerFrames[m.animTick%len(spinnerFrames)]
		header += " | " + accentStyle.Render(spinner+" Loading sky...")
	}
	return header
}

func (m StarMapModel) renderStatus() string {
	desc := m.scene.Planet
	if m.showInfo {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Italic(true)
		return style.Render(truncate(desc.Description, m.width))
	}

	sun := desc.SunPosition()
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(colorSun))
	return style.Render(fmt.Sprintf("☉ Sol: RA %.1f° Dec %+.1f° · %s away",
		sun.RAdeg, sun.DecDeg, formatDistance(sun.DistPc)))
}

// markerPos tracks a labelled object's screen position.
type markerPos struct {
	x, y  int
	name  string
	color lipgloss.Color
}

func (m StarMapModel) renderSkyCanvas(width, height int) string {
	// Sky background carries the atmosphere tint
	bg := lipgloss.Color(m.scene.Planet.AtmosphereColor.Blend(0x000000, planet.AtmosphereOpacity).Hex())

	canvas := make([][]rune, height)
	colors := make([][]lipgloss.Color, height)
	for y := 0; y < height; y++ {
		canvas[y] = make([]rune, width)
		colors[y] = make([]lipgloss.Color, width)
		for x := 0; x < width; x++ {
			canvas[y][x] = ' '
			colors[y][x] = colorStarDim
		}
	}

	set := func(x, y int, r rune, c lipgloss.Color) {
		if x >= 0 && x < width && y >= 0 && y < height {
			canvas[y][x] = r
			colors[y][x] = c
		}
	}

	frame := m.snapshot.Frame

	for i := range m.scene.Stars {
		az, el := skyAngles(m.scene.StarDirection(i, frame))
		x, y, visible := m.projectToScreen(az, el, width, height)
		if !visible {
			continue
		}
		glyph, color := starGlyph(i)
		set(x, y, glyph, color)
	}

	var markers []markerPos

	// Sol
	az, el := skyAngles(m.scene.SunDirection(frame))
	if x, y, visible := m.projectToScreen(az, el, width, height); visible {
		set(x, y, glyphSun, colorSun)
		markers = append(markers, markerPos{x: x, y: y, name: "Sol", color: colorSun})
	}

	// Decorative bodies
	for _, body := range m.scene.Bodies {
		dist := body.Position.Norm()
		if dist == 0 {
			continue
		}
		az, el := skyAngles(body.Position)
		x, y, visible := m.projectToScreen(az, el, width, height)
		if !visible {
			continue
		}

		color := lipgloss.Color(body.Color.Hex())
		angRadius := math.Atan(body.Radius/dist) * 180 / math.Pi
		rx := angRadius / fovAz * float64(width)
		ry := angRadius / fovEl * float64(height)
		if rx < 1 || ry < 1 {
			set(x, y, glyphBody, color)
		} else {
			for dy := -int(ry); dy <= int(ry); dy++ {
				for dx := -int(rx); dx <= int(rx); dx++ {
					nx, ny := float64(dx)/rx, float64(dy)/ry
					if nx*nx+ny*ny <= 1 {
						set(x+dx, y+dy, '█', color)
					}
				}
			}
		}
		markers = append(markers, markerPos{x: x + int(rx) + 1, y: y, name: body.Name, color: colorLabel})
	}

	if m.labels {
		for _, mk := range markers {
			for i, r := range []rune(" " + mk.name) {
				set(mk.x+i, mk.y, r, mk.color)
			}
		}
	}

	// Reticle at view center
	cx, cy := width/2, height/2
	if canvas[cy][cx] == ' ' {
		set(cx, cy, '+', colorReticle)
	}

	// Render canvas to string
	var b strings.Builder
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			style := lipgloss.NewStyle().Foreground(colors[y][x]).Background(bg)
			b.WriteString(style.Render(string(canvas[y][x])))
		}
		if y < height-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

// starGlyph returns a star's glyph and color. Brightness classes are fixed
// per star index so the pattern stays stable between frames.
func starGlyph(i int) (rune, lipgloss.Color) {
	switch {
	case i%53 == 0:
		return glyphStarBright, colorStarBright
	case i%7 == 0:
		return glyphStarMedium, colorStarMedium
	default:
		return glyphStarDim, colorStarDim
	}
}

// skyAngles returns the azimuth and elevation of a scene direction in
// degrees. Elevation is measured from the XZ plane towards +Y; azimuth is
// zero along -Z and grows towards +X.
func skyAngles(v r3.Vector) (az, el float64) {
	if v.Norm() == 0 {
		return 0, 0
	}
	ll := s2.LatLngFromPoint(s2.PointFromCoords(-v.Z, v.X, v.Y))
	return ll.Lng.Degrees(), ll.Lat.Degrees()
}

// projectToScreen converts az/el to screen coordinates relative to camera
func (m StarMapModel) projectToScreen(az, el float64, width, height int) (int, int, bool) {
	dAz := normalizeAngle(az - m.camAz)
	dEl := el - m.camEl

	if dAz < -fovAz/2 || dAz >= fovAz/2 {
		return 0, 0, false
	}
	if dEl <= -fovEl/2 || dEl > fovEl/2 {
		return 0, 0, false
	}

	// X: -fovAz/2..+fovAz/2 -> 0..width
	// Y: +fovEl/2..-fovEl/2 -> 0..height (higher el = higher on screen)
	x := int((dAz + fovAz/2) / fovAz * float64(width))
	y := int((fovEl/2 - dEl) / fovEl * float64(height))

	return x, y, true
}

// normalizeAngle wraps angle to -180..+180 range
func normalizeAngle(a float64) float64 {
	for a > 180 {
		a -= 360
	}
	for a < -180 {
		a += 360
	}
	return a
}

// normalizeDeg360 wraps angle to 0..360 for display.
func normalizeDeg360(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	return a
}

// lerpAngle interpolates between angles, taking shortest path
func lerpAngle(a, b, t float64) float64 {
	diff := normalizeAngle(b - a)
	return a + diff*t
}

// lerp linear interpolation
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
