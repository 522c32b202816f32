package ui

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-celestial/internal/catalog"
	"github.com/litescript/ls-celestial/internal/sky"
	"github.com/litescript/ls-celestial/internal/state"
)

const (
	// Field of view in degrees
	fovAz = 120.0 // horizontal FOV
	fovEl = 60.0  // vertical FOV

	// Animation
	animDuration  = 400 * time.Millisecond
	animFrameRate = 30 * time.Millisecond

	// Object glyphs
	glyphMessier = '✦'
	glyphStar    = '✶'
	glyphFocused = '◆'

	// Object colors
	colorMessier = "#d0c8ff"
	colorStar    = "255"
	colorFocused = "229" // bright gold
)

// LabelMode controls how object labels are displayed.
type LabelMode int

const (
	LabelNone    LabelMode = iota // No labels
	LabelFocused                  // Only focused object
	LabelAll                      // All objects
)

// skyFilters lists the catalog filters cycled by the c key; nil shows all.
var skyFilters = []*catalog.Kind{nil, kindPtr(catalog.KindMessier), kindPtr(catalog.KindStar)}

func kindPtr(k catalog.Kind) *catalog.Kind { return &k }

// SkyViewModel renders the visible half of the sky with catalog objects
// projected around a camera that follows the focused object.
type SkyViewModel struct {
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

	// Objects above the horizon, west to east by azimuth
	focusIdx int
	focusKey string
	objects  []sky.Position

	filterIdx int
	labelMode LabelMode
	site      string
}

// NewSkyViewModel creates a new sky view model.
func NewSkyViewModel() SkyViewModel {
	return SkyViewModel{
		camAz:     180,
		camEl:     45,
		labelMode: LabelFocused,
	}
}

// SetSize updates the viewport size.
func (m SkyViewModel) SetSize(width, height int) SkyViewModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData updates with new data snapshot. Focus stays on the same object
// while it remains above the horizon.
func (m SkyViewModel) UpdateData(snapshot state.Snapshot) SkyViewModel {
	m.site = snapshot.Sky.Observer.Name
	m.objects = m.visibleObjects(snapshot.Sky)

	m.focusIdx = 0
	for i, p := range m.objects {
		if p.Key() == m.focusKey {
			m.focusIdx = i
			break
		}
	}
	if len(m.objects) > 0 {
		m.focusKey = m.objects[m.focusIdx].Key()
	}

	// If not animating, snap camera to focused object
	if !m.animating && len(m.objects) > 0 {
		p := m.objects[m.focusIdx]
		m.camAz = p.Azimuth
		m.camEl = clampCamEl(p.Altitude)
	}

	return m
}

// Focus moves the focus to the object with key, if it is visible.
func (m SkyViewModel) Focus(key string) SkyViewModel {
	for i, p := range m.objects {
		if p.Key() == key {
			m.focusIdx = i
			m.focusKey = key
			m.camAz = p.Azimuth
			m.camEl = clampCamEl(p.Altitude)
			break
		}
	}
	return m
}

// Focused returns the focused object, if any.
func (m SkyViewModel) Focused() (sky.Position, bool) {
	if m.focusIdx < 0 || m.focusIdx >= len(m.objects) {
		return sky.Position{}, false
	}
	return m.objects[m.focusIdx], true
}

func (m SkyViewModel) visibleObjects(snap sky.Snapshot) []sky.Position {
	filter := skyFilters[m.filterIdx]
	var out []sky.Position
	for _, p := range snap.Positions {
		if !p.AboveHorizon() {
			continue
		}
		if filter != nil && p.Kind != *filter {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Azimuth < out[j].Azimuth })
	return out
}

// animTickMsg is sent during animation
type animTickMsg time.Time

func animTick() tea.Cmd {
	return tea.Tick(animFrameRate, func(t time.Time) tea.Msg {
		return animTickMsg(t)
	})
}

// Update handles messages.
func (m SkyViewModel) Update(msg tea.Msg) (SkyViewModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			return m.focusPrev()
		case "down", "j":
			return m.focusNext()
		case "l":
			m = m.cycleLabelMode()
		case "c":
			m = m.cycleFilter()
		case "enter":
			if p, ok := m.Focused(); ok {
				key := p.Key()
				return m, func() tea.Msg { return OpenDetailMsg{Key: key} }
			}
		}

	case animTickMsg:
		if m.animating {
			return m.updateAnimation()
		}
	}

	return m, nil
}

func (m SkyViewModel) cycleLabelMode() SkyViewModel {
	m.labelMode = (m.labelMode + 1) % 3
	return m
}

// cycleFilter switches the catalog filter. The new object list is built on
// the next data update.
func (m SkyViewModel) cycleFilter() SkyViewModel {
	m.filterIdx = (m.filterIdx + 1) % len(skyFilters)
	filter := skyFilters[m.filterIdx]
	if filter == nil {
		return m
	}
	kept := m.objects[:0:0]
	for _, p := range m.objects {
		if p.Kind == *filter {
			kept = append(kept, p)
		}
	}
	m.objects = kept
	if m.focusIdx >= len(m.objects) {
		m.focusIdx = 0
	}
	return m
}

func (m SkyViewModel) focusNext() (SkyViewModel, tea.Cmd) {
	if len(m.objects) == 0 {
		return m, nil
	}
	m.focusIdx = (m.focusIdx + 1) % len(m.objects)
	return m.startAnimation()
}

func (m SkyViewModel) focusPrev() (SkyViewModel, tea.Cmd) {
	if len(m.objects) == 0 {
		return m, nil
	}
	m.focusIdx--
	if m.focusIdx < 0 {
		m.focusIdx = len(m.objects) - 1
	}
	return m.startAnimation()
}

func (m SkyViewModel) startAnimation() (SkyViewModel, tea.Cmd) {
	if len(m.objects) == 0 || m.focusIdx >= len(m.objects) {
		return m, nil
	}

	p := m.objects[m.focusIdx]
	m.focusKey = p.Key()
	m.animating = true
	m.animStartAz = m.camAz
	m.animStartEl = m.camEl
	m.animTargAz = p.Azimuth
	m.animTargEl = clampCamEl(p.Altitude)
	m.animStart = time.Now()

	return m, animTick()
}

func (m SkyViewModel) updateAnimation() (SkyViewModel, tea.Cmd) {
	elapsed := time.Since(m.animStart)
	t := float64(elapsed) / float64(animDuration)

	if t >= 1.0 {
		m.animating = false
		m.camAz = m.animTargAz
		m.camEl = m.animTargEl
		return m, nil
	}

	// Ease-out cubic
	t = 1 - math.Pow(1-t, 3)

	m.camAz = lerpAngle(m.animStartAz, m.animTargAz, t)
	m.camEl = lerp(m.animStartEl, m.animTargEl, t)

	return m, animTick()
}

// View renders the sky view.
func (m SkyViewModel) View() string {
	if m.width < 20 || m.height < 10 {
		return "Sky view requires larger terminal"
	}

	// Reserve lines for header and status
	viewHeight := m.height - 4
	viewWidth := m.width

	canvas := m.renderSkyCanvas(viewWidth, viewHeight)

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(canvas)
	b.WriteString("\n")
	b.WriteString(m.renderStatus())

	return b.String()
}

func (m SkyViewModel) renderHeader() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("135")) // violet
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))               // muted purple
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(colorMessier))    // soft purple

	title := titleStyle.Render("Sky View")
	if m.site != "" {
		title += dimStyle.Render(" · " + m.site)
	}

	filterStr := dimStyle.Render("All catalogs")
	if f := skyFilters[m.filterIdx]; f != nil {
		filterStr = accentStyle.Render(f.Title())
	}

	var labelStr string
	switch m.labelMode {
	case LabelNone:
		labelStr = dimStyle.Render("Labels: off")
	case LabelFocused:
		labelStr = accentStyle.Render("Labels: focus")
	case LabelAll:
		labelStr = accentStyle.Render("Labels: all")
	}

	compass := dimStyle.Render(fmt.Sprintf("Az:%.0f° Alt:%.0f°", m.camAz, m.camEl))

	return fmt.Sprintf("%s | %s | %s | %s", title, filterStr, labelStr, compass)
}

func (m SkyViewModel) renderStatus() string {
	p, ok := m.Focused()
	if !ok {
		return "No objects above the horizon"
	}

	line := fmt.Sprintf(">>> %s | Az:%s Alt:%s | HA %s | Dec %s | %s",
		p.Name,
		sky.AzimuthColumn(p.Azimuth),
		sky.AltitudeColumn(p.Altitude),
		p.HourAngleText,
		p.DecText,
		p.Band,
	)

	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(colorFocused))
	status := accentStyle.Render(line)

	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(colorMessier))
	status += "\n" + dimStyle.Render(fmt.Sprintf("    %s · %d of %d visible objects", p.Kind.Title(), m.focusIdx+1, len(m.objects)))

	return status
}

// cell is one character of the sky canvas.
type cell struct {
	r     rune
	color lipgloss.Color
}

// skyCanvas is a character grid whose bottom two rows hold the horizon line
// and the observer marker.
type skyCanvas struct {
	width, height int
	cells         [][]cell
}

func newSkyCanvas(width, height int) *skyCanvas {
	c := &skyCanvas{width: width, height: height, cells: make([][]cell, height)}
	for y := range c.cells {
		c.cells[y] = make([]cell, width)
		for x := range c.cells[y] {
			c.cells[y][x] = cell{' ', "236"}
		}
	}
	return c
}

func (c *skyCanvas) horizonY() int { return c.height - 2 }

func (c *skyCanvas) set(x, y int, r rune, color lipgloss.Color) bool {
	if x < 0 || x >= c.width || y < 0 || y >= c.height {
		return false
	}
	c.cells[y][x] = cell{r, color}
	return true
}

func (c *skyCanvas) blank(x, y int) bool {
	if x < 0 || x >= c.width || y < 0 || y >= c.height {
		return false
	}
	r := c.cells[y][x].r
	return r == ' ' || r == '·'
}

// String renders the canvas, styling runs of equal colour together.
func (c *skyCanvas) String() string {
	var b strings.Builder
	for y, row := range c.cells {
		for x := 0; x < len(row); {
			end := x
			var run strings.Builder
			for end < len(row) && row[end].color == row[x].color {
				run.WriteRune(row[end].r)
				end++
			}
			b.WriteString(lipgloss.NewStyle().Foreground(row[x].color).Render(run.String()))
			x = end
		}
		if y < len(c.cells)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// skyLabel is a name waiting to be placed next to its glyph.
type skyLabel struct {
	x, y    int
	text    string
	focused bool
}

func (m SkyViewModel) renderSkyCanvas(width, height int) string {
	c := newSkyCanvas(width, height)
	horizonY := c.horizonY()

	// Altitude rings every 30 degrees.
	for _, alt := range []float64{30, 60} {
		if _, y, ok := m.projectToScreen(m.camAz, alt, width, height); ok && y < horizonY {
			for x := 0; x < width; x += 4 {
				c.set(x, y, '·', "238")
			}
		}
	}

	for x := 0; x < width; x++ {
		c.set(x, horizonY, '─', "60")
	}
	for _, card := range []struct {
		label rune
		az    float64
	}{{'N', 0}, {'E', 90}, {'S', 180}, {'W', 270}} {
		if x, _, ok := m.projectToScreen(card.az, m.camEl, width, height); ok {
			c.set(x, horizonY, card.label, "252")
		}
	}

	var labels []skyLabel
	for i, p := range m.objects {
		x, y, ok := m.projectToScreen(p.Azimuth, p.Altitude, width, height)
		if !ok || y >= horizonY {
			continue
		}
		focused := i == m.focusIdx
		glyph, color := objectGlyph(p.Kind)
		if focused {
			glyph, color = glyphFocused, colorFocused
		}
		if !c.set(x, y, glyph, color) {
			continue
		}

		if m.labelMode == LabelAll || (m.labelMode == LabelFocused && focused) {
			labels = append(labels, skyLabel{x: x + 2, y: y, text: p.Name, focused: focused})
		}
	}

	// Focused label goes last so it overwrites anything in its way.
	sort.SliceStable(labels, func(i, j int) bool { return !labels[i].focused && labels[j].focused })
	for _, l := range labels {
		color := lipgloss.Color(colorMessier)
		text := l.text
		if l.focused {
			color = colorFocused
			text = "◄ " + text
		}
		for i, r := range []rune(text) {
			if !l.focused && !c.blank(l.x+i, l.y) {
				break
			}
			c.set(l.x+i, l.y, r, color)
		}
	}

	c.set(width/2, height-1, '▲', "46")

	return c.String()
}

// objectGlyph returns the glyph and color for an object of kind.
func objectGlyph(kind catalog.Kind) (rune, lipgloss.Color) {
	if kind == catalog.KindStar {
		return glyphStar, colorStar
	}
	return glyphMessier, colorMessier
}

// projectToScreen converts az/alt to screen coordinates relative to camera.
func (m SkyViewModel) projectToScreen(az, el float64, width, height int) (int, int, bool) {
	dAz := normalizeAngle(az - m.camAz)
	dEl := el - m.camEl

	if dAz < -fovAz/2 || dAz > fovAz/2 {
		return 0, 0, false
	}
	if dEl < -fovEl/2 || dEl > fovEl/2 {
		return 0, 0, false
	}

	// X: -fovAz/2..+fovAz/2 -> 0..width
	// Y: +fovEl/2..-fovEl/2 -> 0..horizonY (higher altitude = higher on screen)
	horizonY := height - 2

	x := int((dAz + fovAz/2) / fovAz * float64(width))
	y := int((fovEl/2 - dEl) / fovEl * float64(horizonY))

	return x, y, true
}

// clampCamEl keeps the horizon on the bottom edge of the view.
func clampCamEl(el float64) float64 {
	return math.Max(fovEl/2, math.Min(el, 90-fovEl/2))
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

// lerpAngle interpolates between angles, taking shortest path
func lerpAngle(a, b, t float64) float64 {
	diff := normalizeAngle(b - a)
	return a + diff*t
}

// lerp linear interpolation
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
