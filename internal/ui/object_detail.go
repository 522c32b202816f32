package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-celestial/internal/astro"
	"github.com/litescript/ls-celestial/internal/sky"
	"github.com/litescript/ls-celestial/internal/state"
)

// ObjectChangedMsg signals the object shown in the detail view changed.
type ObjectChangedMsg struct {
	Key string
}

// ObjectDetailModel shows one object with its live position, details text
// and visibility over the next day.
type ObjectDetailModel struct {
	width    int
	height   int
	key      string
	snapshot state.Snapshot
	scrollY  int

	visibility *sky.VisibilityInfo
	visLoading bool
	visErr     error
}

// NewObjectDetailModel creates a new detail model.
func NewObjectDetailModel() ObjectDetailModel {
	return ObjectDetailModel{}
}

// SetSize updates the viewport size.
func (m ObjectDetailModel) SetSize(width, height int) ObjectDetailModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData updates with new data snapshot.
func (m ObjectDetailModel) UpdateData(snapshot state.Snapshot) ObjectDetailModel {
	m.snapshot = snapshot
	return m
}

// Key returns the key of the object shown.
func (m ObjectDetailModel) Key() string {
	return m.key
}

// SetObject selects the object to show and drops its visibility data.
func (m ObjectDetailModel) SetObject(key string) ObjectDetailModel {
	if key != m.key {
		m.key = key
		m.scrollY = 0
		m.visibility = nil
		m.visErr = nil
		m.visLoading = false
	}
	return m
}

// SetVisibility stores visibility data for key. Data for another object is
// ignored.
func (m ObjectDetailModel) SetVisibility(key string, info *sky.VisibilityInfo, err error) ObjectDetailModel {
	if key != m.key {
		return m
	}
	m.visLoading = false
	m.visErr = err
	if info != nil {
		m.visibility = info
	}
	return m
}

// ClearVisibility drops visibility data computed for a previous location.
func (m ObjectDetailModel) ClearVisibility() ObjectDetailModel {
	m.visibility = nil
	m.visErr = nil
	m.visLoading = false
	return m
}

// SetLoading marks visibility data for the current object as pending.
func (m ObjectDetailModel) SetLoading(loading bool) ObjectDetailModel {
	m.visLoading = loading
	return m
}

// Update handles messages.
func (m ObjectDetailModel) Update(msg tea.Msg) (ObjectDetailModel, tea.Cmd) {
	var cmd tea.Cmd
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "up", "k":
			if m.scrollY > 0 {
				m.scrollY--
			}
		case "down", "j":
			m.scrollY++
		case "left", "[":
			cmd = m.page(-1)
		case "right", "]":
			cmd = m.page(1)
		}
	}
	return m, cmd
}

// page moves to the neighbouring object of the same catalog, wrapping at
// either end.
func (m *ObjectDetailModel) page(delta int) tea.Cmd {
	current, ok := m.snapshot.Sky.Lookup(m.key)
	if !ok {
		return nil
	}
	siblings := m.snapshot.Sky.ByKind(current.Kind)
	if len(siblings) < 2 {
		return nil
	}
	idx := 0
	for i, p := range siblings {
		if p.Key() == m.key {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(siblings)) % len(siblings)

	*m = m.SetObject(siblings[idx].Key())
	newKey := m.key // capture for the closure
	return func() tea.Msg {
		return ObjectChangedMsg{Key: newKey}
	}
}

// View renders the detail view.
func (m ObjectDetailModel) View() string {
	p, ok := m.snapshot.Sky.Lookup(m.key)
	if !ok {
		return "  No object selected. Press enter on a table row.\n"
	}

	lines := strings.Split(m.renderObject(p), "\n")
	if m.scrollY > 0 {
		start := min(m.scrollY, max(len(lines)-1, 0))
		lines = lines[start:]
	}
	return strings.Join(lines, "\n")
}

func (m ObjectDetailModel) renderObject(p sky.Position) string {
	var b strings.Builder

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205"))

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("244")).
		Width(14)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))

	b.WriteString(headerStyle.Render(p.Name))
	b.WriteString(dimStyle.Render("  " + p.Kind.Title() + "  ←/→"))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", lipgloss.Width(p.Name)+4))
	b.WriteString("\n\n")

	field := func(label, value string) {
		b.WriteString(labelStyle.Render(label))
		b.WriteString(valueStyle.Render(value))
		b.WriteString("\n")
	}

	field("Declination:", p.DecText)
	field("Hour angle:", p.HourAngleText)
	field("Altitude:", sky.AltitudeColumn(p.Altitude))
	field("Azimuth:", sky.AzimuthColumn(p.Azimuth))
	field("RA:", astro.FormatHMS(p.Equatorial.RA))
	b.WriteString(labelStyle.Render("Band:"))
	b.WriteString(RenderCurrentAltitude(p.Altitude))
	b.WriteString("\n")

	// Visibility
	b.WriteString("\n")
	b.WriteString(headerStyle.Render("Visibility"))
	b.WriteString("\n")
	b.WriteString(m.renderVisibility())
	b.WriteString("\n")

	if p.Details != "" {
		b.WriteString("\n")
		b.WriteString(headerStyle.Render("Details"))
		b.WriteString("\n")
		b.WriteString(valueStyle.Render(strings.TrimRight(p.Details, "\n")))
		b.WriteString("\n")
	}

	return b.String()
}

func (m ObjectDetailModel) renderVisibility() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	if m.visErr != nil {
		return dimStyle.Render("Error: " + m.visErr.Error())
	}
	if m.visibility == nil {
		if m.visLoading {
			return dimStyle.Render("Computing rise and set...")
		}
		return dimStyle.Render("No visibility data")
	}

	loc := m.snapshot.Sky.Times.Local.Location()
	var b strings.Builder
	b.WriteString(RenderVisibilityPanel(m.visibility, loc))
	if next := nextCrossing(m.visibility.Window, m.snapshot.Sky.ComputedAt); next != "" {
		b.WriteString(dimStyle.Render("  " + next))
	}
	b.WriteString("\n")
	b.WriteString(RenderSunSeparation(m.visibility))
	b.WriteString("\n")
	b.WriteString(m.renderAltitudeSparkline())
	return b.String()
}

// SparklineWidth is the fixed width of the altitude sparkline.
const SparklineWidth = 48

// sparklineBlocks are the Unicode block characters for sparkline (0 = lowest, 7 = highest).
var sparklineBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// altColorLow is the color for low altitude (dark blue).
var altColorLow = [3]uint8{0x1b, 0x2b, 0x4b}

// altColorMid is the color for mid altitude (blue).
var altColorMid = [3]uint8{0x34, 0x78, 0xc0}

// altColorHigh is the color for high altitude (cyan).
var altColorHigh = [3]uint8{0x8b, 0xe9, 0xff}

// renderAltitudeSparkline renders the ±12h altitude trace. Cells below the
// horizon are drawn as a dim baseline.
func (m ObjectDetailModel) renderAltitudeSparkline() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	if m.visibility == nil || len(m.visibility.Trace) == 0 {
		return dimStyle.Render("No altitude trace")
	}

	samples := resampleAltitude(m.visibility.Trace, SparklineWidth)
	if len(samples) == 0 {
		return dimStyle.Render("No altitude trace")
	}

	var sb strings.Builder
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	sb.WriteString(labelStyle.Render("±12h "))

	for _, alt := range samples {
		if alt <= 0 {
			sb.WriteString(dimStyle.Render("_"))
			continue
		}
		if alt > 90 {
			alt = 90
		}

		t := alt / 90.0
		blockIdx := int(t * 7.0)
		if blockIdx > 7 {
			blockIdx = 7
		}

		r, g, b := interpolateAltColor(t)
		color := fmt.Sprintf("#%02x%02x%02x", r, g, b)
		sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(string(sparklineBlocks[blockIdx])))
	}

	nowStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	sb.WriteString(nowStyle.Render(fmt.Sprintf(" now: %+.0f°", m.visibility.CurrentAlt)))

	return sb.String()
}

// interpolateAltColor returns RGB color for altitude value t in [0, 1].
// Gradient: low (dark blue) → mid (blue) → high (cyan).
func interpolateAltColor(t float64) (uint8, uint8, uint8) {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}

	from, to, s := altColorLow, altColorMid, t*2
	if t >= 0.5 {
		from, to, s = altColorMid, altColorHigh, (t-0.5)*2
	}
	mix := func(i int) uint8 {
		return uint8(float64(from[i])*(1-s) + float64(to[i])*s)
	}
	return mix(0), mix(1), mix(2)
}

// resampleAltitude resamples altitude samples to a fixed number of buckets.
func resampleAltitude(samples []astro.AltitudeSample, width int) []float64 {
	if len(samples) == 0 || width <= 0 {
		return nil
	}

	result := make([]float64, width)
	samplesPerBucket := float64(len(samples)) / float64(width)

	for i := 0; i < width; i++ {
		startIdx := int(float64(i) * samplesPerBucket)
		endIdx := int(float64(i+1) * samplesPerBucket)
		if endIdx <= startIdx {
			endIdx = startIdx + 1
		}
		if endIdx > len(samples) {
			endIdx = len(samples)
		}

		sum := 0.0
		count := 0
		for j := startIdx; j < endIdx; j++ {
			sum += samples[j].Altitude
			count++
		}
		if count > 0 {
			result[i] = sum / float64(count)
		}
	}

	return result
}

// nextCrossing describes the next horizon crossing after now, e.g.
// "rises in 1h 05m".
func nextCrossing(vw astro.VisibilityWindow, now time.Time) string {
	rise := !vw.Rise.IsZero() && vw.Rise.After(now)
	set := !vw.Set.IsZero() && vw.Set.After(now)
	switch {
	case rise && (!set || vw.Rise.Before(vw.Set)):
		return "rises in " + formatDuration(vw.Rise.Sub(now))
	case set:
		return "sets in " + formatDuration(vw.Set.Sub(now))
	default:
		return ""
	}
}

// formatDuration renders a duration as "1h 05m" or "42s".
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	switch {
	case d >= time.Hour:
		return fmt.Sprintf("%dh %02dm", int(d.Hours()), int(d.Minutes())%60)
	case d >= time.Minute:
		return fmt.Sprintf("%dm %02ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
}
