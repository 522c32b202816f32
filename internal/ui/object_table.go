package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/litescript/ls-celestial/internal/astro"
	"github.com/litescript/ls-celestial/internal/catalog"
	"github.com/litescript/ls-celestial/internal/sky"
	"github.com/litescript/ls-celestial/internal/state"
)

// Styles for the object tables
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)

	selectedRowStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57"))

	// Row styles by altitude band.
	bandHighStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255"))
	bandMiddleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	bandLowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
	bandBelowStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))
)

// Column widths of the object table.
const (
	colName = 16
	colAlt  = 5
	colAz   = 5
	colHA   = 8
	colDec  = 9
)

// OpenDetailMsg requests the detail view for one object.
type OpenDetailMsg struct {
	Key string
}

// ObjectTableModel lists one catalog with live horizontal coordinates.
type ObjectTableModel struct {
	kind      catalog.Kind
	width     int
	height    int
	cursor    int
	positions []sky.Position
	masked    []string
}

// NewObjectTableModel creates a table for one catalog.
func NewObjectTableModel(kind catalog.Kind) ObjectTableModel {
	return ObjectTableModel{kind: kind}
}

// Kind returns the catalog shown by the table.
func (m ObjectTableModel) Kind() catalog.Kind {
	return m.kind
}

// SetSize updates the viewport size.
func (m ObjectTableModel) SetSize(width, height int) ObjectTableModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData updates the model with new data.
func (m ObjectTableModel) UpdateData(snapshot state.Snapshot) ObjectTableModel {
	m.positions = snapshot.Sky.ByKind(m.kind)
	m.masked = snapshot.Masked[m.kind]
	if m.cursor >= len(m.positions) {
		m.cursor = max(len(m.positions)-1, 0)
	}
	return m
}

// Update handles messages.
func (m ObjectTableModel) Update(msg tea.Msg) (ObjectTableModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	n := len(m.positions)
	switch keyMsg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < n-1 {
			m.cursor++
		}
	case "pgup":
		m.cursor = max(m.cursor-m.visibleRows(), 0)
	case "pgdown":
		m.cursor = max(min(m.cursor+m.visibleRows(), n-1), 0)
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		if n > 0 {
			m.cursor = n - 1
		}
	case "enter":
		if p, ok := m.Selected(); ok {
			key := p.Key()
			return m, func() tea.Msg { return OpenDetailMsg{Key: key} }
		}
	}
	return m, nil
}

// Selected returns the position under the cursor, if any.
func (m ObjectTableModel) Selected() (sky.Position, bool) {
	if m.cursor < 0 || m.cursor >= len(m.positions) {
		return sky.Position{}, false
	}
	return m.positions[m.cursor], true
}

// Select moves the cursor to the object with key.
func (m ObjectTableModel) Select(key string) ObjectTableModel {
	for i, p := range m.positions {
		if p.Key() == key {
			m.cursor = i
			break
		}
	}
	return m
}

func (m ObjectTableModel) visibleRows() int {
	// Leave room for the title, column header and footer lines.
	rows := m.height - 6
	if rows < 5 {
		rows = 5
	}
	return rows
}

// View renders the table.
func (m ObjectTableModel) View() string {
	var b strings.Builder

	above := 0
	for _, p := range m.positions {
		if p.AboveHorizon() {
			above++
		}
	}
	b.WriteString(titleStyle.Render(m.kind.Title()))
	b.WriteString(fmt.Sprintf("  %d of %d above the horizon\n", above, len(m.positions)))

	header := fmt.Sprintf("%s %*s %*s  %-*s %-*s %s",
		runewidth.FillRight("Name", colName),
		colAlt, "Alt", colAz, "Az",
		colHA, "HA", colDec, "Dec", "Altitude")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	if len(m.positions) == 0 {
		b.WriteString("  No objects loaded\n")
		return b.String()
	}

	maxRows := m.visibleRows()
	startIdx := 0
	if m.cursor >= maxRows {
		startIdx = m.cursor - maxRows + 1
	}
	endIdx := min(startIdx+maxRows, len(m.positions))

	for i := startIdx; i < endIdx; i++ {
		p := m.positions[i]
		row := " " + formatRow(p)
		if i == m.cursor {
			b.WriteString(selectedRowStyle.Render(row))
		} else {
			b.WriteString(bandStyle(p.Band).Render(row))
		}
		b.WriteString(" ")
		b.WriteString(m.renderAltitudeBar(p.Altitude, 10))
		b.WriteString("\n")
	}

	if len(m.positions) > maxRows {
		b.WriteString(fmt.Sprintf("\n  Showing %d-%d of %d objects", startIdx+1, endIdx, len(m.positions)))
	}
	if len(m.masked) > 0 {
		b.WriteString("\n  ")
		b.WriteString(warnStyle.Render(fmt.Sprintf("%d rows skipped: %s", len(m.masked), strings.Join(m.masked, ", "))))
	}

	return b.String()
}

// formatRow renders the name, altitude, azimuth, hour angle and declination
// columns of one position.
func formatRow(p sky.Position) string {
	return fmt.Sprintf("%s %*s %*s  %-*s %s",
		runewidth.FillRight(runewidth.Truncate(p.Name, colName, "…"), colName),
		colAlt, sky.AltitudeColumn(p.Altitude),
		colAz, sky.AzimuthColumn(p.Azimuth),
		colHA, p.HourAngleText,
		runewidth.FillRight(p.DecText, colDec),
	)
}

// renderAltitudeBar draws the altitude above the horizon on a 0..90 scale.
func (m ObjectTableModel) renderAltitudeBar(alt float64, width int) string {
	filled := 0
	if alt > 0 {
		filled = int(alt / 90 * float64(width))
	}
	if filled > width {
		filled = width
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	color := bandToColor(astro.BandFor(alt))
	return "[" + lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(bar) + "]"
}

// bandStyle returns the row style for an altitude band.
func bandStyle(b astro.AltitudeBand) lipgloss.Style {
	switch b {
	case astro.BandHigh:
		return bandHighStyle
	case astro.BandMiddle:
		return bandMiddleStyle
	case astro.BandLow:
		return bandLowStyle
	default:
		return bandBelowStyle
	}
}
