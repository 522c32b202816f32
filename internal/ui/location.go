package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-celestial/internal/astro"
	"github.com/litescript/ls-celestial/internal/config"
)

// LocationChangedMsg carries a new observer confirmed in the location editor.
type LocationChangedMsg struct {
	Observer astro.Observer
}

// Location editor fields.
const (
	fieldLatitude = iota
	fieldLongitude
	fieldCount
)

// LocationModel edits the observer position. While editing, field text is
// validated on every keystroke and confirming is refused until both fields
// hold valid coordinates.
type LocationModel struct {
	observer astro.Observer
	editing  bool
	focus    int
	fields   [fieldCount]string
	valid    [fieldCount]bool
	status   string
	savedTo  string
}

// NewLocationModel creates a location editor showing obs.
func NewLocationModel(obs astro.Observer) LocationModel {
	m := LocationModel{observer: obs}
	m.resetFields()
	return m
}

// Editing reports whether the editor has focus.
func (m LocationModel) Editing() bool {
	return m.editing
}

// SetObserver updates the displayed observer. Field text being edited is
// left alone.
func (m LocationModel) SetObserver(obs astro.Observer) LocationModel {
	m.observer = obs
	if !m.editing {
		m.resetFields()
	}
	return m
}

// SetStatus sets the message shown below the fields.
func (m LocationModel) SetStatus(msg string) LocationModel {
	m.status = msg
	return m
}

func (m *LocationModel) resetFields() {
	m.fields[fieldLatitude] = fmt.Sprintf("%+f", m.observer.LatDeg)
	m.fields[fieldLongitude] = fmt.Sprintf("%+f", m.observer.LonDeg)
	m.validate()
}

// validate checks both fields and sets the status line.
func (m *LocationModel) validate() {
	lat, err := config.ParseCoordinateField(m.fields[fieldLatitude])
	m.valid[fieldLatitude] = err == nil && config.ValidateLatitude(lat) == nil
	lon, err := config.ParseCoordinateField(m.fields[fieldLongitude])
	m.valid[fieldLongitude] = err == nil && config.ValidateLongitude(lon) == nil

	if m.valid[fieldLatitude] && m.valid[fieldLongitude] {
		m.status = ""
	} else {
		m.status = "Invalid value"
	}
}

// Update handles messages.
func (m LocationModel) Update(msg tea.Msg) (LocationModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if !m.editing {
		switch keyMsg.String() {
		case "e", "enter":
			m.editing = true
			m.focus = fieldLatitude
			m.resetFields()
		}
		return m, nil
	}

	switch keyMsg.Type {
	case tea.KeyEsc:
		m.editing = false
		m.resetFields()
		m.status = "Cancelled"
	case tea.KeyTab, tea.KeyDown, tea.KeyUp, tea.KeyShiftTab:
		m.focus = (m.focus + 1) % fieldCount
	case tea.KeyBackspace:
		f := []rune(m.fields[m.focus])
		if len(f) > 0 {
			m.fields[m.focus] = string(f[:len(f)-1])
		}
		m.validate()
	case tea.KeyCtrlU:
		m.fields[m.focus] = ""
		m.validate()
	case tea.KeyRunes, tea.KeySpace:
		m.fields[m.focus] += string(keyMsg.Runes)
		m.validate()
	case tea.KeyEnter:
		return m.confirm()
	}
	return m, nil
}

// confirm applies the edited coordinates when both are valid.
func (m LocationModel) confirm() (LocationModel, tea.Cmd) {
	m.validate()
	if !m.valid[fieldLatitude] || !m.valid[fieldLongitude] {
		return m, nil
	}
	lat, _ := config.ParseCoordinateField(m.fields[fieldLatitude])
	lon, _ := config.ParseCoordinateField(m.fields[fieldLongitude])

	obs := m.observer
	obs.LatDeg, obs.LonDeg = lat, lon

	m.editing = false
	m.observer = obs
	m.resetFields()
	return m, func() tea.Msg { return LocationChangedMsg{Observer: obs} }
}

// View renders the location editor.
func (m LocationModel) View() string {
	var b strings.Builder

	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Width(12)
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	invalidStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FF8080"))
	focusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))

	b.WriteString(titleStyle.Render("Observation site"))
	if m.observer.Name != "" {
		b.WriteString(dimStyle.Render("  " + m.observer.Name))
	}
	b.WriteString("\n\n")

	labels := [fieldCount]string{"Latitude", "Longitude"}
	placeholders := [fieldCount]string{"+23.4567", "+123.456"}
	for i := 0; i < fieldCount; i++ {
		b.WriteString("  ")
		b.WriteString(labelStyle.Render(labels[i]))

		text := m.fields[i]
		if text == "" {
			text = dimStyle.Render(placeholders[i])
		} else if !m.valid[i] {
			text = invalidStyle.Render(text)
		} else {
			text = valueStyle.Render(text)
		}
		if m.editing && m.focus == i {
			text = focusStyle.Render("›") + " " + text + focusStyle.Render(" ")
		} else {
			text = "  " + text
		}
		b.WriteString(text)
		b.WriteString("\n")
	}

	b.WriteString("\n  ")
	if m.status != "" {
		b.WriteString(warnStyle.Render(m.status))
	}
	b.WriteString("\n\n")

	if m.editing {
		b.WriteString(dimStyle.Render("  enter: apply | tab: next field | backspace/ctrl+u: erase | esc: cancel"))
	} else {
		b.WriteString(dimStyle.Render("  e: edit location"))
	}
	if m.savedTo != "" {
		b.WriteString("\n  ")
		b.WriteString(dimStyle.Render("Saved to " + m.savedTo))
	}

	return b.String()
}

// SetSaved records where the location was last saved.
func (m LocationModel) SetSaved(path string) LocationModel {
	m.savedTo = path
	return m
}
