// Package ui provides the terminal user interface using Bubble Tea.
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-celestial/internal/astro"
	"github.com/litescript/ls-celestial/internal/catalog"
	"github.com/litescript/ls-celestial/internal/config"
	"github.com/litescript/ls-celestial/internal/logging"
	"github.com/litescript/ls-celestial/internal/sky"
	"github.com/litescript/ls-celestial/internal/state"
	"github.com/litescript/ls-celestial/internal/version"
)

// ViewMode represents the current UI view.
type ViewMode int

const (
	ViewMessier ViewMode = iota
	ViewStars
	ViewSky
	ViewLocation
	ViewDetail
)

// tabCount is the number of views reachable from the tab bar.
const tabCount = 4

// Msg types for Bubble Tea
type (
	// TickMsg triggers a recompute of the sky.
	TickMsg time.Time

	// visibilityMsg carries rise/set data computed in the background.
	visibilityMsg struct {
		key      string
		observer astro.Observer
		info     *sky.VisibilityInfo
		err      error
	}

	// locationSavedMsg reports the result of writing the config file.
	locationSavedMsg struct {
		path string
		err  error
	}
)

// Options configures the root model.
type Options struct {
	State *state.Manager
	// Config is written back when the location changes and ConfigPath is set.
	Config     config.Config
	ConfigPath string
	Log        *logging.Logger
}

// Model is the root Bubble Tea model.
type Model struct {
	// Dependencies
	state      *state.Manager
	visibility *sky.VisibilityCache
	cfg        config.Config
	configPath string
	log        *logging.Logger

	// UI state
	viewMode  ViewMode
	prevMode  ViewMode // view to return to from the detail view
	width     int
	height    int
	ready     bool
	statusMsg string

	// Sub-models
	messier  ObjectTableModel
	stars    ObjectTableModel
	detail   ObjectDetailModel
	skyView  SkyViewModel
	location LocationModel

	// Data snapshot (updated on every tick)
	snapshot   state.Snapshot
	visPending string
}

// New creates a new root UI model.
func New(opts Options) Model {
	log := opts.Log
	if log == nil {
		log = logging.Discard()
	}
	obs := opts.State.Observer()
	return Model{
		state:      opts.State,
		visibility: sky.NewVisibilityCache(obs, opts.State.TimesOptions()...),
		cfg:        opts.Config,
		configPath: opts.ConfigPath,
		log:        log,
		viewMode:   ViewMessier,
		messier:    NewObjectTableModel(catalog.KindMessier),
		stars:      NewObjectTableModel(catalog.KindStar),
		detail:     NewObjectDetailModel(),
		skyView:    NewSkyViewModel(),
		location:   NewLocationModel(obs),
	}
}

// Init implements tea.Model. The first tick fires immediately.
func (m Model) Init() tea.Cmd {
	return func() tea.Msg { return TickMsg(time.Now()) }
}

// Paused reports whether ticks are currently ignored. The sky is not
// recomputed while the location editor is open.
func (m Model) Paused() bool {
	return m.viewMode == ViewLocation && m.location.Editing()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		// The editor gets every key while it has focus.
		if m.Paused() {
			cmds = append(cmds, m.updateActiveView(msg))
			break
		}

		switch msg.String() {
		case "q":
			return m, tea.Quit

		case "1":
			m.viewMode = ViewMessier
		case "2":
			m.viewMode = ViewStars
		case "3":
			m.viewMode = ViewSky
		case "4":
			m.viewMode = ViewLocation

		case "tab":
			m.viewMode = (m.tab() + 1) % tabCount

		case "esc", "backspace":
			if m.viewMode == ViewDetail {
				m.viewMode = m.prevMode
			}

		default:
			cmds = append(cmds, m.updateActiveView(msg))
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		// Title, site header and tabs take 6 lines, the footer 2.
		contentHeight := msg.Height - 8
		m.messier = m.messier.SetSize(msg.Width, contentHeight)
		m.stars = m.stars.SetSize(msg.Width, contentHeight)
		m.detail = m.detail.SetSize(msg.Width, contentHeight)
		m.skyView = m.skyView.SetSize(msg.Width, contentHeight)

	case TickMsg:
		cmds = append(cmds, m.tickCmd())
		if m.Paused() {
			break
		}
		m.state.Recompute(time.Time(msg))
		m.applySnapshot(m.state.Snapshot())
		cmds = append(cmds, m.refreshVisibility(time.Time(msg)))

	case OpenDetailMsg:
		if m.viewMode != ViewDetail {
			m.prevMode = m.viewMode
		}
		m.viewMode = ViewDetail
		m.detail = m.detail.SetObject(msg.Key)
		cmds = append(cmds, m.refreshVisibility(m.now()))

	case ObjectChangedMsg:
		m.messier = m.messier.Select(msg.Key)
		m.stars = m.stars.Select(msg.Key)
		m.skyView = m.skyView.Focus(msg.Key)
		cmds = append(cmds, m.refreshVisibility(m.now()))

	case visibilityMsg:
		if msg.observer != m.state.Observer() {
			m.log.Debug("dropping visibility for %s from previous location", msg.key)
			break
		}
		if msg.key == m.visPending {
			m.visPending = ""
		}
		if msg.err != nil {
			m.log.Warn("visibility for %s: %v", msg.key, msg.err)
		}
		m.detail = m.detail.SetVisibility(msg.key, msg.info, msg.err)

	case LocationChangedMsg:
		cmds = append(cmds, m.changeLocation(msg.Observer))

	case locationSavedMsg:
		if msg.err != nil {
			m.log.Error("save location: %v", msg.err)
			m.statusMsg = "Save failed: " + msg.err.Error()
			m.location = m.location.SetStatus("Save failed")
		} else {
			m.statusMsg = "Location saved to " + msg.path
			m.location = m.location.SetSaved(msg.path)
		}

	default:
		cmds = append(cmds, m.updateActiveView(msg))
	}

	return m, tea.Batch(cmds...)
}

// tab returns the tab highlighted for the current view.
func (m Model) tab() ViewMode {
	if m.viewMode == ViewDetail {
		return m.prevMode
	}
	return m.viewMode
}

func (m *Model) updateActiveView(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.viewMode {
	case ViewMessier:
		m.messier, cmd = m.messier.Update(msg)
	case ViewStars:
		m.stars, cmd = m.stars.Update(msg)
	case ViewSky:
		m.skyView, cmd = m.skyView.Update(msg)
	case ViewLocation:
		m.location, cmd = m.location.Update(msg)
	case ViewDetail:
		m.detail, cmd = m.detail.Update(msg)
	}
	return cmd
}

// applySnapshot pushes a new snapshot to every sub-model.
func (m *Model) applySnapshot(snap state.Snapshot) {
	m.snapshot = snap
	m.messier = m.messier.UpdateData(snap)
	m.stars = m.stars.UpdateData(snap)
	m.detail = m.detail.UpdateData(snap)
	m.skyView = m.skyView.UpdateData(snap)
	m.location = m.location.SetObserver(snap.Sky.Observer)
}

// now returns the instant of the current snapshot, or the wall clock before
// the first tick.
func (m Model) now() time.Time {
	if m.snapshot.Sky.IsZero() {
		return time.Now()
	}
	return m.snapshot.Sky.ComputedAt
}

// refreshVisibility serves the detail view from the visibility cache and
// starts a background computation when the cached window is stale.
func (m *Model) refreshVisibility(now time.Time) tea.Cmd {
	if m.viewMode != ViewDetail {
		return nil
	}
	key := m.detail.Key()
	if key == "" {
		return nil
	}
	if info := m.visibility.Get(key); info != nil {
		m.detail = m.detail.SetVisibility(key, info, nil)
	}
	if !m.visibility.NeedsRefresh(key, now) || m.visPending == key {
		return nil
	}

	entry, ok := m.findEntry(key)
	if !ok {
		return nil
	}
	m.visPending = key
	m.detail = m.detail.SetLoading(true)

	cache := m.visibility
	obs := m.state.Observer()
	return func() tea.Msg {
		info, err := cache.Update(entry, now)
		return visibilityMsg{key: key, observer: obs, info: info, err: err}
	}
}

func (m Model) findEntry(key string) (catalog.Entry, bool) {
	for _, e := range m.state.AllEntries() {
		if e.Key() == key {
			return e, true
		}
	}
	return catalog.Entry{}, false
}

// changeLocation switches the observer, recomputes at once and saves the
// new position when a config path is known.
func (m *Model) changeLocation(obs astro.Observer) tea.Cmd {
	m.log.Info("observer changed to lat %+f lon %+f", obs.LatDeg, obs.LonDeg)
	m.state.SetObserver(obs)
	m.visibility.SetObserver(obs)
	m.visPending = ""
	m.detail = m.detail.ClearVisibility()

	m.state.Recompute(time.Now())
	m.applySnapshot(m.state.Snapshot())
	m.statusMsg = fmt.Sprintf("Location set to %+f, %+f", obs.LatDeg, obs.LonDeg)

	if m.configPath == "" {
		return nil
	}
	cfg := m.cfg
	cfg.Latitude, cfg.Longitude = obs.LatDeg, obs.LonDeg
	m.cfg = cfg
	path := m.configPath
	return func() tea.Msg {
		return locationSavedMsg{path: path, err: cfg.Save(path)}
	}
}

func (m Model) tickCmd() tea.Cmd {
	interval := config.ClampRefresh(m.state.RefreshInterval())
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var content string
	switch m.viewMode {
	case ViewMessier:
		content = m.messier.View()
	case ViewStars:
		content = m.stars.View()
	case ViewSky:
		content = m.skyView.View()
	case ViewLocation:
		content = m.location.View()
	case ViewDetail:
		content = m.detail.View()
	}

	return m.renderHeader() + "\n" + content + "\n" + m.renderFooter()
}

func (m Model) renderHeader() string {
	return m.renderTitle() + m.renderSiteHeader() + m.renderTabs() + "\n"
}

func (m Model) renderTitle() string {
	title := "✦ ls-celestial"
	runes := []rune(title)

	var b strings.Builder
	b.WriteString("\n  ")
	for col, r := range runes {
		color := gradientColor(col, 0, len(runes), 1)
		b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(color)).Render(string(r)))
	}
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	b.WriteString(muted.Render(fmt.Sprintf("  v%s · Celestial positions", version.Version)))
	b.WriteString("\n")
	return b.String()
}

// renderSiteHeader shows the clock, the observer and sidereal time.
func (m Model) renderSiteHeader() string {
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))

	snap := m.snapshot.Sky
	if snap.IsZero() {
		return "  " + dimStyle.Render("Computing positions...") + "\n\n"
	}

	obs := snap.Observer
	t := snap.Times
	pair := func(label, value string) string {
		return labelStyle.Render(label+" ") + valueStyle.Render(value)
	}

	line1 := "  " + pair("Local", t.Local.Format("15:04:05")) +
		"   " + pair("Latitude ", fmt.Sprintf("%+f", obs.LatDeg))
	line2 := "  " + pair("UTC  ", t.UTC.Format("15:04:05")) +
		"   " + pair("Longitude", fmt.Sprintf("%+f", obs.LonDeg))
	line3 := "  " + pair("GMST", astro.FormatHMS(t.GMST)) +
		"   " + pair("LST", astro.FormatHMS(snap.LST)) +
		"   " + dimStyle.Render(snap.Twilight.String())
	if obs.Name != "" {
		line3 += dimStyle.Render(" · " + obs.Name)
	}
	return line1 + "\n" + line2 + "\n" + line3 + "\n"
}

// gradientColor returns a hex color for a position in the title gradient.
// Blue -> purple -> magenta -> pink, darker toward the bottom.
func gradientColor(col, row, width, height int) string {
	xRatio := float64(col) / float64(width)
	yRatio := float64(row) / float64(height)

	var r, g, b float64
	switch {
	case xRatio < 0.33:
		t := xRatio / 0.33
		r, g, b = 59+t*(139-59), 130+t*(92-130), 246
	case xRatio < 0.66:
		t := (xRatio - 0.33) / 0.33
		r, g, b = 139+t*(217-139), 92+t*(70-92), 246+t*(239-246)
	default:
		t := (xRatio - 0.66) / 0.34
		r, g, b = 217+t*(236-217), 70+t*(72-70), 239+t*(153-239)
	}

	brightness := 1.0 - (yRatio * 0.5)
	clamp := func(v float64) int {
		return max(0, min(255, int(v*brightness)))
	}
	return fmt.Sprintf("#%02X%02X%02X", clamp(r), clamp(g), clamp(b))
}

func (m Model) renderTabs() string {
	tabs := []string{"[1] Messier", "[2] Stars", "[3] Sky", "[4] Location"}
	activeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD")).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))

	var parts []string
	for i, tab := range tabs {
		if ViewMode(i) == m.tab() {
			parts = append(parts, activeStyle.Render("▶ "+tab))
		} else {
			parts = append(parts, dimStyle.Render("  "+tab))
		}
	}
	return "  " + strings.Join(parts, "  ")
}

func (m Model) renderFooter() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#7B2CBF"))

	var status string
	switch {
	case m.Paused():
		status = accentStyle.Render("⏸") + dimStyle.Render(" paused while editing")
	case m.snapshot.Sky.IsZero():
		status = dimStyle.Render("waiting for first tick")
	default:
		status = accentStyle.Render("●") + dimStyle.Render(fmt.Sprintf(" every %s (%s)",
			config.ClampRefresh(m.state.RefreshInterval()), m.snapshot.Sky.Elapsed.Round(time.Microsecond)))
	}
	if n := len(m.snapshot.Events); n > 0 {
		e := m.snapshot.Events[n-1]
		status += dimStyle.Render(fmt.Sprintf(" | %s %s %s", e.Timestamp.In(m.snapshot.Sky.Times.Local.Location()).Format("15:04"), e.Type, e.Object))
	}

	var help string
	switch m.viewMode {
	case ViewDetail:
		help = "←/→: object | ↑↓: scroll | esc: back"
	case ViewSky:
		help = "j/k: focus | l: labels | c: catalog | enter: details"
	case ViewLocation:
		if m.location.Editing() {
			help = "enter: apply | esc: cancel"
		} else {
			help = "e: edit | tab: switch view | q: quit"
		}
	default:
		help = "↑↓: navigate | enter: details | tab: switch view | q: quit"
	}

	footer := "  " + status + "  " + dimStyle.Render("|") + "  " + dimStyle.Render(help)
	if m.statusMsg != "" {
		footer += "\n  " + dimStyle.Render(m.statusMsg)
	}
	return footer
}

// Mode returns the active view.
func (m Model) Mode() ViewMode {
	return m.viewMode
}
