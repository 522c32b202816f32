package ui

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/litescript/ls-celestial/internal/astro"
	"github.com/litescript/ls-celestial/internal/catalog"
	"github.com/litescript/ls-celestial/internal/config"
	"github.com/litescript/ls-celestial/internal/state"
)

var paris = astro.Observer{LatDeg: 48.8566, LonDeg: 2.3522, Name: "Paris"}

// testNow puts Capella near the zenith and Acrux far below the horizon.
var testNow = time.Date(2024, 1, 15, 22, 0, 0, 0, time.UTC)

const starsTSV = "Magnitude\tName\tBayer\tConst\tDistance\tSpectral\tRA\tDec\n" +
	"0.08\tCapella\tα\tAur\t43\tG3 III\t05h 16m 41.4s\t+45° 59′ 53″\n" +
	"−1.46\tSirius\tα\tCMa\t8.6\tA0mA1 Va\t06h 45m 08.9s\t−16° 42′ 58″\n" +
	"0.76\tAcrux\tα\tCru\t320\tB0.5 IV\t12h 26m 35.9s\t−63° 05′ 57″\n" +
	"1.98\tBroken\tα\tUMi\t430\tF7 Ib\tnowhere\tnever\n"

func newTestManager(t *testing.T) *state.Manager {
	t.Helper()
	cfg := state.DefaultConfig()
	cfg.Observer = paris
	m := state.NewManager(cfg)

	stars, err := catalog.LoadStars(strings.NewReader(starsTSV))
	if err != nil {
		t.Fatal(err)
	}
	messier, err := catalog.Default(catalog.KindMessier)
	if err != nil {
		t.Fatal(err)
	}
	m.SetCatalog(stars)
	m.SetCatalog(messier)
	return m
}

func testSnapshot(t *testing.T) state.Snapshot {
	t.Helper()
	m := newTestManager(t)
	m.Recompute(testNow)
	return m.Snapshot()
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	um, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return um, cmd
}

// runCmd executes cmd and flattens batches into their messages.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(t *testing.T, opts Options) Model {
	t.Helper()
	if opts.State == nil {
		opts.State = newTestManager(t)
	}
	m := New(opts)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = update(t, m, TickMsg(testNow))
	return m
}

func TestModelTickRecomputes(t *testing.T) {
	m := New(Options{State: newTestManager(t)})
	if got := m.View(); got != "Initializing..." {
		t.Errorf("View before size = %q", got)
	}

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m, cmd := update(t, m, TickMsg(testNow))
	if cmd == nil {
		t.Error("tick should schedule the next tick")
	}
	if !m.snapshot.Sky.ComputedAt.Equal(testNow) {
		t.Fatalf("snapshot at %v, want %v", m.snapshot.Sky.ComputedAt, testNow)
	}

	view := m.View()
	for _, want := range []string{"Latitude", "+48.856600", "+2.352200", "GMST", "LST", "Messier objects", "M1 "} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	next := testNow.Add(time.Second)
	m, _ = update(t, m, TickMsg(next))
	if !m.snapshot.Sky.ComputedAt.Equal(next) {
		t.Errorf("second tick not applied: %v", m.snapshot.Sky.ComputedAt)
	}
}

func TestModelTabs(t *testing.T) {
	m := newTestModel(t, Options{})

	tests := []struct {
		key  string
		want ViewMode
	}{
		{"2", ViewStars},
		{"3", ViewSky},
		{"4", ViewLocation},
		{"1", ViewMessier},
		{"tab", ViewStars},
		{"tab", ViewSky},
		{"tab", ViewLocation},
		{"tab", ViewMessier},
	}
	for _, tt := range tests {
		m, _ = update(t, m, key(tt.key))
		if m.Mode() != tt.want {
			t.Errorf("after %q mode = %d, want %d", tt.key, m.Mode(), tt.want)
		}
	}

	if _, cmd := update(t, m, key("q")); cmd == nil {
		t.Error("q should quit")
	}
}

func TestModelPausedWhileEditing(t *testing.T) {
	m := newTestModel(t, Options{})

	m, _ = update(t, m, key("4"))
	m, _ = update(t, m, key("e"))
	if !m.Paused() {
		t.Fatal("model should pause while the location editor is open")
	}

	m, cmd := update(t, m, TickMsg(testNow.Add(time.Hour)))
	if cmd == nil {
		t.Error("ticks keep being scheduled while paused")
	}
	if !m.snapshot.Sky.ComputedAt.Equal(testNow) {
		t.Errorf("paused tick recomputed at %v", m.snapshot.Sky.ComputedAt)
	}

	// Keys go to the editor, not the tab bar.
	m, _ = update(t, m, key("1"))
	if m.Mode() != ViewLocation {
		t.Errorf("mode = %d while editing, want location", m.Mode())
	}

	m, _ = update(t, m, key("esc"))
	if m.Paused() {
		t.Fatal("esc should close the editor")
	}
	m, _ = update(t, m, TickMsg(testNow.Add(time.Hour)))
	if !m.snapshot.Sky.ComputedAt.Equal(testNow.Add(time.Hour)) {
		t.Error("tick after editing should recompute")
	}
}

func TestModelDetailFlow(t *testing.T) {
	m := newTestModel(t, Options{})
	m, _ = update(t, m, key("2"))

	m, cmd := update(t, m, OpenDetailMsg{Key: "stars/Capella"})
	if m.Mode() != ViewDetail {
		t.Fatalf("mode = %d, want detail", m.Mode())
	}
	msgs := runCmd(cmd)
	if len(msgs) != 1 {
		t.Fatalf("visibility cmd produced %d messages", len(msgs))
	}
	m, _ = update(t, m, msgs[0])

	view := m.View()
	for _, want := range []string{"Capella", "Circumpolar", "sun-sep", "Common name: Capella", "▶ [2] Stars"} {
		if !strings.Contains(view, want) {
			t.Errorf("detail view missing %q", want)
		}
	}

	// Cached: reopening does not recompute.
	if _, cmd := update(t, m, OpenDetailMsg{Key: "stars/Capella"}); cmd != nil {
		t.Error("fresh visibility should come from the cache")
	}

	m, cmd = update(t, m, key("right"))
	if m.detail.Key() != "stars/Sirius" {
		t.Fatalf("right moved to %q", m.detail.Key())
	}
	for _, msg := range runCmd(cmd) {
		m, _ = update(t, m, msg)
	}
	if sel, _ := m.stars.Selected(); sel.Name != "Sirius" {
		t.Errorf("table cursor on %q, want Sirius", sel.Name)
	}

	m, _ = update(t, m, key("esc"))
	if m.Mode() != ViewStars {
		t.Errorf("esc returned to %d, want stars", m.Mode())
	}
}

func TestModelDropsVisibilityFromPreviousLocation(t *testing.T) {
	m := newTestModel(t, Options{})
	m, _ = update(t, m, key("2"))

	m, cmd := update(t, m, OpenDetailMsg{Key: "stars/Capella"})
	stale := runCmd(cmd)
	if len(stale) != 1 {
		t.Fatalf("visibility cmd produced %d messages", len(stale))
	}

	sydney := astro.Observer{LatDeg: -33.8688, LonDeg: 151.2093}
	m, _ = update(t, m, LocationChangedMsg{Observer: sydney})
	m, _ = update(t, m, stale[0])
	if m.detail.visibility != nil {
		t.Error("rise/set data for the previous location should be dropped")
	}
	if strings.Contains(m.View(), "Circumpolar") {
		t.Error("Capella is not circumpolar from Sydney")
	}

	m, cmd = update(t, m, OpenDetailMsg{Key: "stars/Capella"})
	fresh := runCmd(cmd)
	if len(fresh) != 1 {
		t.Fatalf("refresh after location change produced %d messages", len(fresh))
	}
	m, _ = update(t, m, fresh[0])
	if m.detail.visibility == nil {
		t.Error("visibility for the new location should be shown")
	}
}

func TestModelLocationChangeSaves(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := config.Default()
	cfg.Latitude, cfg.Longitude = paris.LatDeg, paris.LonDeg

	mgr := newTestManager(t)
	m := newTestModel(t, Options{State: mgr, Config: cfg, ConfigPath: path})

	sydney := astro.Observer{LatDeg: -33.8688, LonDeg: 151.2093}
	m, cmd := update(t, m, LocationChangedMsg{Observer: sydney})
	if mgr.Observer() != sydney {
		t.Errorf("state observer = %+v", mgr.Observer())
	}
	if m.snapshot.Sky.Observer != sydney {
		t.Errorf("snapshot observer = %+v", m.snapshot.Sky.Observer)
	}

	msgs := runCmd(cmd)
	if len(msgs) != 1 {
		t.Fatalf("save cmd produced %d messages", len(msgs))
	}
	saved, ok := msgs[0].(locationSavedMsg)
	if !ok || saved.err != nil {
		t.Fatalf("save result = %+v", msgs[0])
	}
	m, _ = update(t, m, saved)
	if !strings.Contains(m.statusMsg, path) {
		t.Errorf("status = %q", m.statusMsg)
	}

	loaded := config.Default()
	if err := loaded.MergeFile(path); err != nil {
		t.Fatal(err)
	}
	if loaded.Latitude != sydney.LatDeg || loaded.Longitude != sydney.LonDeg {
		t.Errorf("saved location = %v, %v", loaded.Latitude, loaded.Longitude)
	}
}

func TestModelLocationChangeWithoutConfigPath(t *testing.T) {
	m := newTestModel(t, Options{})
	_, cmd := update(t, m, LocationChangedMsg{Observer: astro.Observer{LatDeg: 10, LonDeg: 20}})
	if cmd != nil {
		t.Error("no config path means nothing to save")
	}
}

func TestGradientColor(t *testing.T) {
	if got := gradientColor(0, 0, 10, 1); got != "#3B82F6" {
		t.Errorf("gradientColor start = %s", got)
	}
	for col := 0; col < 10; col++ {
		c := gradientColor(col, 0, 10, 1)
		if len(c) != 7 || c[0] != '#' {
			t.Errorf("gradientColor(%d) = %q", col, c)
		}
	}
}
