package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/litescript/ls-celestial/internal/astro"
	"github.com/litescript/ls-celestial/internal/sky"
)

func TestObjectDetailNoSelection(t *testing.T) {
	m := NewObjectDetailModel().UpdateData(testSnapshot(t))
	if got := m.View(); !strings.Contains(got, "No object selected") {
		t.Errorf("View() = %q", got)
	}
}

func TestObjectDetailPaging(t *testing.T) {
	m := NewObjectDetailModel().UpdateData(testSnapshot(t)).SetObject("stars/Capella")

	tests := []struct {
		key  string
		want string
	}{
		{"right", "stars/Sirius"},
		{"]", "stars/Acrux"},
		{"left", "stars/Sirius"},
		{"[", "stars/Capella"},
		{"left", "stars/Broken"}, // wraps to the end
		{"right", "stars/Capella"},
	}
	for _, tt := range tests {
		next, c := m.Update(key(tt.key))
		if next.Key() != tt.want {
			t.Fatalf("after %q key = %q, want %q", tt.key, next.Key(), tt.want)
		}
		if c == nil {
			t.Fatalf("paging with %q returned no command", tt.key)
		}
		if msg, ok := c().(ObjectChangedMsg); !ok || msg.Key != tt.want {
			t.Errorf("paging with %q produced %+v", tt.key, msg)
		}
		m = next
	}
}

func TestObjectDetailPagingUnknownKey(t *testing.T) {
	m := NewObjectDetailModel().UpdateData(testSnapshot(t)).SetObject("stars/Vega")
	if _, cmd := m.Update(key("right")); cmd != nil {
		t.Error("paging from an unknown object should do nothing")
	}
}

func TestObjectDetailVisibilityState(t *testing.T) {
	m := NewObjectDetailModel().UpdateData(testSnapshot(t)).SetObject("stars/Capella")
	if !strings.Contains(m.View(), "No visibility data") {
		t.Error("expected empty visibility section")
	}

	m = m.SetLoading(true)
	if !strings.Contains(m.View(), "Computing rise and set") {
		t.Error("expected loading visibility section")
	}

	// Results for another object are dropped.
	other := &sky.VisibilityInfo{Key: "stars/Sirius"}
	m = m.SetVisibility("stars/Sirius", other, nil)
	if m.visibility != nil {
		t.Fatal("visibility for another key should be ignored")
	}

	m = m.SetVisibility("stars/Capella", nil, errors.New("boom"))
	if !strings.Contains(m.View(), "Error: boom") {
		t.Error("expected visibility error in view")
	}

	// Selecting another object clears the state.
	m = m.SetObject("stars/Sirius")
	if m.visErr != nil || m.visLoading {
		t.Error("SetObject should reset visibility state")
	}
}

func TestObjectDetailView(t *testing.T) {
	mgr := newTestManager(t)
	mgr.Recompute(testNow)
	m := NewObjectDetailModel().SetSize(100, 40).UpdateData(mgr.Snapshot()).SetObject("stars/Sirius")

	entry, ok := mgr.Find("Sirius")
	if !ok {
		t.Fatal("Sirius not found")
	}
	info, err := sky.NewVisibilityCache(paris).Update(entry, testNow)
	if err != nil {
		t.Fatal(err)
	}
	m = m.SetVisibility("stars/Sirius", info, nil)

	view := m.View()
	for _, want := range []string{"Sirius", "Declination:", "Hour angle:", "Altitude:", "Azimuth:", "Rise", "Set", "±12h", "now:", "Spectral: A0mA1 Va"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q\n%s", want, view)
		}
	}
}

func TestResampleAltitude(t *testing.T) {
	start := testNow
	var samples []astro.AltitudeSample
	for i := 0; i < 10; i++ {
		samples = append(samples, astro.AltitudeSample{Time: start.Add(time.Duration(i) * time.Minute), Altitude: float64(i)})
	}

	got := resampleAltitude(samples, 5)
	want := []float64{0.5, 2.5, 4.5, 6.5, 8.5}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("bucket %d = %v, want %v", i, got[i], want[i])
		}
	}

	// Upsampling repeats samples.
	up := resampleAltitude(samples[:2], 4)
	if want := []float64{0, 0, 1, 1}; len(up) != 4 || up[0] != want[0] || up[1] != want[1] || up[2] != want[2] || up[3] != want[3] {
		t.Errorf("upsampled = %v, want %v", up, want)
	}

	if resampleAltitude(nil, 5) != nil {
		t.Error("empty input should give nil")
	}
}

func TestInterpolateAltColor(t *testing.T) {
	tests := []struct {
		t    float64
		want [3]uint8
	}{
		{-1, altColorLow},
		{0, altColorLow},
		{0.5, altColorMid},
		{1, altColorHigh},
		{2, altColorHigh},
	}
	for _, tt := range tests {
		r, g, b := interpolateAltColor(tt.t)
		if [3]uint8{r, g, b} != tt.want {
			t.Errorf("interpolateAltColor(%v) = %v, want %v", tt.t, [3]uint8{r, g, b}, tt.want)
		}
	}
}

func TestNextCrossing(t *testing.T) {
	now := testNow
	tests := []struct {
		name string
		vw   astro.VisibilityWindow
		want string
	}{
		{"rise first", astro.VisibilityWindow{Rise: now.Add(65 * time.Minute), Set: now.Add(10 * time.Hour)}, "rises in 1h 05m"},
		{"set first", astro.VisibilityWindow{Rise: now.Add(10 * time.Hour), Set: now.Add(242 * time.Second)}, "sets in 4m 02s"},
		{"past events", astro.VisibilityWindow{Rise: now.Add(-time.Hour), Set: now.Add(-time.Minute)}, ""},
		{"circumpolar", astro.VisibilityWindow{AlwaysVisible: true}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nextCrossing(tt.vw, now); got != tt.want {
				t.Errorf("nextCrossing() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{42 * time.Second, "42s"},
		{4*time.Minute + 2*time.Second, "4m 02s"},
		{time.Hour + 5*time.Minute, "1h 05m"},
		{-90 * time.Second, "1m 30s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
