package sky

import (
	"math"
	"testing"
	"time"

	"github.com/litescript/ls-celestial/internal/astro"
)

func TestComputeVisibility(t *testing.T) {
	sirius := star("Sirius", "06h 45m 08.9s", "−16° 42′ 58″")
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

	info, err := ComputeVisibility(sirius, paris, now)
	if err != nil {
		t.Fatalf("ComputeVisibility() error = %v", err)
	}

	if info.Key != sirius.Key() {
		t.Errorf("Key = %q, want %q", info.Key, sirius.Key())
	}
	if !info.Window.Valid || info.Window.AlwaysVisible || info.Window.NeverVisible {
		t.Fatalf("Window = %+v, want a rise/set cycle", info.Window)
	}

	// Sirius rises around 18:18 UTC.
	wantRise := time.Date(2024, 1, 15, 18, 18, 0, 0, time.UTC)
	if d := info.Window.Rise.Sub(wantRise); d < -10*time.Minute || d > 10*time.Minute {
		t.Errorf("Rise = %v, want about %v", info.Window.Rise, wantRise)
	}
	// Culmination altitude is 90 − (lat − dec).
	wantMax := 90 - (paris.LatDeg + 16.716)
	if math.Abs(info.Window.MaxAltitude-wantMax) > 0.5 {
		t.Errorf("MaxAltitude = %.2f, want about %.2f", info.Window.MaxAltitude, wantMax)
	}

	wantSamples := int(2*TraceSpan/VisibilitySampleStep) + 1
	if len(info.Trace) != wantSamples {
		t.Errorf("trace samples = %d, want %d", len(info.Trace), wantSamples)
	}
	if !info.Trace[0].Time.Equal(now.Add(-TraceSpan)) {
		t.Errorf("trace starts at %v", info.Trace[0].Time)
	}

	hz := astro.EquatorialToHorizontal(sirius.Position, paris, now)
	if info.CurrentAlt != hz.Altitude {
		t.Errorf("CurrentAlt = %v, want %v", info.CurrentAlt, hz.Altitude)
	}
	if info.SunSep <= 0 || info.SunSep > 180 {
		t.Errorf("SunSep = %v", info.SunSep)
	}
}

func TestVisibilityCache(t *testing.T) {
	vega := star("Vega", "18h 36m 56.3s", "+38° 47′ 01″")
	now := time.Date(2024, 6, 21, 22, 0, 0, 0, time.UTC)
	vc := NewVisibilityCache(paris)

	if got := vc.Get(vega.Key()); got != nil {
		t.Fatal("empty cache should return nil")
	}
	if !vc.NeedsRefresh(vega.Key(), now) {
		t.Error("missing entry should need refresh")
	}

	info, err := vc.Update(vega, now)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if !info.Window.Valid {
		t.Errorf("Window = %+v", info.Window)
	}

	cached := vc.Get(vega.Key())
	if cached == nil || !cached.LastComputed.Equal(now) {
		t.Fatalf("Get() = %+v", cached)
	}
	// Get returns a copy.
	cached.CurrentAlt = -99
	if vc.Get(vega.Key()).CurrentAlt == -99 {
		t.Error("Get() should not expose the cached value")
	}

	if vc.NeedsRefresh(vega.Key(), now.Add(time.Minute)) {
		t.Error("fresh entry should not need refresh")
	}
	if !vc.NeedsRefresh(vega.Key(), now.Add(VisibilityCacheTTL+time.Second)) {
		t.Error("stale entry should need refresh")
	}
	if !vc.NeedsRefresh(vega.Key(), now.Add(-time.Minute)) {
		t.Error("entry from the future should need refresh")
	}

	vc.SetObserver(paris)
	if vc.Len() != 1 {
		t.Error("same observer should keep the cache")
	}
	vc.SetObserver(astro.Observer{LatDeg: -35.4, LonDeg: 149.0})
	if vc.Len() != 0 {
		t.Error("new observer should clear the cache")
	}

	if _, err := vc.Update(vega, now); err != nil {
		t.Fatal(err)
	}
	vc.Clear()
	if vc.Len() != 0 {
		t.Error("Clear() should empty the cache")
	}
}
