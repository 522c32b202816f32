package astro

import (
	"errors"
	"math"
	"testing"
	"time"
)

// testObservers for visibility testing
var testObservers = map[string]Observer{
	"paris":      {LatDeg: 48.8566, LonDeg: 2.3522, Name: "Paris"},
	"canberra":   {LatDeg: -35.4014, LonDeg: 148.9817, Name: "Canberra"},
	"equator":    {LatDeg: 0, LonDeg: 0, Name: "Equator"},
	"north_pole": {LatDeg: 89.0, LonDeg: 0.0, Name: "North Pole"},
}

// Well-known star positions (J2000)
var testStars = map[string]Equatorial{
	"vega":    ParseEquatorial("18h 36m 56s", "+38° 47′ 01″"),
	"sirius":  ParseEquatorial("06h 45m 09s", "−16° 42′ 58″"),
	"polaris": ParseEquatorial("02h 31m 49s", "+89° 15′ 51″"),
	"canopus": ParseEquatorial("06h 23m 57s", "−52° 41′ 44″"),
	"acrux":   ParseEquatorial("12h 26m 36s", "−63° 05′ 57″"),
}

func TestAltitudeTrace(t *testing.T) {
	start := time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	samples, err := AltitudeTrace(testStars["vega"], testObservers["paris"], start, end, 30*time.Minute)
	if err != nil {
		t.Fatalf("AltitudeTrace() error = %v", err)
	}
	if len(samples) != 5 {
		t.Fatalf("AltitudeTrace() returned %d samples, want 5", len(samples))
	}
	for i, s := range samples {
		want := start.Add(time.Duration(i) * 30 * time.Minute)
		if !s.Time.Equal(want) {
			t.Errorf("sample %d time = %v, want %v", i, s.Time, want)
		}
		h := EquatorialToHorizontal(testStars["vega"], testObservers["paris"], want)
		if s.Altitude != h.Altitude {
			t.Errorf("sample %d altitude = %v, want %v", i, s.Altitude, h.Altitude)
		}
	}

	if _, err := AltitudeTrace(testStars["vega"], testObservers["paris"], start, end, 0); !errors.Is(err, ErrInvalidStep) {
		t.Errorf("AltitudeTrace(step=0) error = %v, want ErrInvalidStep", err)
	}
}

func TestRiseSet_Basic(t *testing.T) {
	obs := testObservers["paris"]
	star := testStars["sirius"]
	from := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	window, err := RiseSet(star, obs, from, 24*time.Hour, 5*time.Minute)
	if err != nil {
		t.Fatalf("RiseSet() error = %v", err)
	}
	if !window.Valid {
		t.Error("RiseSet() returned invalid window")
	}
	if window.AlwaysVisible || window.NeverVisible {
		t.Errorf("Sirius should rise and set from Paris, got AlwaysVisible=%v, NeverVisible=%v",
			window.AlwaysVisible, window.NeverVisible)
	}
	if window.Rise.IsZero() || window.Set.IsZero() {
		t.Fatalf("expected both rise and set within a day, got %+v", window)
	}

	// Upper culmination: 90 - lat + dec
	wantMax := 90 - obs.LatDeg + star.Dec
	if math.Abs(window.MaxAltitude-wantMax) > 0.1 {
		t.Errorf("MaxAltitude = %.3f°, want %.3f°", window.MaxAltitude, wantMax)
	}

	for name, ts := range map[string]time.Time{"rise": window.Rise, "set": window.Set} {
		alt := EquatorialToHorizontal(star, obs, ts).Altitude
		if math.Abs(alt) > 0.2 {
			t.Errorf("altitude at %s = %.3f°, want ~0", name, alt)
		}
	}

	// Transit happens when the hour angle crosses zero.
	times := ComputeTimes(&window.Transit)
	ha := HourAngle(star, LocalSiderealTime(times.GMST, obs.LonDeg))
	if dayDiff(ha, 0) > 2*time.Minute {
		t.Errorf("hour angle at transit = %v, want ~0", ha)
	}
}

func TestRiseSet_Circumpolar(t *testing.T) {
	from := time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC)

	window, err := RiseSet(testStars["polaris"], testObservers["north_pole"], from, 24*time.Hour, 10*time.Minute)
	if err != nil {
		t.Fatalf("RiseSet() error = %v", err)
	}
	if !window.Valid || !window.AlwaysVisible {
		t.Errorf("Polaris should be circumpolar from North Pole, got %+v", window)
	}
	if !window.Rise.IsZero() || !window.Set.IsZero() {
		t.Errorf("circumpolar window should have no rise/set, got %+v", window)
	}
}

func TestRiseSet_NeverVisible(t *testing.T) {
	from := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	window, err := RiseSet(testStars["canopus"], testObservers["paris"], from, 24*time.Hour, 10*time.Minute)
	if err != nil {
		t.Fatalf("RiseSet() error = %v", err)
	}
	if !window.Valid || !window.NeverVisible {
		t.Errorf("Canopus should never rise from Paris, got %+v", window)
	}
	if window.MaxAltitude >= 0 {
		t.Errorf("MaxAltitude = %.2f°, want < 0", window.MaxAltitude)
	}
}

func TestRiseSet_SouthernHemisphere(t *testing.T) {
	from := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	window, err := RiseSet(testStars["acrux"], testObservers["canberra"], from, 24*time.Hour, 10*time.Minute)
	if err != nil {
		t.Fatalf("RiseSet() error = %v", err)
	}
	// dec -63.1 at lat -35.4 is circumpolar
	if !window.AlwaysVisible {
		t.Errorf("Acrux should be circumpolar from Canberra, got %+v", window)
	}
}

func TestRiseSet_InsufficientSamples(t *testing.T) {
	from := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		window time.Duration
		step   time.Duration
	}{
		{"one sample", time.Minute, time.Hour},
		{"two samples", time.Hour, time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RiseSet(testStars["vega"], testObservers["paris"], from, tt.window, tt.step)
			if !errors.Is(err, ErrInsufficientSamples) {
				t.Errorf("RiseSet() error = %v, want ErrInsufficientSamples", err)
			}
		})
	}
}

func TestRefineMaxAltitude(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	// Symmetric parabola peaking halfway between samples 1 and 2.
	samples := []AltitudeSample{
		{Time: base, Altitude: 10},
		{Time: base.Add(time.Hour), Altitude: 20},
		{Time: base.Add(2 * time.Hour), Altitude: 20},
		{Time: base.Add(3 * time.Hour), Altitude: 10},
	}

	tm, alt := refineMaxAltitude(samples, 1)
	if want := base.Add(90 * time.Minute); !tm.Equal(want) {
		t.Errorf("refined time = %v, want %v", tm, want)
	}
	if alt <= 20 {
		t.Errorf("refined altitude = %v, want > 20", alt)
	}

	// Edge sample is returned unchanged.
	tm, alt = refineMaxAltitude(samples, 0)
	if !tm.Equal(base) || alt != 10 {
		t.Errorf("edge refinement = %v %v", tm, alt)
	}
}

func TestInterpolateCrossing(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s1 := AltitudeSample{Time: base, Altitude: -2}
	s2 := AltitudeSample{Time: base.Add(4 * time.Minute), Altitude: 2}

	if got, want := interpolateCrossing(s1, s2, 0), base.Add(2*time.Minute); !got.Equal(want) {
		t.Errorf("interpolateCrossing() = %v, want %v", got, want)
	}

	flat := AltitudeSample{Time: base.Add(time.Minute), Altitude: -2}
	if got := interpolateCrossing(s1, flat, 0); !got.Equal(base) {
		t.Errorf("interpolateCrossing(flat) = %v, want %v", got, base)
	}
}

func TestBandFor(t *testing.T) {
	tests := []struct {
		alt  float64
		want AltitudeBand
	}{
		{90, BandHigh},
		{45.1, BandHigh},
		{45, BandMiddle},
		{20.1, BandMiddle},
		{20, BandLow},
		{0.1, BandLow},
		{0, BandBelowHorizon},
		{-30, BandBelowHorizon},
	}

	for _, tt := range tests {
		if got := BandFor(tt.alt); got != tt.want {
			t.Errorf("BandFor(%v) = %v, want %v", tt.alt, got, tt.want)
		}
	}

	if BandHigh.String() != "high" || BandBelowHorizon.String() != "below" {
		t.Error("unexpected band labels")
	}
}
