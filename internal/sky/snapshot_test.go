package sky

import (
	"math"
	"testing"
	"time"

	"github.com/litescript/ls-celestial/internal/astro"
	"github.com/litescript/ls-celestial/internal/catalog"
)

var paris = astro.Observer{LatDeg: 48.8566, LonDeg: 2.3522, Name: "Paris"}

func star(name, ra, dec string) catalog.Entry {
	return catalog.Entry{
		Object: catalog.Star{
			Magnitude:  "0.0",
			CommonName: name,
			Bayer1:     "α",
			Bayer2:     "Tst",
			RAText:     ra,
			DecText:    dec,
		},
		Position: astro.ParseEquatorial(ra, dec),
	}
}

func messier(desg, typ, ra, dec string) catalog.Entry {
	return catalog.Entry{
		Object: catalog.MessierObject{
			Messier: desg,
			NGC:     "NGC 0",
			Type:    typ,
			RAText:  ra,
			DecText: dec,
		},
		Position: astro.ParseEquatorial(ra, dec),
	}
}

func testEntries() []catalog.Entry {
	return []catalog.Entry{
		messier("M31", "Spiral galaxy", "00h 42m 44s", "+41° 16′ 09″"),
		messier("M42", "H II region nebula", "05h 35m 17s", "−05° 23′ 28″"),
		star("Vega", "18h 36m 56.3s", "+38° 47′ 01″"),
		star("Sirius", "06h 45m 08.9s", "−16° 42′ 58″"),
		star("NorthPole", "00h 00m 00s", "+90° 00′ 00″"),
		star("SouthPole", "00h 00m 00s", "−90° 00′ 00″"),
	}
}

var testNow = time.Date(2024, 3, 20, 22, 0, 0, 0, time.UTC)

func TestCompute(t *testing.T) {
	entries := testEntries()
	snap := Compute(testNow, paris, entries)

	if len(snap.Positions) != len(entries) {
		t.Fatalf("positions = %d, want %d", len(snap.Positions), len(entries))
	}
	if snap.ComputedAt != testNow {
		t.Errorf("ComputedAt = %v, want %v", snap.ComputedAt, testNow)
	}
	if snap.Observer != paris {
		t.Errorf("Observer = %+v", snap.Observer)
	}

	wantLST := astro.LocalSiderealTime(snap.Times.GMST, paris.LonDeg)
	if snap.LST != wantLST {
		t.Errorf("LST = %v, want %v", snap.LST, wantLST)
	}

	for i, p := range snap.Positions {
		e := entries[i]
		if p.Name != e.Name() || p.Kind != e.Kind() {
			t.Errorf("position %d = %s/%v, want %s/%v", i, p.Name, p.Kind, e.Name(), e.Kind())
		}
		hz := astro.Horizontal(e.Position, snap.LST, paris.LatDeg)
		if p.Altitude != hz.Altitude || p.Azimuth != hz.Azimuth {
			t.Errorf("%s alt/az = %v/%v, want %v/%v", p.Name, p.Altitude, p.Azimuth, hz.Altitude, hz.Azimuth)
		}
		if p.Band != astro.BandFor(p.Altitude) {
			t.Errorf("%s band = %v", p.Name, p.Band)
		}
		if p.Key() != e.Key() {
			t.Errorf("Key() = %q, want %q", p.Key(), e.Key())
		}
	}

	// The celestial poles sit at ±latitude regardless of time.
	north, _ := snap.Find("NorthPole")
	if math.Abs(north.Altitude-paris.LatDeg) > 1e-6 {
		t.Errorf("north pole altitude = %v, want %v", north.Altitude, paris.LatDeg)
	}
	south, _ := snap.Find("SouthPole")
	if math.Abs(south.Altitude+paris.LatDeg) > 1e-6 {
		t.Errorf("south pole altitude = %v, want %v", south.Altitude, -paris.LatDeg)
	}
	if south.Band != astro.BandBelowHorizon {
		t.Errorf("south pole band = %v, want below", south.Band)
	}
}

func TestComputeIsPure(t *testing.T) {
	entries := testEntries()
	a := Compute(testNow, paris, entries)
	b := Compute(testNow, paris, entries)

	for i := range a.Positions {
		if a.Positions[i] != b.Positions[i] {
			t.Errorf("position %d differs between runs", i)
		}
	}
	if a.LST != b.LST || a.Times.GMST != b.Times.GMST {
		t.Error("times differ between runs")
	}
}

func TestComputeDUT1Option(t *testing.T) {
	entries := testEntries()
	a := Compute(testNow, paris, entries)
	b := Compute(testNow, paris, entries, astro.WithDUT1(0))

	if a.Times.DUT1 != astro.DefaultDUT1 || b.Times.DUT1 != 0 {
		t.Errorf("DUT1 = %v / %v", a.Times.DUT1, b.Times.DUT1)
	}
	if a.LST == b.LST {
		t.Error("ΔUT1 should shift the sidereal time")
	}
}

func TestComputeEmpty(t *testing.T) {
	snap := Compute(testNow, paris, nil)
	if len(snap.Positions) != 0 {
		t.Errorf("positions = %d, want 0", len(snap.Positions))
	}
	if snap.IsZero() {
		t.Error("computed snapshot should not be zero")
	}
	if !(Snapshot{}).IsZero() {
		t.Error("empty Snapshot should be zero")
	}
}

func TestColumns(t *testing.T) {
	altTests := []struct {
		in   float64
		want string
	}{
		{4.6, " +5°"},
		{-0.4, " +0°"},
		{-12.5, "-13°"},
		{89.9, "+90°"},
		{-45.2, "-45°"},
	}
	for _, tt := range altTests {
		if got := AltitudeColumn(tt.in); got != tt.want {
			t.Errorf("AltitudeColumn(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}

	azTests := []struct {
		in   float64
		want string
	}{
		{0, "  0°"},
		{97.2, " 97°"},
		{359.4, "359°"},
	}
	for _, tt := range azTests {
		if got := AzimuthColumn(tt.in); got != tt.want {
			t.Errorf("AzimuthColumn(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if got := HourAngleColumn(5*time.Hour + 34*time.Minute + 31*time.Second); got != "05h 34m" {
		t.Errorf("HourAngleColumn = %q", got)
	}

	decTests := []struct {
		in   float64
		want string
	}{
		{22.0145, "+22° 00′"},
		{-16.7161, "−16° 42′"},
		{0, "+00° 00′"},
	}
	for _, tt := range decTests {
		if got := DecColumn(tt.in); got != tt.want {
			t.Errorf("DecColumn(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSnapshotQueries(t *testing.T) {
	snap := Snapshot{
		ComputedAt: testNow,
		Positions: []Position{
			{Name: "M1  □", Kind: catalog.KindMessier, Altitude: 10},
			{Name: "M10 ⨁", Kind: catalog.KindMessier, Altitude: -10},
			{Name: "Vega", Kind: catalog.KindStar, Altitude: 30},
			{Name: "Sirius", Kind: catalog.KindStar, Altitude: 0},
		},
	}

	if got := len(snap.ByKind(catalog.KindMessier)); got != 2 {
		t.Errorf("ByKind(messier) = %d, want 2", got)
	}
	if got := snap.CountAbove(catalog.KindMessier); got != 1 {
		t.Errorf("CountAbove(messier) = %d, want 1", got)
	}
	// Altitude exactly 0 is not above the horizon.
	if got := snap.CountAbove(catalog.KindStar); got != 1 {
		t.Errorf("CountAbove(stars) = %d, want 1", got)
	}

	findTests := []struct {
		query string
		want  string
		ok    bool
	}{
		{"vega", "Vega", true},
		{"M10", "M10 ⨁", true},
		{"m1", "M1  □", true},
		{"sir", "Sirius", true},
		{"Deneb", "", false},
		{"", "", false},
	}
	for _, tt := range findTests {
		p, ok := snap.Find(tt.query)
		if ok != tt.ok || p.Name != tt.want {
			t.Errorf("Find(%q) = %q, %v; want %q, %v", tt.query, p.Name, ok, tt.want, tt.ok)
		}
	}

	if p, ok := snap.Lookup("stars/Vega"); !ok || p.Name != "Vega" {
		t.Errorf("Lookup(stars/Vega) = %q, %v", p.Name, ok)
	}
	if _, ok := snap.Lookup("messier/Vega"); ok {
		t.Error("Lookup should match the catalog too")
	}
}
