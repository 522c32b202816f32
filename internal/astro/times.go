// Package astro provides astronomical time and coordinate math: Julian dates,
// sidereal time, catalog coordinate parsing and horizontal coordinates.
package astro

import (
	"math"
	"time"
)

// DefaultDUT1 is UT1−UTC as published for 2020-06-25. It drifts by a few
// hundred milliseconds per year; override it with WithDUT1 for other dates.
const DefaultDUT1 = -243 * time.Millisecond

// IAU 1982 GMST polynomial coefficients (seconds of time).
const (
	gmstC0 = 24110.54841
	gmstC1 = 8640184.812866
	gmstC2 = 0.093104
	gmstC3 = 0.0000062
)

const (
	secondsPerDay  = 86400.0
	j2000          = 2451545.0
	daysPerCentury = 36525.0

	// siderealRate converts elapsed solar seconds into sidereal seconds.
	siderealRate = 1.0 + gmstC1/daysPerCentury/secondsPerDay
)

// referenceEpoch is used when no timestamp is supplied (J2000.0 in UTC).
var referenceEpoch = time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)

// Times holds the time scales derived from one civil instant.
// A Times value is immutable once computed.
type Times struct {
	Local time.Time     // input instant in its own location
	UTC   time.Time     // input instant in UTC
	UT1   time.Time     // UTC corrected by ΔUT1
	DUT1  time.Duration // ΔUT1 applied
	JD    float64       // Julian Date of UT1
	T0    float64       // Julian centuries from J2000.0 at 0h UT1
	GMST  time.Duration // Greenwich mean sidereal time, [0, 24h)
}

type timesConfig struct {
	dut1 time.Duration
}

// TimesOption configures ComputeTimes.
type TimesOption func(*timesConfig)

// WithDUT1 overrides the UT1−UTC correction.
func WithDUT1(d time.Duration) TimesOption {
	return func(c *timesConfig) {
		c.dut1 = d
	}
}

// ComputeTimes derives UTC, UT1, the Julian Date and GMST from t.
// A nil t selects the J2000.0 reference epoch shifted back by ΔUT1.
func ComputeTimes(t *time.Time, opts ...TimesOption) Times {
	cfg := timesConfig{dut1: DefaultDUT1}
	for _, opt := range opts {
		opt(&cfg)
	}

	var local, utc time.Time
	if t == nil {
		utc = referenceEpoch.Add(-cfg.dut1)
		local = utc
	} else {
		local = *t
		utc = t.UTC()
	}

	ut1 := utc.Add(cfg.dut1)
	elapsed := secondsOfDay(ut1)
	jd := JulianDate(ut1)
	t0 := JulianCenturies(jd - elapsed/secondsPerDay)

	return Times{
		Local: local,
		UTC:   utc,
		UT1:   ut1,
		DUT1:  cfg.dut1,
		JD:    jd,
		T0:    t0,
		GMST:  gmst(t0, elapsed),
	}
}

// Now computes Times for the current instant.
func Now(opts ...TimesOption) Times {
	now := time.Now()
	return ComputeTimes(&now, opts...)
}

// JulianDate returns the Julian Date of t (interpreted in UTC) for the
// proleptic Gregorian calendar, including the time-of-day fraction.
func JulianDate(t time.Time) float64 {
	t = t.UTC()

	month := int(t.Month())
	// January and February count as months 13 and 14 of the previous year.
	shift := (12 - month) / 10
	y := t.Year() - shift
	m := month + shift*12 - 2

	jd := math.Floor(365.25*float64(y)) +
		float64(floorDiv(y, 400)) -
		float64(floorDiv(y, 100)) +
		math.Floor(30.59*float64(m)) +
		float64(t.Day()) +
		1721088.5

	return jd + secondsOfDay(t)/secondsPerDay
}

// JulianCenturies returns the number of Julian centuries between jd and J2000.0.
func JulianCenturies(jd float64) float64 {
	return (jd - j2000) / daysPerCentury
}

// LocalSiderealTime shifts GMST by the observer longitude (15° per hour,
// east positive) and normalizes the result into [0, 24h).
func LocalSiderealTime(gmst time.Duration, lonDeg float64) time.Duration {
	offset := time.Duration(lonDeg / 360 * secondsPerDay * float64(time.Second))
	return normalizeDay(gmst + offset)
}

// gmst evaluates the IAU 1982 polynomial at 0h UT1 and advances it by the
// elapsed UT1 seconds of day at the sidereal rate.
func gmst(t0, elapsed float64) time.Duration {
	atMidnight := math.Mod(gmstC0+gmstC1*t0+gmstC2*t0*t0-gmstC3*t0*t0*t0, secondsPerDay)
	sec := math.Mod(atMidnight+siderealRate*elapsed, secondsPerDay)
	if sec < 0 {
		sec += secondsPerDay
	}

	ms := time.Duration(math.Floor(sec*1000)) * time.Millisecond
	return normalizeDay(ms)
}

// secondsOfDay returns the elapsed seconds since midnight of t's calendar day.
func secondsOfDay(t time.Time) float64 {
	h, m, s := t.Clock()
	return float64(h*3600+m*60+s) + float64(t.Nanosecond())/1e9
}

// normalizeDay folds d into [0, 24h).
func normalizeDay(d time.Duration) time.Duration {
	const day = 24 * time.Hour
	d %= day
	if d < 0 {
		d += day
	}
	return d
}

// floorDiv is integer division rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
