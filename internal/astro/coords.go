package astro

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/soniakeys/unit"
)

// ErrMalformedCoordinate is returned by ParseEquatorialStrict for input that
// does not follow the catalog RA/Dec grammar.
var ErrMalformedCoordinate = errors.New("malformed coordinate")

// Equatorial holds catalog coordinates: right ascension as a time of day
// in [0, 24h) and declination in signed degrees.
type Equatorial struct {
	RA  time.Duration
	Dec float64
}

// HorizontalCoord holds observer-relative coordinates in degrees.
// Azimuth is measured from north through east.
type HorizontalCoord struct {
	Altitude float64 // [-90, 90]
	Azimuth  float64 // [0, 360)
}

// Observer represents a ground-based observer location.
type Observer struct {
	LatDeg float64 // Latitude in degrees (north positive)
	LonDeg float64 // Longitude in degrees (east positive)
	Name   string  // Optional name for the site
}

// RAHours returns the right ascension in hours.
func (e Equatorial) RAHours() float64 {
	return e.RA.Hours()
}

// RADegrees returns the right ascension in degrees.
func (e Equatorial) RADegrees() float64 {
	return e.RA.Hours() * 15
}

// RAUnit returns the right ascension as a unit.RA.
func (e Equatorial) RAUnit() unit.RA {
	return unit.RAFromHour(e.RAHours())
}

// DecUnit returns the declination as a unit.Angle.
func (e Equatorial) DecUnit() unit.Angle {
	return unit.AngleFromDeg(e.Dec)
}

// ParseEquatorial parses catalog strings such as "12h 34m 56.7s" and
// "+12° 34′ 56″". Field values are taken as written, so "25h" or "95°"
// pass through unchanged. Unparseable input yields the zero coordinate
// (RA 0h, Dec 0°) instead of an error; use ParseEquatorialStrict to
// detect it.
func ParseEquatorial(ra, dec string) Equatorial {
	eq, err := parseEquatorial(ra, dec, false)
	if err != nil {
		return Equatorial{}
	}
	return eq
}

// ParseEquatorialStrict parses catalog RA/Dec strings and reports
// malformed input. Unlike ParseEquatorial it also rejects hours ≥ 24,
// minutes or seconds ≥ 60 and declinations beyond ±90°.
func ParseEquatorialStrict(ra, dec string) (Equatorial, error) {
	return parseEquatorial(ra, dec, true)
}

func parseEquatorial(ra, dec string, strict bool) (Equatorial, error) {
	raDur, err := parseRA(ra, strict)
	if err != nil {
		return Equatorial{}, fmt.Errorf("right ascension %q: %w", ra, err)
	}
	decDeg, err := parseDec(dec, strict)
	if err != nil {
		return Equatorial{}, fmt.Errorf("declination %q: %w", dec, err)
	}
	return Equatorial{RA: raDur, Dec: decDeg}, nil
}

var (
	raMarkers  = strings.NewReplacer("h", " ", "m", " ", "s", " ", ":", " ")
	decMarkers = strings.NewReplacer("°", " ", "º", " ", "d", " ", "′", " ", "'", " ", "″", " ", "\"", " ", ":", " ")
)

// parseRA parses "HHh MMm SS.Ss". Seconds are optional and the minute
// field may carry a fraction.
func parseRA(s string, strict bool) (time.Duration, error) {
	fields := strings.Fields(raMarkers.Replace(s))
	if len(fields) < 2 || len(fields) > 3 {
		return 0, ErrMalformedCoordinate
	}

	hours, err := strconv.Atoi(fields[0])
	if err != nil || hours < 0 || (strict && hours >= 24) {
		return 0, ErrMalformedCoordinate
	}
	minutes, seconds, err := parseMinSec(fields[1:], strict)
	if err != nil {
		return 0, err
	}

	total := float64(hours)*3600 + minutes*60 + seconds
	return time.Duration(math.Round(total * float64(time.Second))), nil
}

// parseDec parses "±DD° MM′ SS″". The sign is taken from the first
// character of the degree field; an unsigned field is positive.
func parseDec(s string, strict bool) (float64, error) {
	fields := strings.Fields(decMarkers.Replace(s))
	if len(fields) < 2 || len(fields) > 3 {
		return 0, ErrMalformedCoordinate
	}

	degField := fields[0]
	sign := 1.0
	switch {
	case strings.HasPrefix(degField, "−"):
		sign = -1
		degField = strings.TrimPrefix(degField, "−")
	case strings.HasPrefix(degField, "-"):
		sign = -1
		degField = degField[1:]
	case strings.HasPrefix(degField, "+"):
		degField = degField[1:]
	}

	degrees, err := strconv.Atoi(degField)
	if err != nil || degrees < 0 {
		return 0, ErrMalformedCoordinate
	}
	minutes, seconds, err := parseMinSec(fields[1:], strict)
	if err != nil {
		return 0, err
	}

	value := float64(degrees) + minutes/60 + seconds/3600
	if strict && value > 90 {
		return 0, ErrMalformedCoordinate
	}
	return sign * value, nil
}

// parseMinSec parses the minute field and the optional second field.
func parseMinSec(fields []string, strict bool) (float64, float64, error) {
	minutes, err := strconv.ParseFloat(fields[0], 64)
	if err != nil || minutes < 0 || (strict && minutes >= 60) {
		return 0, 0, ErrMalformedCoordinate
	}

	var seconds float64
	if len(fields) > 1 {
		seconds, err = strconv.ParseFloat(fields[1], 64)
		if err != nil || seconds < 0 || (strict && seconds >= 60) {
			return 0, 0, ErrMalformedCoordinate
		}
	}
	return minutes, seconds, nil
}

// HourAngle returns LST − RA normalized into [0, 24h), truncated to whole seconds.
func HourAngle(eq Equatorial, lst time.Duration) time.Duration {
	return normalizeDay(lst - eq.RA).Truncate(time.Second)
}

// HourAngleString formats the hour angle as "HHh MMm SSs".
func HourAngleString(eq Equatorial, lst time.Duration) string {
	return FormatHMS(HourAngle(eq, lst))
}

// Horizontal converts equatorial coordinates to altitude and azimuth for
// the given local sidereal time and observer latitude.
//
// An object exactly at the zenith or nadir has no defined azimuth; it is
// reported as 0.
func Horizontal(eq Equatorial, lst time.Duration, latDeg float64) HorizontalCoord {
	ha := HourAngle(eq, lst).Seconds() / secondsPerDay * 2 * math.Pi
	dec := degToRad(eq.Dec)
	lat := degToRad(latDeg)

	sinAlt := math.Sin(dec)*math.Sin(lat) + math.Cos(dec)*math.Cos(lat)*math.Cos(ha)
	alt := math.Asin(clamp(sinAlt, -1, 1))
	cosAlt := math.Cos(alt)

	if cosAlt <= 1e-12 {
		return HorizontalCoord{Altitude: radToDeg(alt), Azimuth: 0}
	}

	cosAz := (math.Cos(lat)*math.Sin(dec) - math.Sin(lat)*math.Cos(dec)*math.Cos(ha)) / cosAlt
	az := radToDeg(math.Acos(clamp(cosAz, -1, 1)))

	// West of the meridian the azimuth lies in (180, 360).
	if -math.Cos(dec)*math.Sin(ha)/cosAlt < 0 {
		az = -az
	}
	az = math.Mod(az+360, 360)

	return HorizontalCoord{Altitude: radToDeg(alt), Azimuth: az}
}

// EquatorialToHorizontal computes altitude and azimuth of eq for obs at t.
func EquatorialToHorizontal(eq Equatorial, obs Observer, t time.Time, opts ...TimesOption) HorizontalCoord {
	times := ComputeTimes(&t, opts...)
	lst := LocalSiderealTime(times.GMST, obs.LonDeg)
	return Horizontal(eq, lst, obs.LatDeg)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// degToRad converts degrees to radians.
func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// radToDeg converts radians to degrees.
func radToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}
