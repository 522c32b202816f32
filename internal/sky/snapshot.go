// Package sky recomputes the horizontal positions of catalog objects and
// renders them for headless output.
package sky

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/litescript/ls-celestial/internal/astro"
	"github.com/litescript/ls-celestial/internal/catalog"
)

// Position is one catalog object as seen from the observer at a given instant.
type Position struct {
	Name       string
	Kind       catalog.Kind
	Details    string
	Equatorial astro.Equatorial
	RAText     string // catalog text
	DecText    string // "±DD° MM′" table column

	Altitude  float64 // degrees
	Azimuth   float64 // degrees, 0 = north, 90 = east
	HourAngle time.Duration
	// HourAngleText is the "HHh MMm" table column.
	HourAngleText string
	Band          astro.AltitudeBand
}

// Key identifies a position across snapshots.
func (p Position) Key() string {
	return p.Kind.String() + "/" + p.Name
}

// AboveHorizon reports whether the object is above the mathematical horizon.
func (p Position) AboveHorizon() bool {
	return p.Altitude > astro.HorizonAltitude
}

// Snapshot is the immutable result of one recompute tick.
type Snapshot struct {
	Times      astro.Times
	LST        time.Duration
	Observer   astro.Observer
	Twilight   astro.Twilight
	Positions  []Position
	ComputedAt time.Time
	Elapsed    time.Duration // wall time spent in Compute
}

// Compute derives the sky for obs at now. It is a pure function of its
// inputs; positions keep the order of entries.
func Compute(now time.Time, obs astro.Observer, entries []catalog.Entry, opts ...astro.TimesOption) Snapshot {
	started := time.Now()

	times := astro.ComputeTimes(&now, opts...)
	lst := astro.LocalSiderealTime(times.GMST, obs.LonDeg)

	positions := make([]Position, 0, len(entries))
	for _, e := range entries {
		hz := astro.Horizontal(e.Position, lst, obs.LatDeg)
		ha := astro.HourAngle(e.Position, lst)
		positions = append(positions, Position{
			Name:          e.Name(),
			Kind:          e.Kind(),
			Details:       e.Details(),
			Equatorial:    e.Position,
			RAText:        e.RA(),
			DecText:       DecColumn(e.Position.Dec),
			Altitude:      hz.Altitude,
			Azimuth:       hz.Azimuth,
			HourAngle:     ha,
			HourAngleText: HourAngleColumn(ha),
			Band:          astro.BandFor(hz.Altitude),
		})
	}

	return Snapshot{
		Times:      times,
		LST:        lst,
		Observer:   obs,
		Twilight:   astro.SkyTwilight(obs, now, opts...),
		Positions:  positions,
		ComputedAt: now,
		Elapsed:    time.Since(started),
	}
}

// AltitudeColumn renders an altitude rounded to whole degrees, e.g. " +5°".
func AltitudeColumn(alt float64) string {
	return fmt.Sprintf("%+3d°", int(math.Round(alt)))
}

// AzimuthColumn renders an azimuth rounded to whole degrees, e.g. " 97°".
func AzimuthColumn(az float64) string {
	return fmt.Sprintf("%3d°", int(math.Round(az)))
}

// HourAngleColumn renders an hour angle as "HHh MMm".
func HourAngleColumn(ha time.Duration) string {
	return astro.FormatHMS(ha)[:len("00h 00m")]
}

// DecColumn renders a declination as "±DD° MM′".
func DecColumn(dec float64) string {
	s := astro.FormatDMS(dec)
	if i := strings.Index(s, "′"); i >= 0 {
		return s[:i+len("′")]
	}
	return s
}

// ByKind returns the positions of one catalog, in catalog order.
func (s Snapshot) ByKind(kind catalog.Kind) []Position {
	var out []Position
	for _, p := range s.Positions {
		if p.Kind == kind {
			out = append(out, p)
		}
	}
	return out
}

// CountAbove returns how many objects of kind are above the horizon.
func (s Snapshot) CountAbove(kind catalog.Kind) int {
	n := 0
	for _, p := range s.Positions {
		if p.Kind == kind && p.AboveHorizon() {
			n++
		}
	}
	return n
}

// Find returns the first position whose name matches query, exactly or by
// case-insensitive prefix.
func (s Snapshot) Find(query string) (Position, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return Position{}, false
	}
	for _, p := range s.Positions {
		if strings.ToLower(p.Name) == q {
			return p, true
		}
	}
	for _, p := range s.Positions {
		if strings.HasPrefix(strings.ToLower(p.Name), q) {
			return p, true
		}
	}
	return Position{}, false
}

// Lookup returns the position with the given Key.
func (s Snapshot) Lookup(key string) (Position, bool) {
	for _, p := range s.Positions {
		if p.Key() == key {
			return p, true
		}
	}
	return Position{}, false
}

// IsZero reports whether the snapshot has never been computed.
func (s Snapshot) IsZero() bool {
	return s.ComputedAt.IsZero()
}
