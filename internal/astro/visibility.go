package astro

import (
	"errors"
	"math"
	"time"
)

// AltitudeSample is the altitude of an object at a point in time.
type AltitudeSample struct {
	Time     time.Time
	Altitude float64 // degrees above horizon
}

// VisibilityWindow represents a rise-transit-set cycle for an object.
type VisibilityWindow struct {
	Rise          time.Time // Time object rises above horizon
	Transit       time.Time // Time object crosses meridian (highest point)
	Set           time.Time // Time object sets below horizon
	MaxAltitude   float64   // Peak altitude in degrees
	Valid         bool      // Whether a valid window was found
	AlwaysVisible bool      // Object never sets (circumpolar)
	NeverVisible  bool      // Object never rises
}

// HorizonAltitude is the threshold for considering an object risen.
const HorizonAltitude = 0.0

// Errors for visibility calculations.
var (
	ErrInsufficientSamples = errors.New("insufficient samples for visibility calculation")
	ErrInvalidStep         = errors.New("sample step must be positive")
)

// AltitudeTrace samples the altitude of eq as seen by obs from start to end
// (inclusive) every step.
func AltitudeTrace(eq Equatorial, obs Observer, start, end time.Time, step time.Duration, opts ...TimesOption) ([]AltitudeSample, error) {
	if step <= 0 {
		return nil, ErrInvalidStep
	}

	var samples []AltitudeSample
	for t := start; !t.After(end); t = t.Add(step) {
		horiz := EquatorialToHorizontal(eq, obs, t, opts...)
		samples = append(samples, AltitudeSample{Time: t, Altitude: horiz.Altitude})
	}
	return samples, nil
}

// RiseSet computes rise, transit and set times of eq within [from, from+window].
//
// Horizon crossings are found by linear interpolation between samples and the
// transit is refined with a parabola through the three highest samples. A
// window of one sidereal day or more captures a complete cycle.
func RiseSet(eq Equatorial, obs Observer, from time.Time, window, step time.Duration, opts ...TimesOption) (VisibilityWindow, error) {
	samples, err := AltitudeTrace(eq, obs, from, from.Add(window), step, opts...)
	if err != nil {
		return VisibilityWindow{}, err
	}
	if len(samples) < 3 {
		return VisibilityWindow{}, ErrInsufficientSamples
	}

	minAlt := 90.0
	maxAlt := -90.0
	maxIdx := 0
	for i, s := range samples {
		if s.Altitude < minAlt {
			minAlt = s.Altitude
		}
		if s.Altitude > maxAlt {
			maxAlt = s.Altitude
			maxIdx = i
		}
	}

	transit, transitAlt := refineMaxAltitude(samples, maxIdx)

	if minAlt > HorizonAltitude {
		return VisibilityWindow{
			Transit:       transit,
			MaxAltitude:   transitAlt,
			Valid:         true,
			AlwaysVisible: true,
		}, nil
	}
	if maxAlt < HorizonAltitude {
		return VisibilityWindow{
			Transit:      transit,
			MaxAltitude:  transitAlt,
			Valid:        true,
			NeverVisible: true,
		}, nil
	}

	var rise, set time.Time
	for i := 1; i < len(samples); i++ {
		prev, curr := samples[i-1], samples[i]
		if rise.IsZero() && prev.Altitude <= HorizonAltitude && curr.Altitude > HorizonAltitude {
			rise = interpolateCrossing(prev, curr, HorizonAltitude)
		}
		if set.IsZero() && prev.Altitude > HorizonAltitude && curr.Altitude <= HorizonAltitude {
			set = interpolateCrossing(prev, curr, HorizonAltitude)
		}
	}

	return VisibilityWindow{
		Rise:        rise,
		Transit:     transit,
		Set:         set,
		MaxAltitude: transitAlt,
		Valid:       !rise.IsZero() || !set.IsZero(),
	}, nil
}

// refineMaxAltitude fits a parabola through the samples around maxIdx.
func refineMaxAltitude(samples []AltitudeSample, maxIdx int) (time.Time, float64) {
	best := samples[maxIdx]
	if maxIdx == 0 || maxIdx == len(samples)-1 {
		return best.Time, best.Altitude
	}

	// Normalized time: t = -1 (prev), t = 0 (max), t = +1 (next)
	y0 := samples[maxIdx-1].Altitude
	y1 := best.Altitude
	y2 := samples[maxIdx+1].Altitude

	c := y1
	a := (y0+y2)/2 - c
	b := (y2 - y0) / 2
	if a >= 0 {
		return best.Time, best.Altitude
	}

	tMax := clamp(-b/(2*a), -1, 1)
	dt := best.Time.Sub(samples[maxIdx-1].Time)
	return best.Time.Add(time.Duration(float64(dt) * tMax)), a*tMax*tMax + b*tMax + c
}

// interpolateCrossing finds the time when altitude crosses threshold between two samples.
func interpolateCrossing(s1, s2 AltitudeSample, threshold float64) time.Time {
	if math.Abs(s2.Altitude-s1.Altitude) < 0.0001 {
		return s1.Time
	}

	fraction := clamp((threshold-s1.Altitude)/(s2.Altitude-s1.Altitude), 0, 1)
	dt := s2.Time.Sub(s1.Time)
	return s1.Time.Add(time.Duration(float64(dt) * fraction))
}

// AltitudeBand categorizes altitude for display.
type AltitudeBand int

const (
	BandBelowHorizon AltitudeBand = iota // <= 0 degrees
	BandLow                              // 0-20 degrees
	BandMiddle                           // 20-45 degrees
	BandHigh                             // above 45 degrees
)

// String returns a short label for the band.
func (b AltitudeBand) String() string {
	switch b {
	case BandLow:
		return "low"
	case BandMiddle:
		return "middle"
	case BandHigh:
		return "high"
	default:
		return "below"
	}
}

// BandFor returns the band for an altitude in degrees.
func BandFor(alt float64) AltitudeBand {
	switch {
	case alt > 45:
		return BandHigh
	case alt > 20:
		return BandMiddle
	case alt > 0:
		return BandLow
	default:
		return BandBelowHorizon
	}
}
