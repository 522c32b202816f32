package astro

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/solar"
)

// SunPosition returns the apparent equatorial coordinates of the Sun at t.
// Accuracy is about 0.01°, enough for twilight and separation checks.
func SunPosition(t time.Time) Equatorial {
	ra, dec := solar.ApparentEquatorial(julian.TimeToJD(t.UTC()))
	return Equatorial{
		RA:  time.Duration(ra.Hour() * float64(time.Hour)),
		Dec: dec.Deg(),
	}
}

// SunSeparation returns the angular distance in degrees between eq and the Sun at t.
func SunSeparation(eq Equatorial, t time.Time) float64 {
	return AngularSeparation(SunPosition(t), eq)
}

// AngularSeparation returns the angle in degrees between two points on the
// celestial sphere (haversine formula).
func AngularSeparation(a, b Equatorial) float64 {
	ra1, dec1 := degToRad(a.RADegrees()), degToRad(a.Dec)
	ra2, dec2 := degToRad(b.RADegrees()), degToRad(b.Dec)

	dRA := ra2 - ra1
	dDec := dec2 - dec1

	h := math.Sin(dDec/2)*math.Sin(dDec/2) +
		math.Cos(dec1)*math.Cos(dec2)*math.Sin(dRA/2)*math.Sin(dRA/2)

	return radToDeg(2 * math.Asin(math.Sqrt(clamp(h, 0, 1))))
}

// Twilight classifies the sky brightness by solar altitude.
type Twilight int

const (
	Daylight     Twilight = iota // sun above horizon
	Civil                        // 0 to -6 degrees
	Nautical                     // -6 to -12 degrees
	Astronomical                 // -12 to -18 degrees
	Night                        // below -18 degrees
)

func (t Twilight) String() string {
	switch t {
	case Daylight:
		return "daylight"
	case Civil:
		return "civil twilight"
	case Nautical:
		return "nautical twilight"
	case Astronomical:
		return "astronomical twilight"
	default:
		return "night"
	}
}

// TwilightFor returns the twilight phase for a solar altitude in degrees.
func TwilightFor(sunAlt float64) Twilight {
	switch {
	case sunAlt > 0:
		return Daylight
	case sunAlt > -6:
		return Civil
	case sunAlt > -12:
		return Nautical
	case sunAlt > -18:
		return Astronomical
	default:
		return Night
	}
}

// SkyTwilight returns the twilight phase at obs for t.
func SkyTwilight(obs Observer, t time.Time, opts ...TimesOption) Twilight {
	sun := EquatorialToHorizontal(SunPosition(t), obs, t, opts...)
	return TwilightFor(sun.Altitude)
}

// SunSeparationTier categorizes sun separation for display.
type SunSeparationTier int

const (
	SunSepSafe    SunSeparationTier = iota // >= 20 degrees
	SunSepCaution                          // 10-20 degrees
	SunSepWarning                          // < 10 degrees
)

// GetSunSeparationTier returns the tier for a given separation angle.
func GetSunSeparationTier(sepDeg float64) SunSeparationTier {
	switch {
	case sepDeg < 10:
		return SunSepWarning
	case sepDeg < 20:
		return SunSepCaution
	default:
		return SunSepSafe
	}
}
