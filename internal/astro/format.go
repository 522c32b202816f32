package astro

import (
	"fmt"
	"math"
	"time"

	sexa "github.com/soniakeys/sexagesimal"
)

// FormatHMS formats a time-of-day duration as "HHh MMm SSs".
// Hours wrap at 24; seconds are truncated.
func FormatHMS(d time.Duration) string {
	h := int64(d/time.Hour) % 24
	m := int64(d/time.Minute) % 60
	s := int64(d/time.Second) % 60
	return fmt.Sprintf("%02dh %02dm %02ds", h, m, s)
}

// FormatDMS formats signed degrees as "+DD° MM′ SS″", truncated to whole
// arcseconds. Negative values use the minus sign U+2212.
func FormatDMS(deg float64) string {
	absSeconds := int64(math.Abs(deg * 3600))
	s := absSeconds % 60
	absMinutes := absSeconds / 60
	m := absMinutes % 60
	d := absMinutes / 60

	sign := "+"
	if deg < 0 {
		sign = "−"
	}
	return sign + fmt.Sprintf("%02d° %02d′ %02d″", d, m, s)
}

// FormatDegrees formats a signed degree value for display.
func FormatDegrees(deg float64) string {
	return FormatDMS(deg)
}

// SexagesimalRA renders the right ascension with soniakeys/sexagesimal.
func SexagesimalRA(eq Equatorial) string {
	return fmt.Sprintf("%v", sexa.FmtRA(eq.RAUnit()))
}

// SexagesimalDec renders the declination with soniakeys/sexagesimal.
func SexagesimalDec(eq Equatorial) string {
	return fmt.Sprintf("%v", sexa.FmtAngle(eq.DecUnit()))
}
