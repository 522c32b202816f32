package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// Star is one row of the bright-star catalog.
type Star struct {
	Magnitude  string  // −1.46
	CommonName string  // Sirius, or "–"
	Bayer1     string  // α
	Bayer2     string  // CMa
	Distance   float64 // light years
	Spectral   string
	RAText     string
	DecText    string
}

// Bayer returns the Bayer designation, e.g. "α CMa".
func (s Star) Bayer() string {
	return s.Bayer1 + " " + s.Bayer2
}

// Name returns the common name, or the Bayer designation for unnamed stars.
func (s Star) Name() string {
	if s.CommonName == missing {
		return s.Bayer()
	}
	return s.CommonName
}

func (s Star) Details() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Magnitude: %s\n", s.Magnitude)
	fmt.Fprintf(&b, "Common name: %s\n", s.CommonName)
	fmt.Fprintf(&b, "Bayer: %s %s\n", s.Bayer1, s.Bayer2)
	fmt.Fprintf(&b, "Distance (ly): %s\n", strconv.FormatFloat(s.Distance, 'f', -1, 64))
	fmt.Fprintf(&b, "Spectral: %s\n", s.Spectral)
	return b.String()
}

func (s Star) RA() string  { return s.RAText }
func (s Star) Dec() string { return s.DecText }
func (s Star) Kind() Kind  { return KindStar }

func (s Star) Aliases() []string {
	return []string{s.CommonName, s.Bayer()}
}
