package catalog

import (
	"fmt"
	"strings"
)

// MessierObject is one row of the Messier catalog. All fields are kept as
// the catalog text.
type MessierObject struct {
	Messier       string // M97
	NGC           string // NGC 3587
	CommonName    string // Owl Nebula
	Picture       string // M97.jpg
	Type          string // Planetary nebula
	Distance      string // kly
	Constellation string
	Magnitude     string
	RAText        string
	DecText       string
}

type typeAbbr struct {
	name string
	abbr string
}

// typeAbbrs maps lower-case type fragments to map symbols, in output order.
var typeAbbrs = []typeAbbr{
	{"supernova remnant", "□"},
	{"globular cluster", "⨁"},
	{"asterism", "◌"},
	{"open cluster", "◌"},
	{"diffuse nebula", "□"},
	{"h ii region nebula", "□"},
	{"nebula with", "□"},
	{"planetary nebula", "⌖"},
	{"galaxy", "⬭"},
}

// TypeAbbr returns the distinct symbols matching the object type, joined by ", ".
func (m MessierObject) TypeAbbr() string {
	lower := strings.ToLower(m.Type)

	var out []string
	seen := make(map[string]bool)
	for _, t := range typeAbbrs {
		if !strings.Contains(lower, t.name) || seen[t.abbr] {
			continue
		}
		seen[t.abbr] = true
		out = append(out, t.abbr)
	}
	return strings.Join(out, ", ")
}

// Name returns the designation padded to three columns and the type symbols.
func (m MessierObject) Name() string {
	return fmt.Sprintf("%-3s %s", m.Messier, m.TypeAbbr())
}

// Details lists NGC number, common name, type, distance, constellation and magnitude.
func (m MessierObject) Details() string {
	var b strings.Builder
	if m.NGC == missing {
		b.WriteString("NGC: –")
	} else {
		b.WriteString(m.NGC)
	}
	fmt.Fprintf(&b, "\nCommon name: %s\n", m.CommonName)
	fmt.Fprintf(&b, "Type: %s\n", m.Type)
	fmt.Fprintf(&b, "Distance (ly): %s\n", m.Distance)
	fmt.Fprintf(&b, "Constellation: %s\n", m.Constellation)
	fmt.Fprintf(&b, "Magnitude: %s\n", m.Magnitude)
	return b.String()
}

func (m MessierObject) RA() string  { return m.RAText }
func (m MessierObject) Dec() string { return m.DecText }
func (m MessierObject) Kind() Kind  { return KindMessier }

// Aliases returns the designation, NGC number and common name.
func (m MessierObject) Aliases() []string {
	return []string{m.Messier, m.NGC, m.CommonName}
}
