// Package catalog loads and describes the Messier and bright-star catalogs.
package catalog

import (
	"fmt"
	"strings"

	"github.com/litescript/ls-celestial/internal/astro"
)

// Kind identifies a catalog.
type Kind int

const (
	KindMessier Kind = iota
	KindStar
)

// Kinds lists every catalog in display order.
var Kinds = []Kind{KindMessier, KindStar}

func (k Kind) String() string {
	switch k {
	case KindMessier:
		return "messier"
	case KindStar:
		return "stars"
	default:
		return "unknown"
	}
}

// Title returns a display title for the catalog.
func (k Kind) Title() string {
	switch k {
	case KindMessier:
		return "Messier objects"
	case KindStar:
		return "Stars"
	default:
		return "Unknown"
	}
}

// ParseKind parses a catalog name such as "messier" or "stars".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "messier", "m":
		return KindMessier, nil
	case "stars", "star", "s":
		return KindStar, nil
	default:
		return 0, fmt.Errorf("unknown catalog %q", s)
	}
}

// Object is a catalogued sky object.
type Object interface {
	// Name is the short label shown in tables.
	Name() string
	// Details is a multi-line description, one "Label: value" per line.
	Details() string
	// RA and Dec are the catalog coordinate strings as loaded.
	RA() string
	Dec() string
	Kind() Kind
	// Aliases are alternative names accepted by lookups.
	Aliases() []string
}

// Entry pairs an object with its parsed position.
type Entry struct {
	Object
	Position astro.Equatorial
}

// Key identifies the entry across catalogs, e.g. "messier/M31 ⬭".
func (e Entry) Key() string {
	return e.Kind().String() + "/" + e.Name()
}

// Catalog is an ordered list of entries of a single kind.
type Catalog struct {
	Kind    Kind
	Entries []Entry
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Entries)
}

// Find returns the entry matching name. Exact matches on the table name
// or an alias win over case-insensitive prefix matches.
func (c *Catalog) Find(name string) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	query := strings.ToLower(strings.TrimSpace(name))
	if query == "" {
		return Entry{}, false
	}

	for _, e := range c.Entries {
		for _, key := range keys(e) {
			if key == query {
				return e, true
			}
		}
	}
	for _, e := range c.Entries {
		for _, key := range keys(e) {
			if strings.HasPrefix(key, query) {
				return e, true
			}
		}
	}
	return Entry{}, false
}

func keys(e Entry) []string {
	out := []string{strings.ToLower(strings.TrimSpace(e.Name()))}
	for _, a := range e.Aliases() {
		if a == "" || a == missing {
			continue
		}
		out = append(out, strings.ToLower(a))
	}
	return out
}

// missing is the placeholder used by the catalogs for empty fields.
const missing = "–"
