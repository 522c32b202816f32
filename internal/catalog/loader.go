package catalog

import (
	"bufio"
	"embed"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/litescript/ls-celestial/internal/astro"
)

//go:embed data/messier_objects.tsv data/stars.tsv
var dataFS embed.FS

// Embedded catalog files.
const (
	MessierFile = "data/messier_objects.tsv"
	StarsFile   = "data/stars.tsv"
)

const (
	messierColumns = 10
	starColumns    = 8
)

// ErrShortRow reports a row with fewer columns than the catalog needs.
var ErrShortRow = errors.New("short catalog row")

var (
	raFraction  = regexp.MustCompile(`[.][0-9]*s`)
	decFraction = regexp.MustCompile(`[.][0-9]*″`)
)

// LoadResult is the outcome of reading one catalog file.
type LoadResult struct {
	Catalog *Catalog
	// Masked names entries whose coordinates failed to parse; they are kept
	// at RA 0h, Dec 0°.
	Masked []string
	// RowErrors holds one error per skipped row.
	RowErrors []error
}

// Load reads a tab-separated catalog of the given kind. The first line is a
// header; blank lines are ignored. Bad rows are skipped and reported in
// RowErrors; only read failures are returned as an error.
func Load(r io.Reader, kind Kind) (*LoadResult, error) {
	var parse func(fields []string, row int) (Object, error)
	switch kind {
	case KindMessier:
		parse = parseMessier
	case KindStar:
		parse = parseStar
	default:
		return nil, fmt.Errorf("load catalog: unknown kind %d", kind)
	}

	res := &LoadResult{Catalog: &Catalog{Kind: kind}}

	scanner := bufio.NewScanner(r)
	row := 0
	for scanner.Scan() {
		row++
		if row == 1 {
			continue
		}
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		obj, err := parse(strings.Split(line, "\t"), row)
		if err != nil {
			res.RowErrors = append(res.RowErrors, err)
			continue
		}

		pos, err := astro.ParseEquatorialStrict(obj.RA(), obj.Dec())
		if err != nil {
			res.Masked = append(res.Masked, obj.Name())
		}
		res.Catalog.Entries = append(res.Catalog.Entries, Entry{Object: obj, Position: pos})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s catalog: %w", kind, err)
	}

	return res, nil
}

// LoadMessier reads a Messier catalog.
func LoadMessier(r io.Reader) (*LoadResult, error) {
	return Load(r, KindMessier)
}

// LoadStars reads a bright-star catalog.
func LoadStars(r io.Reader) (*LoadResult, error) {
	return Load(r, KindStar)
}

// LoadFile reads a catalog from disk.
func LoadFile(path string, kind Kind) (*LoadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	return Load(f, kind)
}

// Default reads the catalog embedded in the binary.
func Default(kind Kind) (*LoadResult, error) {
	name := MessierFile
	if kind == KindStar {
		name = StarsFile
	}

	f, err := dataFS.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open embedded catalog: %w", err)
	}
	defer f.Close()

	return Load(f, kind)
}

func parseMessier(fields []string, row int) (Object, error) {
	if len(fields) < messierColumns {
		return nil, errors.Wrapf(ErrShortRow, "row %d: %d columns, want %d", row, len(fields), messierColumns)
	}
	return MessierObject{
		Messier:       fields[0],
		NGC:           fields[1],
		CommonName:    fields[2],
		Picture:       fields[3],
		Type:          fields[4],
		Distance:      fields[5],
		Constellation: fields[6],
		Magnitude:     fields[7],
		RAText:        raFraction.ReplaceAllString(fields[8], "s"),
		DecText:       decFraction.ReplaceAllString(fields[9], "″"),
	}, nil
}

func parseStar(fields []string, row int) (Object, error) {
	if len(fields) < starColumns {
		return nil, errors.Wrapf(ErrShortRow, "row %d: %d columns, want %d", row, len(fields), starColumns)
	}
	distance, err := strconv.ParseFloat(strings.TrimSpace(fields[4]), 64)
	if err != nil {
		return nil, errors.Wrapf(err, "row %d: invalid distance", row)
	}
	return Star{
		Magnitude:  fields[0],
		CommonName: fields[1],
		Bayer1:     fields[2],
		Bayer2:     fields[3],
		Distance:   distance,
		Spectral:   fields[5],
		RAText:     fields[6],
		DecText:    fields[7],
	}, nil
}
