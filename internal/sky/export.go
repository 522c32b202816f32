package sky

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/litescript/ls-celestial/internal/astro"
	"github.com/litescript/ls-celestial/internal/catalog"
)

// SnapshotExport is the JSON-serializable representation of a snapshot.
type SnapshotExport struct {
	ComputedAt time.Time      `json:"computed_at"`
	UTC        time.Time      `json:"utc"`
	JulianDate float64        `json:"julian_date"`
	DUT1       float64        `json:"dut1_seconds"`
	GMST       string         `json:"gmst"`
	LST        string         `json:"lst"`
	Twilight   string         `json:"twilight"`
	Observer   ObserverExport `json:"observer"`
	Objects    []ObjectExport `json:"objects"`
}

// ObserverExport is a JSON-friendly observer.
type ObserverExport struct {
	Name      string  `json:"name,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ObjectExport is a JSON-friendly position.
type ObjectExport struct {
	Name         string  `json:"name"`
	Catalog      string  `json:"catalog"`
	RA           string  `json:"ra"`
	Dec          string  `json:"dec"`
	RAHours      float64 `json:"ra_hours"`
	DecDegrees   float64 `json:"dec_degrees"`
	Altitude     float64 `json:"altitude"`
	Azimuth      float64 `json:"azimuth"`
	HourAngle    string  `json:"hour_angle"`
	Band         string  `json:"band"`
	AboveHorizon bool    `json:"above_horizon"`
}

// ExportSnapshot converts a snapshot to its exportable form.
func ExportSnapshot(snap Snapshot) *SnapshotExport {
	export := &SnapshotExport{
		ComputedAt: snap.ComputedAt,
		UTC:        snap.Times.UTC,
		JulianDate: snap.Times.JD,
		DUT1:       snap.Times.DUT1.Seconds(),
		GMST:       astro.FormatHMS(snap.Times.GMST),
		LST:        astro.FormatHMS(snap.LST),
		Twilight:   snap.Twilight.String(),
		Observer: ObserverExport{
			Name:      snap.Observer.Name,
			Latitude:  snap.Observer.LatDeg,
			Longitude: snap.Observer.LonDeg,
		},
		Objects: make([]ObjectExport, 0, len(snap.Positions)),
	}

	for _, p := range snap.Positions {
		export.Objects = append(export.Objects, ObjectExport{
			Name:         p.Name,
			Catalog:      p.Kind.String(),
			RA:           astro.SexagesimalRA(p.Equatorial),
			Dec:          astro.SexagesimalDec(p.Equatorial),
			RAHours:      p.Equatorial.RAHours(),
			DecDegrees:   p.Equatorial.Dec,
			Altitude:     round(p.Altitude, 4),
			Azimuth:      round(p.Azimuth, 4),
			HourAngle:    astro.FormatHMS(p.HourAngle),
			Band:         p.Band.String(),
			AboveHorizon: p.AboveHorizon(),
		})
	}
	return export
}

// WriteJSON writes the snapshot as indented JSON.
func (s *SnapshotExport) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// WriteHeader writes the clock block shown above every headless output.
func WriteHeader(w io.Writer, snap Snapshot) {
	site := snap.Observer.Name
	if site == "" {
		site = "Observer"
	}
	fmt.Fprintf(w, "%s  lat %+f  lon %+f\n", site, snap.Observer.LatDeg, snap.Observer.LonDeg)
	fmt.Fprintf(w, "Local %s  UTC %s  GMST %s  LST %s  (%s)\n",
		snap.Times.Local.Format("15:04:05"),
		snap.Times.UTC.Format("15:04:05"),
		astro.FormatHMS(snap.Times.GMST),
		astro.FormatHMS(snap.LST),
		snap.Twilight,
	)
}

// WriteSummaryTable writes one text table per catalog in the snapshot.
func WriteSummaryTable(w io.Writer, snap Snapshot) {
	WriteHeader(w, snap)

	if len(snap.Positions) == 0 {
		fmt.Fprintln(w, strings.Repeat("─", 60))
		fmt.Fprintln(w, "No objects loaded")
		return
	}

	for _, kind := range catalog.Kinds {
		rows := snap.ByKind(kind)
		if len(rows) == 0 {
			continue
		}

		fmt.Fprintln(w)
		fmt.Fprintln(w, kind.Title())
		fmt.Fprintln(w, strings.Repeat("─", 60))
		fmt.Fprintf(w, "%s %5s %5s  %-7s  %-8s  %s\n",
			padRight("Name", 16), "Alt", "Az", "HA", "Dec", "Band")
		fmt.Fprintln(w, strings.Repeat("─", 60))

		for _, p := range rows {
			fmt.Fprintf(w, "%s %5s %5s  %-7s  %s  %s\n",
				padRight(truncateStr(p.Name, 16), 16),
				AltitudeColumn(p.Altitude),
				AzimuthColumn(p.Azimuth),
				p.HourAngleText,
				padRight(p.DecText, 8),
				p.Band,
			)
		}
		fmt.Fprintf(w, "\n%d of %d above the horizon\n", snap.CountAbove(kind), len(rows))
	}
}

// WriteObjectCard writes the detail card of one object.
// info may be nil when rise and set are not known.
func WriteObjectCard(w io.Writer, snap Snapshot, p Position, info *VisibilityInfo) {
	WriteHeader(w, snap)
	fmt.Fprintln(w, strings.Repeat("─", 60))
	fmt.Fprintf(w, "%s  (%s)\n", p.Name, p.Kind.Title())
	fmt.Fprintf(w, "  RA %s  Dec %s\n", astro.FormatHMS(p.Equatorial.RA), astro.FormatDMS(p.Equatorial.Dec))
	fmt.Fprintf(w, "  Altitude %s  Azimuth %s  Hour angle %s  [%s]\n",
		astro.FormatDMS(p.Altitude), astro.FormatDegrees(p.Azimuth), astro.FormatHMS(p.HourAngle), p.Band)

	if info != nil {
		loc := snap.Times.Local.Location()
		fmt.Fprintf(w, "  %s\n", DescribeWindow(info.Window, loc))
		fmt.Fprintf(w, "  Sun separation %.1f°\n", info.SunSep)
		if len(info.Trace) > 0 {
			fmt.Fprintf(w, "  ±12h %s\n", Sparkline(info.Trace))
		}
	}

	if p.Details != "" {
		fmt.Fprintln(w)
		for _, line := range strings.Split(strings.TrimRight(p.Details, "\n"), "\n") {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
}

// DescribeWindow summarizes a visibility window in one line.
func DescribeWindow(vw astro.VisibilityWindow, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	clock := func(t time.Time) string {
		if t.IsZero() {
			return "--:--"
		}
		return t.In(loc).Format("15:04")
	}

	switch {
	case !vw.Valid:
		return "Rise/set unknown"
	case vw.AlwaysVisible:
		return fmt.Sprintf("Circumpolar, transit %s at %+.0f°", clock(vw.Transit), vw.MaxAltitude)
	case vw.NeverVisible:
		return fmt.Sprintf("Never rises, peak %+.0f°", vw.MaxAltitude)
	default:
		return fmt.Sprintf("Rise %s  Transit %s (%+.0f°)  Set %s",
			clock(vw.Rise), clock(vw.Transit), vw.MaxAltitude, clock(vw.Set))
	}
}

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// Sparkline renders altitude samples on a 0..90 scale. Samples below the
// horizon use '_'.
func Sparkline(samples []astro.AltitudeSample) string {
	var b strings.Builder
	for _, s := range samples {
		if s.Altitude <= astro.HorizonAltitude {
			b.WriteRune('_')
			continue
		}
		idx := int(s.Altitude / 90 * float64(len(sparkBlocks)))
		if idx >= len(sparkBlocks) {
			idx = len(sparkBlocks) - 1
		}
		b.WriteRune(sparkBlocks[idx])
	}
	return b.String()
}

// MiniSkyConfig sizes the ASCII horizon plot.
type MiniSkyConfig struct {
	Width   int // plot columns, azimuth 0..360
	Height  int // plot rows, altitude 0..90
	MaxList int // legend entries
}

// DefaultMiniSkyConfig returns the default plot size.
func DefaultMiniSkyConfig() MiniSkyConfig {
	return MiniSkyConfig{Width: 72, Height: 12, MaxList: 20}
}

const markers = "123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// WriteMiniSky plots objects above the horizon, azimuth left to right
// (N E S W N) and altitude bottom to top. The highest objects get markers.
func WriteMiniSky(w io.Writer, snap Snapshot, cfg MiniSkyConfig) {
	if cfg.Width < 8 || cfg.Height < 3 {
		cfg = DefaultMiniSkyConfig()
	}

	var visible []Position
	for _, p := range snap.Positions {
		if p.AboveHorizon() {
			visible = append(visible, p)
		}
	}
	if len(visible) == 0 {
		fmt.Fprintln(w, "No objects above the horizon")
		return
	}
	sort.SliceStable(visible, func(i, j int) bool {
		return visible[i].Altitude > visible[j].Altitude
	})
	limit := cfg.MaxList
	if limit <= 0 || limit > len(markers) {
		limit = len(markers)
	}
	if len(visible) > limit {
		visible = visible[:limit]
	}

	grid := make([][]rune, cfg.Height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", cfg.Width))
	}
	// Plot lowest first so higher objects win shared cells.
	for i := len(visible) - 1; i >= 0; i-- {
		p := visible[i]
		col := int(p.Azimuth / 360 * float64(cfg.Width))
		row := cfg.Height - 1 - int(p.Altitude/90*float64(cfg.Height))
		col = clampInt(col, 0, cfg.Width-1)
		row = clampInt(row, 0, cfg.Height-1)
		grid[row][col] = rune(markers[i])
	}

	fmt.Fprintf(w, "┌%s┐ 90°\n", strings.Repeat("─", cfg.Width))
	for _, line := range grid {
		fmt.Fprintf(w, "│%s│\n", string(line))
	}
	fmt.Fprintf(w, "└%s┘ 0°\n", strings.Repeat("─", cfg.Width))
	fmt.Fprintf(w, " %s\n", compassRuler(cfg.Width))

	for i, p := range visible {
		fmt.Fprintf(w, " %c %s alt %s az %s\n", markers[i], padRight(p.Name, 16), AltitudeColumn(p.Altitude), AzimuthColumn(p.Azimuth))
	}
}

func compassRuler(width int) string {
	ruler := []rune(strings.Repeat(" ", width+1))
	for i, label := range []rune("NESWN") {
		col := i * width / 4
		if col > width {
			col = width
		}
		ruler[col] = label
	}
	return string(ruler)
}

// WriteEvents writes the last limit events, newest last.
func WriteEvents(w io.Writer, events []Event, limit int) {
	fmt.Fprintln(w, "Events")
	fmt.Fprintln(w, strings.Repeat("─", 60))
	if len(events) == 0 {
		fmt.Fprintln(w, "No horizon events yet")
		return
	}
	if limit > 0 && len(events) > limit {
		events = events[len(events)-limit:]
	}
	for _, e := range events {
		fmt.Fprintf(w, "%s  %-9s %s  alt %s az %s\n",
			e.Timestamp.Format("15:04:05"),
			e.Type,
			padRight(e.Object, 16),
			AltitudeColumn(e.Altitude),
			AzimuthColumn(e.Azimuth),
		)
	}
}

// truncateStr shortens s to maxLen terminal cells.
func truncateStr(s string, maxLen int) string {
	if runewidth.StringWidth(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return runewidth.Truncate(s, maxLen, "")
	}
	return runewidth.Truncate(s, maxLen, "..")
}

// padRight pads s with spaces to n terminal cells.
func padRight(s string, n int) string {
	return runewidth.FillRight(s, n)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
