package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-celestial/internal/astro"
	"github.com/litescript/ls-celestial/internal/sky"
)

// Visibility display colors
const (
	colorVisHigh   = "#7CFC00" // Lawn green - high altitude
	colorVisMedium = "#FFD700" // Gold - middle altitude
	colorVisLow    = "#FF6347" // Tomato - low altitude
	colorVisNone   = "#444444" // Dark gray - below horizon

	// Sun separation colors
	colorSunSafe    = "#7CFC00" // Green - safe (>=20°)
	colorSunCaution = "#FFD700" // Gold - caution (10-20°)
	colorSunWarning = "#FF4500" // Orange-red - warning (<10°)
)

// RenderVisibilityPanel renders the rise, transit and set times of one object.
// Format:
//
//	Rise 18:18   Peak 23:50 @ 24°   Set 05:20
//	Circumpolar, peak 03:04 @ 80°
//	Never rises
func RenderVisibilityPanel(info *sky.VisibilityInfo, loc *time.Location) string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))

	if info == nil || !info.Window.Valid {
		return dimStyle.Render("No data")
	}
	if loc == nil {
		loc = time.Local
	}

	band := astro.BandFor(info.Window.MaxAltitude)
	vw := info.Window

	if vw.NeverVisible {
		return dimStyle.Render(fmt.Sprintf("Never rises (peak %.0f°)", vw.MaxAltitude))
	}
	if vw.AlwaysVisible {
		return colorByBand(band, fmt.Sprintf("Circumpolar, peak %s @ %.0f°",
			vw.Transit.In(loc).Format("15:04"), vw.MaxAltitude))
	}

	var parts []string
	if !vw.Rise.IsZero() {
		parts = append(parts, fmt.Sprintf("Rise %s", vw.Rise.In(loc).Format("15:04")))
	}
	if !vw.Transit.IsZero() {
		parts = append(parts, fmt.Sprintf("Peak %s @ %.0f°", vw.Transit.In(loc).Format("15:04"), vw.MaxAltitude))
	}
	if !vw.Set.IsZero() {
		parts = append(parts, fmt.Sprintf("Set %s", vw.Set.In(loc).Format("15:04")))
	}
	if len(parts) == 0 {
		return dimStyle.Render("Calculating...")
	}
	return colorByBand(band, strings.Join(parts, "   "))
}

// bandToBar converts an altitude band to a 4-character bar representation.
func bandToBar(b astro.AltitudeBand) string {
	switch b {
	case astro.BandHigh:
		return "████"
	case astro.BandMiddle:
		return "██░░"
	case astro.BandLow:
		return "█░░░"
	default:
		return "░░░░"
	}
}

// bandToColor returns the color for an altitude band.
func bandToColor(b astro.AltitudeBand) string {
	switch b {
	case astro.BandHigh:
		return colorVisHigh
	case astro.BandMiddle:
		return colorVisMedium
	case astro.BandLow:
		return colorVisLow
	default:
		return colorVisNone
	}
}

// colorByBand applies band-based coloring to text.
func colorByBand(b astro.AltitudeBand, text string) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(bandToColor(b)))
	return style.Render(text)
}

// RenderCurrentAltitude renders the current altitude with its band bar.
func RenderCurrentAltitude(alt float64) string {
	band := astro.BandFor(alt)
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(bandToColor(band)))
	if alt <= astro.HorizonAltitude {
		return style.Render(bandToBar(band) + " below horizon")
	}
	return style.Render(fmt.Sprintf("%s %.0f° (%s)", bandToBar(band), alt, band))
}

// RenderSunSeparation renders the sun separation angle with appropriate styling.
func RenderSunSeparation(info *sky.VisibilityInfo) string {
	if info == nil {
		return ""
	}

	style := lipgloss.NewStyle().Foreground(lipgloss.Color(sunTierToColor(info.SunSepTier)))
	value := fmt.Sprintf("%.1f°", info.SunSep)

	var status string
	switch info.SunSepTier {
	case astro.SunSepWarning:
		status = " (warning)"
	case astro.SunSepCaution:
		status = " (caution)"
	}

	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	return dimStyle.Render("sun-sep: ") + style.Render(value+status)
}

// sunTierToColor returns the color for a sun separation tier.
func sunTierToColor(tier astro.SunSeparationTier) string {
	switch tier {
	case astro.SunSepWarning:
		return colorSunWarning
	case astro.SunSepCaution:
		return colorSunCaution
	default:
		return colorSunSafe
	}
}
