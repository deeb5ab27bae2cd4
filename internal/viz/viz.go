// Package viz renders the terminal dashboard: per-turn bars, session
// sparklines, and the full end-of-run table.
package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	driftStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	resStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	alertStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)
)

const barWidth = 19

// Bar renders a fixed-width fill bar for a [0,1] value.
func Bar(v float64) string {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	fill := int(v*float64(barWidth) + 0.5)
	return strings.Repeat("#", fill) + strings.Repeat(".", barWidth-fill)
}

var sparkGlyphs = []rune(" ▁▂▃▄▅▆▇█")

// Sparkline renders a series of [0,1] values as block glyphs.
func Sparkline(values []float64) string {
	var b strings.Builder
	for _, v := range values {
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		idx := int(v * float64(len(sparkGlyphs)-1))
		b.WriteRune(sparkGlyphs[idx])
	}
	return b.String()
}

// CompactTurn renders the one-line per-turn view.
func CompactTurn(idx int, drift, resonance float64, state string) string {
	return fmt.Sprintf("%s %s %s %s %s %s",
		labelStyle.Render(fmt.Sprintf("turn %02d", idx)),
		driftStyle.Render("drift"), Bar(drift),
		resStyle.Render("res"), Bar(resonance),
		labelStyle.Render(state))
}

// CompactStabilizer renders the stabilizer's compact status line.
func CompactStabilizer(state string, emaDrift, emaRes float64) string {
	line := fmt.Sprintf("state=%s ema_drift=%.2f ema_res=%.2f", state, emaDrift, emaRes)
	if state == "Overheat" {
		return alertStyle.Render(line)
	}
	return labelStyle.Render(line)
}

// TableRow is one line of the end-of-run table.
type TableRow struct {
	Index     int
	Utterance string
	Drift     float64
	Resonance float64
	State     string
	Guard     string
}

// FullTable renders the bordered end-of-run table.
func FullTable(rows []TableRow) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-4s %-28s %-7s %-7s %-9s %s",
		"turn", "utterance", "drift", "res", "state", "guard")))
	b.WriteString("\n")
	for _, r := range rows {
		utt := r.Utterance
		if len(utt) > 28 {
			utt = utt[:25] + "..."
		}
		b.WriteString(fmt.Sprintf("%-4d %-28s %-7.2f %-7.2f %-9s %s\n",
			r.Index, utt, r.Drift, r.Resonance, r.State, r.Guard))
	}
	return borderStyle.Render(strings.TrimRight(b.String(), "\n"))
}

// SessionSummary renders the closing sparklines block.
func SessionSummary(drift, resonance []float64) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("session"))
	b.WriteString("\n")
	b.WriteString(driftStyle.Render("drift ") + Sparkline(drift) + "\n")
	b.WriteString(resStyle.Render("res   ") + Sparkline(resonance))
	return b.String()
}
