package chart

import (
	"fmt"
	"strings"
	"time"

	"github.com/sherine-k/outbreak/pkg/simulation"
)

const (
	chartWidth  = 80
	chartHeight = 20
)

// Glyphs used in the status chart, bottom band first.
const (
	glyphDeceased    = '#'
	glyphRecovered   = '+'
	glyphInfected    = '*'
	glyphSusceptible = '.'
)

// Generator generates ASCII charts
type Generator struct {
	width  int
	height int
}

// NewGenerator creates a new chart generator
func NewGenerator() *Generator {
	return &Generator{
		width:  chartWidth,
		height: chartHeight,
	}
}

// GenerateStatusChart generates a stacked ASCII chart of the population share
// in each health state over time.
func (g *Generator) GenerateStatusChart(timePoints []simulation.TimePoint) string {
	if len(timePoints) == 0 {
		return "No data to display"
	}

	var sb strings.Builder

	// Header
	sb.WriteString("\n")
	sb.WriteString("Population Status Over Time\n")
	sb.WriteString(strings.Repeat("=", g.width))
	sb.WriteString("\n\n")

	plotWidth := g.width - 6
	columns := len(timePoints)
	if columns > plotWidth {
		columns = plotWidth
	}

	// Pick the time point shown in each column
	sampled := make([]simulation.TimePoint, columns)
	for x := 0; x < columns; x++ {
		pointIndex := 0
		if columns > 1 {
			pointIndex = int(float64(x) / float64(columns-1) * float64(len(timePoints)-1))
		}
		if pointIndex >= len(timePoints) {
			pointIndex = len(timePoints) - 1
		}
		sampled[x] = timePoints[pointIndex]
	}

	// Build the chart from top to bottom
	for row := g.height; row >= 1; row-- {
		pct := row * 100 / g.height
		if row == g.height || row%5 == 0 {
			sb.WriteString(fmt.Sprintf("%3d%%|", pct))
		} else {
			sb.WriteString("    |")
		}

		for _, tp := range sampled {
			sb.WriteRune(cellGlyph(tp.Statistics, row, g.height))
		}
		sb.WriteString("\n")
	}

	// X-axis
	sb.WriteString("    +")
	sb.WriteString(strings.Repeat("-", columns))
	sb.WriteString("\n")

	// Day markers
	sb.WriteString("     ")
	sb.WriteString(dayMarkers(sampled))
	sb.WriteString("\n")

	// Legend
	sb.WriteString("\n")
	sb.WriteString("Legend:\n")
	sb.WriteString(fmt.Sprintf("  %c - Susceptible\n", glyphSusceptible))
	sb.WriteString(fmt.Sprintf("  %c - Infected\n", glyphInfected))
	sb.WriteString(fmt.Sprintf("  %c - Recovered\n", glyphRecovered))
	sb.WriteString(fmt.Sprintf("  %c - Deceased\n", glyphDeceased))
	sb.WriteString("\n")

	return sb.String()
}

// cellGlyph picks the band the middle of a row falls into. Bands are stacked
// deceased, recovered, infected, susceptible from the bottom.
func cellGlyph(stats simulation.Statistics, row, height int) rune {
	if stats.Total == 0 {
		return ' '
	}
	level := (float64(row) - 0.5) / float64(height) * float64(stats.Total)

	switch {
	case level < float64(stats.Deceased):
		return glyphDeceased
	case level < float64(stats.Deceased+stats.Recovered):
		return glyphRecovered
	case level < float64(stats.Deceased+stats.Recovered+stats.Infected):
		return glyphInfected
	default:
		return glyphSusceptible
	}
}

// dayMarkers places "Nd" labels under the columns, skipping labels that would
// overlap the previous one.
func dayMarkers(sampled []simulation.TimePoint) string {
	labelLine := make([]rune, len(sampled))
	for i := range labelLine {
		labelLine[i] = ' '
	}

	next := 0
	lastDay := -1
	for position, tp := range sampled {
		if position < next || tp.Day == lastDay {
			continue
		}
		if tp.Day%10 != 0 && position != 0 {
			continue
		}

		// Format day marker
		marker := fmt.Sprintf("%dd", tp.Day)

		// Place marker if it fits
		if position+len(marker) > len(labelLine) {
			break
		}
		for i, ch := range marker {
			labelLine[position+i] = ch
		}
		next = position + len(marker) + 1
		lastDay = tp.Day
	}

	return strings.TrimRight(string(labelLine), " ")
}

// GenerateEventSummary generates a summary of events
func (g *Generator) GenerateEventSummary(events []simulation.Event, timePoints []simulation.TimePoint) string {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString("Event Summary\n")
	sb.WriteString(strings.Repeat("=", g.width))
	sb.WriteString("\n\n")

	// Group events by type
	eventsByType := make(map[simulation.EventType]int)
	for _, event := range events {
		eventsByType[event.Type]++
	}

	sb.WriteString(fmt.Sprintf("Total Events: %d\n", len(events)))
	sb.WriteString(fmt.Sprintf("  - Seeded Infections: %d\n", eventsByType[simulation.EventTypeSeeded]))
	sb.WriteString(fmt.Sprintf("  - Transmissions: %d\n", eventsByType[simulation.EventTypeInfected]))
	sb.WriteString(fmt.Sprintf("  - Recoveries: %d\n", eventsByType[simulation.EventTypeRecovered]))
	sb.WriteString(fmt.Sprintf("  - Deaths: %d\n", eventsByType[simulation.EventTypeDeceased]))
	sb.WriteString("\n")

	if len(timePoints) == 0 {
		return sb.String()
	}

	summary := simulation.Summarize(timePoints)
	final := timePoints[len(timePoints)-1]

	sb.WriteString(fmt.Sprintf("Final State (day %d):\n", final.Day))
	sb.WriteString(fmt.Sprintf("  - Susceptible: %d\n", final.Susceptible))
	sb.WriteString(fmt.Sprintf("  - Infected: %d\n", final.Infected))
	sb.WriteString(fmt.Sprintf("  - Recovered: %d\n", final.Recovered))
	sb.WriteString(fmt.Sprintf("  - Deceased: %d\n", final.Deceased))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Peak Infected: %d (day %d)\n", summary.PeakInfected, summary.PeakDay))
	sb.WriteString(fmt.Sprintf("Attack Rate: %s\n", FormatPercent(summary.AttackRate)))
	sb.WriteString(fmt.Sprintf("Case Fatality Rate: %s\n", FormatPercent(summary.CaseFatalityRate)))
	sb.WriteString("\n")

	return sb.String()
}

// GenerateDetailedTimeline generates a detailed timeline of events. A non-zero
// start prints the calendar date of each day.
func (g *Generator) GenerateDetailedTimeline(events []simulation.Event, limit int, start time.Time) string {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString("Detailed Timeline")
	if limit > 0 && limit < len(events) {
		sb.WriteString(fmt.Sprintf(" (showing first %d events)", limit))
	}
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", g.width))
	sb.WriteString("\n\n")

	displayCount := len(events)
	if limit > 0 && limit < displayCount {
		displayCount = limit
	}

	for i := 0; i < displayCount; i++ {
		event := events[i]
		stamp := fmt.Sprintf("day %3d", event.Day)
		if !start.IsZero() {
			stamp = fmt.Sprintf("%s %s", stamp, start.AddDate(0, 0, event.Day).Format("2006-01-02"))
		}

		typeIcon := " "
		switch event.Type {
		case simulation.EventTypeSeeded:
			typeIcon = "S"
		case simulation.EventTypeInfected:
			typeIcon = "+"
		case simulation.EventTypeRecovered:
			typeIcon = "R"
		case simulation.EventTypeDeceased:
			typeIcon = "X"
		}

		sb.WriteString(fmt.Sprintf("[%s] %s %s\n",
			stamp,
			typeIcon,
			event.Message))
	}

	if limit > 0 && limit < len(events) {
		sb.WriteString(fmt.Sprintf("\n... and %d more events\n", len(events)-limit))
	}

	sb.WriteString("\n")

	return sb.String()
}

// FormatPercent formats a fraction as a percentage
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}
