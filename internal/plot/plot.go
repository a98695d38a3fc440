// Package plot renders query results as a horizontal bar chart in the terminal.
package plot

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kailas-cloud/vecrud/internal/domain/query/result"
)

// Chart labels.
const (
	Title     = "Query results"
	AxisLabel = "Relevance"
)

const (
	defaultBarWidth   = 40
	defaultLabelWidth = 32
	barGlyph          = "█"
	ellipsis          = "…"
)

// Options tune the chart.
type Options struct {
	// UseScores sizes bars by similarity score instead of a uniform relevance of 1.
	UseScores bool
	// BarWidth is the length in cells of a bar with relevance 1.
	BarWidth int
	// LabelWidth is the column width of the document labels.
	LabelWidth int
}

func (o Options) withDefaults() Options {
	if o.BarWidth <= 0 {
		o.BarWidth = defaultBarWidth
	}
	if o.LabelWidth <= 0 {
		o.LabelWidth = defaultLabelWidth
	}
	return o
}

// Render draws one bar per matched document. The no-results set draws nothing.
// Colours are dropped when w is not a terminal.
func Render(w io.Writer, set result.Set, opts Options) error {
	if !set.Found() {
		return nil
	}
	opts = opts.withDefaults()

	r := lipgloss.NewRenderer(w)
	titleStyle := r.NewStyle().Bold(true)
	labelStyle := r.NewStyle().Width(opts.LabelWidth).Align(lipgloss.Right).PaddingRight(1)
	barStyle := r.NewStyle().Foreground(lipgloss.Color("#7C3AED"))
	valueStyle := r.NewStyle().Faint(true)

	var b strings.Builder
	b.WriteString(titleStyle.Render(Title))
	b.WriteByte('\n')

	docs := set.Documents()
	scores := set.Scores()
	for i, doc := range docs {
		value := 1.0
		if opts.UseScores {
			value = scores[i]
		}
		label := labelStyle.Render(truncate(oneLine(doc), opts.LabelWidth-1))
		bar := barStyle.Render(strings.Repeat(barGlyph, barLength(value, opts.BarWidth)))
		fmt.Fprintf(&b, "%s│%s %s\n", label, bar, valueStyle.Render(fmt.Sprintf("%.2f", value)))
	}

	axisPad := strings.Repeat(" ", opts.LabelWidth)
	fmt.Fprintf(&b, "%s└%s\n", axisPad, strings.Repeat("─", opts.BarWidth))
	fmt.Fprintf(&b, "%s %s\n", axisPad, AxisLabel)

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	return nil
}

// barLength maps a relevance in [0, 1] to cells; out-of-range values are clamped.
func barLength(value float64, width int) int {
	switch {
	case value <= 0:
		return 0
	case value >= 1:
		return width
	default:
		return int(value*float64(width) + 0.5)
	}
}

func truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= limit {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > limit {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + ellipsis
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
