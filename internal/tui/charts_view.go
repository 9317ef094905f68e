package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/barfriedman1/FDA-drug-recall/internal/aggregate"
	"github.com/barfriedman1/FDA-drug-recall/internal/chart"
)

const (
	lineChartHeight = 10
	dataSourceLine  = "Data source: FDA Recall Enforcement Reports via OpenFDA REST API"
)

const classificationInfo = `**FDA Recall Classifications:**

- **Class I (Red):** Dangerous - could cause serious injury or death
- **Class II (Orange):** May cause temporary health problems
- **Class III (Yellow):** Unlikely to cause adverse health reactions
`

// Markdown renders a markdown block at the given width.
type Markdown func(md string, width int) string

// GlamourMarkdown renders with glamour using a fixed style ("dark", "light"
// or "notty"). Renderers are built per width and reused.
func GlamourMarkdown(style string) Markdown {
	renderers := make(map[int]*glamour.TermRenderer)
	return func(md string, width int) string {
		r, ok := renderers[width]
		if !ok {
			var err error
			r, err = glamour.NewTermRenderer(
				glamour.WithStandardStyle(style),
				glamour.WithWordWrap(width),
			)
			if err != nil {
				return md
			}
			renderers[width] = r
		}
		out, err := r.Render(md)
		if err != nil {
			return md
		}
		return strings.Trim(out, "\n")
	}
}

// ChartOpts carries the non-view inputs of the chart pane.
type ChartOpts struct {
	Width       int
	LastUpdated string
	Markdown    Markdown
	Hints       bool
}

// RenderCharts lays out both graphs with their badges, legend, info block and
// data source line.
func RenderCharts(v aggregate.View, opts ChartOpts) string {
	w := max(opts.Width, 20)
	var sections []string

	sections = append(sections,
		subheader("Graph 1: Number of Recalls by Reason", w),
		badgeBlueStyle.Render("▲ Top reasons for drug recalls, colored by severity classification"),
		badgeGreenStyle.Render("✓ "+coverageBadge(v)),
		"",
		chart.StackedBars(v.Bars, w),
		"",
		chart.Legend(),
	)
	if opts.Hints {
		sections = append(sections, hintStyle.Render("1-4 isolates a classification. tab then j/k scrolls."))
	}
	info := classificationInfo
	if opts.Markdown != nil {
		info = opts.Markdown(classificationInfo, w)
	}
	sections = append(sections, "", info, "")

	sections = append(sections,
		subheader("Graph 2: Drug Recalls Over Time", w),
		badgeBlueStyle.Render("▲ Trend of drug recalls by year"),
		"",
		chart.Line(v.Years, w, lineChartHeight),
	)
	if opts.Hints {
		sections = append(sections, hintStyle.Render("Years without a report date are left out."))
	}

	source := dataSourceLine
	if opts.LastUpdated != "" {
		source += " (last updated " + opts.LastUpdated + ")"
	}
	sections = append(sections, "", dimStyle.Render(strings.Repeat("─", w)), dimStyle.Render(source))

	return strings.Join(sections, "\n")
}

func coverageBadge(v aggregate.View) string {
	return fmt.Sprintf("Graph 1 displays %d out of %d recalls (%.1f%% of data)", v.Displayed, v.Filtered, v.Coverage)
}

func subheader(title string, width int) string {
	t := lipgloss.PlaceHorizontal(width, lipgloss.Center, subheaderStyle.Render(title))
	return t + "\n" + dimStyle.Render(strings.Repeat("─", width))
}

// formatLastUpdated turns openFDA's YYYY-MM-DD meta date into "Jan 2, 2006".
// Anything else is returned as is.
func formatLastUpdated(s string) string {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return s
	}
	return t.Format("Jan 2, 2006")
}
