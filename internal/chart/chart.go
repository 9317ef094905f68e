// Package chart renders the dashboard charts as styled terminal text.
package chart

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/NimbleMarkets/ntcharts/canvas"
	"github.com/NimbleMarkets/ntcharts/linechart"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/barfriedman1/FDA-drug-recall/internal/aggregate"
	"github.com/barfriedman1/FDA-drug-recall/internal/recall"
)

var (
	colorClassI   = lipgloss.Color("#FF0000")
	colorClassII  = lipgloss.Color("#FFA500")
	colorClassIII = lipgloss.Color("#FFFF00")
	colorOther    = lipgloss.Color("#808080")
	colorAxis     = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#626262"}
	colorLine     = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"}

	axisStyle        = lipgloss.NewStyle().Foreground(colorAxis)
	labelStyle       = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#3D3D3D", Dark: "#ABABAB"})
	lineStyle        = lipgloss.NewStyle().Foreground(colorLine).Bold(true)
	placeholderStyle = lipgloss.NewStyle().Foreground(colorAxis).Italic(true)
)

const (
	marker     = '●'
	ellipsis   = "…"
	minBarCols = 10
	yLabelStep = 2
	xLabelStep = 8
)

// ClassColor is the fixed colour for a classification: Class I red, Class II
// orange, Class III yellow, anything else grey.
func ClassColor(classification string) lipgloss.Color {
	switch classification {
	case recall.ClassI:
		return colorClassI
	case recall.ClassII:
		return colorClassII
	case recall.ClassIII:
		return colorClassIII
	default:
		return colorOther
	}
}

// Legend lists the classification colours, Class I first.
func Legend() string {
	parts := make([]string, 0, 3)
	for _, cls := range recall.Classes() {
		swatch := lipgloss.NewStyle().Foreground(ClassColor(cls)).Render("■")
		parts = append(parts, swatch+" "+labelStyle.Render(cls))
	}
	return strings.Join(parts, "   ")
}

func placeholder(msg string, width int) string {
	return placeholderStyle.Width(width).Align(lipgloss.Center).Render(msg)
}

// StackedBars draws one horizontal bar per reason, segments stacked in the
// order given and scaled so the longest bar fills the available width.
func StackedBars(bars []aggregate.ReasonBar, width int) string {
	if len(bars) == 0 {
		return placeholder("No recalls to display", width)
	}

	maxTotal := 0
	longest := 0
	for _, b := range bars {
		maxTotal = max(maxTotal, b.Total)
		longest = max(longest, ansi.StringWidth(b.Reason))
	}

	countW := len(strconv.Itoa(maxTotal))
	labelW := min(longest, max(12, width/3))
	barW := max(width-labelW-countW-2, minBarCols)

	rows := make([]string, len(bars))
	for i, bar := range bars {
		rows[i] = labelStyle.Render(fitLabel(bar.Reason, labelW)) + " " +
			barRow(bar, maxTotal, barW) + " " +
			fmt.Sprintf("%*d", countW, bar.Total)
	}
	return strings.Join(rows, "\n")
}

// fitLabel cuts s to at most w terminal columns and pads it to exactly w.
func fitLabel(s string, w int) string {
	if w <= 0 {
		return ""
	}
	label := ansi.Truncate(s, w, ellipsis)
	return label + strings.Repeat(" ", max(0, w-ansi.StringWidth(label)))
}

// barRow renders one reason as a single-row horizontal ntcharts bar chart.
// Every row shares maxTotal so bar lengths compare across rows.
func barRow(bar aggregate.ReasonBar, maxTotal, width int) string {
	values := make([]barchart.BarValue, 0, len(bar.Segments))
	for _, seg := range bar.Segments {
		if seg.Count == 0 {
			continue
		}
		values = append(values, barchart.BarValue{
			Name:  seg.Classification,
			Value: float64(seg.Count),
			Style: lipgloss.NewStyle().Foreground(ClassColor(seg.Classification)),
		})
	}

	bc := barchart.New(width, 1,
		barchart.WithHorizontalBars(),
		barchart.WithNoAxis(),
		barchart.WithBarWidth(1),
		barchart.WithBarGap(0),
		barchart.WithMaxValue(float64(max(maxTotal, 1))),
		barchart.WithNoAutoMaxValue(),
	)
	bc.PushAll([]barchart.BarData{{Values: values}})
	bc.Draw()

	row, _, _ := strings.Cut(bc.View(), "\n")
	return row + strings.Repeat(" ", max(0, width-lipgloss.Width(row)))
}

// Line draws a markered line chart of counts per year, oldest year on the
// left. height is the number of rows including the axes.
func Line(points []aggregate.YearCount, width, height int) string {
	if len(points) == 0 {
		return placeholder("No dated recalls to display", width)
	}
	height = max(height, 4)
	width = max(width, 4*len(points)+8)

	pts := make([]canvas.Float64Point, 0, len(points))
	maxCount := 1
	for _, p := range points {
		x, err := strconv.ParseFloat(p.Year, 64)
		if err != nil {
			continue
		}
		pts = append(pts, canvas.Float64Point{X: x, Y: float64(p.Count)})
		maxCount = max(maxCount, p.Count)
	}
	if len(pts) == 0 {
		return placeholder("No dated recalls to display", width)
	}

	// Half a year of margin on each side.
	minX, maxX := pts[0].X-0.5, pts[len(pts)-1].X+0.5

	lc := linechart.New(width, height, minX, maxX, 0, float64(maxCount),
		linechart.WithXYSteps(xLabelStep, yLabelStep),
		linechart.WithStyles(axisStyle, labelStyle, lineStyle),
		linechart.WithXLabelFormatter(roundLabel),
		linechart.WithYLabelFormatter(roundLabel),
	)
	lc.DrawXYAxisAndLabel()

	for j := 1; j < len(pts); j++ {
		lc.DrawBrailleLine(pts[j-1], pts[j])
	}
	for _, pt := range pts {
		lc.DrawRune(pt, marker)
	}
	return lc.View()
}

func roundLabel(_ int, v float64) string {
	return strconv.Itoa(int(math.Round(v)))
}
