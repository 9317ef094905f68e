// Package aggregate derives the filtered subsets and grouped counts the
// dashboard charts are drawn from.
package aggregate

import (
	"sort"

	"github.com/barfriedman1/FDA-drug-recall/internal/recall"
)

// DefaultTopN is how many reasons the bar chart shows.
const DefaultTopN = 8

// ReasonCount is a reason with its number of records.
type ReasonCount struct {
	Reason string
	Count  int
}

// ClassCount is one segment of a stacked bar.
type ClassCount struct {
	Classification string
	Count          int
}

// ReasonBar is one bar of the reason chart: the per-classification counts for
// a single reason, segments ordered Class I, II, III, then anything else.
type ReasonBar struct {
	Reason   string
	Segments []ClassCount
	Total    int
}

// YearCount is one point of the time series.
type YearCount struct {
	Year  string
	Count int
}

// View is everything the presentation layer needs for one filter selection.
type View struct {
	Filter      string
	Filtered    int
	Displayed   int
	Coverage    float64
	Bars        []ReasonBar
	Years       []YearCount
	ClassTotals []ClassCount
}

// Filter keeps the records whose classification equals option. All (or an
// empty option) returns records unchanged.
func Filter(records []recall.Record, option string) []recall.Record {
	if option == "" || option == recall.All {
		return records
	}
	out := make([]recall.Record, 0, len(records))
	for _, r := range records {
		if r.Classification == option {
			out = append(out, r)
		}
	}
	return out
}

// TopReasons returns at most n reasons by descending count. Ties keep the
// order in which the reasons were first seen.
func TopReasons(records []recall.Record, n int) []ReasonCount {
	if n <= 0 {
		return nil
	}
	index := make(map[string]int)
	var counts []ReasonCount
	for _, r := range records {
		i, ok := index[r.Reason]
		if !ok {
			i = len(counts)
			index[r.Reason] = i
			counts = append(counts, ReasonCount{Reason: r.Reason})
		}
		counts[i].Count++
	}
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	if len(counts) > n {
		counts = counts[:n]
	}
	return counts
}

// Subset keeps the records whose reason is one of top.
func Subset(records []recall.Record, top []ReasonCount) []recall.Record {
	keep := make(map[string]bool, len(top))
	for _, t := range top {
		keep[t.Reason] = true
	}
	var out []recall.Record
	for _, r := range records {
		if keep[r.Reason] {
			out = append(out, r)
		}
	}
	return out
}

// ReasonBars counts records per (reason, classification) for each reason in
// top, in top's order. Records with other reasons are ignored.
func ReasonBars(records []recall.Record, top []ReasonCount) []ReasonBar {
	pos := make(map[string]int, len(top))
	perClass := make([]map[string]int, len(top))
	for i, t := range top {
		pos[t.Reason] = i
		perClass[i] = make(map[string]int)
	}
	for _, r := range records {
		i, ok := pos[r.Reason]
		if !ok {
			continue
		}
		perClass[i][r.Classification]++
	}

	bars := make([]ReasonBar, 0, len(top))
	for i, t := range top {
		bar := ReasonBar{Reason: t.Reason}
		for _, cls := range orderedClasses(perClass[i]) {
			n := perClass[i][cls]
			bar.Segments = append(bar.Segments, ClassCount{Classification: cls, Count: n})
			bar.Total += n
		}
		bars = append(bars, bar)
	}
	return bars
}

// orderedClasses lists the classifications present in counts: the FDA tiers
// first in severity order, then the rest alphabetically.
func orderedClasses(counts map[string]int) []string {
	var out []string
	known := make(map[string]bool)
	for _, cls := range recall.Classes() {
		known[cls] = true
		if counts[cls] > 0 {
			out = append(out, cls)
		}
	}
	var rest []string
	for cls, n := range counts {
		if !known[cls] && n > 0 {
			rest = append(rest, cls)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// YearCounts counts records per year, skipping unknown years, ascending by year.
func YearCounts(records []recall.Record) []YearCount {
	counts := make(map[string]int)
	for _, r := range records {
		if r.Year == recall.Unknown {
			continue
		}
		counts[r.Year]++
	}
	out := make([]YearCount, 0, len(counts))
	for y, n := range counts {
		out = append(out, YearCount{Year: y, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// ClassTotals counts records for each FDA tier, zeros included.
func ClassTotals(records []recall.Record) []ClassCount {
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.Classification]++
	}
	out := make([]ClassCount, 0, 3)
	for _, cls := range recall.Classes() {
		out = append(out, ClassCount{Classification: cls, Count: counts[cls]})
	}
	return out
}

// Coverage returns displayed as a percentage of filtered, or 0 when nothing
// matched the filter.
func Coverage(displayed, filtered int) float64 {
	if filtered == 0 {
		return 0
	}
	return float64(displayed) / float64(filtered) * 100
}

// Build derives the full view for one filter selection. ClassTotals always
// covers the whole dataset, not just the filtered part.
func Build(all []recall.Record, option string, topN int) View {
	filtered := Filter(all, option)
	top := TopReasons(filtered, topN)
	subset := Subset(filtered, top)

	if option == "" {
		option = recall.All
	}
	return View{
		Filter:      option,
		Filtered:    len(filtered),
		Displayed:   len(subset),
		Coverage:    Coverage(len(subset), len(filtered)),
		Bars:        ReasonBars(subset, top),
		Years:       YearCounts(filtered),
		ClassTotals: ClassTotals(all),
	}
}
