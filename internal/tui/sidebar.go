package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/barfriedman1/FDA-drug-recall/internal/aggregate"
	"github.com/barfriedman1/FDA-drug-recall/internal/chart"
	"github.com/barfriedman1/FDA-drug-recall/internal/recall"
)

// selector is the single-choice classification control in the sidebar.
type selector struct {
	options []string
	cursor  int
}

func newSelector(initial string) selector {
	s := selector{options: recall.FilterOptions()}
	for i, o := range s.options {
		if o == initial {
			s.cursor = i
		}
	}
	return s
}

func (s *selector) move(delta int) bool {
	next := s.cursor + delta
	if next < 0 || next >= len(s.options) {
		return false
	}
	s.cursor = next
	return true
}

func (s *selector) pick(idx int) bool {
	if idx < 0 || idx >= len(s.options) || idx == s.cursor {
		return false
	}
	s.cursor = idx
	return true
}

func (s *selector) selected() string {
	return s.options[s.cursor]
}

func (s *selector) render(focused bool) string {
	var b strings.Builder
	b.WriteString(boldStyle.Render("Select Classification:"))
	b.WriteString("\n")
	for i, o := range s.options {
		label := fmt.Sprintf("%d %s", i+1, o)
		if i == s.cursor {
			prefix := "  "
			if focused {
				prefix = "> "
			}
			b.WriteString(optionSelectedStyle.Render(prefix + label))
		} else {
			b.WriteString(optionStyle.Render("  " + label))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderSidebar(sel selector, v aggregate.View, focused bool, width int) string {
	var b strings.Builder
	b.WriteString(sidebarHeaderStyle.Render("Filter Options"))
	b.WriteString("\n")
	b.WriteString(sel.render(focused))
	b.WriteString("\n\n")
	b.WriteString(boldStyle.Render(fmt.Sprintf("Showing %d recalls", v.Filtered)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(strings.Repeat("─", max(1, width))))
	b.WriteString("\n")
	b.WriteString(boldStyle.Render("Recall Severity Classification:"))
	b.WriteString("\n")
	for _, ct := range v.ClassTotals {
		swatch := lipgloss.NewStyle().Foreground(chart.ClassColor(ct.Classification)).Render("■")
		b.WriteString(fmt.Sprintf("  %s %s: %d recalls\n", swatch, ct.Classification, ct.Count))
	}
	return strings.TrimRight(b.String(), "\n")
}
