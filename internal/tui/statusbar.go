package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/barfriedman1/FDA-drug-recall/internal/recall"
)

type statusInfo struct {
	count       int
	filter      string
	lastUpdated string
	fetchedAt   time.Time
	refreshing  bool
	width       int
}

func renderStatusBar(s statusInfo) string {
	left := fmt.Sprintf(" %d recalls", s.count)
	if s.filter != "" && s.filter != recall.All {
		left += " · " + s.filter
	}
	if s.lastUpdated != "" {
		left += " · updated " + s.lastUpdated
	}
	if !s.fetchedAt.IsZero() {
		left += " · fetched " + relativeTime(s.fetchedAt)
	}
	if s.refreshing {
		left += " (refreshing...)"
	}

	right := " tab focus  1-4 class  r refresh  o source  ? help  q quit "

	gap := s.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + fmt.Sprintf("%*s", gap, "") + right

	return statusBarStyle.Width(s.width).Render(bar)
}

func relativeTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
