package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/barfriedman1/FDA-drug-recall/internal/aggregate"
	"github.com/barfriedman1/FDA-drug-recall/internal/browser"
	"github.com/barfriedman1/FDA-drug-recall/internal/cache"
	"github.com/barfriedman1/FDA-drug-recall/internal/recall"
)

// DataSourceURL is opened by the "o" key.
const DataSourceURL = "https://open.fda.gov/apis/drug/enforcement/"

const (
	appName      = "FDA Drug Recalls Analysis"
	sidebarWidth = 36
)

type focusPane int

const (
	focusSidebar focusPane = iota
	focusCharts
)

type mode int

const (
	modeLoading mode = iota
	modeReady
	modeError
	modeHelp
)

// Loader is the part of cache.Loader the dashboard uses.
type Loader interface {
	Load(ctx context.Context, force bool) (*cache.Snapshot, error)
}

type App struct {
	loader  Loader
	timeout time.Duration
	topN    int
	logger  *slog.Logger

	records     []recall.Record
	lastUpdated string
	fetchedAt   time.Time
	view        aggregate.View

	selector selector
	focus    focusPane
	mode     mode

	width  int
	height int

	// Sub-components
	spinner  spinner.Model
	viewport viewport.Model
	markdown Markdown

	// State
	refreshing bool
	loadErr    error
	err        error
	openURL    func(string) error
}

// RunOpts holds all parameters for launching the TUI.
type RunOpts struct {
	Loader Loader
	// Timeout bounds a single load, fetch included.
	Timeout time.Duration
	TopN    int
	Filter  string
	Logger  *slog.Logger
	// Markdown renders the classification info block; nil leaves it raw.
	Markdown Markdown
}

func NewApp(opts RunOpts) *App {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	topN := opts.TopN
	if topN <= 0 {
		topN = aggregate.DefaultTopN
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &App{
		loader:     opts.Loader,
		timeout:    timeout,
		topN:       topN,
		logger:     logger,
		selector:   newSelector(opts.Filter),
		spinner:    sp,
		viewport:   viewport.New(0, 0),
		markdown:   opts.Markdown,
		mode:       modeLoading,
		refreshing: true,
		openURL:    browser.Open,
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.loadCmd(false), a.spinner.Tick)
}

// loadCmd captures the loader into the closure so the fetch runs off the UI loop.
func (a *App) loadCmd(force bool) tea.Cmd {
	loader := a.loader
	timeout := a.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		snap, err := loader.Load(ctx, force)
		if err != nil {
			return loadErrMsg{err: err}
		}
		return datasetLoadedMsg{snapshot: snap}
	}
}

func (a *App) openBrowserCmd(url string) tea.Cmd {
	open := a.openURL
	return func() tea.Msg {
		if err := open(url); err != nil {
			return errMsg{err: err}
		}
		return nil
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.layout()
		return a, nil

	case tea.KeyMsg:
		// Clear sticky error on any keypress
		a.err = nil
		return a.handleKey(msg)

	case datasetLoadedMsg:
		a.refreshing = false
		a.loadErr = nil
		a.mode = modeReady
		a.records = msg.snapshot.Records
		a.lastUpdated = formatLastUpdated(msg.snapshot.LastUpdated)
		a.fetchedAt = msg.snapshot.FetchedAt
		a.logger.Info("dataset ready", "records", len(a.records), "last_updated", msg.snapshot.LastUpdated)
		a.rebuild()
		return a, nil

	case loadErrMsg:
		a.refreshing = false
		a.loadErr = msg.err
		a.mode = modeError
		a.logger.Error("loading recalls", "err", msg.err)
		return a, nil

	case errMsg:
		a.err = msg.err
		return a, nil

	case spinner.TickMsg:
		if a.refreshing {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	}

	switch a.mode {
	case modeHelp:
		if msg.String() == "?" || msg.String() == "esc" || msg.String() == "q" {
			a.mode = modeReady
		}
		return a, nil
	case modeLoading:
		if msg.String() == "q" {
			return a, tea.Quit
		}
		return a, nil
	case modeError:
		switch msg.String() {
		case "q":
			return a, tea.Quit
		case "r":
			return a, a.refresh()
		case "o":
			return a, a.openBrowserCmd(DataSourceURL)
		}
		return a, nil
	}

	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "tab":
		if a.focus == focusSidebar {
			a.focus = focusCharts
		} else {
			a.focus = focusSidebar
		}
		return a, nil
	case "j", "down":
		if a.focus == focusSidebar {
			if a.selector.move(1) {
				a.rebuild()
			}
			return a, nil
		}
	case "k", "up":
		if a.focus == focusSidebar {
			if a.selector.move(-1) {
				a.rebuild()
			}
			return a, nil
		}
	case "1", "2", "3", "4":
		if a.selector.pick(int(msg.String()[0] - '1')) {
			a.rebuild()
		}
		return a, nil
	case "r":
		return a, a.refresh()
	case "o":
		return a, a.openBrowserCmd(DataSourceURL)
	case "?":
		a.mode = modeHelp
		return a, nil
	}

	if a.focus == focusCharts {
		var cmd tea.Cmd
		a.viewport, cmd = a.viewport.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *App) refresh() tea.Cmd {
	if a.refreshing {
		return nil
	}
	a.refreshing = true
	if a.mode == modeError {
		a.mode = modeLoading
	}
	return tea.Batch(a.loadCmd(true), a.spinner.Tick)
}

// rebuild recomputes the derived view for the current selection and redraws
// the chart pane. The scroll position is kept.
func (a *App) rebuild() {
	a.view = aggregate.Build(a.records, a.selector.selected(), a.topN)
	a.viewport.SetContent(RenderCharts(a.view, ChartOpts{
		Width:       a.viewport.Width,
		LastUpdated: a.lastUpdated,
		Markdown:    a.markdown,
		Hints:       true,
	}))
}

func (a *App) bodyHeight() int {
	return max(a.height-2, 3) // header + status bar
}

func (a *App) chartsWidth() int {
	return max(a.width-sidebarWidth, 24)
}

func (a *App) layout() {
	a.viewport.Width = a.chartsWidth() - 4 // border + padding
	a.viewport.Height = a.bodyHeight() - 2
	if a.mode == modeReady || a.mode == modeHelp {
		a.rebuild()
	}
}

func (a *App) View() string {
	if a.width == 0 {
		return lipgloss.NewStyle().Foreground(colorAccent).Render("  recallviz")
	}

	header := a.renderHeader()
	status := renderStatusBar(statusInfo{
		count:       len(a.records),
		filter:      a.selector.selected(),
		fetchedAt:   a.fetchedAt,
		refreshing:  a.refreshing,
		width:       a.width,
		lastUpdated: a.lastUpdated,
	})
	if a.refreshing {
		status = a.spinner.View() + " " + status
	}
	// Error display
	if a.err != nil {
		status = lipgloss.NewStyle().Foreground(colorAccent).Render(a.err.Error())
	}

	var body string
	switch a.mode {
	case modeLoading:
		body = lipgloss.Place(a.width, a.bodyHeight(), lipgloss.Center, lipgloss.Center,
			a.spinner.View()+" Fetching drug recall enforcement reports...")
	case modeError:
		body = lipgloss.Place(a.width, a.bodyHeight(), lipgloss.Center, lipgloss.Center, renderError(a.loadErr, a.width))
	case modeHelp:
		body = lipgloss.Place(a.width, a.bodyHeight(), lipgloss.Center, lipgloss.Center, renderHelp())
	default:
		body = a.renderPanes()
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, status)
}

func (a *App) renderHeader() string {
	left := headerStyle.Render(appName)
	right := headerDateStyle.Render(time.Now().Format("Jan 2") + " ")
	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	return left + strings.Repeat(" ", gap) + right
}

func (a *App) renderPanes() string {
	h := a.bodyHeight() - 2

	sideStyle := sidebarPaneStyle
	chartStyle := chartPaneStyle
	if a.focus == focusSidebar {
		sideStyle = sidebarPaneActiveStyle
	} else {
		chartStyle = chartPaneActiveStyle
	}

	side := sideStyle.Width(sidebarWidth - 2).Height(h).
		Render(renderSidebar(a.selector, a.view, a.focus == focusSidebar, sidebarWidth-5))
	charts := chartStyle.Width(a.chartsWidth() - 2).Height(h).Render(a.viewport.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, side, charts)
}

func renderError(err error, width int) string {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	body := errorTitleStyle.Render("Could not load recall data") + "\n\n" +
		lipgloss.NewStyle().Width(max(min(width-10, 72), 20)).Render(msg) + "\n\n" +
		helpDimStyle.Render("r retry  o open data source  q quit")
	return helpCardStyle.Render(body)
}

func renderHelp() string {
	title := lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render("recallviz")
	dim := helpDimStyle

	help := title + dim.Render(" keyboard shortcuts") + "\n\n" +
		dim.Render("Navigation") + "\n" +
		"  tab           Switch focus between filter and charts\n" +
		"  j/k, ↑/↓     Move the classification selector or scroll the charts\n" +
		"  pgup/pgdn     Scroll the charts a page\n\n" +
		dim.Render("Filter") + "\n" +
		"  1-4           All, Class I, Class II, Class III\n\n" +
		dim.Render("Actions") + "\n" +
		"  r             Refetch recalls from openFDA\n" +
		"  o             Open the data source in the browser\n\n" +
		dim.Render("General") + "\n" +
		"  ?             Toggle this help\n" +
		"  q, ctrl+c    Quit"

	return helpCardStyle.Render(help)
}

// Run starts the TUI application.
func Run(opts RunOpts) error {
	app := NewApp(opts)
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running dashboard: %w", err)
	}
	return nil
}
