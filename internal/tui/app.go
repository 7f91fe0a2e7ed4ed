// internal/tui/app.go
//
// Interactive draw screen. The roster is shown as a list, the current pair
// is highlighted, and the user can redraw as many times as needed before
// accepting. Every redraw pulls from the same bit source, so a seeded
// session replays the same sequence of pairs.

package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/touban/internal/draw"
	"github.com/kingrea/touban/internal/logbook"
	"github.com/kingrea/touban/internal/report"
	"github.com/kingrea/touban/internal/roster"
)

// ErrCancelled is returned by Run when the user leaves without accepting.
var ErrCancelled = errors.New("draw cancelled")

type keyMap struct {
	Redraw key.Binding
	Accept key.Binding
	Cancel key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Redraw, k.Accept, k.Cancel}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

func defaultKeyMap() keyMap {
	return keyMap{
		Redraw: key.NewBinding(key.WithKeys("r", " "), key.WithHelp("r/space", "redraw")),
		Accept: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "accept")),
		Cancel: key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "cancel")),
	}
}

// rosterItem implements list.Item for one roster row.
type rosterItem struct {
	record roster.Record
	role   string
}

func (i rosterItem) Title() string { return i.record.String() }
func (i rosterItem) Description() string {
	if i.role == "" {
		return " "
	}
	return "→ " + i.role
}
func (i rosterItem) FilterValue() string { return i.record.String() }

// App is the bubbletea model for the interactive draw.
type App struct {
	source  string
	roster  roster.Roster
	labels  report.Labels
	src     draw.Source
	logbook *logbook.Logbook

	list list.Model
	keys keyMap
	help help.Model

	current  draw.Selection
	draws    int
	accepted bool
	done     bool

	width  int
	height int
}

// NewApp builds the model and performs the first draw, so the opening screen
// shows the same pair a non-interactive run with the same source would print.
func NewApp(source string, r roster.Roster, src draw.Source, labels report.Labels, lb *logbook.Logbook) *App {
	menu := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	menu.Title = fmt.Sprintf("Roster · %s", source)
	menu.SetShowStatusBar(false)
	menu.SetFilteringEnabled(false)
	menu.SetShowHelp(false)

	a := &App{
		source:  source,
		roster:  r,
		labels:  labels,
		src:     src,
		logbook: lb,
		list:    menu,
		keys:    defaultKeyMap(),
		help:    help.New(),
	}
	a.redraw()
	return a
}

// Selection returns the pair on screen and whether the user accepted it.
func (a *App) Selection() (draw.Selection, bool) {
	return a.current, a.accepted
}

// Draws reports how many pairs have been drawn, the opening one included.
func (a *App) Draws() int {
	return a.draws
}

func (a *App) redraw() {
	a.current = draw.Select(a.roster, a.src)
	a.draws++
	a.logbook.Info("interactive draw %d: primary=%d backup=%d", a.draws, a.current.Primary.Index, a.current.Backup.Index)

	items := make([]list.Item, len(a.roster))
	for i, rec := range a.roster {
		item := rosterItem{record: rec}
		switch i {
		case a.current.Primary.Index:
			item.role = a.labels.Primary
		case a.current.Backup.Index:
			item.role = a.labels.Backup
		}
		items[i] = item
	}
	a.list.SetItems(items)
	a.list.Select(a.current.Primary.Index)
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return nil
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.list.SetSize(max(0, msg.Width-4), max(0, msg.Height-9))
		a.help.Width = msg.Width
		return a, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, a.keys.Cancel):
			a.done = true
			return a, tea.Quit
		case key.Matches(msg, a.keys.Accept):
			a.accepted = true
			a.done = true
			return a, tea.Quit
		case key.Matches(msg, a.keys.Redraw):
			a.redraw()
			return a, nil
		}
	}

	var cmd tea.Cmd
	a.list, cmd = a.list.Update(msg)
	return a, cmd
}

// View renders the current state.
func (a *App) View() string {
	if a.done {
		return ""
	}
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF6B6B")).
		Render(fmt.Sprintf("⬡ TOUBAN · draw #%d", a.draws))
	result := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#5B8DEF")).
		Padding(0, 1).
		Render(strings.TrimRight(report.Format(a.current, a.labels), "\n"))
	footer := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		Render(a.help.View(a.keys))
	return lipgloss.JoinVertical(lipgloss.Left, header, result, a.list.View(), footer)
}

// Run starts the program and blocks until the user accepts or cancels.
func Run(a *App, opts ...tea.ProgramOption) (draw.Selection, error) {
	final, err := tea.NewProgram(a, opts...).Run()
	if err != nil {
		return draw.Selection{}, fmt.Errorf("tui: %w", err)
	}
	app, ok := final.(*App)
	if !ok {
		return draw.Selection{}, fmt.Errorf("tui: unexpected model %T", final)
	}
	sel, accepted := app.Selection()
	if !accepted {
		return draw.Selection{}, ErrCancelled
	}
	return sel, nil
}
