// Package tui is the interactive terminal browser over one result set.
package tui

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	btable "github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/KaramelBytes/molscope-cli/internal/explore"
	"github.com/KaramelBytes/molscope-cli/internal/predictions"
	"github.com/KaramelBytes/molscope-cli/internal/service"
	"github.com/KaramelBytes/molscope-cli/internal/session"
	"github.com/KaramelBytes/molscope-cli/internal/table"
	"github.com/KaramelBytes/molscope-cli/internal/utils"
)

const (
	gridHeight      = table.PageSize + 1
	pickerWindow    = 8
	resultLines     = 6
	toastDuration   = 4 * time.Second
	smilesCellWidth = 36
	cellWidth       = 16
)

// SaveFunc persists the results of a finished secondary request.
type SaveFunc func(action service.Action, results []predictions.Counterfactual) error

// Toasts buffers the notices raised by explore contexts until the browser
// shows them.
type Toasts struct {
	mu      sync.Mutex
	pending []explore.Notice
}

func (t *Toasts) Notify(n explore.Notice) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending = append(t.pending, n)
}

func (t *Toasts) drain() []explore.Notice {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.pending
	t.pending = nil
	return out
}

type resultMsg struct {
	action service.Action
	env    *predictions.Envelope
	err    error
}

type toastExpiredMsg struct{ seq int }

// Option customizes a Model.
type Option func(*Model)

// WithContext sets the context secondary requests run under.
func WithContext(ctx context.Context) Option {
	return func(m *Model) { m.ctx = ctx }
}

// WithTitle sets the header line.
func WithTitle(title string) Option {
	return func(m *Model) { m.title = title }
}

// WithExportPath sets where "e" writes the CSV export.
func WithExportPath(path string) Option {
	return func(m *Model) { m.exportPath = path }
}

// WithSaveFunc is called after every successful secondary request.
func WithSaveFunc(fn SaveFunc) Option {
	return func(m *Model) { m.save = fn }
}

// WithClipboard replaces the clipboard writer.
func WithClipboard(fn func(string) error) Option {
	return func(m *Model) { m.copy = fn }
}

// Model is the bubbletea model of the browser. Focus index 0 is the
// prediction table; index i > 0 is the picker of actions[i-1].
type Model struct {
	ctx        context.Context
	ctl        *session.Controller
	gen        explore.Generator
	toasts     *Toasts
	title      string
	exportPath string
	save       SaveFunc
	copy       func(string) error

	styles    styles
	actions   []service.Action
	focus     int
	searching bool
	grid      btable.Model
	search    textinput.Model
	spinner   spinner.Model
	cursors   map[service.Action]int

	toast    string
	toastErr bool
	toastSeq int
	width    int
}

// New returns a browser over ctl. toasts must be the notifier ctl was built
// with so that request outcomes show up as toasts.
func New(ctl *session.Controller, gen explore.Generator, toasts *Toasts, opts ...Option) *Model {
	if toasts == nil {
		toasts = &Toasts{}
	}
	m := &Model{
		ctx:     context.Background(),
		ctl:     ctl,
		gen:     gen,
		toasts:  toasts,
		title:   "molscope",
		copy:    clipboard.WriteAll,
		styles:  newStyles(),
		actions: service.Actions(),
		cursors: map[service.Action]int{},
	}
	for _, o := range opts {
		o(m)
	}

	m.grid = btable.New(btable.WithFocused(true), btable.WithHeight(gridHeight))
	m.grid.SetStyles(gridStyles())

	m.search = textinput.New()
	m.search.Prompt = "/ "
	m.search.Placeholder = "search"
	m.search.CharLimit = 200

	m.spinner = spinner.New(spinner.WithSpinner(spinner.Dot))
	m.spinner.Style = m.styles.hint.Copy().Bold(true)

	m.refreshGrid()
	return m
}

// Run starts the browser in the alternate screen and blocks until it exits.
func Run(m *Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case spinner.TickMsg:
		if !m.anyLoading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case resultMsg:
		return m, m.finish(msg)
	case toastExpiredMsg:
		if msg.seq == m.toastSeq {
			m.toast = ""
		}
		return m, nil
	case tea.KeyMsg:
		if m.searching {
			return m, m.updateSearch(msg)
		}
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c", "q":
		return tea.Quit
	case "tab":
		m.setFocus(m.focus + 1)
		return nil
	case "shift+tab":
		m.setFocus(m.focus - 1)
		return nil
	case "/":
		m.searching = true
		m.search.SetValue(m.currentQuery())
		m.search.CursorEnd()
		return m.search.Focus()
	}
	if a, ok := m.focusedAction(); ok {
		return m.pickerKey(a, msg)
	}
	return m.tableKey(msg)
}

func (m *Model) tableKey(msg tea.KeyMsg) tea.Cmd {
	view := m.ctl.Table()
	switch msg.String() {
	case "n", "right", "pgdown":
		view.NextPage()
	case "p", "left", "pgup":
		view.PrevPage()
	case "s":
		m.nextSort()
	case "r":
		if key := view.State().SortKey; key != "" {
			view.SetSort(key)
		}
	case "S":
		view.ClearSort()
	case "e":
		return m.export()
	default:
		var cmd tea.Cmd
		m.grid, cmd = m.grid.Update(msg)
		return cmd
	}
	m.refreshGrid()
	return nil
}

func (m *Model) pickerKey(a service.Action, msg tea.KeyMsg) tea.Cmd {
	list := m.ctl.Picker(a)
	cur := m.cursors[a]
	switch msg.String() {
	case "up", "k":
		if cur > 0 {
			cur--
		}
	case "down", "j":
		if cur < list.VisibleCount()-1 {
			cur++
		}
		list.Reveal(cur)
	case "enter":
		if !list.IsOpen() {
			list.Open()
			break
		}
		if list.SelectIndex(cur) {
			smiles, _ := list.Selected()
			m.cursors[a] = cur
			return m.setToast("Selected "+smiles, false)
		}
	case "x":
		list.ClearSelection()
	case "g":
		return m.trigger(a)
	case "y":
		return m.copySelection(a)
	case "esc":
		m.setFocus(0)
		return nil
	}
	m.cursors[a] = cur
	return nil
}

func (m *Model) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter, tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		return nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.applyQuery(m.search.Value())
	return cmd
}

// trigger starts action for the picked SMILES. The request runs off the
// update loop; its outcome arrives as a resultMsg.
func (m *Model) trigger(a service.Action) tea.Cmd {
	ex := m.ctl.Explorer(a)
	selected, _ := m.ctl.Picker(a).Selected()
	if err := ex.Begin(selected); err != nil {
		if errors.Is(err, explore.ErrInFlight) {
			return m.setToast("A request is already running", true)
		}
		return m.flushNotices()
	}
	gen, ctx, model := m.gen, m.ctx, m.ctl.Model()
	request := func() tea.Msg {
		if gen == nil {
			return resultMsg{action: a, err: errors.New("no prediction service configured")}
		}
		env, err := gen.Generate(ctx, a, selected, model)
		return resultMsg{action: a, env: env, err: err}
	}
	return tea.Batch(m.spinner.Tick, request)
}

func (m *Model) finish(msg resultMsg) tea.Cmd {
	results, err := m.ctl.Explorer(msg.action).Finish(msg.env, msg.err)
	cmd := m.flushNotices()
	if err != nil || m.save == nil {
		return cmd
	}
	if err := m.save(msg.action, results); err != nil {
		return m.setToast(fmt.Sprintf("Could not save results: %v", err), true)
	}
	return cmd
}

func (m *Model) copySelection(a service.Action) tea.Cmd {
	selected, ok := m.ctl.Picker(a).Selected()
	if !ok {
		return m.setToast(explore.MessagesFor(a).Validation, true)
	}
	if err := m.copy(selected); err != nil {
		return m.setToast("Clipboard unavailable", true)
	}
	return m.setToast("Copied "+selected, false)
}

func (m *Model) export() tea.Cmd {
	n := len(m.ctl.Table().Filtered())
	path, err := m.ctl.Export(m.exportPath)
	if err != nil {
		return m.setToast(fmt.Sprintf("Export failed: %v", err), true)
	}
	return m.setToast(fmt.Sprintf("Exported %d rows to %s", n, path), false)
}

// nextSort moves sorting to the next sortable column, wrapping to the first.
func (m *Model) nextSort() {
	view := m.ctl.Table()
	var keys []string
	for _, c := range view.Columns() {
		if c.Sortable {
			keys = append(keys, c.Key)
		}
	}
	if len(keys) == 0 {
		return
	}
	current := view.State().SortKey
	next := keys[0]
	for i, k := range keys {
		if k == current {
			next = keys[(i+1)%len(keys)]
			break
		}
	}
	view.SetSort(next)
}

func (m *Model) flushNotices() tea.Cmd {
	var cmd tea.Cmd
	for _, n := range m.toasts.drain() {
		cmd = m.setToast(n.String(), n.Level == explore.LevelError)
	}
	return cmd
}

func (m *Model) setToast(msg string, isErr bool) tea.Cmd {
	m.toastSeq++
	m.toast, m.toastErr = msg, isErr
	seq := m.toastSeq
	return tea.Tick(toastDuration, func(time.Time) tea.Msg { return toastExpiredMsg{seq: seq} })
}

func (m *Model) setFocus(i int) {
	n := len(m.actions) + 1
	i = ((i % n) + n) % n
	if a, ok := m.focusedAction(); ok {
		m.ctl.Picker(a).Close()
	}
	m.focus = i
	if a, ok := m.focusedAction(); ok {
		m.ctl.Picker(a).Open()
		m.grid.Blur()
	} else {
		m.grid.Focus()
	}
}

func (m *Model) focusedAction() (service.Action, bool) {
	if m.focus == 0 {
		return "", false
	}
	return m.actions[m.focus-1], true
}

func (m *Model) currentQuery() string {
	if a, ok := m.focusedAction(); ok {
		return m.ctl.Picker(a).Query()
	}
	return m.ctl.Table().State().Query
}

func (m *Model) applyQuery(q string) {
	if a, ok := m.focusedAction(); ok {
		m.ctl.Picker(a).SetQuery(q)
		m.cursors[a] = 0
		return
	}
	m.ctl.Table().SetFilter(q)
	m.refreshGrid()
}

func (m *Model) anyLoading() bool {
	for _, a := range m.actions {
		if m.ctl.Explorer(a).Loading() {
			return true
		}
	}
	return false
}

// refreshGrid copies the visible page of the table view into the grid.
func (m *Model) refreshGrid() {
	view := m.ctl.Table()
	specs := view.Columns()
	cols := make([]btable.Column, 0, len(specs))
	for _, c := range specs {
		cols = append(cols, btable.Column{Title: c.Title, Width: columnWidth(c.Key)})
	}
	visible := view.VisibleRows()
	rows := make([]btable.Row, 0, len(visible))
	for _, r := range visible {
		line := make(btable.Row, 0, len(specs))
		for _, c := range specs {
			line = append(line, utils.TruncateCell(table.Cell(r, c.Key), columnWidth(c.Key)))
		}
		rows = append(rows, line)
	}
	// rows must never be wider than the columns while they are swapped
	m.grid.SetRows(nil)
	m.grid.SetColumns(cols)
	m.grid.SetRows(rows)
	m.grid.SetCursor(min(m.grid.Cursor(), max(len(rows)-1, 0)))
}

func columnWidth(key string) int {
	switch key {
	case predictions.KeySMILES:
		return smilesCellWidth
	case predictions.KeyStructure:
		return 9
	}
	return cellWidth
}
