package main

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
)

// Layout constants
const (
	// MinTableHeight is the smallest number of rows the selection table shows
	MinTableHeight = 5

	// TableChrome is the vertical space taken by everything around the
	// selection table
	TableChrome = 10

	// DefaultTableHeight is used before the terminal size is known
	DefaultTableHeight = 15
)

type screen int

const (
	screenMenu screen = iota
	screenList
	screenKillSelect
	screenConfirm
	screenKillResult
	screenMonitor
)

type menuAction int

const (
	actionList menuAction = iota
	actionKill
	actionMonitor
	actionExit
)

type menuItem struct {
	title  string
	desc   string
	action menuAction
}

var mainMenu = []menuItem{
	{title: "List active ports", desc: "Display all listening TCP/UDP ports", action: actionList},
	{title: "Kill process by port", desc: "Terminate a process using a specific port", action: actionKill},
	{title: "Real-time monitor", desc: "Monitor ports in real-time", action: actionMonitor},
	{title: "Exit", desc: "Close the program", action: actionExit},
}

// Services are the operations the TUI drives
type Services struct {
	Scanner   PortScanner
	Inspector ProcessInspector
	Killer    PortKiller
}

// Model represents the TUI state
type Model struct {
	ctx             context.Context
	svc             Services
	refreshInterval time.Duration
	version         string

	screen     screen
	menuCursor int
	quitting   bool
	width      int
	height     int

	// pending is the id of the request the current screen waits on, 0 if none
	pending int
	lastID  int
	spinner spinner.Model

	ports     []PortRecord
	scanErr   error
	portTable table.Model

	target     PortRecord
	targetInfo *ProcessInfo
	result     TerminationResult
	cancelled  bool

	monitorSession int
	lastUpdate     time.Time
	skippedTicks   int
}

// NewModel creates the TUI model
func NewModel(ctx context.Context, svc Services, refreshInterval time.Duration, version string) Model {
	if refreshInterval <= 0 {
		refreshInterval = DefaultRefreshInterval
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	return Model{
		ctx:             ctx,
		svc:             svc,
		refreshInterval: refreshInterval,
		version:         version,
		screen:          screenMenu,
		spinner:         s,
		portTable:       newPortTable(),
	}
}

func newPortTable() table.Model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "PROTO", Width: 6},
			{Title: "PORT", Width: 7},
			{Title: "ADDRESS", Width: 24},
			{Title: "PID", Width: 8},
			{Title: "PROCESS", Width: 20},
		}),
		table.WithFocused(true),
		table.WithHeight(DefaultTableHeight),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.Foreground(colorYellow).Bold(true)
	s.Selected = s.Selected.Foreground(colorInk).Background(colorTeal).Bold(true)
	t.SetStyles(s)
	return t
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// busy reports whether the current screen is waiting on a subprocess
func (m Model) busy() bool {
	return m.pending != 0
}

// begin allocates a request id and marks it as the one the screen waits on
func (m *Model) begin() int {
	m.lastID++
	m.pending = m.lastID
	return m.pending
}

func (m Model) scanCmd(id int) tea.Cmd {
	ctx, scanner := m.ctx, m.svc.Scanner
	return func() tea.Msg {
		ports, err := scanner.ListeningPorts(ctx)
		return scanMsg{id: id, ports: ports, err: err}
	}
}

func (m Model) inspectCmd(id int, pid string) tea.Cmd {
	ctx, inspector := m.ctx, m.svc.Inspector
	return func() tea.Msg {
		info, found := inspector.Inspect(ctx, pid)
		return inspectMsg{id: id, info: info, found: found}
	}
}

func (m Model) killCmd(id int, port string) tea.Cmd {
	ctx, killer := m.ctx, m.svc.Killer
	return func() tea.Msg {
		return killResultMsg{id: id, result: killer.KillPort(ctx, port)}
	}
}

// tickCmd schedules the next monitor refresh for the given session
func (m Model) tickCmd(session int) tea.Cmd {
	return tea.Tick(m.refreshInterval, func(t time.Time) tea.Msg {
		return monitorTickMsg{at: t, session: session}
	})
}

// startScan begins a listing for the current screen with a spinner
func (m *Model) startScan() tea.Cmd {
	m.ports, m.scanErr = nil, nil
	id := m.begin()
	return tea.Batch(m.scanCmd(id), m.spinner.Tick)
}

func (m *Model) toMenu() {
	m.screen = screenMenu
	m.pending = 0
	m.target = PortRecord{}
	m.targetInfo = nil
	m.result = TerminationResult{}
	m.cancelled = false
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.portTable.SetHeight(max(MinTableHeight, msg.Height-TableChrome))
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case scanMsg:
		if msg.id != m.pending {
			return m, nil
		}
		m.pending = 0
		m.ports, m.scanErr = msg.ports, msg.err
		switch m.screen {
		case screenKillSelect:
			m.portTable.SetRows(portRows(m.ports))
			m.portTable.SetCursor(0)
		case screenMonitor:
			m.lastUpdate = time.Now()
		}
		return m, nil

	case inspectMsg:
		if msg.id != m.pending {
			return m, nil
		}
		m.pending = 0
		if msg.found {
			info := msg.info
			m.targetInfo = &info
		}
		return m, nil

	case killResultMsg:
		if msg.id != m.pending {
			return m, nil
		}
		m.pending = 0
		m.result = msg.result
		return m, nil

	case monitorTickMsg:
		return m.handleMonitorTick(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.screen {
	case screenMenu:
		return m.handleMenuKey(msg)
	case screenList, screenKillResult:
		// Any key returns to the menu once the screen has settled
		if m.busy() && !key.Matches(msg, keys.Back) {
			return m, nil
		}
		m.toMenu()
		return m, nil
	case screenKillSelect:
		return m.handleKillSelectKey(msg)
	case screenConfirm:
		return m.handleConfirmKey(msg)
	case screenMonitor:
		return m.handleMonitorKey(msg)
	}
	return m, nil
}

func (m Model) handleMenuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, keys.Up):
		if m.menuCursor > 0 {
			m.menuCursor--
		}
	case key.Matches(msg, keys.Down):
		if m.menuCursor < len(mainMenu)-1 {
			m.menuCursor++
		}
	case key.Matches(msg, keys.Enter):
		return m.runMenuAction(mainMenu[m.menuCursor].action)
	}
	return m, nil
}

func (m Model) runMenuAction(action menuAction) (tea.Model, tea.Cmd) {
	switch action {
	case actionList:
		m.screen = screenList
		return m, m.startScan()
	case actionKill:
		m.screen = screenKillSelect
		m.portTable.SetRows(nil)
		return m, m.startScan()
	case actionMonitor:
		return m.enterMonitor()
	case actionExit:
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleKillSelectKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		m.toMenu()
		return m, nil
	case m.busy():
		return m, nil
	case len(m.ports) == 0:
		// Nothing to select; any key goes back
		m.toMenu()
		return m, nil
	case key.Matches(msg, keys.Enter):
		cursor := m.portTable.Cursor()
		if cursor < 0 || cursor >= len(m.ports) {
			return m, nil
		}
		m.target = m.ports[cursor]
		m.targetInfo = nil
		m.screen = screenConfirm
		id := m.begin()
		return m, tea.Batch(m.inspectCmd(id, m.target.PID), m.spinner.Tick)
	}

	var cmd tea.Cmd
	m.portTable, cmd = m.portTable.Update(msg)
	return m, cmd
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Confirm):
		m.screen = screenKillResult
		m.cancelled = false
		id := m.begin()
		return m, tea.Batch(m.killCmd(id, m.target.PortText()), m.spinner.Tick)
	case key.Matches(msg, keys.Cancel):
		m.pending = 0
		m.screen = screenKillResult
		m.cancelled = true
		return m, nil
	}
	return m, nil
}

// enterMonitor switches to the alternate screen and starts a new refresh
// session. Every way out goes through leaveMonitor.
func (m Model) enterMonitor() (tea.Model, tea.Cmd) {
	m.screen = screenMonitor
	m.monitorSession++
	m.skippedTicks = 0
	m.lastUpdate = time.Time{}
	m.ports, m.scanErr = nil, nil
	id := m.begin()
	return m, tea.Batch(
		tea.EnterAltScreen,
		m.scanCmd(id),
		m.tickCmd(m.monitorSession),
	)
}

// leaveMonitor ends the refresh session and restores the normal screen
func (m Model) leaveMonitor() (tea.Model, tea.Cmd) {
	m.monitorSession++
	m.toMenu()
	return m, tea.ExitAltScreen
}

func (m Model) handleMonitorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		return m.leaveMonitor()
	case key.Matches(msg, keys.Refresh):
		if m.busy() {
			return m, nil
		}
		id := m.begin()
		return m, m.scanCmd(id)
	}
	return m, nil
}

// handleMonitorTick starts a refresh unless the previous one is still
// running, in which case the tick is skipped rather than queued.
func (m Model) handleMonitorTick(msg monitorTickMsg) (tea.Model, tea.Cmd) {
	if m.screen != screenMonitor || msg.session != m.monitorSession {
		return m, nil
	}
	next := m.tickCmd(m.monitorSession)
	if m.busy() {
		m.skippedTicks++
		return m, next
	}
	id := m.begin()
	return m, tea.Batch(m.scanCmd(id), next)
}

func portRows(ports []PortRecord) []table.Row {
	rows := make([]table.Row, 0, len(ports))
	for _, p := range ports {
		rows = append(rows, table.Row{
			string(p.Protocol),
			p.PortText(),
			p.Address,
			p.PID,
			p.Process,
		})
	}
	return rows
}
