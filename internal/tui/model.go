// Package tui provides the Bubble Tea terminal shell for the logger.
package tui

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"inputlogger/internal/adapters/linuxinput"
	"inputlogger/internal/core/inputlog"
)

const (
	refreshInterval = 150 * time.Millisecond
	maxLogLines     = 8
)

const (
	focusTable = iota
	focusName
	focusBoss
	focusCount
)

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6CB6FF")).Bold(true)
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7FD4A8")).Bold(true)
	idleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#B0B0B0"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
)

// Controller is the part of the logging service the shell drives.
// *inputlog.Service implements it.
type Controller interface {
	StartLogging(info inputlog.SessionInfo) error
	StopLogging()
	ToggleControllerMode() bool
	BeginRebind(input inputlog.Input) error
	CancelRebind()
	Bindings() inputlog.Bindings
	Status() inputlog.Status
	SetSessionSource(fn func() inputlog.SessionInfo)
}

// Event carries a service notice or a log line into the program.
type Event struct {
	Notice *inputlog.Notice
	Log    string
}

type eventMsg Event

type tickMsg time.Time

// Model implements the terminal shell.
type Model struct {
	ctrl   Controller
	events <-chan Event

	table table.Model
	name  textinput.Model
	boss  textinput.Model
	focus int

	sessionName atomic.Value
	sessionBoss atomic.Value

	hotkey   string
	status   inputlog.Status
	bindings inputlog.Bindings
	errMsg   string
	logs     []string
	width    int
}

// NewModel builds the shell around ctrl. events may be nil. name and boss
// prefill the session fields; hotkey is shown in the help line.
func NewModel(ctrl Controller, events <-chan Event, name, boss, hotkey string) *Model {
	m := &Model{
		ctrl:   ctrl,
		events: events,
		name:   newInput("Name: ", "player or run"),
		boss:   newInput("Boss: ", "boss"),
		hotkey: hotkey,
	}
	m.name.SetValue(name)
	m.boss.SetValue(boss)
	m.sessionName.Store(name)
	m.sessionBoss.Store(boss)
	ctrl.SetSessionSource(m.Session)

	m.table = table.New(
		table.WithColumns([]table.Column{
			{Title: "Input", Width: 12},
			{Title: "Binding", Width: 36},
		}),
		table.WithHeight(inputlog.NumInputs+1),
		table.WithFocused(true),
		table.WithStyles(tableStyles()),
	)
	m.refresh()
	return m
}

func newInput(prompt, placeholder string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.Placeholder = placeholder
	input.CharLimit = 64
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

// Session returns the session metadata currently typed in. It is safe to
// call from any goroutine.
func (m *Model) Session() inputlog.SessionInfo {
	return inputlog.SessionInfo{
		Name: m.sessionName.Load().(string),
		Boss: m.sessionBoss.Load().(string),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(tick(), m.waitForEvent())
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *Model) waitForEvent() tea.Cmd {
	if m.events == nil {
		return nil
	}
	events := m.events
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return eventMsg(ev)
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tickMsg:
		m.refresh()
		return m, tick()
	case eventMsg:
		m.handleEvent(Event(msg))
		return m, m.waitForEvent()
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleEvent(ev Event) {
	if ev.Log != "" {
		m.logs = append(m.logs, ev.Log)
		if len(m.logs) > maxLogLines {
			m.logs = m.logs[len(m.logs)-maxLogLines:]
		}
	}
	if ev.Notice == nil {
		return
	}
	switch n := ev.Notice; n.Kind {
	case inputlog.NoticeError:
		if n.Err == nil {
			m.errMsg = ""
		} else {
			m.errMsg = n.Err.Error()
		}
	case inputlog.NoticeLogging:
		if n.Logging {
			m.errMsg = ""
		}
	}
	m.refresh()
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	// The service is capturing the next press; the same key reaches the
	// terminal and must not trigger shell actions. Esc cancels for sources
	// that do not see the terminal's keys.
	if m.status.Rebinding.Valid() {
		if msg.Type == tea.KeyEsc {
			m.ctrl.CancelRebind()
			m.refresh()
		}
		return m, nil
	}

	if msg.Type == tea.KeyTab {
		m.setFocus((m.focus + 1) % focusCount)
		return m, nil
	}
	if msg.Type == tea.KeyShiftTab {
		m.setFocus((m.focus + focusCount - 1) % focusCount)
		return m, nil
	}

	if m.focus != focusTable {
		if msg.Type == tea.KeyEnter || msg.Type == tea.KeyEsc {
			m.setFocus(focusTable)
			return m, nil
		}
		var cmd tea.Cmd
		if m.focus == focusName {
			m.name, cmd = m.name.Update(msg)
			m.sessionName.Store(m.name.Value())
		} else {
			m.boss, cmd = m.boss.Update(msg)
			m.sessionBoss.Store(m.boss.Value())
		}
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "s":
		m.toggleLogging()
		return m, nil
	case "c":
		m.ctrl.ToggleControllerMode()
		m.refresh()
		return m, nil
	case "enter":
		input := inputlog.Input(m.table.Cursor())
		if err := m.ctrl.BeginRebind(input); err != nil {
			m.errMsg = err.Error()
		}
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) toggleLogging() {
	if m.ctrl.Status().Logging {
		m.ctrl.StopLogging()
	} else if err := m.ctrl.StartLogging(m.Session()); err != nil {
		m.errMsg = err.Error()
	}
	m.refresh()
}

func (m *Model) setFocus(focus int) {
	m.focus = focus
	m.name.Blur()
	m.boss.Blur()
	m.table.Blur()
	switch focus {
	case focusName:
		m.name.Focus()
	case focusBoss:
		m.boss.Focus()
	default:
		m.table.Focus()
	}
}

func (m *Model) refresh() {
	m.status = m.ctrl.Status()
	m.bindings = m.ctrl.Bindings()
	rows := make([]table.Row, 0, inputlog.NumInputs)
	for _, input := range inputlog.Inputs() {
		binding := linuxinput.DisplayName(m.bindings[input])
		if m.status.Rebinding == input {
			binding = "press a key or button (Esc cancels)"
		}
		rows = append(rows, table.Row{input.String(), binding})
	}
	m.table.SetRows(rows)
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder

	state := idleStyle.Render("idle")
	if m.status.Logging {
		state = activeStyle.Render(fmt.Sprintf("logging %s, %d lines", m.status.Session.Title(), m.status.Lines))
	}
	mode := "keyboard/mouse"
	if m.status.ControllerMode {
		mode = "controller"
	}
	b.WriteString(titleStyle.Render("INPUT LOGGER"))
	b.WriteString("  " + state + mutedStyle.Render("  mode: "+mode) + "\n\n")

	b.WriteString(m.name.View() + "\n")
	b.WriteString(m.boss.View() + "\n\n")
	b.WriteString(cardStyle.Render(m.table.View()) + "\n")
	b.WriteString(heldLine(m.status.State) + "\n")
	if m.errMsg != "" {
		b.WriteString(errorStyle.Render(m.errMsg) + "\n")
	}

	help := "enter rebind | s start/stop | c controller mode | tab edit name/boss | q quit"
	if m.hotkey != "" {
		help += " | " + m.hotkey + " toggles logging anywhere"
	}
	b.WriteString("\n" + mutedStyle.Render(help))

	if len(m.logs) > 0 {
		b.WriteString("\n\n" + mutedStyle.Render(strings.Join(m.logs, "\n")))
	}
	return b.String()
}

func heldLine(state inputlog.State) string {
	active := state.Active()
	if len(active) == 0 {
		return mutedStyle.Render("held: -")
	}
	names := make([]string, len(active))
	for i, input := range active {
		names[i] = input.String()
	}
	return "held: " + strings.Join(names, ", ")
}
