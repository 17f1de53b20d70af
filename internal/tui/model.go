// Package tui provides the Bubble Tea game interface.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/numlisten/internal/round"
)

// tickMsg and advanceMsg deliver a scheduled round.Task back to the controller.
type tickMsg struct {
	token uint64
	at    time.Time
}

type advanceMsg struct {
	token uint64
	at    time.Time
}

// Model implements the Bubble Tea game UI.
type Model struct {
	ctrl  *round.Controller
	now   func() time.Time
	input textinput.Model
	bar   progress.Model

	width  int
	height int
}

// NewModel constructs a game TUI model around a controller.
func NewModel(ctrl *round.Controller, now func() time.Time) *Model {
	if now == nil {
		now = time.Now
	}
	input := textinput.New()
	input.Prompt = "› "
	input.Placeholder = "type the number you hear"
	input.CharLimit = 24
	input.Width = 24

	bar := progress.New(progress.WithSolidFill("#C89A3A"), progress.WithoutPercentage())
	bar.Width = 40

	return &Model{
		ctrl:  ctrl,
		now:   now,
		input: input,
		bar:   bar,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = maxInt(10, minInt(60, contentWidth(m.width)-8))
		return m, nil
	case tickMsg:
		return m, m.afterRound(m.ctrl.Tick(msg.token, msg.at))
	case advanceMsg:
		tasks := m.ctrl.Advance(msg.token, msg.at)
		if tasks == nil {
			return m, nil
		}
		return m, m.beginRound(tasks)
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.input.Focused() {
			return m.updateInput(msg)
		}
		return m.updateKeys(msg)
	default:
		return m, nil
	}
}

// updateInput handles keys while the answer field has focus.
func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if cmd, ok := m.handleControl(msg); ok {
		return m, cmd
	}
	switch msg.Type {
	case tea.KeyEnter:
		tasks := m.ctrl.Submit(m.input.Value(), false, m.now())
		return m, m.afterRound(tasks)
	case tea.KeyEsc:
		m.input.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	tasks := m.ctrl.InputChanged(m.input.Value(), m.now())
	return m, tea.Batch(cmd, m.afterRound(tasks))
}

// updateKeys handles single-key shortcuts while the answer field is blurred.
func (m *Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if cmd, ok := m.handleControl(msg); ok {
		return m, cmd
	}
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "enter", "s":
		return m, m.beginRound(m.ctrl.Start(m.now()))
	case "r":
		m.ctrl.Repeat()
		return m, nil
	case "n":
		tasks := m.ctrl.NewRound(m.now())
		if tasks == nil {
			return m, nil
		}
		return m, m.beginRound(tasks)
	case "x":
		m.reset()
		return m, nil
	case "l", "tab":
		m.nextLanguage()
		return m, nil
	case "i":
		if m.ctrl.View().State == round.Active {
			return m, m.input.Focus()
		}
		return m, nil
	}
	return m, nil
}

// handleControl covers the shortcuts available in both focus modes.
func (m *Model) handleControl(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.Type {
	case tea.KeyCtrlS:
		return m.beginRound(m.ctrl.Start(m.now())), true
	case tea.KeyCtrlR:
		m.ctrl.Repeat()
		return nil, true
	case tea.KeyCtrlX:
		m.reset()
		return nil, true
	case tea.KeyCtrlL:
		m.nextLanguage()
		return nil, true
	case tea.KeyTab:
		if m.input.Focused() {
			m.nextLanguage()
			return nil, true
		}
	}
	return nil, false
}

func (m *Model) reset() {
	m.ctrl.Reset(m.now())
	m.input.Reset()
	m.input.Blur()
}

func (m *Model) nextLanguage() {
	m.ctrl.SetLanguage(m.ctrl.Lang().Next(), m.now())
	m.input.Blur()
}

// beginRound clears the answer field for a freshly started round.
func (m *Model) beginRound(tasks []round.Task) tea.Cmd {
	m.input.Reset()
	focus := m.input.Focus()
	return tea.Batch(focus, m.schedule(tasks))
}

// afterRound blurs the answer field once the round has ended.
func (m *Model) afterRound(tasks []round.Task) tea.Cmd {
	if m.ctrl.View().State != round.Active {
		m.input.Blur()
	}
	return m.schedule(tasks)
}

func (m *Model) schedule(tasks []round.Task) tea.Cmd {
	if len(tasks) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, 0, len(tasks))
	for _, task := range tasks {
		task := task
		cmds = append(cmds, tea.Tick(task.Delay, func(at time.Time) tea.Msg {
			if task.Kind == round.TaskAdvance {
				return advanceMsg{token: task.Token, at: at}
			}
			return tickMsg{token: task.Token, at: at}
		}))
	}
	return tea.Batch(cmds...)
}

func contentWidth(width int) int {
	w := int(float64(width) * 0.70)
	if w < 1 {
		w = 1
	}
	return w
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
