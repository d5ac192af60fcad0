package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/decker502/algoquest/pkg/challenge"
	"github.com/decker502/algoquest/pkg/config"
	"github.com/decker502/algoquest/pkg/quest"
	"github.com/decker502/algoquest/pkg/scheduler"
	"github.com/decker502/algoquest/pkg/utils"
)

// frameInterval 终端界面的刷新间隔
const frameInterval = time.Second / 30

type tickMsg time.Time

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.Color("255")).
			Padding(1, 2)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")). // gold
			Bold(true)

	scrollStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("226")) // yellow

	buttonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46")). // green
			Bold(true)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey
)

// terminalHost 在终端中显示任务，实现 quest.Host
type terminalHost struct {
	text      string
	challenge challenge.Challenge
	completed bool
}

func (h *terminalHost) DisplayText(text string) { h.text = utils.StripEmphasis(text) }

func (h *terminalHost) ShowChallenge(c challenge.Challenge) { h.challenge = c }

func (h *terminalHost) HideChallenge(c challenge.Challenge) {
	if h.challenge == c {
		h.challenge = nil
	}
}

func (h *terminalHost) QuestCompleted() { h.completed = true }

// Model 终端任务界面的 BubbleTea model
type Model struct {
	director  *quest.Director
	host      *terminalHost
	showHints bool

	guess textinput.Model
	pos1  textinput.Model
	pos2  textinput.Model

	// pendingChallenge 已为其初始化输入框的挑战
	pendingChallenge challenge.Challenge

	lastTick time.Time
	width    int
}

// NewModel 创建终端界面并开始任务
func NewModel(script *config.QuestScript, playerName string, showHints bool, opts ...quest.Option) (Model, error) {
	host := &terminalHost{}
	director, err := quest.New(script, scheduler.New(), host, opts...)
	if err != nil {
		return Model{}, err
	}

	guess := textinput.New()
	guess.Placeholder = "number"
	guess.CharLimit = 6
	guess.Width = 10

	pos1 := textinput.New()
	pos1.Placeholder = "Pos 1"
	pos1.CharLimit = 3
	pos1.Width = 6

	pos2 := textinput.New()
	pos2.Placeholder = "Pos 2"
	pos2.CharLimit = 3
	pos2.Width = 6

	director.Start(playerName)
	return Model{
		director:  director,
		host:      host,
		showHints: showHints,
		guess:     guess,
		pos1:      pos1,
		pos2:      pos2,
		width:     80,
	}, nil
}

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tick())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tickMsg:
		now := time.Time(msg)
		dt := frameInterval.Seconds()
		if !m.lastTick.IsZero() {
			dt = now.Sub(m.lastTick).Seconds()
		}
		m.lastTick = now
		m.director.Update(dt)
		m.syncInputs()
		if m.host.completed {
			return m, tea.Quit
		}
		return m, tick()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m, cmd = m.handleKey(msg)
		if m.host.completed {
			return m, tea.Quit
		}
		return m, cmd
	}
	return m, nil
}

// syncInputs 挑战出现或消失时重置输入框
func (m *Model) syncInputs() {
	if m.host.challenge == m.pendingChallenge {
		return
	}
	m.pendingChallenge = m.host.challenge
	m.guess.Reset()
	m.pos1.Reset()
	m.pos2.Reset()
	m.guess.Blur()
	m.pos1.Blur()
	m.pos2.Blur()

	switch m.host.challenge.(type) {
	case *challenge.BinarySearch:
		m.guess.Focus()
	case *challenge.Sorting:
		m.pos1.Focus()
	}
}

// handleKey 处理按键
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	m.syncInputs()

	var cmd tea.Cmd
	switch m.host.challenge.(type) {
	case nil:
		if msg.Type == tea.KeyEnter || msg.String() == " " {
			m.director.Advance()
			m.syncInputs()
		}

	case *challenge.BinarySearch:
		if msg.Type == tea.KeyEnter {
			_, err := m.director.SubmitGuess(m.guess.Value())
			if err == nil {
				m.guess.Reset()
			}
			return m, nil
		}
		m.guess, cmd = m.guess.Update(msg)

	case *challenge.Sorting:
		switch msg.Type {
		case tea.KeyTab, tea.KeyShiftTab:
			m.focusPosition(!m.pos1.Focused())
			return m, nil
		case tea.KeyEnter:
			// 无效输入保留在输入框中，反馈由挑战给出
			if _, err := m.director.SubmitSwap(m.pos1.Value(), m.pos2.Value()); err == nil {
				m.pos1.Reset()
				m.pos2.Reset()
				m.focusPosition(true)
			}
			return m, nil
		}
		if m.pos1.Focused() {
			m.pos1, cmd = m.pos1.Update(msg)
		} else {
			m.pos2, cmd = m.pos2.Update(msg)
		}
	}
	return m, cmd
}

// focusPosition 在两个位置输入框之间切换焦点
func (m *Model) focusPosition(first bool) {
	if first {
		m.pos2.Blur()
		m.pos1.Focus()
		return
	}
	m.pos1.Blur()
	m.pos2.Focus()
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(speakerStyle.Render(m.director.Script().Speaker))
	b.WriteString("\n\n")
	b.WriteString(m.host.text)
	b.WriteString("\n\n")

	switch c := m.host.challenge.(type) {
	case nil:
		if !(m.director.IsRevealing() && m.director.Stage().IsGate()) {
			b.WriteString(buttonStyle.Render("[Enter] Next ➡️"))
		}
	case *challenge.BinarySearch:
		b.WriteString(scrollStyle.Render(joinInts(c.Values())))
		b.WriteString("\n\n")
		b.WriteString(m.guess.View())
		b.WriteString("  ")
		b.WriteString(buttonStyle.Render("[Enter] Submit"))
		m.writeFeedback(&b, c)
	case *challenge.Sorting:
		b.WriteString(scrollStyle.Render(c.Display()))
		b.WriteString("\n\n")
		b.WriteString(m.pos1.View())
		b.WriteString("  ")
		b.WriteString(m.pos2.View())
		b.WriteString("  ")
		b.WriteString(buttonStyle.Render("[Enter] Swap"))
		m.writeFeedback(&b, c)
	}

	width := max(40, m.width*8/10)
	return panelStyle.Width(width).Render(b.String()) + "\n" + hintStyle.Render("esc to quit")
}

func (m Model) writeFeedback(b *strings.Builder, c challenge.Challenge) {
	if fb := c.Feedback(); fb != "" {
		b.WriteString("\n\n")
		b.WriteString(fb)
	}
	if m.showHints {
		used, budget := c.Progress()
		b.WriteString("\n")
		b.WriteString(hintStyle.Render(fmt.Sprintf("%d / %d", used, budget)))
	}
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, " ")
}
