package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/numlisten/internal/round"
)

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	messageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	goodStyle    = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#0F0F0F")).
			Background(lipgloss.Color("#52C41A")).
			Padding(0, 1)
	badStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Background(lipgloss.Color("#FF4D4F")).
			Padding(0, 1)
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// View implements tea.Model.
func (m *Model) View() string {
	v := m.ctrl.View()
	lines := []string{
		m.renderHeader(v),
		"",
		m.renderScores(v),
		"",
		m.renderCountdown(v),
		m.input.View(),
		"",
		m.renderResult(v),
	}
	content := strings.Join(lines, "\n")
	if m.width == 0 || m.height == 0 {
		return content + "\n" + m.renderFooter(v)
	}
	width := contentWidth(m.width)
	content = lipgloss.NewStyle().Width(width).Render(content)
	footer := m.renderFooter(v)
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) renderHeader(v round.View) string {
	return titleStyle.Render("numlisten") + labelStyle.Render(fmt.Sprintf("  %s · %s", v.Lang.Name(), v.Lang.Locale()))
}

func (m *Model) renderScores(v round.View) string {
	return labelStyle.Render("Streak ") + valueStyle.Render(fmt.Sprintf("%d", v.Streak)) +
		labelStyle.Render("   High score ") + valueStyle.Render(fmt.Sprintf("%d", v.HighScore))
}

func (m *Model) renderCountdown(v round.View) string {
	bar := m.bar.ViewAs(v.Progress)
	if v.State != round.Active {
		return bar
	}
	return bar + labelStyle.Render(fmt.Sprintf(" %4.1fs", v.Remaining.Seconds()))
}

func (m *Model) renderResult(v round.View) string {
	msg := messageStyle.Render(v.Message)
	switch v.Badge.Kind {
	case round.BadgePositive:
		return goodStyle.Render(v.Badge.Label) + " " + msg
	case round.BadgeNegative:
		return badStyle.Render(v.Badge.Label) + " " + msg
	default:
		return msg
	}
}

func (m *Model) renderFooter(v round.View) string {
	var segments []string
	if m.input.Focused() {
		segments = []string{"enter submit", "ctrl+r repeat", "ctrl+s new", "ctrl+x reset", "tab language", "esc keys"}
	} else {
		segments = []string{"s start"}
		if v.CanRepeat {
			segments = append(segments, "r repeat", "n new")
		}
		if v.State == round.Active {
			segments = append(segments, "i answer")
		}
		segments = append(segments, "x reset", "l language", "q quit")
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}
