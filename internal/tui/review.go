package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/debtsense/internal/service"
)

// ReviewModel is the interactive confirmation screen for detected debt
// candidates: move with j/k, toggle with space, confirm with enter.
type ReviewModel struct {
	candidates []service.DebtCandidate
	selected   map[int]bool
	cursor     int
	done       bool
	aborted    bool
	currency   string
}

// NewReview builds a review screen over the detector's candidate list.
// High-confidence candidates start selected.
func NewReview(candidates []service.DebtCandidate, currency string) *ReviewModel {
	selected := make(map[int]bool, len(candidates))
	for i, c := range candidates {
		if c.Confidence == service.ConfidenceHigh {
			selected[i] = true
		}
	}
	return &ReviewModel{candidates: candidates, selected: selected, currency: currency}
}

// Accepted returns the confirmed candidates, or nil if the review was
// aborted.
func (m *ReviewModel) Accepted() []service.DebtCandidate {
	if m.aborted {
		return nil
	}
	var out []service.DebtCandidate
	for i, c := range m.candidates {
		if m.selected[i] {
			out = append(out, c)
		}
	}
	return out
}

func (m *ReviewModel) Init() tea.Cmd { return nil }

func (m *ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "esc", "ctrl+c":
		m.aborted = true
		m.done = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.candidates)-1 {
			m.cursor++
		}
	case " ":
		m.selected[m.cursor] = !m.selected[m.cursor]
	case "a":
		for i := range m.candidates {
			m.selected[i] = true
		}
	case "n":
		for i := range m.candidates {
			m.selected[i] = false
		}
	case "enter":
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

var (
	reviewTitleStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	cursorStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	selectedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func (m *ReviewModel) View() string {
	if m.done {
		return ""
	}
	s := reviewTitleStyle.Render("Likely debt accounts") + "\n\n"
	for i, c := range m.candidates {
		prefix := "  "
		if i == m.cursor {
			prefix = cursorStyle.Render("> ")
		}
		mark := "[ ]"
		if m.selected[i] {
			mark = selectedStyle.Render("[x]")
		}
		line := fmt.Sprintf("%s%s %s  %s  score %d (%s)  %s",
			prefix, mark, c.AccountName,
			FormatCents(c.BalanceCents, m.currency),
			c.Score, c.Confidence, c.SuggestedType)
		s += line + "\n"
		if i == m.cursor {
			for _, reason := range c.Reasons {
				s += dimStyle.Render("      - "+reason) + "\n"
			}
		}
	}
	s += "\n" + dimStyle.Render("space toggle · a all · n none · enter convert selected · q cancel") + "\n"
	return s
}
