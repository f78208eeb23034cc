package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jask/debtsense/internal/database/repository"
	"github.com/jask/debtsense/internal/service"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true)
	negativeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	highStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	mediumStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	lowStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// FormatCents renders an integer cent amount as a currency string.
func FormatCents(cents int64, symbol string) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%s%d.%02d", sign, symbol, cents/100, cents%100)
}

func confidenceStyle(c service.Confidence) lipgloss.Style {
	switch c {
	case service.ConfidenceHigh:
		return highStyle
	case service.ConfidenceMedium:
		return mediumStyle
	default:
		return lowStyle
	}
}

// RenderCandidates renders the detector's output as a plain table with the
// reasons underneath each row.
func RenderCandidates(candidates []service.DebtCandidate, currency string) string {
	if len(candidates) == 0 {
		return "No debt candidates found.\n"
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-28s %14s  %-6s %5s  %s", "ACCOUNT", "BALANCE", "CONF", "SCORE", "SUGGESTED")))
	b.WriteString("\n")
	for _, c := range candidates {
		balance := negativeStyle.Render(fmt.Sprintf("%14s", FormatCents(c.BalanceCents, currency)))
		conf := confidenceStyle(c.Confidence).Render(fmt.Sprintf("%-6s", c.Confidence))
		b.WriteString(fmt.Sprintf("%-28s %s  %s %5d  %s\n", truncate(c.AccountName, 28), balance, conf, c.Score, c.SuggestedType))
		for _, reason := range c.Reasons {
			b.WriteString(lowStyle.Render("    - "+reason) + "\n")
		}
	}
	return b.String()
}

// RenderAccounts renders the account list with debt metadata.
func RenderAccounts(accounts []repository.Account, balances map[string]int64, currency string) string {
	if len(accounts) == 0 {
		return "No accounts.\n"
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-28s %14s  %-5s %-14s %7s  %s", "ACCOUNT", "BALANCE", "DEBT", "TYPE", "APR", "SCHEME")))
	b.WriteString("\n")
	for _, a := range accounts {
		debt := "no"
		debtType := "-"
		apr := "-"
		scheme := "-"
		if a.Debt {
			debt = "yes"
			scheme = a.InterestScheme
			if a.DebtType != nil {
				debtType = *a.DebtType
			}
			if a.APR != nil {
				apr = fmt.Sprintf("%.2f%%", *a.APR)
			}
		}
		balance := fmt.Sprintf("%14s", FormatCents(balances[a.ID], currency))
		if balances[a.ID] < 0 {
			balance = negativeStyle.Render(balance)
		}
		b.WriteString(fmt.Sprintf("%-28s %s  %-5s %-14s %7s  %s\n", truncate(a.Name, 28), balance, debt, debtType, apr, scheme))
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
