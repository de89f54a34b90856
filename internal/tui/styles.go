package tui

import "github.com/charmbracelet/lipgloss"

// Status values shown in progress tables.
const (
	StatusPending   = "pending"
	StatusExporting = "exporting"
	StatusExported  = "exported"
	StatusSkipped   = "skipped"
	StatusInvoking  = "invoking"
	StatusDone      = "done"
	StatusError     = "error"
)

var (
	// HeaderStyle styles the column header row.
	HeaderStyle = lipgloss.NewStyle().Bold(true)
	// TitleStyle styles table and preview titles.
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5"))

	dimStyle      = lipgloss.NewStyle().Faint(true)
	playheadStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	sentimentStyles = map[string]lipgloss.Style{
		"positive": lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		"negative": lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	}

	statusStyles = map[string]lipgloss.Style{
		StatusExported: lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		StatusDone:     lipgloss.NewStyle().Foreground(lipgloss.Color("2")),

		StatusExporting: lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		StatusInvoking:  lipgloss.NewStyle().Foreground(lipgloss.Color("4")),

		StatusSkipped: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		StatusError:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		StatusPending: lipgloss.NewStyle().Faint(true),
	}
)

// StatusStyle returns the lipgloss style for the given status string.
func StatusStyle(status string) lipgloss.Style {
	if s, ok := statusStyles[status]; ok {
		return s
	}
	return lipgloss.NewStyle()
}

func terminalStatus(status string) bool {
	switch status {
	case StatusExported, StatusDone, StatusSkipped, StatusError:
		return true
	}
	return false
}
