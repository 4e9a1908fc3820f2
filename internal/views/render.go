package views

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

type AppData struct {
	Header     string
	Tabs       []string
	ActiveTab  int
	LeftPane   string
	RightPane  string
	StatusLine string
	Severity   string
	Footer     string
}

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	tabStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("8"))
	activeTabStyle = tabStyle.Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("4"))
	panelStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	severityStyles = map[string]lipgloss.Style{
		"info":    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		"success": lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		"warning": lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		"error":   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	}
)

func RenderApp(data AppData) string {
	tabs := make([]string, 0, len(data.Tabs))
	for i, t := range data.Tabs {
		if i == data.ActiveTab {
			tabs = append(tabs, activeTabStyle.Render(t))
		} else {
			tabs = append(tabs, tabStyle.Render(t))
		}
	}

	left := panelStyle.Width(72).Render(data.LeftPane)
	row := left
	if strings.TrimSpace(data.RightPane) != "" {
		right := panelStyle.Width(44).Render(data.RightPane)
		row = lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	}

	lines := []string{
		headerStyle.Render(data.Header),
		lipgloss.JoinHorizontal(lipgloss.Top, tabs...),
		row,
	}
	if data.StatusLine != "" {
		lines = append(lines, StatusStyle(data.Severity).Render(data.StatusLine))
	}
	if data.Footer != "" {
		lines = append(lines, footerStyle.Render(data.Footer))
	}
	return strings.Join(lines, "\n")
}

// StatusStyle returns the toast style for a severity, defaulting to info.
func StatusStyle(severity string) lipgloss.Style {
	if s, ok := severityStyles[severity]; ok {
		return s
	}
	return severityStyles["info"]
}

// ColorDot renders a bullet in a notification's hex color.
func ColorDot(hex string) string {
	if hex == "" {
		return "•"
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render("●")
}

func RenderMarkdown(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	out, err := glamour.Render(md, "dark")
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}
