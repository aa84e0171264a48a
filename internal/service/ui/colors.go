package ui

import "github.com/charmbracelet/lipgloss"

var (
	// Plain ANSI colors so the help renders on any terminal theme
	TitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true).MarginBottom(1)

	UsageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))

	DescStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	FlagStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)
