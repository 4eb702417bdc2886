package main

import "github.com/charmbracelet/lipgloss"

// Palette
var (
	colorCoral  = lipgloss.Color("#FF6B6B")
	colorTeal   = lipgloss.Color("#4ECDC4")
	colorSky    = lipgloss.Color("#45B7D1")
	colorSage   = lipgloss.Color("#96CEB4")
	colorYellow = lipgloss.Color("#FFE66D")
	colorGray   = lipgloss.Color("#626262")
	colorWhite  = lipgloss.Color("#E0E0E0")
	colorInk    = lipgloss.Color("#1A1A1A")
)

// UI styles for the TUI interface
var (
	bannerStyle = lipgloss.NewStyle().
			Foreground(colorTeal).
			Bold(true)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite)

	versionStyle = lipgloss.NewStyle().
			Foreground(colorSage)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	menuCursorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCoral)

	menuItemStyle = lipgloss.NewStyle().
			Foreground(colorWhite)

	menuDescStyle = lipgloss.NewStyle().
			Foreground(colorGray).
			Italic(true)

	headerCellStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorYellow).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().
			Padding(0, 1)

	tcpStyle        = cellStyle.Foreground(colorTeal)
	udpStyle        = cellStyle.Foreground(colorSage)
	privilegedStyle = cellStyle.Foreground(colorCoral)
	addressStyle    = cellStyle.Foreground(colorGray)
	pidStyle        = cellStyle.Foreground(colorSky)
	processStyle    = cellStyle.Foreground(colorWhite)

	tableBorderStyle = lipgloss.NewStyle().
				Foreground(colorGray)

	countStyle = lipgloss.NewStyle().
			Foreground(colorTeal)

	emptyStyle = lipgloss.NewStyle().
			Foreground(colorYellow)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorCoral).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9ECE6A")).
			Bold(true)

	confirmStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCoral).
			MarginTop(1)

	detailBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorGray).
			Padding(0, 1)

	detailLabelStyle = lipgloss.NewStyle().
				Foreground(colorYellow).
				Width(9)

	monitorTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorYellow)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(colorTeal)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorGray).
			MarginTop(1)
)
