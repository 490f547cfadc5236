package ui

import "github.com/charmbracelet/lipgloss"

// ComposeLayout joins the beacon list and the right panel horizontally,
// with menu bar on top and status bar on bottom.
func ComposeLayout(menuBar, beaconList, rightPanel, statusBar string) string {
	middle := lipgloss.JoinHorizontal(lipgloss.Top, beaconList, rightPanel)
	return lipgloss.JoinVertical(lipgloss.Left, menuBar, middle, statusBar)
}
