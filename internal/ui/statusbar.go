package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// StatusInfo is the data shown in the status bar.
type StatusInfo struct {
	Scanning   bool
	Err        error
	Total      int
	UID        int
	EID        int
	Telemetry  int
	Expiration time.Duration
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, s StatusInfo) string {
	status := StyleStatusPaused.Render("[PAUSED]")
	if s.Scanning {
		status = StyleStatusScanning.Render("[SCANNING]")
	}

	info := fmt.Sprintf(" Beacons: %d  UID: %d  EID: %d  TLM: %d  Window: %s",
		s.Total, s.UID, s.EID, s.Telemetry, s.Expiration)

	content := status + StyleStatusBar.Foreground(ColorGreen).Render(info)
	if s.Err != nil {
		content += "  " + StyleStatusError.Render(s.Err.Error())
	}

	gap := width - lipgloss.Width(content)
	if gap < 0 {
		gap = 0
	}

	return StyleStatusBar.Width(width).Render(content + strings.Repeat(" ", gap))
}
