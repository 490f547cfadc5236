package ui

import (
	"fmt"
	"strings"
	"time"

	"eddystone-radar.klederson.com/internal/beacon"
)

// LogEntry is one line of the lifecycle event log.
type LogEntry struct {
	At     time.Time
	Kind   beacon.EventKind
	Beacon beacon.Beacon
}

// RenderEventLog renders the most recent lifecycle events, newest first.
func RenderEventLog(entries []LogEntry, width, height int) string {
	innerW := width - 4
	if innerW < 10 {
		innerW = 10
	}

	lines := []string{
		StylePanelTitle.Render("EVENTS"),
		StyleSeparator.Render(strings.Repeat("-", innerW)),
	}
	if len(entries) == 0 {
		lines = append(lines, StyleHelp.Render(" No events yet"))
	}

	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		sty := StyleEventUpdated
		switch e.Kind {
		case beacon.EventAdded:
			sty = StyleEventAdded
		case beacon.EventExpired:
			sty = StyleEventExpired
		}
		raw := fmt.Sprintf("%s %-7s %s %s", e.At.Format("15:04:05"), e.Kind, e.Beacon.UID, describe(e))
		lines = append(lines, sty.Render(truncRaw(raw, innerW)))
	}

	return renderPanel(StylePanelBorder, lines, width, height)
}

func describe(e LogEntry) string {
	b := e.Beacon
	switch e.Kind {
	case beacon.EventAdded:
		return fmt.Sprintf("%s %ddBm %s", b.Kind, b.RSSI, FormatDistance(b.Distance()))
	case beacon.EventUpdated:
		var parts []string
		if b.HasURL {
			parts = append(parts, b.URL)
		}
		if b.HasTelemetry {
			parts = append(parts, fmt.Sprintf("%.1fC %dmV", b.Temp, b.Voltage))
		}
		return strings.Join(parts, " ")
	default:
		return ""
	}
}
