package ui

import (
	"fmt"
	"math"
	"strings"

	"eddystone-radar.klederson.com/internal/beacon"
	"github.com/charmbracelet/lipgloss"
)

// Cursor row style: black text on bright green = unmissable highlight
var cursorRowSty = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#000000")).
	Background(ColorMatrixGreen).
	Bold(true)

// RenderBeaconList renders the scrollable beacon list panel with a cursor.
// The title stays fixed at the top; only the entries scroll.
func RenderBeaconList(beacons []beacon.Beacon, width, height, cursorIndex int) string {
	innerW := width - 4
	if innerW < 10 {
		innerW = 10
	}

	title := StylePanelTitle.Render(fmt.Sprintf("BEACONS [%d]", len(beacons)))
	separator := StyleSeparator.Render(strings.Repeat("-", innerW))
	headerLines := []string{title, separator}

	innerH := height - 2
	if innerH < len(headerLines)+1 {
		innerH = len(headerLines) + 1
	}
	space := innerH - len(headerLines)

	var lines []string
	if len(beacons) == 0 {
		lines = append(lines, "")
		lines = append(lines, StyleHelp.Render(" No beacons..."))
		lines = append(lines, StyleHelp.Render(" Waiting for scan"))
	} else {
		linesPerBeacon := 4 // 3 content + 1 blank
		maxVisible := space / linesPerBeacon
		if maxVisible < 1 {
			maxVisible = 1
		}

		// Keep the cursor inside the viewport
		viewStart := 0
		if cursorIndex >= maxVisible {
			viewStart = cursorIndex - maxVisible + 1
		}

		for i := viewStart; i < len(beacons) && len(lines) < space; i++ {
			lines = append(lines, renderBeaconEntry(beacons[i], innerW, i == cursorIndex)...)
		}
	}

	all := append(headerLines, lines...)
	return renderPanel(StylePanelBorder, all, width, height)
}

func renderBeaconEntry(b beacon.Beacon, maxW int, isCursor bool) []string {
	cursor := "  "
	if isCursor {
		cursor = ">>"
	}

	tag := "[" + b.Kind.String() + "]"
	id := b.DisplayID()
	if idMax := maxW - 10; len(id) > idMax && idMax > 4 {
		id = id[:idMax]
	}

	extras := ""
	if b.HasURL {
		extras += "  URL"
	}
	if b.HasTelemetry {
		extras += fmt.Sprintf("  %.1fC", b.Temp)
	}

	rssiStr := fmt.Sprintf("%ddBm", b.RSSI)
	distStr := FormatDistance(b.Distance())

	if isCursor {
		raw1 := truncRaw(fmt.Sprintf("%s %s %s", cursor, tag, id), maxW)
		raw2 := truncRaw(fmt.Sprintf("      %s", b.UID), maxW)
		raw3 := truncRaw(fmt.Sprintf("      %s  %s%s", rssiStr, distStr, extras), maxW)
		return []string{
			cursorRowSty.Render(raw1),
			cursorRowSty.Render(raw2),
			cursorRowSty.Render(raw3),
			"",
		}
	}

	tagSty := StyleKindUID
	if b.Kind == beacon.FrameEID {
		tagSty = StyleKindEID
	}
	line1 := fmt.Sprintf("%s %s %s", cursor, tagSty.Render(tag), StyleBeaconID.Render(id))
	line2 := "      " + StyleBeaconUID.Render(b.UID)
	line3 := "      " + StyleBeaconSignal.Render(rssiStr+"  "+distStr) + StyleHelp.Render(extras)
	return []string{line1, line2, line3, ""}
}

// FormatDistance renders a distance estimate, or "?" when it is unknown.
func FormatDistance(d float64) string {
	if d < 0 || math.IsNaN(d) || math.IsInf(d, 0) {
		return "~?"
	}
	return fmt.Sprintf("~%.4gm", d)
}

// truncRaw pads or truncates a raw string to exactly w characters.
func truncRaw(s string, w int) string {
	if len(s) > w {
		return s[:w]
	}
	if len(s) < w {
		return s + strings.Repeat(" ", w-len(s))
	}
	return s
}

// renderPanel draws lines inside a bordered panel of exactly height lines.
// lipgloss Height() only sets a minimum; it won't truncate overflow.
func renderPanel(sty lipgloss.Style, lines []string, width, height int) string {
	innerH := height - 2
	if innerH < 1 {
		innerH = 1
	}
	if len(lines) > innerH {
		lines = lines[:innerH]
	}
	for len(lines) < innerH {
		lines = append(lines, "")
	}

	rendered := sty.Width(width - 2).Height(innerH).Render(strings.Join(lines, "\n"))

	out := strings.Split(rendered, "\n")
	if len(out) > height {
		out = out[:height]
	}
	for len(out) < height {
		out = append(out, "")
	}
	return strings.Join(out, "\n")
}
