package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"eddystone-radar.klederson.com/internal/beacon"
	"github.com/charmbracelet/lipgloss"
)

// RenderDetailPanel renders the beacon detail view that replaces the event log.
func RenderDetailPanel(b beacon.Beacon, width, height int, tempHistory []float64, now time.Time) string {
	innerW := width - 4
	if innerW < 20 {
		innerW = 20
	}

	title := StylePanelTitle.Render("BEACON DETAIL")
	escHint := StyleHelp.Render("[ESC]")
	titleLine := title + strings.Repeat(" ", max(0, innerW-lipgloss.Width(title)-lipgloss.Width(escHint))) + escHint

	sep := StyleSeparator.Render(strings.Repeat("-", innerW))
	lines := []string{titleLine, sep, ""}

	labelSty := lipgloss.NewStyle().Foreground(ColorMidGreen)
	valSty := lipgloss.NewStyle().Foreground(ColorMatrixGreen).Bold(true)

	url := "unknown"
	if b.HasURL {
		url = b.URL
	}
	temp, battery := "unknown", "unknown"
	if b.HasTelemetry {
		temp = fmt.Sprintf("%.2f C", b.Temp)
		battery = fmt.Sprintf("%d mV", b.Voltage)
	}

	fields := []struct{ label, value string }{
		{"Identity", b.UID},
		{"ID", b.DisplayID()},
		{"Frame", b.Kind.String()},
		{"RSSI", fmt.Sprintf("%d dBm", b.RSSI)},
		{"Tx Power", fmt.Sprintf("%d dBm", b.TxPower)},
		{"Distance", FormatDistance(b.Distance())},
		{"URL", url},
		{"Temp", temp},
		{"Battery", battery},
		{"First", formatAgo(now.Sub(b.FirstSeen))},
		{"Last", formatAgo(now.Sub(b.LastSeen))},
		{"Expires", formatExpiry(b.ExpiresAt, now)},
	}

	for _, f := range fields {
		label := labelSty.Render(fmt.Sprintf("  %-10s", f.label))
		lines = append(lines, label+valSty.Render(f.value))
	}

	lines = append(lines, "")

	barWidth := innerW - 22
	if barWidth < 10 {
		barWidth = 10
	}
	bar := renderSignalBar(float64(b.RSSI), barWidth)
	lines = append(lines, labelSty.Render("  Signal ")+bar+valSty.Render(fmt.Sprintf(" %ddBm", b.RSSI)))

	if len(tempHistory) > 0 {
		sparkW := innerW - 4
		if sparkW < 10 {
			sparkW = 10
		}
		lines = append(lines, "")
		lines = append(lines, labelSty.Render("  Temperature History:"))
		spark := renderSparkline(tempHistory, sparkW)
		lines = append(lines, "  "+lipgloss.NewStyle().Foreground(ColorGreen).Render(spark))
	}

	return renderPanel(StylePanelActive, lines, width, height)
}

func renderSignalBar(rssi float64, width int) string {
	// Map RSSI -100..-30 to 0..width filled bars
	ratio := (rssi + 100.0) / 70.0
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	filled := int(math.Round(ratio * float64(width)))

	filledPart := lipgloss.NewStyle().Foreground(ColorMatrixGreen).Render(strings.Repeat("|", filled))
	emptyPart := lipgloss.NewStyle().Foreground(ColorDimGreen).Render(strings.Repeat("-", width-filled))
	return StyleHelp.Render("[") + filledPart + emptyPart + StyleHelp.Render("]")
}

func renderSparkline(values []float64, width int) string {
	if len(values) == 0 {
		return ""
	}

	chars := []byte{'_', '.', '-', '~', '^'}

	minV, maxV := values[0], values[0]
	for _, v := range values {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}

	rng := maxV - minV
	if rng < 1 {
		rng = 1
	}

	// Take last `width` values
	start := 0
	if len(values) > width {
		start = len(values) - width
	}

	var sb strings.Builder
	for i := start; i < len(values); i++ {
		idx := int((values[i] - minV) / rng * float64(len(chars)-1))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(chars) {
			idx = len(chars) - 1
		}
		sb.WriteByte(chars[idx])
	}

	return sb.String()
}

func formatAgo(d time.Duration) string {
	if d < time.Second {
		return "now"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	}
	return fmt.Sprintf("%dm ago", int(d.Minutes()))
}

func formatExpiry(at, now time.Time) string {
	if at.IsZero() {
		return "paused"
	}
	left := at.Sub(now)
	if left < 0 {
		left = 0
	}
	return fmt.Sprintf("in %.1fs", left.Seconds())
}
