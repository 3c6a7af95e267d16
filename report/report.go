// Package report turns stopwatch outputs into human-readable status lines.
package report

import (
	"fmt"

	"github.com/NasaHari/bitsilicon-dd-assignments/stopwatch"
)

// StatusString decodes a status code. Codes the device never produces decode
// to UNKNOWN.
func StatusString(code stopwatch.StatusCode) string {
	switch code {
	case stopwatch.StatusIdle:
		return "IDLE"
	case stopwatch.StatusRunning:
		return "RUNNING"
	case stopwatch.StatusPaused:
		return "PAUSED"
	default:
		return "UNKNOWN"
	}
}

// FormatTime renders minutes and seconds as MM:SS.
func FormatTime(minutes, seconds uint8) string {
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// Line renders one status line, e.g. "Status: RUNNING | Time: 00:10".
func Line(code stopwatch.StatusCode, minutes, seconds uint8) string {
	return fmt.Sprintf("Status: %-7s | Time: %s",
		StatusString(code), FormatTime(minutes, seconds))
}

// SnapshotLine renders the status line of a recorded tick.
func SnapshotLine(s stopwatch.Snapshot) string {
	return Line(s.Status, s.Minutes, s.Seconds)
}
