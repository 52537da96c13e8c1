package ui

import (
	"fmt"

	"github.com/bamsammich/blocksig/internal/stats"
)

// CompletionSummary builds the final summary line from a snapshot.
// Format: done ✓  blocks 10,240  size 10.0 GB  avg 1.21 GB/s  time 8s  errors 0
func CompletionSummary(snap stats.Snapshot) string {
	avgSpeed := 0.0
	if snap.Elapsed.Seconds() > 0 {
		avgSpeed = float64(snap.BytesHashed) / snap.Elapsed.Seconds()
	}

	icon := "✓"
	if snap.BlocksFailed > 0 || snap.BlocksMismatched > 0 ||
		snap.BlocksHashed < snap.BlocksTotal {
		icon = "✗"
	}

	line := fmt.Sprintf("done %s  blocks %s  size %s  avg %s  time %s",
		icon,
		FormatCount(snap.BlocksHashed),
		FormatBytes(snap.BytesHashed),
		FormatRate(avgSpeed),
		FormatDuration(snap.Elapsed),
	)
	if snap.BlocksMismatched > 0 {
		line += "  mismatched " + FormatCount(snap.BlocksMismatched)
	}
	return line + fmt.Sprintf("  errors %d", snap.BlocksFailed)
}
