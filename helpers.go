package main

import (
	"fmt"

	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
)

// truncateText shortens s to at most maxLen cells, marking the cut with an
// ellipsis
func truncateText(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if ansi.PrintableRuneWidth(s) <= maxLen {
		return s
	}
	return truncate.StringWithTail(s, uint(maxLen), "…")
}

// formatBytes renders a byte count using binary units
func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit && exp < 5; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
