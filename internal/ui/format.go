package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bamsammich/blocksig/internal/units"
)

// FormatRate renders hashing throughput in the same IEC units as sizes,
// e.g. "512.0 MiB/s". Anything under one byte per second shows as idle.
func FormatRate(bytesPerSec float64) string {
	if bytesPerSec < 1 {
		return "0 B/s"
	}
	return units.FormatBytes(int64(bytesPerSec)) + "/s"
}

// FormatBlockRate renders blocks per second, switching to thousands once
// small blocks make the raw figure unwieldy.
func FormatBlockRate(blocksPerSec float64) string {
	switch {
	case blocksPerSec <= 0:
		return "0 blocks/s"
	case blocksPerSec < 10:
		return fmt.Sprintf("%.1f blocks/s", blocksPerSec)
	case blocksPerSec < 10_000:
		return fmt.Sprintf("%.0f blocks/s", blocksPerSec)
	default:
		return fmt.Sprintf("%.1fk blocks/s", blocksPerSec/1000)
	}
}

// FormatETA formats a remaining duration, or "--" when it is unknown.
func FormatETA(d time.Duration) string {
	if d <= 0 {
		return "--"
	}
	return FormatDuration(d)
}

// FormatDuration formats elapsed time concisely.
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	switch {
	case h > 0:
		return fmt.Sprintf("%dh %02dm %02ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %02ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

// FormatCount groups the digits of a block or record count in threes,
// e.g. "1,234,567".
func FormatCount(n int64) string {
	digits := strconv.FormatInt(n, 10)
	sign := ""
	if n < 0 {
		sign, digits = "-", digits[1:]
	}
	out := make([]byte, 0, len(digits)+len(digits)/3)
	for i := range len(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, digits[i])
	}
	return sign + string(out)
}

// ProgressCells splits width cells into filled and empty counts for a
// fraction in [0, 1]. Out-of-range fractions are clamped.
func ProgressCells(frac float64, width int) (filled, empty int) {
	if width <= 0 {
		return 0, 0
	}
	frac = max(0, min(frac, 1))
	filled = min(int(frac*float64(width)), width)
	return filled, width - filled
}

// ProgressBar renders an unstyled ASCII bar such as "[#####.....]" for
// plain output, where log files and pipes may not handle block glyphs.
func ProgressBar(frac float64, width int) string {
	filled, empty := ProgressCells(frac, width)
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", empty) + "]"
}

// FormatBytes formats a byte count for display.
func FormatBytes(b int64) string {
	return units.FormatBytes(b)
}
