package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSparkline(t *testing.T) {
	tests := []struct {
		name  string
		data  []float64
		width int
		want  string
	}{
		{"zero width", []float64{1, 2}, 0, ""},
		{"idle", []float64{0, 0, 0}, 3, "▁▁▁"},
		{"no samples yet", nil, 4, "▁▁▁▁"},
		{"one sample padded left", []float64{50}, 4, "▁▁▁█"},
		{"steady throughput", []float64{7, 7, 7}, 3, "███"},
		{"ramp", []float64{1, 2, 3, 4, 5, 6, 7, 8}, 8, "▁▂▃▄▅▆▇█"},
		{"keeps newest samples", []float64{100, 0, 0, 10}, 2, "▁█"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sparkline(tt.data, tt.width))
		})
	}
}

func TestSparkline_ScalesToPeakInWindow(t *testing.T) {
	// The early burst falls outside the window, so 40 is the peak.
	got := []rune(Sparkline([]float64{1000, 10, 20, 40}, 3))
	assert.Len(t, got, 3)
	assert.Equal(t, '█', got[2])
	assert.Less(t, got[0], got[1])
}
