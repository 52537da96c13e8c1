package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatRate(t *testing.T) {
	tests := []struct {
		input float64
		want  string
	}{
		{0, "0 B/s"},
		{-1, "0 B/s"},
		{0.5, "0 B/s"},
		{512, "512 B/s"},
		{1024, "1.0 KiB/s"},
		{1.5 * 1024 * 1024, "1.5 MiB/s"},
		{2.5 * 1024 * 1024 * 1024, "2.5 GiB/s"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatRate(tt.input))
		})
	}
}

func TestFormatBlockRate(t *testing.T) {
	tests := []struct {
		input float64
		want  string
	}{
		{0, "0 blocks/s"},
		{2.3, "2.3 blocks/s"},
		{256, "256 blocks/s"},
		{9999, "9999 blocks/s"},
		{25_600, "25.6k blocks/s"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatBlockRate(tt.input))
		})
	}
}

func TestFormatETA(t *testing.T) {
	tests := []struct {
		input time.Duration
		want  string
	}{
		{0, "--"},
		{-1 * time.Second, "--"},
		{30 * time.Second, "30s"},
		{90 * time.Second, "1m 30s"},
		{3661 * time.Second, "1h 01m 01s"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatETA(tt.input))
		})
	}
}

func TestFormatCount(t *testing.T) {
	tests := []struct {
		input int64
		want  string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1000000, "1,000,000"},
		{14302, "14,302"},
		{-1000, "-1,000"},
		{-999, "-999"},
		{100000, "100,000"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCount(tt.input))
		})
	}
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "[#####.....]", ProgressBar(0.5, 10))
	assert.Equal(t, "[..........]", ProgressBar(0, 10))
	assert.Equal(t, "[##########]", ProgressBar(1.5, 10))
	assert.Equal(t, "[]", ProgressBar(0.5, 0))
}

func TestProgressCells(t *testing.T) {
	tests := []struct {
		frac          float64
		width         int
		filled, empty int
	}{
		{0.25, 8, 2, 6},
		{0.99, 10, 9, 1},
		{-0.5, 4, 0, 4},
		{2, 4, 4, 0},
		{0.5, 0, 0, 0},
	}
	for _, tt := range tests {
		filled, empty := ProgressCells(tt.frac, tt.width)
		assert.Equal(t, tt.filled, filled, "frac=%v width=%d", tt.frac, tt.width)
		assert.Equal(t, tt.empty, empty, "frac=%v width=%d", tt.frac, tt.width)
	}
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "0 B", FormatBytes(0))
	assert.Equal(t, "1.0 KiB", FormatBytes(1024))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0s", FormatDuration(0))
	assert.Equal(t, "30s", FormatDuration(30*time.Second))
	assert.Equal(t, "3m 17s", FormatDuration(3*time.Minute+17*time.Second))
	assert.Equal(t, "1h 02m 03s", FormatDuration(1*time.Hour+2*time.Minute+3*time.Second))
}
