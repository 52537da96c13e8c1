package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"0", 0},
		{"4096", 4096},
		{"100B", 100},
		{"100b", 100},
		{"1K", 1024},
		{"1KB", 1024},
		{"1KiB", 1024},
		{"1024k", 1 << 20},
		{"1M", 1 << 20},
		{"64 MB", 64 << 20},
		{"1G", 1 << 30},
		{"1T", 1 << 40},
		{"1.5G", 1610612736},
		{"0.5M", 524288},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSizeErrors(t *testing.T) {
	for _, input := range []string{"", "abc", "K", "MB", "-1M", "-5", "notanumber G"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseSize(input)
			assert.Error(t, err)
		})
	}
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", FormatBytes(512))
	assert.Equal(t, "4.0 KiB", FormatBytes(4096))
	assert.Equal(t, "1.5 MiB", FormatBytes(3<<19))
	assert.Equal(t, "2.0 GiB", FormatBytes(2<<30))
}
