package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/blocksig/internal/config"
	"github.com/bamsammich/blocksig/internal/fault"
)

func TestParseBlockSize(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "1024", want: 1 << 20},
		{in: "4", want: 4096},
		{in: "4M", want: 4 << 20},
		{in: "512K", want: 512 << 10},
		{in: " 8 ", want: 8 << 10},
		{in: "0", wantErr: true},
		{in: "-4", wantErr: true},
		{in: "lots", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseBlockSize(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, fault.ErrConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func newTestCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	opts.register(cmd.Flags(), "output")
	return cmd
}

func TestApplyConfigDefaults_FlagsWin(t *testing.T) {
	var opts options
	cmd := newTestCmd(&opts)
	require.NoError(t, cmd.Flags().Parse([]string{"-n", "3", "--hash", "sha256"}))

	workers, hash, block, prefetch, readers := 12, "xxh3", "4M", true, 4
	applyConfigDefaults(cmd, config.DefaultsConfig{
		Workers:   &workers,
		Hash:      &hash,
		BlockSize: &block,
		Prefetch:  &prefetch,
		Readers:   &readers,
	}, &opts)

	assert.Equal(t, 3, opts.workers)
	assert.Equal(t, "sha256", opts.hash)
	assert.Equal(t, "4M", opts.blockSize)
	assert.True(t, opts.prefetch)
	assert.Equal(t, 4, opts.readers)
}

func TestApplyConfigDefaults_NilLeavesFlagDefaults(t *testing.T) {
	var opts options
	cmd := newTestCmd(&opts)
	require.NoError(t, cmd.Flags().Parse(nil))

	applyConfigDefaults(cmd, config.DefaultsConfig{}, &opts)
	assert.Equal(t, defaultBlockSize, opts.blockSize)
	assert.Equal(t, "blake3", opts.hash)
	assert.Equal(t, 1, opts.readers)
	assert.False(t, opts.prefetch)
}

func TestEngineConfig(t *testing.T) {
	opts := options{
		input:     "in.bin",
		output:    "out.sig",
		blockSize: "4",
		hash:      "XXH3",
		bwLimit:   "10M",
		buffer:    "1M",
		readers:   2,
		workers:   5,
		prefetch:  true,
	}
	cfg, workers, err := opts.engineConfig()
	require.NoError(t, err)
	assert.Equal(t, 5, workers)
	assert.Equal(t, int64(4096), cfg.BlockSize)
	assert.Equal(t, "xxh3", cfg.Hash.Name)
	assert.Equal(t, int64(10<<20), cfg.BWLimit)
	assert.Equal(t, int64(1<<20), cfg.BufferSize)
	assert.Equal(t, 2, cfg.Readers)

	text := describe(cfg, workers)
	assert.Contains(t, text, "block size = 4 (kilobytes)")
	assert.Contains(t, text, "workers    = 5")
	assert.Contains(t, text, "prefetch")
}

func TestEngineConfig_Errors(t *testing.T) {
	base := options{input: "in", output: "out", blockSize: "4", hash: "blake3", buffer: "1M", readers: 1}

	tests := []struct {
		name   string
		mutate func(*options)
	}{
		{"missing input", func(o *options) { o.input = "" }},
		{"missing output", func(o *options) { o.output = "" }},
		{"bad block size", func(o *options) { o.blockSize = "x" }},
		{"unknown hash", func(o *options) { o.hash = "md4" }},
		{"bad bwlimit", func(o *options) { o.bwLimit = "fast" }},
		{"negative workers", func(o *options) { o.workers = -1 }},
		{"zero readers", func(o *options) { o.prefetch = true; o.readers = 0 }},
		{"bad buffer", func(o *options) { o.prefetch = true; o.buffer = "big" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := base
			tt.mutate(&opts)
			_, _, err := opts.engineConfig()
			require.Error(t, err)
			assert.ErrorIs(t, err, fault.ErrConfig)
		})
	}
}
