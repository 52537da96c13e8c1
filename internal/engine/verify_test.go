package engine

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/blocksig/internal/event"
	"github.com/bamsammich/blocksig/internal/fault"
)

func TestVerify_Match(t *testing.T) {
	input, _ := writeInput(t, 12, 5)
	cfg := testConfig(t, input)
	require.NoError(t, runSignature(t, cfg, 3).Err)

	res := Verify(context.Background(), cfg, 4)
	require.NoError(t, res.Err)
	assert.True(t, res.OK())
	assert.Empty(t, res.Mismatched)
	assert.Equal(t, int64(13), res.Written)
	assert.Empty(t, res.Fingerprint)
}

func TestVerify_ReportsMismatchedBlocks(t *testing.T) {
	input, data := writeInput(t, 12, 0)
	cfg := testConfig(t, input)
	require.NoError(t, runSignature(t, cfg, 3).Err)

	data[3*testBlock+10] ^= 0xFF
	data[9*testBlock] ^= 0xFF
	require.NoError(t, os.WriteFile(input, data, 0o644))

	events := make(chan event.Event, 64)
	cfg.Events = events
	cfg.Prefetch = true
	cfg.BufferSize = 6 * testBlock

	res := Verify(context.Background(), cfg, 2)
	require.NoError(t, res.Err)
	assert.False(t, res.OK())
	assert.Equal(t, []int64{3, 9}, res.Mismatched)
	assert.Equal(t, int64(2), res.Stats.BlocksMismatched)
	assert.Equal(t, int64(12), res.Written)

	close(events)
	var flagged []int64
	for e := range events {
		if e.Type == event.BlockMismatch {
			flagged = append(flagged, e.Block)
		}
	}
	assert.Equal(t, []int64{3, 9}, flagged)
}

func TestVerify_SignatureSizeMismatch(t *testing.T) {
	input, _ := writeInput(t, 4, 0)
	cfg := testConfig(t, input)
	require.NoError(t, os.WriteFile(cfg.Output, make([]byte, 3*32), 0o644))

	res := Verify(context.Background(), cfg, 1)
	require.Error(t, res.Err)
	assert.ErrorIs(t, res.Err, ErrSignatureSize)
	assert.Equal(t, int64(4), res.Blocks)
}

func TestVerify_MissingSignature(t *testing.T) {
	input, _ := writeInput(t, 4, 0)
	cfg := testConfig(t, input)

	res := Verify(context.Background(), cfg, 1)
	require.Error(t, res.Err)
	assert.ErrorIs(t, res.Err, fault.ErrResource)
}
