package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/blocksig/internal/event"
	"github.com/bamsammich/blocksig/internal/stats"
)

func runPlain(t *testing.T, verbose bool, evs ...Event) (string, *stats.Collector) {
	t.Helper()
	var out, errOut bytes.Buffer
	collector := stats.NewCollector()
	p := &plainPresenter{w: &out, errW: &errOut, stats: collector, verbose: verbose}

	events := make(chan Event, len(evs))
	for _, ev := range evs {
		events <- ev
	}
	close(events)
	require.NoError(t, p.Run(events))
	return out.String(), collector
}

func TestPlainPresenter_QuietOnSuccess(t *testing.T) {
	out, _ := runPlain(t, false,
		Event{Type: event.RunStarted, Path: "in.bin", Total: 2, TotalSize: 8192},
		Event{Type: event.BlockHashed, Block: 0, Size: 4096},
		Event{Type: event.BlockHashed, Block: 1, Size: 4096},
		Event{Type: event.RunComplete, Total: 2},
	)
	assert.Empty(t, out)
}

func TestPlainPresenter_Verbose(t *testing.T) {
	out, _ := runPlain(t, true,
		Event{Type: event.RunStarted, Path: "in.bin", Total: 2, TotalSize: 4097},
		Event{Type: event.BlockHashed, Block: 0, Size: 4096},
		Event{Type: event.BlockHashed, Block: 1, Size: 1},
	)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "in.bin")
	assert.Contains(t, lines[0], "2 blocks")
	assert.Equal(t, "block 0  4.0 KiB", lines[1])
	assert.Equal(t, "block 1  1 B", lines[2])
}

func TestPlainPresenter_BlockFailed(t *testing.T) {
	out, _ := runPlain(t, false,
		Event{Type: event.BlockFailed, Block: 5, Size: 4096, Error: assert.AnError},
	)
	assert.Contains(t, out, "block 5")
	assert.Contains(t, out, assert.AnError.Error())
}

func TestPlainPresenter_Mismatch(t *testing.T) {
	out, _ := runPlain(t, false, Event{Type: event.BlockMismatch, Block: 9})
	assert.Equal(t, "MISMATCH: block 9\n", out)
}

func TestPlainPresenter_Progress(t *testing.T) {
	var errOut bytes.Buffer
	collector := stats.NewCollector()
	collector.SetTotals(4, 4096*4)
	collector.AddBlocksHashed(2)
	collector.AddBytesHashed(4096 * 2)

	p := &plainPresenter{errW: &errOut, stats: collector}
	p.printProgress()
	assert.Contains(t, errOut.String(),
		"progress: [##########..........] 50% 2/4 blocks 0 blocks/s 0 B/s eta --")
}

func TestPlainPresenter_Summary(t *testing.T) {
	collector := stats.NewCollector()
	collector.SetTotals(100, 1024*1024)
	collector.AddBlocksHashed(100)
	collector.AddBytesHashed(1024 * 1024)

	p := &plainPresenter{stats: collector}
	s := p.Summary()
	assert.Contains(t, s, "done ✓")
	assert.Contains(t, s, "blocks 100")
	assert.Contains(t, s, "errors 0")
}
