package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/bamsammich/blocksig/internal/event"
	"github.com/bamsammich/blocksig/internal/stats"
)

// plainPresenter writes block failures and mismatches to stdout, every block
// when verbose, and periodic progress lines to stderr. Used when stderr is
// not a terminal.
const plainBarWidth = 20

type plainPresenter struct {
	w       io.Writer
	errW    io.Writer
	stats   stats.ReadTicker
	verbose bool
}

func (p *plainPresenter) Run(events <-chan Event) error {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	secTicker := time.NewTicker(time.Second)
	defer secTicker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			p.handleEvent(ev)
		case <-secTicker.C:
			p.stats.Tick()
		case <-ticker.C:
			p.printProgress()
		}
	}
}

func (p *plainPresenter) handleEvent(ev Event) {
	switch ev.Type {
	case event.RunStarted:
		if p.verbose {
			fmt.Fprintf(p.w, "%s  %s  %s blocks\n",
				ev.Path, FormatBytes(ev.TotalSize), FormatCount(ev.Total))
		}
	case event.BlockHashed:
		if p.verbose {
			fmt.Fprintf(p.w, "block %d  %s\n", ev.Block, FormatBytes(ev.Size))
		}
	case event.BlockFailed:
		errMsg := "error"
		if ev.Error != nil {
			errMsg = ev.Error.Error()
		}
		fmt.Fprintf(p.w, "block %d  %s  %s\n", ev.Block, FormatBytes(ev.Size), errMsg)
	case event.BlockMismatch:
		fmt.Fprintf(p.w, "MISMATCH: block %d\n", ev.Block)
	case event.RunComplete:
		// summary is printed by the caller
	}
}

func (p *plainPresenter) printProgress() {
	snap := p.stats.Snapshot()
	if snap.BytesTotal <= 0 {
		return
	}
	frac := float64(snap.BytesHashed) / float64(snap.BytesTotal)
	fmt.Fprintf(p.errW, "progress: %s %.0f%% %s/%s blocks %s %s eta %s\n",
		ProgressBar(frac, plainBarWidth),
		frac*100,
		FormatCount(snap.BlocksHashed), FormatCount(snap.BlocksTotal),
		FormatBlockRate(p.stats.RollingBlocksPerSec(10)),
		FormatRate(p.stats.RollingSpeed(10)),
		FormatETA(p.stats.ETA()),
	)
}

func (p *plainPresenter) Summary() string {
	return CompletionSummary(p.stats.Snapshot())
}
