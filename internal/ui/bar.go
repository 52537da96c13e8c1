package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bamsammich/blocksig/internal/event"
	"github.com/bamsammich/blocksig/internal/stats"
)

const (
	barWidth       = 24
	barWidthNarrow = 12
	sparklineWidth = 12
	barMinInterval = 50 * time.Millisecond // don't redraw faster than this
)

// barPresenter redraws a single styled progress line on the terminal:
//
//	42% [▪▪▪▪▪□□□□□□□] (1,234/3,000)  ▂▃▅▇  512 MB/s  eta 3s
//
// Failed and mismatched blocks are printed above the line as they arrive.
type barPresenter struct {
	w     io.Writer
	stats stats.ReadTicker
	theme Theme
	width int

	drawn    bool
	lastDraw time.Time
}

func (p *barPresenter) Run(events <-chan Event) error {
	// First tick comes quickly to seed the rolling rate, then once a second.
	secTicker := time.NewTicker(250 * time.Millisecond)
	defer secTicker.Stop()
	seeded := false

	redraw := time.NewTicker(100 * time.Millisecond)
	defer redraw.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				p.clear()
				return nil
			}
			p.handleEvent(ev)
			p.maybeDraw()
		case <-redraw.C:
			p.draw()
		case <-secTicker.C:
			p.stats.Tick()
			if !seeded {
				seeded = true
				secTicker.Reset(time.Second)
			}
		}
	}
}

func (p *barPresenter) handleEvent(ev Event) {
	switch ev.Type {
	case event.BlockFailed:
		errMsg := "error"
		if ev.Error != nil {
			errMsg = ev.Error.Error()
		}
		p.printAbove(fmt.Sprintf("%s  block %d  %s",
			p.theme.Failed.Render("✗"), ev.Block, p.theme.Muted.Render(errMsg)))
	case event.BlockMismatch:
		p.printAbove(fmt.Sprintf("%s  block %d  %s",
			p.theme.Warning.Render("≠"), ev.Block, p.theme.Warning.Render("digest mismatch")))
	case event.RunStarted, event.BlockHashed, event.RunComplete:
	}
}

func (p *barPresenter) printAbove(line string) {
	p.clear()
	fmt.Fprintln(p.w, line)
	p.draw()
}

func (p *barPresenter) maybeDraw() {
	if time.Since(p.lastDraw) < barMinInterval {
		return
	}
	p.draw()
}

func (p *barPresenter) draw() {
	fmt.Fprint(p.w, "\r\033[K"+p.render())
	p.drawn = true
	p.lastDraw = time.Now()
}

func (p *barPresenter) clear() {
	if !p.drawn {
		return
	}
	fmt.Fprint(p.w, "\r\033[K")
	p.drawn = false
}

func (p *barPresenter) render() string {
	snap := p.stats.Snapshot()

	var frac float64
	if snap.BlocksTotal > 0 {
		frac = float64(snap.BlocksHashed) / float64(snap.BlocksTotal)
	}

	width := barWidth
	if p.width > 0 && p.width < 80 {
		width = barWidthNarrow
	}
	filled, empty := ProgressCells(frac, width)

	var b strings.Builder
	fmt.Fprintf(&b, "%3.0f%% [", frac*100)
	b.WriteString(p.theme.Filled.Render(strings.Repeat("▪", filled)))
	b.WriteString(p.theme.Empty.Render(strings.Repeat("□", empty)))
	b.WriteString("] ")
	b.WriteString(p.theme.Muted.Render(fmt.Sprintf("(%s/%s)",
		FormatCount(snap.BlocksHashed), FormatCount(snap.BlocksTotal))))

	if p.width == 0 || p.width >= 60 {
		spark := Sparkline(p.stats.SparklineData(sparklineWidth), sparklineWidth)
		b.WriteString("  " + p.theme.Spark.Render(spark))
	}
	b.WriteString("  " + p.theme.Rate.Render(FormatRate(p.stats.RollingSpeed(5))))
	b.WriteString("  eta " + FormatETA(p.stats.ETA()))
	return b.String()
}

func (p *barPresenter) Summary() string {
	snap := p.stats.Snapshot()
	line := CompletionSummary(snap)
	if snap.BlocksFailed > 0 || snap.BlocksMismatched > 0 {
		return p.theme.Failed.Render(line)
	}
	return p.theme.Done.Render(line)
}
