package prefetch

import "github.com/bamsammich/blocksig/internal/pool"

// window is one of the two resident buffers. Its storage is allocated once
// and refilled in place each time the window moves.
type window struct {
	data    []byte
	claimed []bool
	pending *pool.Handle[int] // resolves to the number of valid bytes
	loadErr error
	start   int64
	hits    int64
}

func newWindow(blocks, blockSize int64) *window {
	return &window{
		data:    make([]byte, blocks*blockSize),
		claimed: make([]bool, blocks),
	}
}

func (w *window) span() Span {
	return Span{Start: w.start, End: w.start + int64(len(w.claimed))}
}

func (w *window) reset() {
	w.hits = 0
	clear(w.claimed)
	w.pending = nil
	w.loadErr = nil
}
