// Package prefetch serves fixed-size blocks of one file to many concurrent
// consumers from two alternating windows, keeping the next window's read in
// flight on a pool of reader goroutines.
//
// Access is single pass: every block may be copied at most once, and a block
// that precedes the front window has been retired for good. Consumers may
// run ahead of the resident windows; they wait until rotation brings their
// block in.
//
// Locking: one mutex guards window roles, start ids, hit counts and claims.
// The wait on a window's pending read and the copy out of its storage happen
// outside that mutex, so consumers of the front and back windows never stall
// each other. A window is only recycled once every one of its blocks has been
// claimed and released, so no copy can observe a refill.
package prefetch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/time/rate"

	"github.com/bamsammich/blocksig/internal/fault"
	"github.com/bamsammich/blocksig/internal/platform"
	"github.com/bamsammich/blocksig/internal/pool"
	"github.com/bamsammich/blocksig/internal/throttle"
)

var (
	// ErrOutOfRange is returned for blocks that were already retired or
	// consumed, and for indexes past the end of the file.
	ErrOutOfRange = fmt.Errorf("%w: block out of range", fault.ErrProtocol)
	// ErrClosed is returned by Copy after Close.
	ErrClosed = fmt.Errorf("%w: reader closed", fault.ErrProtocol)
)

// Config controls window geometry and read parallelism.
type Config struct {
	Limiter    *rate.Limiter // optional aggregate read cap
	Logger     *slog.Logger
	BufferSize int64 // bytes for both windows together
	BlockSize  int64
	Readers    int // reader goroutines, each with its own file handle
}

// Span is a half-open range of block indexes [Start, End).
type Span struct {
	Start int64
	End   int64
}

// Contains reports whether idx falls inside the span.
func (s Span) Contains(idx int64) bool {
	return idx >= s.Start && idx < s.End
}

type readerRes struct {
	f *os.File
}

func (r *readerRes) Close() error {
	return r.f.Close()
}

// Reader is a double-buffered, read-ahead block reader.
type Reader struct {
	ctx     context.Context
	pool    *pool.Pool[readerRes]
	limiter *rate.Limiter
	logger  *slog.Logger

	path      string
	blockSize int64
	perWindow int64
	fileSize  int64
	blocks    int64

	mu     sync.Mutex
	moved  *sync.Cond // broadcast on rotation and close
	front  *window
	back   *window
	closed bool
}

// Validate checks cfg without touching the file. It returns the number of
// blocks each window holds.
func Validate(cfg Config) (int64, error) {
	if cfg.Readers < 1 {
		return 0, fault.Configf("prefetch needs at least 1 reader, got %d", cfg.Readers)
	}
	if cfg.BlockSize <= 0 {
		return 0, fault.Configf("block size must be positive, got %d", cfg.BlockSize)
	}
	half := cfg.BufferSize / 2
	if cfg.BlockSize > half {
		return 0, fault.Configf("block size %d exceeds half the buffer (%d)", cfg.BlockSize, half)
	}
	perWindow := half / cfg.BlockSize
	if perWindow < 2 {
		return 0, fault.Configf("window holds %d block(s); double buffering needs at least 2", perWindow)
	}
	return perWindow, nil
}

// Open validates the geometry, opens cfg.Readers handles to path and primes
// the front (block 0) and back (block BlocksPerWindow) windows.
func Open(ctx context.Context, path string, cfg Config) (*Reader, error) {
	perWindow, err := Validate(cfg)
	if err != nil {
		return nil, err
	}

	size, err := platform.FileSize(path)
	if err != nil {
		return nil, fault.Resource("open input", err)
	}
	if size == 0 {
		return nil, fault.Configf("input %s is empty", path)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := &Reader{
		ctx:       ctx,
		limiter:   cfg.Limiter,
		logger:    logger,
		path:      path,
		blockSize: cfg.BlockSize,
		perWindow: perWindow,
		fileSize:  size,
		blocks:    (size + cfg.BlockSize - 1) / cfg.BlockSize,
		pool:      pool.New[readerRes](pool.WithLogger(logger), pool.WithName("prefetch")),
	}
	r.moved = sync.NewCond(&r.mu)

	for range cfg.Readers {
		f, err := os.Open(path)
		if err != nil {
			r.pool.Close()
			return nil, fault.Resource("open input", err)
		}
		platform.AdviseSequential(f)
		if err := r.pool.AddWorker(readerRes{f: f}); err != nil {
			f.Close()
			r.pool.Close()
			return nil, err
		}
	}

	r.front = newWindow(perWindow, cfg.BlockSize)
	r.back = newWindow(perWindow, cfg.BlockSize)
	r.front.start = 0
	r.back.start = perWindow

	r.mu.Lock()
	r.load(r.front)
	r.load(r.back)
	r.mu.Unlock()

	logger.Debug("prefetch reader open",
		"path", path,
		"size", size,
		"blocks", r.blocks,
		"blocks_per_window", perWindow,
		"readers", cfg.Readers,
	)
	return r, nil
}

// FileSize returns the input size in bytes.
func (r *Reader) FileSize() int64 { return r.fileSize }

// Blocks returns the number of blocks in the input, counting a short tail.
func (r *Reader) Blocks() int64 { return r.blocks }

// BlockSize returns the configured block size.
func (r *Reader) BlockSize() int64 { return r.blockSize }

// BlocksPerWindow returns how many blocks one window holds.
func (r *Reader) BlocksPerWindow() int64 { return r.perWindow }

// Windows returns the spans currently covered by the front and back windows.
func (r *Reader) Windows() (front, back Span) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.front.span(), r.back.span()
}

// Copy waits for the window holding block idx to be read, then copies the
// block into dst. It returns the number of bytes copied, which is less than
// the block size only for the last block or when dst is shorter.
func (r *Reader) Copy(idx int64, dst []byte) (int, error) {
	if idx < 0 || idx >= r.blocks {
		return 0, fmt.Errorf("%w: block %d, file has %d", ErrOutOfRange, idx, r.blocks)
	}

	w, err := r.claim(idx)
	if err != nil {
		return 0, err
	}

	n, err := r.copyFrom(w, idx, dst)
	r.release(w)
	return n, err
}

// Close stops the reader pool and closes every file handle. Goroutines
// waiting in Copy for a block ahead of the windows return ErrClosed.
func (r *Reader) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()
	r.moved.Broadcast()

	r.pool.Close()
	return nil
}

// claim reserves block idx in the window that covers it, waiting while the
// block is still ahead of both windows.
func (r *Reader) claim(idx int64) (*window, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for {
		if r.closed {
			return nil, ErrClosed
		}
		if idx < r.front.start {
			return nil, fmt.Errorf("%w: block %d precedes front window at %d",
				ErrOutOfRange, idx, r.front.start)
		}

		var w *window
		switch {
		case r.front.span().Contains(idx):
			w = r.front
		case r.back.span().Contains(idx):
			w = r.back
		case idx < r.back.start:
			// Between the windows: the back window already moved past it.
			return nil, fmt.Errorf("%w: block %d already retired", ErrOutOfRange, idx)
		default:
			r.moved.Wait()
			continue
		}

		slot := idx - w.start
		if w.claimed[slot] {
			return nil, fmt.Errorf("%w: block %d already read", ErrOutOfRange, idx)
		}
		w.claimed[slot] = true
		return w, nil
	}
}

func (r *Reader) copyFrom(w *window, idx int64, dst []byte) (int, error) {
	// w.start, w.pending and w.data are stable until this claim is released.
	if w.loadErr != nil {
		return 0, w.loadErr
	}
	valid, err := w.pending.Wait()
	if err != nil {
		return 0, fmt.Errorf("read window at block %d: %w", w.start, err)
	}

	off := (idx - w.start) * r.blockSize
	avail := int64(valid) - off
	if avail <= 0 {
		return 0, nil
	}
	avail = min(avail, r.blockSize, int64(len(dst)))
	return copy(dst, w.data[off:off+avail]), nil
}

// release counts a consumed block and rotates the windows when one of them
// has been fully consumed.
func (r *Reader) release(w *window) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w.hits++
	if w.hits < r.perWindow {
		return
	}

	switch w {
	case r.front:
		// Storage of the retired front is reused for the next back window.
		r.front, r.back = r.back, r.front
		r.back.start = r.front.start + r.perWindow
	case r.back:
		r.back.start += r.perWindow
	}
	if !r.closed {
		r.load(r.back)
	}
	r.moved.Broadcast()
}

// load resets w and issues its read. Called with r.mu held.
func (r *Reader) load(w *window) {
	w.reset()

	data := w.data
	off := w.start * r.blockSize
	h, err := pool.Submit(r.pool, func(res *readerRes) (int, error) {
		n, err := platform.PreadFull(res.f, data, off)
		if err != nil {
			return n, fault.Resource("read input", err)
		}
		if err := throttle.WaitN(r.ctx, r.limiter, n); err != nil {
			return n, err
		}
		return n, nil
	})
	if err != nil {
		w.loadErr = err
		return
	}
	w.pending = h
}
