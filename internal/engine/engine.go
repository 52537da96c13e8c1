package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/bamsammich/blocksig/internal/event"
	"github.com/bamsammich/blocksig/internal/fault"
	"github.com/bamsammich/blocksig/internal/hashfn"
	"github.com/bamsammich/blocksig/internal/platform"
	"github.com/bamsammich/blocksig/internal/pool"
	"github.com/bamsammich/blocksig/internal/prefetch"
	"github.com/bamsammich/blocksig/internal/stats"
	"github.com/bamsammich/blocksig/internal/throttle"
)

// DefaultBufferSize is the prefetch buffer shared by both windows.
const DefaultBufferSize = 64 << 20

// Config describes a signature run.
type Config struct {
	Hash       hashfn.Algorithm
	Events     chan<- event.Event
	Stats      *stats.Collector
	Logger     *slog.Logger
	Input      string
	Output     string // signature file to write (Configure) or compare against (Verify)
	BlockSize  int64
	BufferSize int64 // prefetch buffer for both windows; DefaultBufferSize if zero
	BWLimit    int64 // aggregate read cap in bytes/sec; zero is unlimited
	Readers    int   // prefetch reader goroutines; 1 if zero
	Prefetch   bool  // read blocks through the shared double-buffered reader
}

// Result is the outcome of a run.
type Result struct {
	Err         error
	Fingerprint string // hex BLAKE3 of the signature bytes written
	Stats       stats.Snapshot
	Blocks      int64 // blocks in the input
	Written     int64 // digests written (or compared) before the run ended
}

// OK reports whether every block was hashed and written.
func (r Result) OK() bool {
	return r.Err == nil
}

// Generator turns one input file into a signature. It runs once.
type Generator struct {
	cfg    Config
	sink   Sink
	logger *slog.Logger

	fileSize      int64
	blocks        int64
	lastBlockSize int64
	ran           bool
}

// BlockCount returns the number of blocks in a file of size bytes and the
// length of the final block, which equals blockSize when size is an exact
// multiple.
func BlockCount(size, blockSize int64) (blocks, last int64) {
	if size <= 0 || blockSize <= 0 {
		return 0, 0
	}
	blocks = (size + blockSize - 1) / blockSize
	last = size - (blocks-1)*blockSize
	return blocks, last
}

// Configure validates cfg, checks that the input is a readable non-empty
// file and opens the output for writing. The output is truncated when Run
// starts, not here.
func Configure(cfg Config) (*Generator, error) {
	g, err := plan(cfg)
	if err != nil {
		return nil, err
	}

	sink, err := createFileSink(cfg.Output, cfg.Hash.Size, g.blocks)
	if err != nil {
		return nil, err
	}
	g.sink = sink
	return g, nil
}

func plan(cfg Config) (*Generator, error) {
	if cfg.BlockSize <= 0 {
		return nil, fault.Configf("block size must be positive, got %d", cfg.BlockSize)
	}
	if cfg.Hash.New == nil || cfg.Hash.Size <= 0 {
		return nil, fault.Configf("no hash function configured")
	}
	if cfg.Input == "" || cfg.Output == "" {
		return nil, fault.Configf("input and output paths are required")
	}
	if cfg.Prefetch {
		if cfg.BufferSize == 0 {
			cfg.BufferSize = DefaultBufferSize
		}
		if cfg.Readers == 0 {
			cfg.Readers = 1
		}
		if _, err := prefetch.Validate(cfg.prefetchConfig(nil, nil)); err != nil {
			return nil, err
		}
	}
	if cfg.Stats == nil {
		cfg.Stats = stats.NewCollector()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	size, err := platform.FileSize(cfg.Input)
	if err != nil {
		return nil, fault.Resource("input", err)
	}
	f, err := os.Open(cfg.Input)
	if err != nil {
		return nil, fault.Resource("input", err)
	}
	f.Close()
	if size == 0 {
		return nil, fault.Configf("input %s is empty", cfg.Input)
	}
	if sameFile(cfg.Input, cfg.Output) {
		return nil, fault.Configf("output %s is the input file", cfg.Output)
	}

	g := &Generator{
		cfg:      cfg,
		logger:   cfg.Logger,
		fileSize: size,
	}
	g.blocks, g.lastBlockSize = BlockCount(size, cfg.BlockSize)
	return g, nil
}

// sameFile reports whether both paths name one existing file. A missing
// output is never the input.
func sameFile(a, b string) bool {
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}

func (cfg Config) prefetchConfig(limiter *rate.Limiter, logger *slog.Logger) prefetch.Config {
	return prefetch.Config{
		BufferSize: cfg.BufferSize,
		BlockSize:  cfg.BlockSize,
		Readers:    cfg.Readers,
		Limiter:    limiter,
		Logger:     logger,
	}
}

// FileSize returns the input size in bytes.
func (g *Generator) FileSize() int64 { return g.fileSize }

// Blocks returns the number of blocks, and so of signature records.
func (g *Generator) Blocks() int64 { return g.blocks }

// LastBlockSize returns the length of the final block.
func (g *Generator) LastBlockSize() int64 { return g.lastBlockSize }

// DigestSize returns the length of one signature record.
func (g *Generator) DigestSize() int { return g.cfg.Hash.Size }

// Run hashes every block on workers goroutines and writes the digests in
// block order. The first failure stops collection; digests already written
// stay in the output.
func (g *Generator) Run(ctx context.Context, workers int) Result {
	if g.ran {
		return Result{Blocks: g.blocks, Err: ErrAlreadyRan}
	}
	g.ran = true
	return g.execute(ctx, workers, g.sink)
}

func (g *Generator) blockLen(idx int64) int64 {
	if idx == g.blocks-1 {
		return g.lastBlockSize
	}
	return g.cfg.BlockSize
}

//nolint:revive // cognitive-complexity: setup, submit and ordered drain share teardown
func (g *Generator) execute(ctx context.Context, workers int, sink Sink) Result {
	cfg := g.cfg
	collector := cfg.Stats
	logger := g.logger.With("run", uuid.NewString()[:8])
	result := Result{Blocks: g.blocks}

	finish := func(err error) Result {
		if closeErr := sink.Close(); closeErr != nil && err == nil {
			err = fault.Resource("close signature", closeErr)
		}
		result.Err = err
		result.Stats = collector.Snapshot()
		if fp, ok := sink.(interface{ Fingerprint() string }); ok {
			result.Fingerprint = fp.Fingerprint()
		}
		event.Emit(cfg.Events, event.Event{
			Type:  event.RunComplete,
			Path:  cfg.Input,
			Total: result.Written,
			Error: err,
		})
		return result
	}

	if workers < 1 {
		return finish(fault.Configf("need at least 1 worker, got %d", workers))
	}

	collector.SetTotals(g.blocks, g.fileSize)
	event.Emit(cfg.Events, event.Event{
		Type:      event.RunStarted,
		Path:      cfg.Input,
		Total:     g.blocks,
		TotalSize: g.fileSize,
	})
	logger.Debug("starting signature",
		"input", cfg.Input,
		"output", cfg.Output,
		"size", g.fileSize,
		"block_size", cfg.BlockSize,
		"blocks", g.blocks,
		"last_block", g.lastBlockSize,
		"hash", cfg.Hash.Name,
		"workers", workers,
		"prefetch", cfg.Prefetch,
	)

	limiter := throttle.NewBWLimiter(cfg.BWLimit)

	var reader *prefetch.Reader
	if cfg.Prefetch {
		var err error
		reader, err = prefetch.Open(ctx, cfg.Input, cfg.prefetchConfig(limiter, logger))
		if err != nil {
			return finish(err)
		}
		defer reader.Close()
	}

	// Nothing above touched the output; an existing signature survives
	// every configuration error.
	if err := sink.Begin(); err != nil {
		return finish(err)
	}

	p := pool.New[blockRes](pool.WithLogger(logger), pool.WithName("hash"))
	// stop shuts the pool down exactly once. Queued tasks are abandoned and
	// in-flight ones finish; closing the reader first releases any task
	// waiting for a window that will no longer rotate.
	stop := func() {
		if err := p.Shutdown(); err != nil {
			logger.Warn("shutdown hash pool", "error", err)
		}
		if reader != nil {
			_ = reader.Close()
		}
		p.Wait()
	}

	for range workers {
		res, err := newBlockRes(cfg, reader == nil)
		if err != nil {
			stop()
			return finish(err)
		}
		if err := p.AddWorker(res); err != nil {
			res.Close()
			stop()
			return finish(err)
		}
	}

	handles := make([]*pool.Handle[[]byte], 0, g.blocks)
	for idx := range g.blocks {
		h, err := pool.Submit(p, g.hashBlock(ctx, idx, reader, limiter))
		if err != nil {
			stop()
			return finish(err)
		}
		handles = append(handles, h)
	}

	runErr := g.collect(ctx, handles, sink, &result, logger)
	stop()

	out := finish(runErr)
	if runErr != nil {
		logger.Error("signature failed", "error", runErr, "written", out.Written)
	} else {
		logger.Info("signature complete",
			"blocks", out.Written,
			"bytes", out.Stats.BytesHashed,
			"fingerprint", out.Fingerprint,
			"elapsed", out.Stats.Elapsed,
		)
	}
	return out
}

// collect drains handles strictly in submission order and hands each digest
// to the sink. It stops at the first failure.
func (g *Generator) collect(
	ctx context.Context,
	handles []*pool.Handle[[]byte],
	sink Sink,
	result *Result,
	logger *slog.Logger,
) error {
	cfg := g.cfg
	for i, h := range handles {
		idx := int64(i)
		digest, err := h.WaitContext(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
				return fmt.Errorf("interrupted at block %d: %w", idx, err)
			}
			cfg.Stats.AddBlocksFailed(1)
			blockErr := &BlockError{Index: idx, Err: err}
			event.Emit(cfg.Events, event.Event{
				Type:  event.BlockFailed,
				Path:  cfg.Input,
				Block: idx,
				Size:  g.blockLen(idx),
				Error: err,
			})
			return blockErr
		}

		if err := sink.WriteDigest(idx, digest); err != nil {
			var mismatch *MismatchError
			if !errors.As(err, &mismatch) {
				return &BlockError{Index: idx, Err: err}
			}
			cfg.Stats.AddBlocksMismatched(1)
			event.Emit(cfg.Events, event.Event{
				Type:  event.BlockMismatch,
				Path:  cfg.Input,
				Block: idx,
				Size:  g.blockLen(idx),
			})
			logger.Debug("block mismatch", "block", idx)
		}

		result.Written++
		cfg.Stats.AddBlocksHashed(1)
		cfg.Stats.AddBytesHashed(g.blockLen(idx))
		event.Emit(cfg.Events, event.Event{
			Type:  event.BlockHashed,
			Path:  cfg.Input,
			Block: idx,
			Size:  g.blockLen(idx),
		})
	}
	return nil
}

// hashBlock builds the task for block idx. The task reads the block into the
// worker's scratch buffer, either through the shared prefetch reader or with
// pread on the worker's own handle, then digests it.
func (g *Generator) hashBlock(
	ctx context.Context,
	idx int64,
	reader *prefetch.Reader,
	limiter *rate.Limiter,
) func(res *blockRes) ([]byte, error) {
	size := g.blockLen(idx)
	want := g.cfg.Hash.Size
	off := idx * g.cfg.BlockSize

	return func(res *blockRes) ([]byte, error) {
		buf := res.buf[:size]

		var (
			n   int
			err error
		)
		if reader != nil {
			n, err = reader.Copy(idx, buf)
		} else {
			n, err = platform.PreadFull(res.file, buf, off)
			if err != nil {
				err = fault.Resource("read input", err)
			} else {
				err = throttle.WaitN(ctx, limiter, n)
			}
		}
		if err != nil {
			return nil, err
		}
		if int64(n) != size {
			return nil, fmt.Errorf("%w: got %d of %d bytes", ErrShortRead, n, size)
		}

		digest, err := res.hasher.Sum(buf)
		if err != nil {
			return nil, fmt.Errorf("hash: %w", err)
		}
		if len(digest) != want {
			return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrDigestSize, len(digest), want)
		}
		return digest, nil
	}
}
