package engine

import (
	"context"
	"fmt"

	"github.com/bamsammich/blocksig/internal/fault"
	"github.com/bamsammich/blocksig/internal/platform"
)

// VerifyResult is the outcome of comparing an input against a signature.
type VerifyResult struct {
	Mismatched []int64 // block indexes whose digest differs
	Result
}

// OK reports whether every block matched.
func (r VerifyResult) OK() bool {
	return r.Err == nil && len(r.Mismatched) == 0
}

// Verify recomputes the digest of every block of cfg.Input and compares it
// against the signature at cfg.Output. The signature must hold exactly one
// record per block.
func Verify(ctx context.Context, cfg Config, workers int) VerifyResult {
	g, err := plan(cfg)
	if err != nil {
		return VerifyResult{Result: Result{Err: err}}
	}

	sigSize, err := platform.FileSize(cfg.Output)
	if err != nil {
		return VerifyResult{Result: Result{Blocks: g.blocks, Err: fault.Resource("signature", err)}}
	}
	if want := g.blocks * int64(cfg.Hash.Size); sigSize != want {
		return VerifyResult{Result: Result{
			Blocks: g.blocks,
			Err: fmt.Errorf("%w: %s is %d bytes, %d blocks of %s need %d",
				ErrSignatureSize, cfg.Output, sigSize, g.blocks, cfg.Hash.Name, want),
		}}
	}

	sink, err := openCompareSink(cfg.Output, cfg.Hash.Size)
	if err != nil {
		return VerifyResult{Result: Result{Blocks: g.blocks, Err: err}}
	}
	g.ran = true
	res := g.execute(ctx, workers, sink)
	return VerifyResult{Result: res, Mismatched: sink.mismatched}
}
