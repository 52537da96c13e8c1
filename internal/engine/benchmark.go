package engine

import (
	"context"
	"fmt"
	"math"
	"os"
	"runtime"
	"time"

	"github.com/bamsammich/blocksig/internal/fault"
	"github.com/bamsammich/blocksig/internal/hashfn"
	"github.com/bamsammich/blocksig/internal/platform"
	"github.com/bamsammich/blocksig/internal/units"
)

// BenchmarkResult holds throughput measurements for one input.
type BenchmarkResult struct {
	ReadBytesPerSec  float64 // sequential pread throughput of the input
	HashBytesPerSec  float64 // single-goroutine digest throughput
	SuggestedWorkers int
}

const benchSize = 64 * units.MiB

// RunBenchmark reads up to 64 MiB of input and hashes the same bytes on one
// goroutine, then suggests how many hash workers keep up with the disk.
func RunBenchmark(
	ctx context.Context,
	input string,
	alg hashfn.Algorithm,
	blockSize int64,
) (BenchmarkResult, error) {
	var result BenchmarkResult
	if blockSize <= 0 {
		return result, fault.Configf("block size must be positive, got %d", blockSize)
	}

	f, err := os.Open(input)
	if err != nil {
		return result, fault.Resource("benchmark input", err)
	}
	defer f.Close()
	platform.AdviseSequential(f)

	size, err := platform.FileSize(input)
	if err != nil {
		return result, fault.Resource("benchmark input", err)
	}
	if size == 0 {
		return result, fault.Configf("input %s is empty", input)
	}
	sample := min(size, benchSize)
	blockSize = min(blockSize, sample)
	blocks := make([][]byte, 0, (sample+blockSize-1)/blockSize)

	start := time.Now()
	for off := int64(0); off < sample; off += blockSize {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		buf := make([]byte, min(blockSize, sample-off))
		n, err := platform.PreadFull(f, buf, off)
		if err != nil {
			return result, fault.Resource("benchmark read", err)
		}
		blocks = append(blocks, buf[:n])
	}
	result.ReadBytesPerSec = bytesPerSec(sample, time.Since(start))

	h := alg.New()
	start = time.Now()
	for _, b := range blocks {
		if _, err := h.Sum(b); err != nil {
			return result, fmt.Errorf("benchmark hash: %w", err)
		}
	}
	result.HashBytesPerSec = bytesPerSec(sample, time.Since(start))

	result.SuggestedWorkers = suggestWorkers(result.ReadBytesPerSec, result.HashBytesPerSec)
	return result, nil
}

func bytesPerSec(n int64, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		elapsed = time.Microsecond
	}
	return float64(n) / elapsed.Seconds()
}

// suggestWorkers returns enough workers for hashing to match the read rate,
// capped at the CPU count.
func suggestWorkers(readBPS, hashBPS float64) int {
	cpus := runtime.NumCPU()
	if hashBPS <= 0 || readBPS <= 0 {
		return cpus
	}
	need := int(math.Ceil(readBPS / hashBPS))
	return max(1, min(need, cpus))
}

// FormatBenchmark formats a BenchmarkResult for display.
func FormatBenchmark(r BenchmarkResult) string {
	return fmt.Sprintf("benchmark: read %s  hash %s per worker  suggested workers %d",
		formatRate(r.ReadBytesPerSec), formatRate(r.HashBytesPerSec), r.SuggestedWorkers)
}

func formatRate(b float64) string {
	switch {
	case b >= 1e9:
		return fmt.Sprintf("%.1f GB/s", b/1e9)
	case b >= 1e6:
		return fmt.Sprintf("%.0f MB/s", b/1e6)
	case b >= 1e3:
		return fmt.Sprintf("%.0f KB/s", b/1e3)
	default:
		return fmt.Sprintf("%.0f B/s", b)
	}
}
