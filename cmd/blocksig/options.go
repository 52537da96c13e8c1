package main

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bamsammich/blocksig/internal/config"
	"github.com/bamsammich/blocksig/internal/engine"
	"github.com/bamsammich/blocksig/internal/fault"
	"github.com/bamsammich/blocksig/internal/hashfn"
	"github.com/bamsammich/blocksig/internal/units"
)

const defaultBlockSize = "1024" // kilobytes

// options holds the flags shared by the root command and verify.
type options struct {
	input      string
	output     string
	blockSize  string
	hash       string
	buffer     string
	bwLimit    string
	logFile    string
	workers    int
	readers    int
	prefetch   bool
	verbose    bool
	quiet      bool
	noProgress bool
	benchmark  bool
}

func (o *options) register(fs *pflag.FlagSet, outputUsage string) {
	fs.StringVarP(&o.input, "input", "i", "", "file to build the signature of")
	fs.StringVarP(&o.output, "output", "o", "", outputUsage)
	fs.StringVarP(&o.blockSize, "block-size", "b", defaultBlockSize,
		"block size in kilobytes, or with a unit (e.g. 4M, 512K)")
	fs.IntVarP(&o.workers, "workers", "n", 0, "number of hash workers (default: NumCPU)")
	fs.StringVar(&o.hash, "hash", hashfn.Default,
		"block digest ("+strings.Join(hashfn.Names(), ", ")+")")
	fs.BoolVar(&o.prefetch, "prefetch", false,
		"read blocks through a shared double-buffered reader")
	fs.StringVar(&o.buffer, "buffer", "64M", "prefetch buffer size for both windows")
	fs.IntVar(&o.readers, "readers", 1, "prefetch reader goroutines")
	fs.StringVar(&o.bwLimit, "bwlimit", "", "read bandwidth limit (e.g. 100M, 1G)")
	fs.BoolVarP(&o.verbose, "verbose", "v", false, "verbose output")
	fs.BoolVarP(&o.quiet, "quiet", "q", false, "suppress all output except errors")
	fs.BoolVar(&o.noProgress, "no-progress", false, "disable the progress bar")
	fs.StringVar(&o.logFile, "log", "", "write structured JSON log to FILE")
	fs.BoolVar(&o.benchmark, "benchmark", false,
		"measure read and hash throughput first and pick --workers from it")
}

// applyConfigDefaults applies config file defaults for flags not explicitly
// set on the CLI.
func applyConfigDefaults(cmd *cobra.Command, defaults config.DefaultsConfig, o *options) {
	changed := cmd.Flags().Changed
	if !changed("block-size") && defaults.BlockSize != nil {
		o.blockSize = *defaults.BlockSize
	}
	if !changed("workers") && defaults.Workers != nil {
		o.workers = *defaults.Workers
	}
	if !changed("hash") && defaults.Hash != nil {
		o.hash = *defaults.Hash
	}
	if !changed("prefetch") && defaults.Prefetch != nil {
		o.prefetch = *defaults.Prefetch
	}
	if !changed("buffer") && defaults.Buffer != nil {
		o.buffer = *defaults.Buffer
	}
	if !changed("readers") && defaults.Readers != nil {
		o.readers = *defaults.Readers
	}
	if !changed("bwlimit") && defaults.BWLimit != nil {
		o.bwLimit = *defaults.BWLimit
	}
}

// parseBlockSize reads a block size. A bare number is in kilobytes.
func parseBlockSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n <= 0 {
			return 0, fault.Configf("block size must be positive, got %d", n)
		}
		return n * units.KiB, nil
	}
	n, err := units.ParseSize(s)
	if err != nil {
		return 0, fault.Configf("invalid block size: %v", err)
	}
	if n <= 0 {
		return 0, fault.Configf("block size must be positive, got %q", s)
	}
	return n, nil
}

// engineConfig resolves the options into an engine configuration and the
// worker count.
func (o *options) engineConfig() (engine.Config, int, error) {
	if o.input == "" || o.output == "" {
		return engine.Config{}, 0, fault.Configf("both --input and --output are required")
	}

	blockSize, err := parseBlockSize(o.blockSize)
	if err != nil {
		return engine.Config{}, 0, err
	}
	alg, err := hashfn.Lookup(o.hash)
	if err != nil {
		return engine.Config{}, 0, err
	}

	var bwLimit int64
	if o.bwLimit != "" {
		bwLimit, err = units.ParseSize(o.bwLimit)
		if err != nil {
			return engine.Config{}, 0, fault.Configf("invalid --bwlimit: %v", err)
		}
	}

	cfg := engine.Config{
		Input:     o.input,
		Output:    o.output,
		BlockSize: blockSize,
		Hash:      alg,
		BWLimit:   bwLimit,
		Prefetch:  o.prefetch,
	}
	if o.prefetch {
		buffer, err := units.ParseSize(o.buffer)
		if err != nil {
			return engine.Config{}, 0, fault.Configf("invalid --buffer: %v", err)
		}
		if o.readers < 1 {
			return engine.Config{}, 0, fault.Configf("--readers must be at least 1, got %d", o.readers)
		}
		cfg.BufferSize = buffer
		cfg.Readers = o.readers
	}

	workers := o.workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	if workers < 0 {
		return engine.Config{}, 0, fault.Configf("--workers must be at least 1, got %d", workers)
	}
	return cfg, workers, nil
}

// describe renders the resolved run configuration for verbose output.
func describe(cfg engine.Config, workers int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "input      = %s\n", cfg.Input)
	fmt.Fprintf(&b, "output     = %s\n", cfg.Output)
	fmt.Fprintf(&b, "block size = %d (kilobytes)\n", cfg.BlockSize/units.KiB)
	fmt.Fprintf(&b, "hash       = %s\n", cfg.Hash)
	fmt.Fprintf(&b, "workers    = %d\n", workers)
	if cfg.Prefetch {
		fmt.Fprintf(&b, "prefetch   = %s buffer, %d reader(s)\n",
			units.FormatBytes(cfg.BufferSize), cfg.Readers)
	}
	if cfg.BWLimit > 0 {
		fmt.Fprintf(&b, "bwlimit    = %s/s\n", units.FormatBytes(cfg.BWLimit))
	}
	return b.String()
}
