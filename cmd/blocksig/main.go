package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bamsammich/blocksig/internal/config"
	"github.com/bamsammich/blocksig/internal/engine"
	"github.com/bamsammich/blocksig/internal/event"
	"github.com/bamsammich/blocksig/internal/stats"
	"github.com/bamsammich/blocksig/internal/ui"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	err := newRootCmd().Execute()
	var exitErr *exitError
	if err != nil && !errors.As(err, &exitErr) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return exitCode(err)
}

func newRootCmd() *cobra.Command {
	var (
		opts        options
		showVersion bool
	)

	rootCmd := &cobra.Command{
		Use:   "blocksig -i INPUT -o OUTPUT [flags]",
		Short: "Build a per-block digest signature of a file in parallel",
		Long: "blocksig splits INPUT into fixed-size blocks, hashes them on a pool of\n" +
			"workers and writes one fixed-size digest per block to OUTPUT in block order.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if showVersion {
				fmt.Fprintf(os.Stdout, "blocksig %s\n", version)
				return nil
			}
			return runSignature(cmd, &opts)
		},
	}

	rootCmd.Flags().BoolVar(&showVersion, "version", false, "print version and exit")
	opts.register(rootCmd.Flags(), "file to write the signature to (truncated)")

	rootCmd.AddCommand(newVerifyCmd())
	rootCmd.AddCommand(hashesCmd)
	rootCmd.AddCommand(docsCmd)
	return rootCmd
}

// session is the per-invocation plumbing shared by signature and verify
// runs: logger, stats, event channel and presenter.
type session struct {
	logger    *slog.Logger
	collector *stats.Collector
	events    chan event.Event
	presenter ui.Presenter
	closeLog  func()
	quiet     bool
}

// setup loads the config file, applies its defaults and builds the logger
// and presenter.
func setup(cmd *cobra.Command, opts *options) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		slog.Warn("failed to load config", "error", err)
	}
	applyConfigDefaults(cmd, cfg.Defaults, opts)

	logger, closeLog, err := newLogger(opts, os.Stderr)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	if s := cfg.Defaults.String(); s != "" {
		logger.Debug("config defaults", "path", config.Path(), "values", s)
	}

	collector := stats.NewCollector()
	presenter := ui.NewPresenter(ui.Config{
		Writer:     os.Stdout,
		ErrWriter:  os.Stderr,
		Stats:      collector,
		Theme:      cfg.Theme,
		Terminal:   ui.DetectTerminal(os.Stderr),
		Quiet:      opts.quiet,
		Verbose:    opts.verbose,
		NoProgress: opts.noProgress,
	})

	return &session{
		logger:    logger,
		collector: collector,
		events:    make(chan event.Event, 256),
		presenter: presenter,
		closeLog:  closeLog,
		quiet:     opts.quiet,
	}, nil
}

// newLogger builds the stderr text logger, teeing to a JSON file when --log
// is set.
func newLogger(opts *options, stderr io.Writer) (*slog.Logger, func(), error) {
	logLevel := slog.LevelWarn
	if opts.verbose {
		logLevel = slog.LevelDebug
	} else if !opts.quiet {
		logLevel = slog.LevelInfo
	}
	textHandler := slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: logLevel})
	if opts.logFile == "" {
		return slog.New(textHandler), func() {}, nil
	}

	lf, err := os.Create(opts.logFile)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	jsonHandler := slog.NewJSONHandler(lf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(ui.NewMultiHandler(textHandler, jsonHandler)), func() { lf.Close() }, nil
}

// drive runs fn with the presenter consuming events in the background and
// prints the summary afterwards.
func (s *session) drive(fn func(ctx context.Context) engine.Result) engine.Result {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		presenterErr error
		wg           sync.WaitGroup
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		presenterErr = s.presenter.Run(s.events)
	}()

	result := fn(ctx)
	stop()
	close(s.events)
	wg.Wait()
	if presenterErr != nil {
		fmt.Fprintf(os.Stderr, "presenter: %v\n", presenterErr)
	}

	if !s.quiet {
		if summary := s.presenter.Summary(); summary != "" {
			fmt.Fprintln(os.Stderr, summary)
		}
	}
	return result
}

// resolve builds the engine configuration, running the benchmark first when
// asked to, and echoes it when verbose.
func (s *session) resolve(opts *options) (engine.Config, int, error) {
	cfg, workers, err := opts.engineConfig()
	if err != nil {
		return engine.Config{}, 0, err
	}
	cfg.Events = s.events
	cfg.Stats = s.collector
	cfg.Logger = s.logger

	if opts.benchmark {
		bench, err := engine.RunBenchmark(context.Background(), cfg.Input, cfg.Hash, cfg.BlockSize)
		if err != nil {
			s.logger.Warn("benchmark failed", "error", err)
		} else {
			fmt.Fprintln(os.Stderr, engine.FormatBenchmark(bench))
			if opts.workers == 0 {
				workers = bench.SuggestedWorkers
			}
		}
	}

	if opts.verbose {
		fmt.Fprint(os.Stderr, describe(cfg, workers))
	}
	return cfg, workers, nil
}

func runSignature(cmd *cobra.Command, opts *options) error {
	s, err := setup(cmd, opts)
	if err != nil {
		return err
	}
	defer s.closeLog()

	cfg, workers, err := s.resolve(opts)
	if err != nil {
		return err
	}

	gen, err := engine.Configure(cfg)
	if err != nil {
		return err
	}

	result := s.drive(func(ctx context.Context) engine.Result {
		return gen.Run(ctx, workers)
	})

	if result.Err != nil {
		if result.Written > 0 {
			return &exitError{code: 1, err: result.Err} // partial output
		}
		return &exitError{code: 2, err: result.Err}
	}
	if opts.verbose {
		fmt.Fprintf(os.Stderr, "signature blake3 %s\n", result.Fingerprint)
	}
	return nil
}

// exitError carries a process exit code. The wrapped error has already been
// logged.
type exitError struct {
	err  error
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}

func (e *exitError) Unwrap() error {
	return e.err
}

// exitCode maps a command error to the process exit status: 0 success,
// 1 partial output, 2 anything else.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}
	return 2
}
