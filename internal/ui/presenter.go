package ui

import (
	"io"

	"github.com/bamsammich/blocksig/internal/config"
	"github.com/bamsammich/blocksig/internal/event"
	"github.com/bamsammich/blocksig/internal/stats"
)

// Event is the engine progress event consumed by presenters.
type Event = event.Event

// Presenter turns the engine's event stream into terminal output.
type Presenter interface {
	// Run consumes events until the channel is closed.
	Run(events <-chan Event) error
	// Summary returns the line printed after the run, or "" for none.
	Summary() string
}

// Config selects and configures a Presenter.
type Config struct {
	Writer     io.Writer
	ErrWriter  io.Writer
	Stats      stats.ReadTicker
	Theme      config.ThemeConfig
	Terminal   Terminal // stderr, where progress is drawn
	Quiet      bool
	Verbose    bool
	NoProgress bool
}

// NewPresenter picks the quiet, plain or bar presenter. The bar is used only
// when stderr is a terminal and progress was not disabled.
//
//nolint:ireturn // factory
func NewPresenter(cfg Config) Presenter {
	switch {
	case cfg.Quiet:
		return quietPresenter{}
	case !cfg.Terminal.TTY || cfg.NoProgress:
		return &plainPresenter{
			w:       cfg.Writer,
			errW:    cfg.ErrWriter,
			stats:   cfg.Stats,
			verbose: cfg.Verbose,
		}
	default:
		return &barPresenter{
			w:     cfg.ErrWriter,
			stats: cfg.Stats,
			theme: NewTheme(cfg.Theme),
			width: cfg.Terminal.Width,
		}
	}
}

// quietPresenter discards every event. Failures still reach the user through
// the returned error and the exit code.
type quietPresenter struct{}

func (quietPresenter) Run(events <-chan Event) error {
	for range events {
	}
	return nil
}

func (quietPresenter) Summary() string { return "" }
