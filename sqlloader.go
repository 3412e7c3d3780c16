package sqlloader

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/xerrors"
)

// ErrNoHandler is returned by Handle when no handler matches the event.
var ErrNoHandler = errors.New("no handler matches the event")

// SQLLoader converts flat files into SQL statements.
type SQLLoader interface {
	AddHandler(context.Context, *Handler) error
	Handle(context.Context, Event) error
	MustAddHandler(context.Context, *Handler)
}

// New build a new SQLLoader.
func New(opts ...Option) (SQLLoader, error) {
	l := &sqlloader{
		handlers:  []*Handler{},
		mu:        sync.RWMutex{},
		logLevel:  zerolog.InfoLevel,
		logWriter: os.Stderr,
		output:    os.Stdout,
	}

	for _, o := range opts {
		if err := o.apply(l); err != nil {
			return nil, xerrors.Errorf("failed to apply option: %w", err)
		}
	}

	w := l.logWriter
	if l.prettyLogging {
		w = zerolog.ConsoleWriter{Out: l.logWriter}
	}
	l.logger = zerolog.New(w).Level(l.logLevel).With().Timestamp().Logger()

	return l, nil
}

type sqlloader struct {
	handlers []*Handler
	mu       sync.RWMutex

	logger        zerolog.Logger
	logLevel      zerolog.Level
	logWriter     io.Writer
	prettyLogging bool

	output io.Writer
}

func (l *sqlloader) AddHandler(ctx context.Context, h *Handler) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := h.validate(); err != nil {
		return xerrors.Errorf("invalid handler %q: %w", h.Name, err)
	}

	if h.Extractor == nil {
		h.Extractor = newDefaultExtractor()
	}

	if h.Loader == nil {
		h.Loader = NewStatementLoader(l.output)
	}

	l.handlers = append(l.handlers, h)

	return nil
}

func (l *sqlloader) MustAddHandler(ctx context.Context, h *Handler) {
	if err := l.AddHandler(ctx, h); err != nil {
		panic(err)
	}
}

func (l *sqlloader) Handle(ctx context.Context, e Event) error {
	ctx = l.logger.With().Str("event", e.Name).Logger().WithContext(ctx)
	ctx = withStartedTime(ctx)
	log := zerolog.Ctx(ctx)

	log.Debug().Str("dir", e.Dir).Msg("loader started")
	defer log.Debug().Msg("loader finished")

	// Runs share the output, so one event is handled at a time.
	l.mu.Lock()
	defer l.mu.Unlock()

	matched := false
	for _, h := range l.handlers {
		if !h.match(e.Name) {
			continue
		}
		matched = true

		log.Debug().Str("handler", h.Name).Msg("handler matches")
		if err := h.handle(ctx, e); err != nil {
			log.Error().Err(err).Str("handler", h.Name).Msg("handler failed")
			return err
		}
	}

	if !matched {
		return xerrors.Errorf("%s: %w", e.Name, ErrNoHandler)
	}

	return nil
}
