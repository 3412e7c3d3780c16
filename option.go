package sqlloader

import (
	"io"

	"github.com/rs/zerolog"
	"golang.org/x/xerrors"
)

// Option configures SQLLoader.
type Option interface {
	apply(*sqlloader) error
}

type optionFunc func(*sqlloader) error

func (f optionFunc) apply(l *sqlloader) error {
	return f(l)
}

// WithPrettyLogging configures SQLLoader to print human friendly logs.
func WithPrettyLogging() Option {
	return optionFunc(func(l *sqlloader) error {
		l.prettyLogging = true
		return nil
	})
}

// WithLogLevel sets the minimum log level by name, e.g. "debug" or "warn".
func WithLogLevel(level string) Option {
	return optionFunc(func(l *sqlloader) error {
		lv, err := zerolog.ParseLevel(level)
		if err != nil {
			return xerrors.Errorf("failed to parse log level %q: %w", level, err)
		}
		l.logLevel = lv
		return nil
	})
}

// WithLogWriter sends logs to w instead of stderr.
func WithLogWriter(w io.Writer) Option {
	return optionFunc(func(l *sqlloader) error {
		l.logWriter = w
		return nil
	})
}

// WithOutput sends generated SQL to w instead of stdout.
// Handlers with their own Loader are not affected.
func WithOutput(w io.Writer) Option {
	return optionFunc(func(l *sqlloader) error {
		l.output = w
		return nil
	})
}
