package sqlloader

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"golang.org/x/xerrors"
)

// Extractor opens a source file of an event.
// The returned func releases the reader and must be called once.
type Extractor interface {
	Extract(ctx context.Context, e Event, source string) (io.Reader, func(), error)
}

type defaultExtractor struct{}

func newDefaultExtractor() Extractor {
	return &defaultExtractor{}
}

func (ex *defaultExtractor) Extract(ctx context.Context, e Event, source string) (io.Reader, func(), error) {
	l := log.Ctx(ctx)
	path := e.FullPath(source)

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, xerrors.Errorf("failed to open %s: %w", path, err)
	}
	l.Debug().Str("path", path).Msg("source opened")

	return f, func() {
		if err := f.Close(); err != nil {
			l.Warn().Err(err).Str("path", path).Msg("failed to close source")
		}
	}, nil
}
