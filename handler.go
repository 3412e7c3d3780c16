package sqlloader

import (
	"context"
	"errors"
	"io"
	"regexp"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
	"golang.org/x/xerrors"
)

// Handler defines how to convert the sources of events which match
// specified pattern into SQL statements.
type Handler struct {
	// Name is the handler's name.
	Name string

	Pattern *regexp.Regexp

	// Sources lists the file names to read, in order. Handler state kept by
	// the Preprocessor carries over from one source to the next.
	Sources []string

	Encoding        encoding.Encoding
	Parser          Parser
	Projector       Projector
	Preprocessor    Preprocessor
	SkipLeadingRows int

	// Table is the destination table of INSERT statements.
	Table string

	// Epilogue statements are emitted after all rows, before COMMIT.
	Epilogue []string

	Extractor Extractor
	Loader    Loader
}

// Projector transforms a source row into SQL literals for the destination
// table. Returning a nil record skips the row.
type Projector func(context.Context, []string) ([]string, error)

// Preprocessor runs once per event before any source is read. The returned
// context is passed to every Projector call of the event.
type Preprocessor func(context.Context, Event) (context.Context, error)

func (h *Handler) validate() error {
	switch {
	case h.Parser == nil:
		return errors.New("parser is required")
	case h.Projector == nil:
		return errors.New("projector is required")
	case h.Table == "":
		return errors.New("table is required")
	case h.SkipLeadingRows < 0:
		return errors.New("skip leading rows must not be negative")
	}
	return nil
}

func (h *Handler) match(name string) bool {
	return h.Pattern != nil && h.Pattern.MatchString(name)
}

func (h *Handler) handle(ctx context.Context, e Event) error {
	l := log.Ctx(ctx).With().Str("handler", h.Name).Logger()
	ctx = l.WithContext(ctx)

	if h.Preprocessor != nil {
		var err error
		ctx, err = h.Preprocessor(ctx, e)
		if err != nil {
			return xerrors.Errorf("failed to preprocess: %w", err)
		}
	}

	ctx, pos := withPosition(ctx)

	if err := h.Loader.Begin(ctx); err != nil {
		return xerrors.Errorf("failed to begin: %w", err)
	}

	var rows, statements int
	for _, source := range h.Sources {
		pos.Source = source
		pos.Line = 0

		n, m, err := h.handleSource(ctx, e, pos)
		rows += n
		statements += m
		if err != nil {
			l.Error().Err(err).Str("position", pos.String()).Msg("failed to handle source")
			return xerrors.Errorf("%s: %w", pos, err)
		}
		l.Info().Str("source", source).Int("rows", n).Int("statements", m).Msg("source loaded")
	}

	for _, stmt := range h.Epilogue {
		if err := h.Loader.Exec(ctx, stmt); err != nil {
			return xerrors.Errorf("failed to emit epilogue: %w", err)
		}
	}

	if err := h.Loader.Commit(ctx); err != nil {
		return xerrors.Errorf("failed to commit: %w", err)
	}

	ev := l.Info().Int("rows", rows).Int("statements", statements)
	if started, ok := startedTimeFrom(ctx); ok {
		ev = ev.Dur("elapsed", time.Since(started))
	}
	ev.Msg("handler finished")

	return nil
}

// handleSource loads one source and reports how many rows were read and how
// many INSERT statements were emitted.
func (h *Handler) handleSource(ctx context.Context, e Event, pos *Position) (int, int, error) {
	r, closer, err := h.Extractor.Extract(ctx, e, pos.Source)
	if err != nil {
		return 0, 0, xerrors.Errorf("failed to extract: %w", err)
	}
	defer closer()

	if h.Encoding != nil {
		r = transform.NewReader(r, h.Encoding.NewDecoder())
	}

	return h.project(ctx, r, pos)
}

func (h *Handler) project(ctx context.Context, r io.Reader, pos *Position) (int, int, error) {
	var rows, statements int

	for row, err := range h.Parser(ctx, r) {
		pos.Line = row.Line
		if pos.Line == 0 {
			pos.Line = rows + 1
		}
		if err != nil {
			return rows, statements, xerrors.Errorf("failed to parse: %w", err)
		}
		if err := ctx.Err(); err != nil {
			return rows, statements, err
		}

		rows++
		if rows <= h.SkipLeadingRows {
			continue
		}

		record, err := h.Projector(ctx, row.Fields)
		if err != nil {
			return rows, statements, xerrors.Errorf("failed to project: %w", err)
		}
		if record == nil {
			continue
		}

		if err := h.Loader.Load(ctx, h.Table, record); err != nil {
			return rows, statements, xerrors.Errorf("failed to load: %w", err)
		}
		statements++
	}

	return rows, statements, nil
}
