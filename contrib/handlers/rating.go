package handlers

import (
	"context"
	"errors"
	"regexp"

	"github.com/rs/zerolog/log"
	"golang.org/x/xerrors"

	"go.nownabe.dev/sqlloader"
)

// ErrNoCurrentMovie is returned for a rating line that appears before any
// movie header line.
var ErrNoCurrentMovie = errors.New("rating line before any movie header")

var movieHeaderRE = regexp.MustCompile(`^(\d+):$`)

// RatingState tracks which movie the rating lines being read belong to.
// The zero value has no current movie.
type RatingState struct {
	movieID string
	ok      bool
}

// CurrentMovieID returns the movie id set by the latest header line.
func (s *RatingState) CurrentMovieID() (string, bool) {
	return s.movieID, s.ok
}

// Project classifies a row of a combined_data file. A header row "<id>:"
// switches the current movie and yields no record. Any other row is
// "viewerId,rating,date" and yields the values of one rating INSERT.
func (s *RatingState) Project(r []string) ([]string, error) {
	if len(r) == 1 {
		if m := movieHeaderRE.FindStringSubmatch(r[0]); m != nil {
			s.movieID = m[1]
			s.ok = true
			return nil, nil
		}
	}

	if !s.ok {
		return nil, ErrNoCurrentMovie
	}

	if len(r) < 3 {
		return nil, xerrors.Errorf("rating row has %d fields, want 3: %w", len(r), ErrShortRow)
	}

	viewerID, err := sqlloader.Int(r[0])
	if err != nil {
		return nil, xerrors.Errorf("failed to parse viewer id: %w", err)
	}

	rating, err := sqlloader.Int(r[1])
	if err != nil {
		return nil, xerrors.Errorf("failed to parse rating: %w", err)
	}

	return []string{s.movieID, viewerID, rating, sqlloader.QuoteRaw(r[2])}, nil
}

// CombinedData builds a handler that converts combined_data_1.txt through
// combined_data_4.txt into INSERT statements for the rating table.
//
// The files group ratings by movie: a "<movieId>:" line is followed by the
// "viewerId,rating,date" lines of that movie. The current movie carries over
// from one file to the next.
func CombinedData(name, pattern string) *sqlloader.Handler {
	var stateKey contextKey = "ratingState"

	preprocessor := func(ctx context.Context, _ sqlloader.Event) (context.Context, error) {
		return context.WithValue(ctx, stateKey, &RatingState{}), nil
	}

	projector := func(ctx context.Context, r []string) ([]string, error) {
		s, ok := ctx.Value(stateKey).(*RatingState)
		if !ok {
			return nil, xerrors.Errorf("failed to get rating state from context")
		}

		record, err := s.Project(r)
		if err != nil {
			return nil, err
		}

		if record == nil {
			movieID, _ := s.CurrentMovieID()
			if pos, ok := sqlloader.PositionFrom(ctx); ok {
				log.Ctx(ctx).Debug().Str("movie", movieID).Str("position", pos.String()).Msg("movie header")
			}
		}

		return record, nil
	}

	sources := make([]string, len(CombinedDataSources))
	copy(sources, CombinedDataSources)

	return &sqlloader.Handler{
		Name:    name,
		Pattern: regexp.MustCompile(pattern),
		Sources: sources,

		Parser:       sqlloader.ExcelCSVParser(),
		Projector:    projector,
		Preprocessor: preprocessor,

		Table: RatingTable,
	}
}
