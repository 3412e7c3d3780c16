package handlers

import (
	"context"
	"regexp"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/xerrors"

	"go.nownabe.dev/sqlloader"
)

// MovieTitles builds a handler that converts movie_titles.csv into INSERT
// statements for the movie table, then moves the movie id sequence past the
// loaded ids.
//
// Each row is "id,year,title". Titles are not quoted in the file, so a title
// containing commas spans several fields and is joined back with ", ". A
// title starting with a quote keeps the text after the closing quote, as in
// "Weird Al" Yankovic Live.
func MovieTitles(name, pattern string) *sqlloader.Handler {
	return &sqlloader.Handler{
		Name:    name,
		Pattern: regexp.MustCompile(pattern),
		Sources: []string{MovieTitlesSource},

		Encoding:  charmap.ISO8859_1,
		Parser:    sqlloader.ExcelCSVParser(),
		Projector: projectMovie,

		Table:    MovieTable,
		Epilogue: []string{sqlloader.Setval(MovieTable)},
	}
}

func projectMovie(_ context.Context, r []string) ([]string, error) {
	if len(r) < 3 {
		return nil, xerrors.Errorf("movie row has %d fields, want at least 3: %w", len(r), ErrShortRow)
	}

	// 0: id, kept as written
	id := r[0]

	// 1: year, "NULL" when unknown
	year := sqlloader.Null
	if r[1] != "NULL" {
		y, err := sqlloader.Int(r[1])
		if err != nil {
			return nil, xerrors.Errorf("failed to parse year: %w", err)
		}
		year = y
	}

	// 2..: title fragments
	title := sqlloader.Quote(strings.Join(r[2:], ", "))

	return []string{id, year, title}, nil
}
