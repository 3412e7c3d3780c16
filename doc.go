/*
Package sqlloader is a simple ETL framework that converts flat files into
SQL statements, to be piped into a database command line client such as
psql.

# Getting started

A handler tells the loader which files to read, how to decode and parse
them and how to project each row into the values of an INSERT statement.
Pre-configured handlers for the Netflix Prize dataset live in
go.nownabe.dev/sqlloader/contrib/handlers.

	package main

	import (
		"context"
		"os"
		"regexp"
		"strings"

		"golang.org/x/text/encoding/charmap"
		"golang.org/x/xerrors"

		"go.nownabe.dev/sqlloader"
	)

	func main() {
		loader, err := sqlloader.New(sqlloader.WithLogLevel("debug"))
		if err != nil {
			panic(err)
		}
		loader.MustAddHandler(context.Background(), newHandler())

		if err := loader.Handle(context.Background(), sqlloader.Event{Name: "books", Dir: "."}); err != nil {
			os.Exit(1)
		}
	}

	func newHandler() *sqlloader.Handler {
		// This projector turns "id,title,author" rows into SQL literals.
		projector := func(_ context.Context, r []string) ([]string, error) {
			id, err := sqlloader.Int(r[0])
			if err != nil {
				return nil, xerrors.Errorf("column 0 is not an id: %w", err)
			}

			return []string{id, sqlloader.Quote(r[1]), sqlloader.Quote(strings.TrimSpace(r[2]))}, nil
		}

		return &sqlloader.Handler{
			Name:            "books",                       // Handler name used in logs.
			Pattern:         regexp.MustCompile("^books$"), // This handler processes events matched to this pattern.
			Sources:         []string{"books.csv"},         // Files read in order from Event.Dir.
			Encoding:        charmap.Windows1252,           // Source file encoding.
			Parser:          sqlloader.CSVParser(),         // Parser parses source files into rows.
			Projector:       projector,                     // Projector transforms each row.
			SkipLeadingRows: 1,                             // Skip header row.

			// Destination.
			Table:    "book",
			Epilogue: []string{sqlloader.Setval("book")},
		}
	}

The output of Handle is

	BEGIN;
	INSERT INTO book VALUES(1, 'Dune', 'Frank Herbert');
	...
	SELECT setval('book_id_seq', (SELECT MAX(id) from book));
	COMMIT;

A failing row stops the run before COMMIT is written, so the client rolls the
transaction back.
*/
package sqlloader
