package handlers_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.nownabe.dev/sqlloader"
	"go.nownabe.dev/sqlloader/contrib/handlers"
)

func Test_MovieTitles(t *testing.T) {
	t.Parallel()

	expected := []string{
		"BEGIN;",
		"INSERT INTO movie VALUES(1, 2003, 'Dinosaur Planet');",
		"INSERT INTO movie VALUES(2, 2004, 'Isle of Man TT 2004 Review');",
		"INSERT INTO movie VALUES(4, null, 'Paula Abdul''s Get Up & Dance');",
		"INSERT INTO movie VALUES(72, 1974, 'At Home Among Strangers,  A Stranger Among His Own');",
		"INSERT INTO movie VALUES(147, 1997, 'Ma vie en rose');",
		"INSERT INTO movie VALUES(221, 2000, 'Amélie,  or the Fabulous Destiny of Amélie''s Poulain');",
		"SELECT setval('movie_id_seq', (SELECT MAX(id) from movie));",
		"COMMIT;",
	}

	assertLines(t, expected, runStatements(t, handlers.MovieTitles))
}

func Test_MovieTitles_records(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		body   string
		expect [][]string
	}{
		{
			name:   "joins title fragments",
			body:   "1,2003,Dinosaur,Planet\n",
			expect: [][]string{{"1", "2003", "'Dinosaur, Planet'"}},
		},
		{
			name:   "null year",
			body:   "3,NULL,Character\n",
			expect: [][]string{{"3", "null", "'Character'"}},
		},
		{
			name:   "doubles apostrophes",
			body:   "5,1990,Rock 'n' Roll's Greatest\n",
			expect: [][]string{{"5", "1990", "'Rock ''n'' Roll''s Greatest'"}},
		},
		{
			name:   "empty title",
			body:   "6,1990,\n",
			expect: [][]string{{"6", "1990", "''"}},
		},
		{
			name: "title starting with a quote",
			body: "1,2000,\"Weird Al\" Yankovic Live\n2,2001,Next Movie\n3,2002,Third\n",
			expect: [][]string{
				{"1", "2000", "'Weird Al Yankovic Live'"},
				{"2", "2001", "'Next Movie'"},
				{"3", "2002", "'Third'"},
			},
		},
		{
			name:   "quoted title with commas",
			body:   "8,1995,\"Girl, Interrupted\"\n",
			expect: [][]string{{"8", "1995", "'Girl, Interrupted'"}},
		},
		{
			name:   "no rows",
			body:   "",
			expect: nil,
		},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			loader, tl := buildTestHandler(t, map[string]string{handlers.MovieTitlesSource: c.body}, handlers.MovieTitles)

			if err := loader.Handle(context.Background(), sqlloader.Event{Name: "dataset"}); err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			assertEqual(t, c.expect, tl.result)

			if !tl.began || !tl.committed {
				t.Errorf("expected BEGIN and COMMIT, but began=%v committed=%v", tl.began, tl.committed)
			}
			if len(tl.execs) != 1 || tl.execs[0] != sqlloader.Setval("movie") {
				t.Errorf("expected setval epilogue, but %q", tl.execs)
			}
		})
	}
}

func Test_MovieTitles_roundTrip(t *testing.T) {
	t.Parallel()

	titles := []string{
		"Dinosaur Planet",
		"Paula Abdul's Get Up & Dance",
		"''",
		"'Round Midnight",
		"It's a Mad, Mad, Mad, Mad World",
	}

	for _, title := range titles {
		title := title
		t.Run(title, func(t *testing.T) {
			t.Parallel()

			loader, tl := buildTestHandler(t, map[string]string{handlers.MovieTitlesSource: "9,2001," + title + "\n"}, handlers.MovieTitles)
			if err := loader.Handle(context.Background(), sqlloader.Event{Name: "dataset"}); err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			lit := tl.result[0][2]
			if !strings.HasPrefix(lit, "'") || !strings.HasSuffix(lit, "'") {
				t.Fatalf("expected quoted literal, but %s", lit)
			}

			unescaped := strings.ReplaceAll(lit[1:len(lit)-1], "''", "'")
			if want := strings.Join(strings.Split(title, ","), ", "); unescaped != want {
				t.Errorf("expected %q, but %q", want, unescaped)
			}
		})
	}
}

func Test_MovieTitles_errors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		body     string
		is       error
		position string
	}{
		{name: "short row", body: "1,2003\n", is: handlers.ErrShortRow, position: ":1"},
		{name: "bad year", body: "1,20x3,Title\n", position: ":1"},
		{name: "lower case null year", body: "3,null,Character\n", position: ":1"},
		{name: "after blank lines", body: "1,2003,Title\r\n\r\n\r\n2,20x4,Other\r\n", position: ":4"},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			loader, tl := buildTestHandler(t, map[string]string{handlers.MovieTitlesSource: c.body}, handlers.MovieTitles)

			err := loader.Handle(context.Background(), sqlloader.Event{Name: "dataset"})
			if err == nil {
				t.Fatal("expected error but no error occurred")
			}
			if c.is != nil && !errors.Is(err, c.is) {
				t.Errorf("expected %v, but %v", c.is, err)
			}
			if !strings.Contains(err.Error(), handlers.MovieTitlesSource+c.position) {
				t.Errorf("expected error at line %s, but %v", c.position, err)
			}
			if tl.committed {
				t.Error("expected no COMMIT after a failure")
			}
		})
	}
}
