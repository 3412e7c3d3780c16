package handlers_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"go.nownabe.dev/sqlloader"
)

type testLoader struct {
	began     bool
	committed bool
	tables    []string
	result    [][]string
	execs     []string
}

func (l *testLoader) Begin(context.Context) error {
	l.began = true
	return nil
}

func (l *testLoader) Load(_ context.Context, table string, r []string) error {
	l.tables = append(l.tables, table)
	l.result = append(l.result, r)
	return nil
}

func (l *testLoader) Exec(_ context.Context, stmt string) error {
	l.execs = append(l.execs, stmt)
	return nil
}

func (l *testLoader) Commit(context.Context) error {
	l.committed = true
	return nil
}

type testExtractor struct {
	sources map[string]string
}

func (e *testExtractor) Extract(_ context.Context, _ sqlloader.Event, source string) (io.Reader, func(), error) {
	body, ok := e.sources[source]
	if !ok {
		return nil, nil, os.ErrNotExist
	}
	return strings.NewReader(body), func() {}, nil
}

func assertEqual(t *testing.T, expected [][]string, actual [][]string) {
	t.Helper()

	if len(expected) != len(actual) {
		t.Fatalf("expected %d length, but %d: %q", len(expected), len(actual), actual)
	}

	for i := range expected {
		if len(expected[i]) != len(actual[i]) {
			t.Errorf("expected length of actual[%d] is %d, but %d", i, len(expected[i]), len(actual[i]))
			continue
		}

		for j := range expected[i] {
			if expected[i][j] != actual[i][j] {
				t.Errorf("expected actual[%d][%d] is '%s', but '%s'", i, j, expected[i][j], actual[i][j])
			}
		}
	}
}

// buildTestHandler registers the handler built by f on a fresh loader. When
// sources is nil the handler reads files from testdata.
func buildTestHandler(
	t *testing.T,
	sources map[string]string,
	f func(string, string) *sqlloader.Handler,
) (sqlloader.SQLLoader, *testLoader) {
	t.Helper()

	loader, err := sqlloader.New(sqlloader.WithLogWriter(io.Discard), sqlloader.WithLogLevel("debug"))
	if err != nil {
		t.Fatalf("failed to build loader: %v", err)
	}

	tl := &testLoader{}

	h := f("name", "^dataset$")
	h.Loader = tl
	if sources != nil {
		h.Extractor = &testExtractor{sources: sources}
	}
	loader.MustAddHandler(context.Background(), h)

	return loader, tl
}

// runStatements runs the handler built by f against the testdata directory
// and returns the generated SQL lines.
func runStatements(t *testing.T, f func(string, string) *sqlloader.Handler) []string {
	t.Helper()

	var out bytes.Buffer
	loader, err := sqlloader.New(sqlloader.WithLogWriter(io.Discard), sqlloader.WithOutput(&out))
	if err != nil {
		t.Fatalf("failed to build loader: %v", err)
	}
	loader.MustAddHandler(context.Background(), f("name", "^dataset$"))

	if err := loader.Handle(context.Background(), sqlloader.Event{Name: "dataset", Dir: "testdata"}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	return strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
}

func assertLines(t *testing.T, expected, actual []string) {
	t.Helper()

	if len(expected) != len(actual) {
		t.Fatalf("expected %d lines, but %d:\n%s", len(expected), len(actual), strings.Join(actual, "\n"))
	}

	for i := range expected {
		if expected[i] != actual[i] {
			t.Errorf("line %d: expected %q, but %q", i+1, expected[i], actual[i])
		}
	}
}
