package sqlloader

import (
	"context"
	"io"
	"strings"

	"golang.org/x/xerrors"
)

// Loader emits projected records to a destination.
type Loader interface {
	Begin(ctx context.Context) error
	Load(ctx context.Context, table string, record []string) error
	Exec(ctx context.Context, statement string) error
	Commit(ctx context.Context) error
}

// StatementLoader writes one SQL statement per line, ready to be piped into
// a database command line client such as psql.
//
// Each statement is written with a single Write call. A StatementLoader is
// not safe for concurrent use: statements of concurrent runs would
// interleave inside one transaction.
type StatementLoader struct {
	w io.Writer
}

// NewStatementLoader builds a StatementLoader writing to w.
func NewStatementLoader(w io.Writer) *StatementLoader {
	return &StatementLoader{w: w}
}

// Begin opens the transaction.
func (l *StatementLoader) Begin(ctx context.Context) error {
	return l.Exec(ctx, "BEGIN;")
}

// Load writes an INSERT statement for record. Values must already be SQL
// literals.
func (l *StatementLoader) Load(_ context.Context, table string, record []string) error {
	n := len("INSERT INTO ") + len(table) + len(" VALUES(") + len(");\n")
	for _, v := range record {
		n += len(v) + len(", ")
	}

	b := make([]byte, 0, n)
	b = append(b, "INSERT INTO "...)
	b = append(b, table...)
	b = append(b, " VALUES("...)
	for i, v := range record {
		if i > 0 {
			b = append(b, ", "...)
		}
		b = append(b, v...)
	}
	b = append(b, ");\n"...)

	if _, err := l.w.Write(b); err != nil {
		return xerrors.Errorf("failed to write insert into %s: %w", table, err)
	}

	return nil
}

// Exec writes statement as it is.
func (l *StatementLoader) Exec(_ context.Context, statement string) error {
	if _, err := io.WriteString(l.w, strings.TrimSpace(statement)+"\n"); err != nil {
		return xerrors.Errorf("failed to write statement: %w", err)
	}
	return nil
}

// Commit closes the transaction.
func (l *StatementLoader) Commit(ctx context.Context) error {
	return l.Exec(ctx, "COMMIT;")
}
