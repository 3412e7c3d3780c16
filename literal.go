package sqlloader

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/xerrors"
)

// Null is the SQL null literal.
const Null = "null"

// Quote renders s as a SQL string literal, doubling every apostrophe.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// QuoteRaw wraps s in apostrophes without escaping it.
// Use it only for values whose format rules out apostrophes.
func QuoteRaw(s string) string {
	return "'" + s + "'"
}

// Int parses s as a base 10 integer and renders it in canonical form,
// so "0042" becomes "42".
func Int(s string) (string, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return "", xerrors.Errorf("failed to parse %q as an integer: %w", s, err)
	}
	return strconv.FormatInt(n, 10), nil
}

// Setval returns the statement that moves the id sequence of table to the
// largest id the table holds. The maximum is computed by the database.
func Setval(table string) string {
	return fmt.Sprintf("SELECT setval('%s_id_seq', (SELECT MAX(id) from %s));", table, table)
}
