package sqlloader

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"iter"
	"strings"
)

// Parser parses source files into rows. The returned sequence is lazy and
// can be ranged over only once. A non-nil error ends the sequence.
type Parser func(context.Context, io.Reader) iter.Seq2[Row, error]

// Row is a parsed record of a source file.
type Row struct {
	// Line is the 1-based line the record starts on, or 0 when the parser
	// does not track lines. It is set on errors too when known.
	Line   int
	Fields []string
}

// CSVParser provides a parser to parse RFC 4180 comma separated files.
//
// Rows may have any number of fields. Quotes must follow RFC 4180, so a bare
// quote in an unquoted field or text after a closing quote is an error
// rather than a field that silently runs into the following lines. Empty
// lines are skipped.
func CSVParser() Parser {
	return func(_ context.Context, r io.Reader) iter.Seq2[Row, error] {
		return func(yield func(Row, error) bool) {
			cr := csv.NewReader(r)
			cr.FieldsPerRecord = -1

			for {
				record, err := cr.Read()
				if err == io.EOF {
					return
				}
				if err != nil {
					var pe *csv.ParseError
					if errors.As(err, &pe) {
						yield(Row{Line: pe.StartLine}, err)
						return
					}
					yield(Row{}, err)
					return
				}

				line, _ := cr.FieldPos(0)
				if !yield(Row{Line: line, Fields: record}, nil) {
					return
				}
			}
		}
	}
}

// ExcelCSVParser provides a parser for comma separated files written the way
// spreadsheet exports and most scripting languages read them.
//
// A quote opens a quoted part only at the start of a field. Inside it a
// doubled quote is a literal quote and a line break is kept. Text after the
// closing quote is appended to the field, so
//
//	1,2000,"Weird Al" Yankovic Live
//
// parses into "1", "2000" and "Weird Al Yankovic Live". Quotes in the middle
// of a field are kept as they are. A quoted part left open at the end of the
// input ends the last field. Empty lines are skipped.
func ExcelCSVParser() Parser {
	return func(_ context.Context, r io.Reader) iter.Seq2[Row, error] {
		return func(yield func(Row, error) bool) {
			er := &excelReader{br: bufio.NewReader(r)}

			for {
				row, err := er.read()
				if err == io.EOF {
					return
				}
				if err != nil {
					yield(Row{Line: er.line}, err)
					return
				}
				if !yield(row, nil) {
					return
				}
			}
		}
	}
}

type excelState int

const (
	excelStartField excelState = iota
	excelInField
	excelInQuoted
	excelQuoteInQuoted
)

type excelReader struct {
	br   *bufio.Reader
	line int
}

// read returns the next non-empty record.
func (x *excelReader) read() (Row, error) {
	var (
		row   Row
		field strings.Builder
		state = excelStartField
	)

	for {
		s, err := x.br.ReadString('\n')
		if err != nil && err != io.EOF {
			return Row{}, err
		}
		if s == "" {
			if state == excelInQuoted {
				row.Fields = append(row.Fields, field.String())
				return row, nil
			}
			return Row{}, io.EOF
		}
		x.line++

		s = strings.TrimSuffix(s, "\n")
		s = strings.TrimSuffix(s, "\r")

		if state != excelInQuoted {
			if s == "" {
				continue
			}
			row.Line = x.line
		}

		for i := 0; i < len(s); i++ {
			c := s[i]
			switch state {
			case excelStartField:
				switch c {
				case '"':
					state = excelInQuoted
				case ',':
					row.Fields = append(row.Fields, "")
				default:
					field.WriteByte(c)
					state = excelInField
				}
			case excelInField:
				if c == ',' {
					row.Fields = append(row.Fields, field.String())
					field.Reset()
					state = excelStartField
					continue
				}
				field.WriteByte(c)
			case excelInQuoted:
				if c == '"' {
					state = excelQuoteInQuoted
					continue
				}
				field.WriteByte(c)
			case excelQuoteInQuoted:
				switch c {
				case '"':
					field.WriteByte(c)
					state = excelInQuoted
				case ',':
					row.Fields = append(row.Fields, field.String())
					field.Reset()
					state = excelStartField
				default:
					field.WriteByte(c)
					state = excelInField
				}
			}
		}

		if state == excelInQuoted {
			field.WriteByte('\n')
			if err == io.EOF {
				row.Fields = append(row.Fields, strings.TrimSuffix(field.String(), "\n"))
				return row, nil
			}
			continue
		}

		row.Fields = append(row.Fields, field.String())
		return row, nil
	}
}
