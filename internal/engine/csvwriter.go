package engine

import (
	"bufio"
	"encoding/csv"
	"io"
	"strings"

	"db2graph/internal/mapping"
)

// recordWriter writes CSV records in the import tool's formatting.
type recordWriter interface {
	Write(record []string) error
	Flush() error
}

// newRecordWriter uses encoding/csv when the quote is the standard double quote. Other
// quote characters get quoteWriter, since encoding/csv only quotes with '"'.
func newRecordWriter(w io.Writer, f mapping.Formatting) recordWriter {
	if f.Quote == '"' {
		cw := csv.NewWriter(w)
		cw.Comma = f.Delimiter
		return &stdWriter{cw}
	}
	return &quoteWriter{w: bufio.NewWriter(w), f: f}
}

type stdWriter struct {
	*csv.Writer
}

func (s *stdWriter) Flush() error {
	s.Writer.Flush()
	return s.Writer.Error()
}

type quoteWriter struct {
	w *bufio.Writer
	f mapping.Formatting
}

func (q *quoteWriter) Write(record []string) error {
	for i, field := range record {
		if i > 0 {
			if _, err := q.w.WriteRune(q.f.Delimiter); err != nil {
				return err
			}
		}
		if _, err := q.w.WriteString(q.quote(field)); err != nil {
			return err
		}
	}
	_, err := q.w.WriteRune('\n')
	return err
}

func (q *quoteWriter) quote(field string) string {
	quote := string(q.f.Quote)
	if !strings.ContainsAny(field, string(q.f.Delimiter)+quote+"\r\n") {
		return field
	}
	return quote + strings.ReplaceAll(field, quote, quote+quote) + quote
}

func (q *quoteWriter) Flush() error {
	return q.w.Flush()
}
