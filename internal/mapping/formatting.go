package mapping

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Formatting is the delimiter and quote character shared by the CSV writer and the import
// tool arguments.
type Formatting struct {
	Delimiter rune
	Quote     rune
}

func DefaultFormatting() Formatting {
	return Formatting{Delimiter: ',', Quote: '"'}
}

// NewFormatting parses single character settings. "\t" and "TAB" mean a tab delimiter.
func NewFormatting(delimiter, quote string) (Formatting, error) {
	f := DefaultFormatting()
	if delimiter != "" {
		d, err := parseChar("delimiter", delimiter)
		if err != nil {
			return Formatting{}, err
		}
		f.Delimiter = d
	}
	if quote != "" {
		q, err := parseChar("quote", quote)
		if err != nil {
			return Formatting{}, err
		}
		f.Quote = q
	}
	if f.Delimiter == f.Quote {
		return Formatting{}, fmt.Errorf("delimiter and quote must differ, both are %q", f.Delimiter)
	}
	return f, nil
}

func parseChar(what, s string) (rune, error) {
	switch strings.ToUpper(s) {
	case `\T`, "TAB":
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || size != len(s) || r == '\n' || r == '\r' {
		return 0, fmt.Errorf("invalid %s %q: expected a single character", what, s)
	}
	return r, nil
}

// DelimiterArg renders the delimiter the way the import tool expects it on the command line.
func (f Formatting) DelimiterArg() string {
	if f.Delimiter == '\t' {
		return "TAB"
	}
	return string(f.Delimiter)
}

func (f Formatting) QuoteArg() string {
	return string(f.Quote)
}
