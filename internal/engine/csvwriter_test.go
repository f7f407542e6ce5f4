package engine

import (
	"bytes"
	"testing"

	"db2graph/internal/mapping"
)

func TestRecordWriter(t *testing.T) {
	tests := []struct {
		name   string
		format mapping.Formatting
		record []string
		want   string
	}{
		{"standard", mapping.DefaultFormatting(), []string{"1", "a,b", `say "hi"`, ""}, "1,\"a,b\",\"say \"\"hi\"\"\",\n"},
		{"tab", mapping.Formatting{Delimiter: '\t', Quote: '"'}, []string{"a,b", "c"}, "a,b\tc\n"},
		{"custom quote", mapping.Formatting{Delimiter: '|', Quote: '\''}, []string{"a|b", "it's", "plain"}, "'a|b'|'it''s'|plain\n"},
		{"custom quote newline", mapping.Formatting{Delimiter: ',', Quote: '\''}, []string{"two\nlines"}, "'two\nlines'\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := newRecordWriter(&buf, tt.format)
			if err := w.Write(tt.record); err != nil {
				t.Fatalf("Write: %v", err)
			}
			if err := w.Flush(); err != nil {
				t.Fatalf("Flush: %v", err)
			}
			if got := buf.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestVerify(t *testing.T) {
	if res := verify("person", 3, 3); res.Status != "OK" {
		t.Errorf("expected OK, got %s", res.Status)
	}
	if res := verify("person", 3, 2); res.Status != "PARTIAL: 2/3" || res.ErrorMsg == "" {
		t.Errorf("expected PARTIAL with message, got %+v", res)
	}
}
