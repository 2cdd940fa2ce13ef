package parser

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"

	"github.com/sakura-flow/sakura/internal/sakuraerr"
)

// parseError converts hcl diagnostics into a table error carrying the line,
// the column span, and the broken source fragment.
func parseError(filename string, src []byte, diags hcl.Diagnostics) error {
	diag := diags[0]

	t := sakuraerr.New(sakuraerr.KindParse, "parser", "while parsing "+filename).
		Message("%s", diag.Summary)
	if diag.Detail != "" {
		t.With("detail", diag.Detail)
	}

	if diag.Subject != nil {
		rng := *diag.Subject
		t.With("line", fmt.Sprintf("%d", rng.Start.Line))
		t.With("position", fmt.Sprintf("column %d - %d", rng.Start.Column, rng.End.Column))
		if frag := fragment(src, rng); frag != "" {
			t.With("broken-part", frag)
		}
		if spansPastLineEnd(src, rng) ||
			strings.Contains(diag.Summary, "Unterminated") ||
			strings.Contains(diag.Summary, "multi-line string") {
			t.With("note", "maybe a string was not closed")
		}
	}

	return t
}

// syntaxError reports a structural problem found after the file itself
// parsed cleanly.
func syntaxError(filename string, rng hcl.Range, format string, args ...any) error {
	return sakuraerr.New(sakuraerr.KindParse, "parser", "while parsing "+filename).
		Message(format, args...).
		With("line", fmt.Sprintf("%d", rng.Start.Line)).
		With("position", fmt.Sprintf("column %d - %d", rng.Start.Column, rng.End.Column))
}

func fragment(src []byte, rng hcl.Range) string {
	start, end := rng.Start.Byte, rng.End.Byte
	if start < 0 || start >= len(src) {
		return ""
	}
	if end > len(src) {
		end = len(src)
	}
	if end <= start {
		return ""
	}
	frag := src[start:end]
	if i := bytes.IndexByte(frag, '\n'); i >= 0 {
		frag = frag[:i]
	}
	return string(frag)
}

// spansPastLineEnd reports whether the subject range reaches beyond the end
// of the line it starts on, the usual signature of an unterminated string.
func spansPastLineEnd(src []byte, rng hcl.Range) bool {
	if rng.End.Line > rng.Start.Line {
		return true
	}
	lineEnd := rng.Start.Byte
	for lineEnd < len(src) && src[lineEnd] != '\n' {
		lineEnd++
	}
	return rng.End.Byte > lineEnd
}
