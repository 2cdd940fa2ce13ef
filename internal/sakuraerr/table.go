// Package sakuraerr defines the structured error type shared by the whole
// runtime. Every user-visible failure is a small key/value table with at
// least a component, a source, and a message row, so that parse, link,
// validation, and runtime failures all render the same way.
package sakuraerr

import (
	"fmt"
	"strings"
)

// Kind classifies a table error.
type Kind int

const (
	// KindPath means the input path was missing or not a regular file or
	// directory.
	KindPath Kind = iota
	// KindParse means the grammar rejected a source file.
	KindParse
	// KindLink means a referenced tree, resource, template, or file is not
	// in the garden.
	KindLink
	// KindValidation means a blossom was unknown or rejected its input, or
	// input values named keys the tree does not declare.
	KindValidation
	// KindRuntime means a handler or expression failed during execution.
	KindRuntime
)

func (k Kind) String() string {
	switch k {
	case KindPath:
		return "path"
	case KindParse:
		return "parse"
	case KindLink:
		return "link"
	case KindValidation:
		return "validation"
	case KindRuntime:
		return "runtime"
	default:
		return "unknown"
	}
}

// Row is one key/value line of a table error.
type Row struct {
	Key   string
	Value string
}

// Table is the structured error payload. Rows keep their insertion order.
type Table struct {
	Kind Kind
	rows []Row
}

// New starts a table error of the given kind. The component and source rows
// are always present and always come first.
func New(kind Kind, component, source string) *Table {
	return &Table{
		Kind: kind,
		rows: []Row{
			{Key: "component", Value: component},
			{Key: "source", Value: source},
		},
	}
}

// Message appends the message row.
func (t *Table) Message(format string, args ...any) *Table {
	return t.With("message", fmt.Sprintf(format, args...))
}

// With appends an arbitrary row.
func (t *Table) With(key, value string) *Table {
	t.rows = append(t.rows, Row{Key: key, Value: value})
	return t
}

// Rows returns a copy of the rows for inspection.
func (t *Table) Rows() []Row {
	out := make([]Row, len(t.rows))
	copy(out, t.rows)
	return out
}

// Get returns the value of the first row with the given key.
func (t *Table) Get(key string) (string, bool) {
	for _, r := range t.rows {
		if r.Key == key {
			return r.Value, true
		}
	}
	return "", false
}

// Error renders the table as an aligned block. Multi-line values are
// indented under their key.
func (t *Table) Error() string {
	width := 0
	for _, r := range t.rows {
		if len(r.Key) > width {
			width = len(r.Key)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "ERROR (%s)\n", t.Kind)
	for _, r := range t.rows {
		lines := strings.Split(r.Value, "\n")
		fmt.Fprintf(&b, "    %-*s  %s\n", width+1, r.Key+":", lines[0])
		for _, line := range lines[1:] {
			fmt.Fprintf(&b, "    %-*s  %s\n", width+1, "", line)
		}
	}
	return b.String()
}
