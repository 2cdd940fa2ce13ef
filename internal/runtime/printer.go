package runtime

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

const maxSeparatorWidth = 300

// Printer is the shared output sink for blossom results. Writes are
// serialized under a mutex so two concurrent blocks never interleave.
type Printer struct {
	mu    sync.Mutex
	out   io.Writer
	width func() int
}

// NewPrinter writes blocks to out, sizing the separator line to the width
// of the terminal on standard output (80 columns when standard output is
// not a terminal), whatever out is.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out, width: terminalWidth}
}

// Print writes one output block, prefixed by a separator line.
func (p *Printer) Print(block string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	width := p.width()
	if width > maxSeparatorWidth {
		width = maxSeparatorWidth
	}
	if width <= 0 {
		width = 80
	}

	fmt.Fprintf(p.out, "%s\n\n%s\n", strings.Repeat("=", width), block)
}

func terminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80
	}
	return w
}
