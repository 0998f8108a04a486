// Package display draws the status line on an ANSI terminal, rewriting the
// same row on every tick.
package display

import (
	"bufio"
	"io"

	"github.com/charmbracelet/x/ansi"
)

// Line rewrites a single terminal row in place.
type Line struct {
	w     *bufio.Writer
	drawn bool
}

// NewLine returns a Line writing to w.
func NewLine(w io.Writer) *Line {
	return &Line{w: bufio.NewWriter(w)}
}

// Show clears the current row, writes text, returns the cursor to column 0
// and flushes.
func (l *Line) Show(text string) error {
	if _, err := l.w.WriteString(ansi.EraseEntireLine); err != nil {
		return err
	}
	if _, err := l.w.WriteString(text); err != nil {
		return err
	}
	if err := l.w.WriteByte('\r'); err != nil {
		return err
	}
	l.drawn = true
	return l.w.Flush()
}

// Close moves past the last drawn line so the shell prompt does not
// overwrite it.
func (l *Line) Close() error {
	if !l.drawn {
		return nil
	}
	if err := l.w.WriteByte('\n'); err != nil {
		return err
	}
	return l.w.Flush()
}
