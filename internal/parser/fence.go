package parser

import "strings"

// fenceTracker tracks whether the scanner is inside a fenced code block.
// A fence opens on a line whose trimmed prefix is three or more backticks
// or tildes (an info string may follow) and closes only on a line with at
// least as many of the same marker character and nothing else but
// whitespace. While a fence is open, header and label recognition is
// suppressed.
type fenceTracker struct {
	marker byte // '`' or '~'; zero when closed
	length int
}

func (f *fenceTracker) open() bool { return f.marker != 0 }

// observe inspects one line and updates the tracker. It returns true
// when the line itself is a fence marker (opening or closing).
func (f *fenceTracker) observe(raw string) bool {
	t := strings.TrimSpace(raw)
	if len(t) < 3 {
		return false
	}
	c := t[0]
	if c != '`' && c != '~' {
		return false
	}
	n := 0
	for n < len(t) && t[n] == c {
		n++
	}
	if n < 3 {
		return false
	}
	if !f.open() {
		// Opening fence; anything after the marker is an info string.
		f.marker = c
		f.length = n
		return true
	}
	// Closing fence: same marker, at least the opening length, nothing
	// after the run.
	if c == f.marker && n >= f.length && strings.TrimSpace(t[n:]) == "" {
		f.marker = 0
		f.length = 0
		return true
	}
	return false
}
