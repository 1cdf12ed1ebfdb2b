package main

import (
	"bytes"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

const (
	ansiDim   = "\x1b[2m"
	ansiReset = "\x1b[0m"
)

// ttyWriter dims the bracketed "[Component]" tag every log.Printf call in
// this repo leads with, but only when stderr is a real terminal — piped or
// redirected output (the common case in production) stays plain text.
type ttyWriter struct {
	out   io.Writer
	color bool
}

// newLogWriter wraps w in a ttyWriter whose ANSI dimming is auto-detected
// via go-isatty rather than an environment flag.
func newLogWriter(w *os.File) io.Writer {
	return &ttyWriter{out: w, color: isatty.IsTerminal(w.Fd()) || isatty.IsCygwinTerminal(w.Fd())}
}

func (t *ttyWriter) Write(p []byte) (int, error) {
	if !t.color {
		return t.out.Write(p)
	}
	// The log package's date/time prefix comes before the tag, so the tag is
	// the first bracketed span rather than the first byte.
	open := bytes.IndexByte(p, '[')
	close := bytes.IndexByte(p, ']')
	if open < 0 || close < open {
		return t.out.Write(p)
	}
	n := len(p)
	var buf bytes.Buffer
	buf.Write(p[:open])
	buf.WriteString(ansiDim)
	buf.Write(p[open : close+1])
	buf.WriteString(ansiReset)
	buf.Write(p[close+1:])
	if _, err := t.out.Write(buf.Bytes()); err != nil {
		return 0, err
	}
	return n, nil
}
