package ocunit

import (
	"bytes"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// LineWriter feeds raw command output into a Parser line by line.
// Invalid UTF-8 sequences are replaced with U+FFFD.
//
// Once the parser returns an error the writer stops parsing but keeps accepting bytes,
// so the command producing the output is not interrupted. The error is returned by Close.
type LineWriter struct {
	decoder *transform.Writer
	lines   *lineSplitter
}

// NewLineWriter ...
func NewLineWriter(parser *Parser) *LineWriter {
	lines := &lineSplitter{parser: parser}
	return &LineWriter{
		decoder: transform.NewWriter(lines, unicode.UTF8.NewDecoder()),
		lines:   lines,
	}
}

// Write ...
func (w *LineWriter) Write(b []byte) (int, error) {
	if _, err := w.decoder.Write(b); err != nil && w.lines.err == nil {
		w.lines.err = err
	}
	return len(b), nil
}

// Close parses the incomplete last line and returns the first error that happened while parsing.
func (w *LineWriter) Close() error {
	if err := w.decoder.Close(); err != nil && w.lines.err == nil {
		w.lines.err = err
	}
	w.lines.flush()
	return w.lines.err
}

type lineSplitter struct {
	parser  *Parser
	pending []byte
	err     error
}

func (s *lineSplitter) Write(b []byte) (int, error) {
	if s.err != nil {
		return len(b), nil
	}

	s.pending = append(s.pending, b...)
	for {
		idx := bytes.IndexByte(s.pending, '\n')
		if idx < 0 {
			break
		}
		line := string(s.pending[:idx])
		s.pending = s.pending[idx+1:]

		if err := s.parser.Parse(line); err != nil {
			s.err = err
			s.pending = nil
			break
		}
	}
	return len(b), nil
}

func (s *lineSplitter) flush() {
	if s.err != nil || len(s.pending) == 0 {
		s.pending = nil
		return
	}
	line := string(s.pending)
	s.pending = nil
	s.err = s.parser.Parse(line)
}
