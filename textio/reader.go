package textio

import (
	"errors"
	"io"
	"strings"

	"github.com/spf13/cast"
)

// Reader reads lines, single bytes and whitespace-delimited values.
type Reader struct {
	src io.ByteScanner
	err error
	eof bool
}

// NewReader wraps src.
func NewReader(src io.ByteScanner) *Reader {
	return &Reader{src: src}
}

// Get returns the next byte.
func (r *Reader) Get() (byte, error) {
	c, err := r.src.ReadByte()
	if err != nil {
		r.record(err)
		return 0, err
	}
	return c, nil
}

// Good reports whether no error other than end of stream has been seen.
func (r *Reader) Good() bool { return r.err == nil }

// EOF reports whether the end of the stream has been reached.
func (r *Reader) EOF() bool { return r.eof }

// Err returns the first non-EOF error seen.
func (r *Reader) Err() error { return r.err }

// GetLine reads up to the next '\r' or '\n' and skips the run of line
// terminators that follows, so "\r\n" and blank lines are consumed. The
// line is returned without terminators. io.EOF is returned only when the
// stream ends before any byte of the line is read.
func (r *Reader) GetLine() (string, error) {
	return r.readUntil(isLineEnd)
}

// Input reads the next whitespace-delimited token and converts it: "true"
// and "false" become bool, integer literals int64, other numeric literals
// float64, anything else stays a string.
func (r *Reader) Input() (any, error) {
	if err := r.skip(isSpace); err != nil {
		return nil, err
	}
	tok, err := r.readUntil(isSpace)
	if err != nil {
		return nil, err
	}
	return ParseValue(tok), nil
}

// ParseValue converts a token the way Input does.
func ParseValue(tok string) any {
	switch tok {
	case "true":
		return true
	case "false":
		return false
	}
	if !looksNumeric(tok) {
		return tok
	}
	if i, err := cast.ToInt64E(tok); err == nil && !strings.ContainsAny(tok, ".eE") {
		return i
	}
	if f, err := cast.ToFloat64E(tok); err == nil {
		return f
	}
	return tok
}

func (r *Reader) readUntil(stop func(byte) bool) (string, error) {
	var sb strings.Builder
	for {
		c, err := r.src.ReadByte()
		if err != nil {
			r.record(err)
			if errors.Is(err, io.EOF) && sb.Len() > 0 {
				return sb.String(), nil
			}
			return sb.String(), err
		}
		if stop(c) {
			break
		}
		sb.WriteByte(c)
	}
	if err := r.skip(stop); err != nil && !errors.Is(err, io.EOF) {
		return sb.String(), err
	}
	return sb.String(), nil
}

// skip consumes bytes matching fn and pushes back the first one that does not.
func (r *Reader) skip(fn func(byte) bool) error {
	for {
		c, err := r.src.ReadByte()
		if err != nil {
			r.record(err)
			return err
		}
		if !fn(c) {
			return r.src.UnreadByte()
		}
	}
}

func (r *Reader) record(err error) {
	if errors.Is(err, io.EOF) {
		r.eof = true
		return
	}
	if r.err == nil {
		r.err = err
	}
}

func isLineEnd(c byte) bool { return c == '\r' || c == '\n' }

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

func looksNumeric(tok string) bool {
	if tok == "" {
		return false
	}
	c := tok[0]
	if c == '+' || c == '-' {
		if len(tok) == 1 {
			return false
		}
		c = tok[1]
	}
	return (c >= '0' && c <= '9') || c == '.'
}
