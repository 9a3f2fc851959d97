package stream

import "io"

// OutputStream is an unbuffered writer over a raw byte channel.
type OutputStream struct {
	dst io.Writer
	one [1]byte
}

// NewOutputStream wraps w.
func NewOutputStream(w io.Writer) *OutputStream {
	return &OutputStream{dst: w}
}

// WriteByte writes exactly one byte. Anything else is an error.
func (s *OutputStream) WriteByte(c byte) error {
	s.one[0] = c
	n, err := s.dst.Write(s.one[:])
	if n != 1 {
		if err == nil {
			err = io.ErrShortWrite
		}
		return err
	}
	return nil
}

// Write issues one write for all of p and returns the count accepted. A short
// write is not retried; the remainder is the caller's to resubmit.
func (s *OutputStream) Write(p []byte) (int, error) {
	n, err := s.dst.Write(p)
	if err == nil && n < len(p) {
		err = io.ErrShortWrite
	}
	return n, err
}

// WriteString writes str with a single write.
func (s *OutputStream) WriteString(str string) (int, error) {
	return s.Write([]byte(str))
}

// Flush is a no-op; nothing is buffered.
func (s *OutputStream) Flush() error { return nil }

// Close closes the underlying writer if it can be closed. For a child's
// stdin this is how the child sees end of input.
func (s *OutputStream) Close() error {
	if c, ok := s.dst.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
