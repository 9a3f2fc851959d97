package stream

import (
	"bufio"
	"io"
)

const (
	// PutbackSize is the number of consumed bytes kept for UnreadByte across a refill.
	PutbackSize = 4
	// BufferSize is the largest single read issued against the source.
	BufferSize = 1024
)

// ErrNoPutback is returned by UnreadByte when no consumed byte is available.
var ErrNoPutback = bufio.ErrInvalidUnreadByte

// InputStream is a buffered reader with a bounded putback region.
//
// The working buffer is laid out as [putback | fetch]. Bytes between start
// and pos have been consumed and may be unread; bytes between pos and end are
// pending. A refill moves up to PutbackSize consumed bytes in front of the
// fetch region and issues exactly one Read on the source.
type InputStream struct {
	src io.Reader
	buf [PutbackSize + BufferSize]byte

	start int
	pos   int
	end   int

	// err is sticky: once a refill fails the source is never read again.
	err error
}

// NewInputStream wraps r.
func NewInputStream(r io.Reader) *InputStream {
	return &InputStream{
		src:   r,
		start: PutbackSize,
		pos:   PutbackSize,
		end:   PutbackSize,
	}
}

// ReadByte returns the next byte, refilling from the source when the buffer
// is exhausted.
func (s *InputStream) ReadByte() (byte, error) {
	if s.pos == s.end {
		if err := s.fill(); err != nil {
			return 0, err
		}
	}
	c := s.buf[s.pos]
	s.pos++
	return c, nil
}

// UnreadByte pushes back the most recently consumed byte. Up to PutbackSize
// bytes survive a refill; within one fetch every consumed byte can be unread.
func (s *InputStream) UnreadByte() error {
	if s.pos <= s.start {
		return ErrNoPutback
	}
	s.pos--
	return nil
}

// Read copies buffered bytes into p, refilling once if none are pending.
func (s *InputStream) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if s.pos == s.end {
		if err := s.fill(); err != nil {
			return 0, err
		}
	}
	n := copy(p, s.buf[s.pos:s.end])
	s.pos += n
	return n, nil
}

// Buffered returns the number of bytes that can be read without touching
// the source.
func (s *InputStream) Buffered() int {
	return s.end - s.pos
}

// Err returns the error that ended the stream, or nil while it is live.
// End of stream is reported as io.EOF.
func (s *InputStream) Err() error {
	if s.pos < s.end {
		return nil
	}
	return s.err
}

func (s *InputStream) fill() error {
	if s.err != nil {
		return s.err
	}

	back := s.pos - s.start
	if back > PutbackSize {
		back = PutbackSize
	}
	copy(s.buf[PutbackSize-back:PutbackSize], s.buf[s.pos-back:s.pos])
	s.start = PutbackSize - back
	s.pos = PutbackSize
	s.end = PutbackSize

	n, err := s.src.Read(s.buf[PutbackSize:])
	if n <= 0 {
		if err == nil {
			err = io.EOF
		}
		s.err = err
		return err
	}
	s.end = PutbackSize + n
	if err != nil {
		// delivered after the fetched bytes are consumed
		s.err = err
	}
	return nil
}
