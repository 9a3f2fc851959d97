package textio

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cast"
)

// Newline is the line terminator Println writes on this platform.
var Newline = func() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}()

type flusher interface {
	Flush() error
}

// Writer prints values to a byte stream.
type Writer struct {
	dst io.Writer
	err error
}

// NewWriter wraps dst.
func NewWriter(dst io.Writer) *Writer {
	return &Writer{dst: dst}
}

// Put writes a single byte.
func (w *Writer) Put(c byte) error {
	if bw, ok := w.dst.(io.ByteWriter); ok {
		return w.record(bw.WriteByte(c))
	}
	_, err := w.dst.Write([]byte{c})
	return w.record(err)
}

// Print writes the textual form of v.
func (w *Writer) Print(v any) error {
	_, err := io.WriteString(w.dst, format(v))
	return w.record(err)
}

// Println writes the textual form of v followed by Newline.
func (w *Writer) Println(v any) error {
	_, err := io.WriteString(w.dst, format(v)+Newline)
	return w.record(err)
}

// Flush flushes the destination if it buffers.
func (w *Writer) Flush() error {
	if f, ok := w.dst.(flusher); ok {
		return w.record(f.Flush())
	}
	return nil
}

// Good reports whether every write so far succeeded.
func (w *Writer) Good() bool { return w.err == nil }

// Err returns the first write error.
func (w *Writer) Err() error { return w.err }

func (w *Writer) record(err error) error {
	if err != nil && w.err == nil {
		w.err = err
	}
	return err
}

func format(v any) string {
	if s, err := cast.ToStringE(v); err == nil {
		return s
	}
	return fmt.Sprint(v)
}
