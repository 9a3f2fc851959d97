package pipe

import (
	"errors"
	"fmt"

	goerrors "github.com/kbukum/procpipe/errors"
)

// Kind names the standard stream a pipe is created for.
type Kind int

const (
	Stdin Kind = iota
	Stdout
	Stderr
)

// String returns the stream name.
func (k Kind) String() string {
	switch k {
	case Stdin:
		return "stdin"
	case Stdout:
		return "stdout"
	case Stderr:
		return "stderr"
	default:
		return fmt.Sprintf("stream(%d)", int(k))
	}
}

// Channel is one OS pipe allocated for a redirected stream.
type Channel struct {
	kind  Kind
	read  *End
	write *End
}

// New allocates a pipe for the given stream. The parent's end is never
// inheritable; the child's end is made available to the next spawn only.
func New(kind Kind) (*Channel, error) {
	r, w, err := newPair(kind)
	if err != nil {
		return nil, goerrors.PipeCreation(kind.String(), err)
	}
	return &Channel{kind: kind, read: r, write: w}, nil
}

// Kind returns the stream this channel serves.
func (c *Channel) Kind() Kind { return c.kind }

// ReadEnd returns the read end of the pipe.
func (c *Channel) ReadEnd() *End { return c.read }

// WriteEnd returns the write end of the pipe.
func (c *Channel) WriteEnd() *End { return c.write }

// ParentEnd returns the end the spawning process keeps.
func (c *Channel) ParentEnd() *End {
	if c.kind == Stdin {
		return c.write
	}
	return c.read
}

// ChildEnd returns the end handed to the child's stdio slot.
func (c *Channel) ChildEnd() *End {
	if c.kind == Stdin {
		return c.read
	}
	return c.write
}

// Close closes both ends. Ends that were already closed are skipped.
func (c *Channel) Close() error {
	if c == nil {
		return nil
	}
	return errors.Join(c.read.Close(), c.write.Close())
}

// CloseAll closes every non-nil channel and returns the joined errors.
func CloseAll(channels ...*Channel) error {
	var errs []error
	for _, c := range channels {
		if c != nil {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}
