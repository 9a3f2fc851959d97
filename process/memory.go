package process

import (
	"errors"
	"io"
	"io/fs"
	"maps"
	"os"
	"sync"
	"sync/atomic"

	goerrors "github.com/kbukum/procpipe/errors"
)

// Program is a fake executable run by the memory backend. Its return value
// is the exit code.
type Program func(p *MemoryProcess) int

// MemoryProcess is the view a Program has of its own process.
type MemoryProcess struct {
	Args []string
	Dir  string
	Env  map[string]string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	killed chan struct{}
}

// Killed is closed when a graceful kill is requested.
func (p *MemoryProcess) Killed() <-chan struct{} { return p.killed }

// MemoryBackend runs registered Go functions in place of programs, connected
// to the caller through in-memory pipes. Streams that are not redirected are
// read as empty and written to io.Discard.
type MemoryBackend struct {
	mu       sync.RWMutex
	programs map[string]Program
	nextPid  atomic.Int64
}

// NewMemoryBackend returns a backend that knows the given programs.
func NewMemoryBackend(programs map[string]Program) *MemoryBackend {
	b := &MemoryBackend{programs: maps.Clone(programs)}
	if b.programs == nil {
		b.programs = make(map[string]Program)
	}
	b.nextPid.Store(1000)
	return b
}

// Register adds or replaces a program.
func (b *MemoryBackend) Register(name string, prog Program) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.programs[name] = prog
}

func (b *MemoryBackend) Spawn(cfg Config) (*Spawned, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	b.mu.RLock()
	prog, ok := b.programs[cfg.Program]
	b.mu.RUnlock()
	if !ok {
		return nil, goerrors.Spawn(cfg.Program, &fs.PathError{Op: "lookpath", Path: cfg.Program, Err: fs.ErrNotExist})
	}
	if cfg.Dir != "" {
		if fi, err := os.Stat(cfg.Dir); err != nil || !fi.IsDir() {
			if err == nil {
				err = &fs.PathError{Op: "chdir", Path: cfg.Dir, Err: errors.New("not a directory")}
			}
			return nil, goerrors.DirectoryChange(cfg.Dir, err)
		}
	}

	mp := &MemoryProcess{
		Args:   append([]string(nil), cfg.Args...),
		Dir:    cfg.Dir,
		Env:    maps.Clone(cfg.Env),
		Stdin:  eofReader{},
		Stdout: io.Discard,
		Stderr: io.Discard,
		killed: make(chan struct{}),
	}
	proc := &memoryProcess{
		pid:  int(b.nextPid.Add(1)),
		done: make(chan struct{}),
		mp:   mp,
	}
	s := &Spawned{Process: proc}

	if cfg.RedirectStdin {
		r, w := io.Pipe()
		mp.Stdin, s.Stdin = r, w
		proc.closers = append(proc.closers, r)
	}
	if cfg.RedirectStdout {
		r, w := io.Pipe()
		mp.Stdout, s.Stdout = w, r
		proc.closers = append(proc.closers, w)
	}
	switch {
	case cfg.MergeOutputs:
		mp.Stderr = mp.Stdout
	case cfg.RedirectStderr:
		r, w := io.Pipe()
		mp.Stderr, s.Stderr = w, r
		proc.closers = append(proc.closers, w)
	}

	go proc.run(prog)
	return s, nil
}

type eofReader struct{}

func (eofReader) Read([]byte) (int, error) { return 0, io.EOF }

type memoryProcess struct {
	pid int
	mp  *MemoryProcess

	// closers are the child's ends; closing them is the child exiting.
	closers []io.Closer

	once     sync.Once
	killOnce sync.Once
	done     chan struct{}
	killed   atomic.Bool
	code     int
}

func (p *memoryProcess) run(prog Program) {
	code := prog(p.mp)
	p.finish(code)
}

func (p *memoryProcess) finish(code int) {
	p.once.Do(func() {
		if p.killed.Load() {
			code = ExitCodeSignaled
		}
		p.code = code
		for _, c := range p.closers {
			_ = c.Close()
		}
		close(p.done)
	})
}

func (p *memoryProcess) Pid() int { return p.pid }

func (p *memoryProcess) Poll() (bool, int, error) {
	select {
	case <-p.done:
		return true, p.code, nil
	default:
		return false, 0, nil
	}
}

func (p *memoryProcess) Wait() (int, error) {
	<-p.done
	return p.code, nil
}

// Kill closes the program's Killed channel and breaks its pipes. A forced
// kill also marks the process exited at once, whether or not the program
// function has returned.
func (p *memoryProcess) Kill(force bool) error {
	select {
	case <-p.done:
		return nil
	default:
	}
	p.killed.Store(true)
	p.killOnce.Do(func() {
		close(p.mp.killed)
		for _, c := range p.closers {
			_ = c.Close()
		}
	})
	if force {
		p.finish(ExitCodeSignaled)
	}
	return nil
}

func (p *memoryProcess) Release() error { return nil }
