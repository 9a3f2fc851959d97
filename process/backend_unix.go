//go:build unix

package process

import (
	"errors"
	"os"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"
)

var defaultBackend Backend = posixBackend{}

// posixBackend spawns with the runtime's fork/exec primitive. The child side
// of fork/exec never returns into Go code: a failed chdir or execve is
// written as an errno to a close-on-exec status pipe and the child calls
// _exit, so the parent sees the failure as the return value of ForkExec.
type posixBackend struct{}

func (posixBackend) Spawn(cfg Config) (*Spawned, error) {
	path, env, err := cfg.resolve()
	if err != nil {
		return nil, err
	}
	pipes, err := openPipes(cfg)
	if err != nil {
		return nil, err
	}

	files := []uintptr{uintptr(syscall.Stdin), uintptr(syscall.Stdout), uintptr(syscall.Stderr)}
	for i := range files {
		if end := pipes.childEnd(i); end != nil {
			files[i] = end.Fd()
		}
	}
	if cfg.MergeOutputs {
		files[2] = files[1]
	}

	argv := append([]string{cfg.Program}, cfg.Args...)
	pid, err := syscall.ForkExec(path, argv, &syscall.ProcAttr{
		Dir:   cfg.Dir,
		Env:   env,
		Files: files,
	})
	if err != nil {
		_ = pipes.closeAll()
		return nil, spawnError(cfg, err)
	}

	_ = pipes.closeChildEnds()
	for _, ch := range pipes {
		if ch != nil {
			// already O_CLOEXEC where pipe2 exists; this covers the rest
			_ = ch.ParentEnd().SetCloseOnExec()
		}
	}
	return pipes.spawned(&posixProcess{pid: pid}), nil
}

type posixProcess struct {
	pid int

	// reap is held by whoever is inside wait4 for this pid.
	reap sync.Mutex
	// sigMu is held for writing while the child is reaped and for reading
	// while it is signalled.
	sigMu sync.RWMutex

	mu     sync.Mutex
	exited bool
	code   int
}

func (p *posixProcess) Pid() int { return p.pid }

func (p *posixProcess) Poll() (bool, int, error) {
	if ok, code := p.status(); ok {
		return true, code, nil
	}
	// A blocking Wait owns the child; it has not exited as far as we know.
	if !p.reap.TryLock() {
		return false, 0, nil
	}
	defer p.reap.Unlock()
	if ok, code := p.status(); ok {
		return true, code, nil
	}
	return p.wait4(unix.WNOHANG)
}

func (p *posixProcess) Wait() (int, error) {
	p.reap.Lock()
	defer p.reap.Unlock()
	if ok, code := p.status(); ok {
		return code, nil
	}
	_, code, err := p.wait4(0)
	return code, err
}

// Kill sends SIGTERM, or SIGKILL when forced. A process that has already been
// reaped is left alone: its pid may belong to someone else by now.
//
// The reaped check and the signal happen under sigMu, which the reaping
// wait4 holds for writing. On Linux a blocking Wait first parks in waitid
// with WNOWAIT and takes sigMu only once the child is a zombie, so Kill is
// never held up by a running child. Elsewhere a blocking Wait cannot take
// sigMu without stalling Kill, and a Kill racing the reap of an exiting
// child may signal a recycled pid.
func (p *posixProcess) Kill(force bool) error {
	p.sigMu.RLock()
	defer p.sigMu.RUnlock()
	if ok, _ := p.status(); ok {
		return nil
	}
	sig := unix.SIGTERM
	if force {
		sig = unix.SIGKILL
	}
	if err := unix.Kill(p.pid, sig); err != nil && !errors.Is(err, unix.ESRCH) {
		return os.NewSyscallError("kill", err)
	}
	return nil
}

// Release reaps the child if it has already exited so no zombie is left
// behind. A running child is not touched.
func (p *posixProcess) Release() error {
	_, _, err := p.Poll()
	return err
}

func (p *posixProcess) status() (bool, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exited, p.code
}

func (p *posixProcess) wait4(options int) (bool, int, error) {
	if options&unix.WNOHANG != 0 || waitable(p.pid) {
		p.sigMu.Lock()
		defer p.sigMu.Unlock()
	}

	var ws unix.WaitStatus
	for {
		wpid, err := unix.Wait4(p.pid, &ws, options, nil)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return false, 0, os.NewSyscallError("wait4", err)
		}
		if wpid == 0 {
			return false, 0, nil
		}
		break
	}

	code := ExitCodeSignaled
	if ws.Exited() {
		code = ws.ExitStatus()
	}
	p.mu.Lock()
	p.exited, p.code = true, code
	p.mu.Unlock()
	return true, code, nil
}

// dirAccessError reports why the working directory cannot be entered.
func dirAccessError(dir string) error {
	if err := unix.Access(dir, unix.X_OK); err != nil {
		return &os.PathError{Op: "access", Path: dir, Err: err}
	}
	return nil
}
