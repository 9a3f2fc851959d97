//go:build windows

package process

import (
	"os"
	"slices"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

var defaultBackend Backend = windowsBackend{}

// windowsBackend spawns with CreateProcess. Only the handles placed in the
// child's standard slots are inherited, through an explicit handle list, so
// concurrent spawns never pick up each other's pipe ends.
type windowsBackend struct{}

func (windowsBackend) Spawn(cfg Config) (*Spawned, error) {
	path, env, err := cfg.resolve()
	if err != nil {
		return nil, err
	}
	pipes, err := openPipes(cfg)
	if err != nil {
		return nil, err
	}

	var std [3]windows.Handle
	var dups []windows.Handle
	defer func() {
		for _, h := range dups {
			_ = windows.CloseHandle(h)
		}
	}()
	ids := [3]uint32{windows.STD_INPUT_HANDLE, windows.STD_OUTPUT_HANDLE, windows.STD_ERROR_HANDLE}
	for i := range std {
		if end := pipes.childEnd(i); end != nil {
			std[i] = windows.Handle(end.Fd())
			continue
		}
		if i == 2 && cfg.MergeOutputs {
			std[2] = std[1]
			continue
		}
		h, err := inheritableStdHandle(ids[i])
		if err != nil {
			_ = pipes.closeAll()
			return nil, spawnError(cfg, err)
		}
		if h != 0 {
			dups = append(dups, h)
		}
		std[i] = h
	}

	pi, err := createProcess(path, cfg, env, std)
	if err != nil {
		_ = pipes.closeAll()
		return nil, spawnError(cfg, err)
	}
	_ = windows.CloseHandle(pi.Thread)
	_ = pipes.closeChildEnds()
	return pipes.spawned(&windowsProcess{h: pi.Process, pid: int(pi.ProcessId)}), nil
}

// inheritableStdHandle duplicates one of our own standard handles so the
// child can inherit it. A missing handle yields 0.
func inheritableStdHandle(id uint32) (windows.Handle, error) {
	h, err := windows.GetStdHandle(id)
	if err != nil || h == 0 || h == windows.InvalidHandle {
		return 0, nil
	}
	var dup windows.Handle
	self := windows.CurrentProcess()
	if err := windows.DuplicateHandle(self, h, self, &dup, 0, true, windows.DUPLICATE_SAME_ACCESS); err != nil {
		return 0, os.NewSyscallError("DuplicateHandle", err)
	}
	return dup, nil
}

func createProcess(path string, cfg Config, env []string, std [3]windows.Handle) (*windows.ProcessInformation, error) {
	appName, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil, err
	}
	cmdLine, err := windows.UTF16PtrFromString(windows.ComposeCommandLine(append([]string{path}, cfg.Args...)))
	if err != nil {
		return nil, err
	}
	var dir *uint16
	if cfg.Dir != "" {
		if dir, err = windows.UTF16PtrFromString(cfg.Dir); err != nil {
			return nil, err
		}
	}
	block, err := envBlock(env)
	if err != nil {
		return nil, err
	}

	inherit := make([]windows.Handle, 0, len(std))
	for _, h := range std {
		if h != 0 && !slices.Contains(inherit, h) {
			inherit = append(inherit, h)
		}
	}

	si := new(windows.StartupInfoEx)
	si.Cb = uint32(unsafe.Sizeof(*si))
	si.Flags = windows.STARTF_USESTDHANDLES
	si.StdInput, si.StdOutput, si.StdErr = std[0], std[1], std[2]
	flags := uint32(windows.CREATE_UNICODE_ENVIRONMENT | windows.CREATE_NO_WINDOW)

	if len(inherit) > 0 {
		attrs, err := windows.NewProcThreadAttributeList(1)
		if err != nil {
			return nil, os.NewSyscallError("InitializeProcThreadAttributeList", err)
		}
		defer attrs.Delete()
		err = attrs.Update(windows.PROC_THREAD_ATTRIBUTE_HANDLE_LIST,
			unsafe.Pointer(&inherit[0]), uintptr(len(inherit))*unsafe.Sizeof(inherit[0]))
		if err != nil {
			return nil, os.NewSyscallError("UpdateProcThreadAttribute", err)
		}
		si.ProcThreadAttributeList = attrs.List()
		flags |= windows.EXTENDED_STARTUPINFO_PRESENT
	}

	pi := new(windows.ProcessInformation)
	err = windows.CreateProcess(appName, cmdLine, nil, nil, len(inherit) > 0, flags,
		&block[0], dir, &si.StartupInfo, pi)
	if err != nil {
		return nil, os.NewSyscallError("CreateProcess", err)
	}
	return pi, nil
}

// envBlock encodes env as a sequence of NUL-terminated UTF-16 strings ending
// with an extra NUL.
func envBlock(env []string) ([]uint16, error) {
	var block []uint16
	for _, kv := range env {
		u, err := windows.UTF16FromString(kv)
		if err != nil {
			return nil, err
		}
		block = append(block, u...)
	}
	if len(block) == 0 {
		block = append(block, 0)
	}
	return append(block, 0), nil
}

type windowsProcess struct {
	h   windows.Handle
	pid int

	mu       sync.Mutex
	exited   bool
	code     int
	released bool
}

func (p *windowsProcess) Pid() int { return p.pid }

func (p *windowsProcess) Poll() (bool, int, error) {
	return p.wait(0)
}

func (p *windowsProcess) Wait() (int, error) {
	_, code, err := p.wait(windows.INFINITE)
	return code, err
}

// Kill terminates the process. Windows has no graceful equivalent of
// SIGTERM for arbitrary processes, so force is ignored.
func (p *windowsProcess) Kill(force bool) error {
	p.mu.Lock()
	done := p.exited || p.released
	p.mu.Unlock()
	if done {
		return nil
	}
	if err := windows.TerminateProcess(p.h, 1); err != nil {
		return os.NewSyscallError("TerminateProcess", err)
	}
	return nil
}

func (p *windowsProcess) Release() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.released {
		return nil
	}
	p.released = true
	return windows.CloseHandle(p.h)
}

func (p *windowsProcess) wait(ms uint32) (bool, int, error) {
	p.mu.Lock()
	if p.exited {
		defer p.mu.Unlock()
		return true, p.code, nil
	}
	if p.released {
		p.mu.Unlock()
		return false, 0, os.ErrProcessDone
	}
	h := p.h
	p.mu.Unlock()

	ev, err := windows.WaitForSingleObject(h, ms)
	if err != nil {
		return false, 0, os.NewSyscallError("WaitForSingleObject", err)
	}
	if ev != windows.WAIT_OBJECT_0 {
		return false, 0, nil
	}
	var code uint32
	if err := windows.GetExitCodeProcess(h, &code); err != nil {
		return false, 0, os.NewSyscallError("GetExitCodeProcess", err)
	}
	p.mu.Lock()
	p.exited, p.code = true, int(code)
	p.mu.Unlock()
	return true, int(code), nil
}

func dirAccessError(string) error { return nil }
