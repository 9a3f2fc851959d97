// Package process spawns child programs and exposes their standard streams
// as buffered byte streams.
//
// A Builder accumulates a Config and starts a Handle through a Backend. The
// default backend is chosen at build time (fork/exec on POSIX systems,
// CreateProcess on Windows); NewMemoryBackend substitutes Go functions for
// programs in tests.
//
//	h, err := process.NewBuilder().
//		Command("cat").
//		RedirectStdin(true).
//		RedirectStdout(true).
//		Start()
//	if err != nil {
//		return err
//	}
//	defer h.Close()
//
// Run and Runner layer one-shot execution, cancellation and resilience on top
// of the same primitives.
package process
