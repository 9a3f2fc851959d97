// Package pipe allocates the OS pipes that connect a parent process to the
// standard streams of a child it spawns.
//
// A Channel holds both ends of one pipe. Each End is the single owner of its
// native descriptor (POSIX) or handle (Windows) and releases it exactly once,
// so a Channel can be closed unconditionally on every failure path without
// double-closing a descriptor that the OS may already have reused.
//
// Which end the parent keeps depends on the stream: for stdin the parent
// writes, for stdout and stderr it reads. The other end belongs to the child
// and is closed in the parent once the child has been created.
package pipe
