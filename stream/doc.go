// Package stream adapts raw byte channels, such as the pipe ends of a child
// process, to the io interfaces the rest of an application builds on.
//
// InputStream keeps a small putback region in front of its fetch buffer so
// that bytes already consumed can be pushed back for lookahead, which is what
// line and token scanners layered on top rely on. OutputStream is a thin,
// unbuffered pass-through: every call is one write on the underlying channel.
package stream
