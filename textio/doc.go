// Package textio layers line and token oriented text handling on top of the
// byte streams of a child process.
//
// Reader needs an io.ByteScanner: terminators and separators are consumed
// greedily and the first byte that ends a run is pushed back. Writer accepts
// any io.Writer and flushes it when the writer knows how.
//
//	r := textio.NewReader(out)
//	line, err := r.GetLine()
//	v, err := r.Input() // bool, int64, float64 or string
package textio
