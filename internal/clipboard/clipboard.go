// Package clipboard writes text to the system clipboard.
package clipboard

import (
	"errors"

	"github.com/atotto/clipboard"
)

// ErrUnavailable is returned by Disabled.
var ErrUnavailable = errors.New("clipboard unavailable")

// Writer copies text to a clipboard.
type Writer interface {
	WriteAll(text string) error
}

// WriterFunc adapts a function to Writer.
type WriterFunc func(text string) error

// WriteAll calls f(text).
func (f WriterFunc) WriteAll(text string) error { return f(text) }

// writeAll is a package-level variable to allow swapping in tests.
var writeAll = clipboard.WriteAll

// System returns a Writer backed by the OS clipboard.
func System() Writer {
	return WriterFunc(func(text string) error { return writeAll(text) })
}

// Supported reports whether a clipboard utility was found on this host.
func Supported() bool {
	return !clipboard.Unsupported
}

// Disabled returns a Writer that always fails with ErrUnavailable.
func Disabled() Writer {
	return WriterFunc(func(string) error { return ErrUnavailable })
}
