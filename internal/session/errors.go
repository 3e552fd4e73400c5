package session

import "errors"

var (
	// ErrSubmitInFlight is returned when Submit is called while a request is pending.
	ErrSubmitInFlight = errors.New("submit already in flight")
	// ErrNothingToCopy is returned by CopyResult when there is no bio.
	ErrNothingToCopy = errors.New("no bio to copy")
	// ErrClipboard wraps clipboard write failures.
	ErrClipboard = errors.New("clipboard write failed")
	// ErrSuperseded is returned by Submit and CopyResult when a later
	// Submit, Reset or Close ran while they were in flight and their
	// result was dropped.
	ErrSuperseded = errors.New("submission superseded")
	// ErrClosed is returned by operations on a closed controller.
	ErrClosed = errors.New("session closed")
)

// MessageCopyFailed is shown when the clipboard write fails.
const MessageCopyFailed = "Não foi possível copiar o texto"
