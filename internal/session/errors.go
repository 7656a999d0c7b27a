package session

import "errors"

// Local precondition failures. None of them reach the network.
var (
	ErrInvalidFileType  = errors.New("only PDF files can be uploaded")
	ErrEmptyQuery       = errors.New("query is empty")
	ErrNoActiveDocument = errors.New("no active document")
)

var (
	// ErrNoResult is returned by Export when there is no answer to copy.
	ErrNoResult = errors.New("no answer to export")
	// ErrClipboard wraps failures writing to the system clipboard.
	ErrClipboard = errors.New("clipboard unavailable")
	// ErrClosed is returned when the session ended before or while an
	// operation ran. Late results are discarded.
	ErrClosed = errors.New("session closed")
)
