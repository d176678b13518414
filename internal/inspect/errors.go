package inspect

import "errors"

var (
	// ErrNoSelection is returned by Confirm when nothing is selected.
	ErrNoSelection = errors.New("no element selected")
	// ErrExtractionInFlight is returned by Confirm while a previous
	// extraction of the same session is still running.
	ErrExtractionInFlight = errors.New("extraction already in progress")
	// ErrCancelled is returned by Confirm when the session was cancelled
	// before the extraction finished. The result is discarded.
	ErrCancelled = errors.New("inspection cancelled")
)
