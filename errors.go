package facsimile

import "errors"

var (
	// ErrImageLoad wraps any failure to load the page image. The session
	// keeps its previous document when a load fails this way.
	ErrImageLoad = errors.New("loading page image")

	// ErrNoDocument is returned by operations that need a loaded document
	ErrNoDocument = errors.New("no document loaded")

	// ErrUnknownLine is returned for line ids not in the current document
	ErrUnknownLine = errors.New("unknown line")
)
