package engine

import "errors"

var (
	// ErrClosed is returned by Send once Close has been called.
	ErrClosed = errors.New("engine closed")

	// ErrEmptyName is returned by Send for an event without a name.
	ErrEmptyName = errors.New("event name is empty")

	// ErrNoUploader is returned by New when no Uploader is supplied.
	ErrNoUploader = errors.New("no uploader configured")
)
