package upload

import "errors"

var (
	ErrNoClientSecret     = errors.New("client secret is required")
	ErrNoTransport        = errors.New("no transport configured")
	ErrUnknownProtocol    = errors.New("unknown protocol")
	ErrUnknownCompression = errors.New("unknown compression")
)
