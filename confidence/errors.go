package confidence

import (
	"errors"

	"github.com/tailored-agentic-units/eventsender/upload"
)

var (
	// ErrNoClientSecret is returned by New when neither Config.ClientSecret
	// nor Config.Upload.ClientSecret is set.
	ErrNoClientSecret = upload.ErrNoClientSecret

	// ErrUnsupportedConfig is returned by LoadConfig for a file extension
	// other than .json, .yaml or .yml.
	ErrUnsupportedConfig = errors.New("unsupported config file extension")
)
