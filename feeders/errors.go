package feeders

import "errors"

// Feeder errors
var (
	// ErrMalformedSection is returned when a named section exists in the
	// source but is not a key/value mapping.
	ErrMalformedSection = errors.New("configuration section is not a mapping")
)
