package config

import "errors"

// Sentinel kinds returned by Load and Validate.
var (
	ErrInvalidConfig = errors.New("netstats config: invalid value")
	ErrLoadConfig    = errors.New("netstats config: cannot read source")
)
