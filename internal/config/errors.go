package config

import "errors"

var (
	// ErrInvalidConfig marks a loaded configuration that fails validation.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrLoadConfig marks a config file or environment that cannot be read.
	ErrLoadConfig = errors.New("load config failed")
)
