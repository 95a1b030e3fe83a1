package repository

import (
	"io/fs"

	"github.com/okian/agenda/pkg/logger"
)

// Option applies a configuration option to a file-backed store.
type Option func(*fileConfig)

type fileConfig struct {
	mode   fs.FileMode
	logger logger.Logger
}

// WithFileMode sets the permission bits of written files.
func WithFileMode(mode fs.FileMode) Option {
	return func(c *fileConfig) {
		if mode != 0 {
			c.mode = mode
		}
	}
}

// WithLogger sets the logger used for lenient-read warnings.
func WithLogger(l logger.Logger) Option {
	return func(c *fileConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

func newFileConfig(name string, opts []Option) fileConfig {
	c := fileConfig{mode: 0o644}
	for _, opt := range opts {
		opt(&c)
	}
	if c.logger == nil {
		c.logger = logger.Get().Named(name)
	}
	return c
}
