package reconcile

import (
	"github.com/okian/agenda/pkg/logger"
)

// Option configures a Calendar.
type Option func(*Calendar)

// WithNotifier sets where rejections are reported.
func WithNotifier(n Notifier) Option {
	return func(c *Calendar) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithQueueCapacity bounds the number of queued mutations.
func WithQueueCapacity(n int) Option {
	return func(c *Calendar) {
		if n > 0 {
			c.queueCapacity = n
		}
	}
}

// WithIDGenerator replaces the generator of event and mutation ids.
func WithIDGenerator(gen func() string) Option {
	return func(c *Calendar) {
		if gen != nil {
			c.newID = gen
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Calendar) {
		if l != nil {
			c.logger = l
		}
	}
}
