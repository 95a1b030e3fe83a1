package api

import "github.com/okian/agenda/pkg/logger"

const defaultCalendarName = "Agenda"

type serverConfig struct {
	logger       logger.Logger
	calendarName string
}

// Option configures a Server.
type Option func(*serverConfig)

// WithLogger sets the handler logger.
func WithLogger(l logger.Logger) Option {
	return func(c *serverConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithCalendarName sets the display name of the iCalendar feed.
func WithCalendarName(name string) Option {
	return func(c *serverConfig) {
		if name != "" {
			c.calendarName = name
		}
	}
}
