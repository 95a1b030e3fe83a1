package agendacli

import "time"

// Config holds the settings shared by every command.
type Config struct {
	BaseURL string        // Base URL of the service
	Timeout time.Duration // HTTP request timeout
	LogFile string        // Log file, empty for stderr only
	Verbose bool          // Enable debug logging
}
