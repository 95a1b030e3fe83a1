package upstream

import (
	"net/http"
	"time"

	"github.com/okian/agenda/pkg/logger"
)

const defaultTimeout = 10 * time.Second

// Option configures an upstream client.
type Option func(*clientConfig)

type clientConfig struct {
	httpClient *http.Client
	apiKey     string
	logger     logger.Logger
}

// WithHTTPClient replaces the HTTP client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(cfg *clientConfig) {
		if c != nil {
			cfg.httpClient = c
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(cfg *clientConfig) {
		if d > 0 {
			cfg.httpClient = &http.Client{Timeout: d}
		}
	}
}

// WithAPIKey sets the RapidAPI key sent with every request.
func WithAPIKey(key string) Option {
	return func(cfg *clientConfig) {
		cfg.apiKey = key
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(cfg *clientConfig) {
		if l != nil {
			cfg.logger = l
		}
	}
}

func newClientConfig(name string, opts []Option) clientConfig {
	cfg := clientConfig{httpClient: &http.Client{Timeout: defaultTimeout}}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logger.Get().Named(name)
	}
	return cfg
}
