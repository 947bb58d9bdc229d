package feed

import (
	"net/http"
	"time"
)

const (
	defaultTimeout = 10 * time.Second
	defaultSeed    = 42
)

// config holds construction settings shared by the feed types.
type config struct {
	baseURL string
	client  *http.Client
	seed    uint64
	clock   func() time.Time
}

func defaultConfig() config {
	return config{
		client: &http.Client{Timeout: defaultTimeout},
		seed:   defaultSeed,
		clock:  time.Now,
	}
}

// Option applies a configuration option to a feed under construction.
type Option func(*config)

// WithBaseURL overrides the upstream endpoint.
func WithBaseURL(u string) Option {
	return func(c *config) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithHTTPClient supplies the client used for upstream requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *config) {
		if client != nil {
			c.client = client
		}
	}
}

// WithSeed sets the synthetic generator seed.
func WithSeed(seed uint64) Option {
	return func(c *config) {
		c.seed = seed
	}
}

// WithClock overrides the time source used to stamp synthetic points.
func WithClock(clock func() time.Time) Option {
	return func(c *config) {
		if clock != nil {
			c.clock = clock
		}
	}
}
