package server

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API. Empty disables authentication.
	ApiKey string `mapstructure:"api_key" default:""`
	// RateRPS is the sustained requests per second allowed per client. 0 disables rate limiting.
	RateRPS float64 `mapstructure:"rate_rps" default:"0"`
	// RateBurst is the number of requests a client may issue at once.
	RateBurst int `mapstructure:"rate_burst" default:"20"`
}

// RateLimited reports whether per-client rate limiting is enabled.
func (c Config) RateLimited() bool {
	return c.RateRPS > 0
}

// Address returns the listen address for the configured port.
func (c Config) Address() string {
	if c.Port == "" {
		return ":8080"
	}
	return ":" + c.Port
}
