package razorpay

import "time"

// Config represents the configuration for the Razorpay client
type Config struct {
	// KeyID is the public API key, also handed to the checkout widget
	KeyID string

	// KeySecret signs API requests and payment signatures
	KeySecret string

	// BaseURL is the Razorpay API base URL, e.g. https://api.razorpay.com/v1
	BaseURL string

	// Timeout bounds every API call. Zero means 30s.
	Timeout time.Duration
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.KeyID == "" || c.KeySecret == "" || c.BaseURL == "" {
		return ErrInvalidConfig
	}
	return nil
}
