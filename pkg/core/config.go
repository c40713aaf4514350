package core

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultBaseURL is the production REST endpoint.
const DefaultBaseURL = "https://api.btcmarkets.net"

// Credentials holds the API authentication pair. The private key is decoded
// from its base64 configuration form exactly once, at construction; a
// malformed key surfaces here, never at signing time.
type Credentials struct {
	// APIKey is the public API key identifier sent with every request.
	APIKey string
	// PrivateKey is the raw decoded secret used to key the HMAC.
	PrivateKey []byte
}

// NewCredentials decodes the base64-encoded private key and returns the
// immutable credential pair.
func NewCredentials(apiKey, base64PrivateKey string) (*Credentials, error) {
	if apiKey == "" {
		return nil, ErrNoCredentials
	}
	key, err := base64.StdEncoding.DecodeString(base64PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("decode private key: %w", err)
	}
	return &Credentials{APIKey: apiKey, PrivateKey: key}, nil
}

// Config contains the options for a client instance.
type Config struct {
	// BaseURL is the API host. Overridable so tests can point at a mock server.
	BaseURL string `json:"base_url" validate:"required,url"`
	// APIKey is the public API key.
	APIKey string `json:"api_key" validate:"required"`
	// PrivateKey is the base64-encoded private key.
	PrivateKey string `json:"private_key" validate:"required,base64"`

	// Timeout is the maximum duration for HTTP requests.
	Timeout time.Duration `json:"timeout" validate:"min=1ms"`

	LogLevel string `json:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

// DefaultConfig returns a Config with the production base URL, a 10s request
// timeout, and info-level logging. Credentials must still be supplied.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:  DefaultBaseURL,
		Timeout:  10 * time.Second,
		LogLevel: "info",
	}
}

var validate = validator.New()

// Validate checks the configuration, including that the private key is
// well-formed base64.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	return nil
}

// Credentials decodes and returns the immutable credential pair.
func (c *Config) Credentials() (*Credentials, error) {
	return NewCredentials(c.APIKey, c.PrivateKey)
}

// WithCredentials sets the API key pair and returns the config for chaining.
func (c *Config) WithCredentials(apiKey, base64PrivateKey string) *Config {
	c.APIKey = apiKey
	c.PrivateKey = base64PrivateKey
	return c
}

// WithBaseURL overrides the API host and returns the config for chaining.
func (c *Config) WithBaseURL(url string) *Config {
	c.BaseURL = url
	return c
}

// WithTimeout sets the request timeout and returns the config for chaining.
func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.Timeout = timeout
	return c
}

// WithLogLevel sets the log level and returns the config for chaining.
func (c *Config) WithLogLevel(level string) *Config {
	c.LogLevel = level
	return c
}
