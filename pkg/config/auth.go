package config

import (
	"os"

	"github.com/glorpus-work/kagglehub/pkg/auth"
)

// AuthConfigContainer defines the interface for authentication configuration types that can be converted to an Authenticator.
type AuthConfigContainer interface {
	ToAuthenticator() auth.Authenticator
}

// AuthConfig holds the credentials sent to the platform API. The first
// configured method wins.
type AuthConfig struct {
	BasicAuth  *BasicAuth  `yaml:"basic,omitempty"`
	HeaderAuth *HeaderAuth `yaml:"header,omitempty"`
	BearerAuth *BearerAuth `yaml:"bearer,omitempty"`
}

// BasicAuth holds an API username and key.
type BasicAuth struct {
	Username string `yaml:"username"`
	Key      string `yaml:"key"`
}

// HeaderAuth holds configuration for custom header-based authentication.
type HeaderAuth struct {
	Headers map[string]string `yaml:"headers"`
}

// BearerAuth holds configuration for Bearer token authentication.
type BearerAuth struct {
	Token string `yaml:"token"`
}

// ToAuthenticator converts the BasicAuth configuration to an Authenticator.
func (b *BasicAuth) ToAuthenticator() auth.Authenticator {
	return auth.BasicAuth{
		Username: b.Username,
		Password: b.Key,
	}
}

// ToAuthenticator converts the HeaderAuth configuration to an Authenticator.
func (h *HeaderAuth) ToAuthenticator() auth.Authenticator {
	return auth.HeaderAuth{
		Headers: h.Headers,
	}
}

// ToAuthenticator converts the BearerAuth configuration to an Authenticator.
func (b *BearerAuth) ToAuthenticator() auth.Authenticator {
	return auth.BearerAuth{
		Token: b.Token,
	}
}

// Authenticator returns the configured credentials, or nil for anonymous access.
func (c *Config) Authenticator() auth.Authenticator {
	if c.Auth == nil {
		return nil
	}
	var container AuthConfigContainer
	switch {
	case c.Auth.BasicAuth != nil:
		container = c.Auth.BasicAuth
	case c.Auth.HeaderAuth != nil:
		container = c.Auth.HeaderAuth
	case c.Auth.BearerAuth != nil:
		container = c.Auth.BearerAuth
	default:
		return nil
	}
	return container.ToAuthenticator()
}

// applyEnvAuth replaces the configured credentials when both
// KAGGLE_USERNAME and KAGGLE_KEY are set.
func (c *Config) applyEnvAuth() {
	username, key := os.Getenv(auth.UsernameEnv), os.Getenv(auth.KeyEnv)
	if username == "" || key == "" {
		return
	}
	c.Auth = &AuthConfig{BasicAuth: &BasicAuth{Username: username, Key: key}}
}
