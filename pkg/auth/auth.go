// Package auth provides authentication support for HTTP requests.
//
//go:generate mockgen -destination=./mocks/auth.go . Authenticator
package auth

import (
	"net/http"
)

// Credential environment variables.
const (
	UsernameEnv = "KAGGLE_USERNAME"
	KeyEnv      = "KAGGLE_KEY"
)

// Authenticator defines the interface for applying authentication to HTTP requests.
type Authenticator interface {
	Apply(req *http.Request) error
	Type() Type
}

// BasicAuth represents HTTP Basic Authentication credentials.
type BasicAuth struct {
	Username string
	Password string
}

// HeaderAuth represents authentication via custom HTTP headers.
type HeaderAuth struct {
	Headers map[string]string
}

// BearerAuth represents Bearer token authentication. Header defaults to
// Authorization.
type BearerAuth struct {
	Token  string
	Header string
}

// Chain applies several authenticators in order.
type Chain []Authenticator

// Type represents the type of authentication.
type Type string

// Authentication types.
const (
	// BasicAuthType represents HTTP Basic Authentication.
	BasicAuthType Type = "basic"
	// HeaderAuthType represents custom header-based authentication.
	HeaderAuthType Type = "header"
	// BearerAuthType represents Bearer token authentication.
	BearerAuthType Type = "bearer"
	// ChainAuthType represents a combination of authenticators.
	ChainAuthType Type = "chain"
)

// Apply adds Basic Authentication headers to the HTTP request.
func (b BasicAuth) Apply(req *http.Request) error {
	req.SetBasicAuth(b.Username, b.Password)
	return nil
}

// Type returns the authentication type (BasicAuthType).
func (b BasicAuth) Type() Type { return BasicAuthType }

// Apply adds custom headers to the HTTP request. Empty values are skipped.
func (h HeaderAuth) Apply(req *http.Request) error {
	for k, v := range h.Headers {
		if v == "" {
			continue
		}
		req.Header.Set(k, v)
	}
	return nil
}

// Type returns the authentication type (HeaderAuthType).
func (h HeaderAuth) Type() Type { return HeaderAuthType }

// Apply adds a Bearer token to the configured header of the HTTP request.
func (b BearerAuth) Apply(req *http.Request) error {
	header := b.Header
	if header == "" {
		header = "Authorization"
	}
	req.Header.Set(header, "Bearer "+b.Token)
	return nil
}

// Type returns the authentication type (BearerAuthType).
func (b BearerAuth) Type() Type { return BearerAuthType }

// Apply runs every authenticator, stopping at the first error. Nil entries are skipped.
func (c Chain) Apply(req *http.Request) error {
	for _, a := range c {
		if a == nil {
			continue
		}
		if err := a.Apply(req); err != nil {
			return err
		}
	}
	return nil
}

// Type returns the authentication type (ChainAuthType).
func (c Chain) Type() Type { return ChainAuthType }
