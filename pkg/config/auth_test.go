package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/glorpus-work/kagglehub/pkg/auth"
)

func TestAuthenticator(t *testing.T) {
	tests := []struct {
		name     string
		auth     *AuthConfig
		expected auth.Authenticator
	}{
		{name: "nil config", auth: nil, expected: nil},
		{name: "empty config", auth: &AuthConfig{}, expected: nil},
		{
			name:     "basic",
			auth:     &AuthConfig{BasicAuth: &BasicAuth{Username: "u", Key: "k"}},
			expected: auth.BasicAuth{Username: "u", Password: "k"},
		},
		{
			name:     "header",
			auth:     &AuthConfig{HeaderAuth: &HeaderAuth{Headers: map[string]string{"X-Token": "t"}}},
			expected: auth.HeaderAuth{Headers: map[string]string{"X-Token": "t"}},
		},
		{
			name:     "bearer",
			auth:     &AuthConfig{BearerAuth: &BearerAuth{Token: "t"}},
			expected: auth.BearerAuth{Token: "t"},
		},
		{
			name: "basic wins",
			auth: &AuthConfig{
				BasicAuth:  &BasicAuth{Username: "u", Key: "k"},
				BearerAuth: &BearerAuth{Token: "t"},
			},
			expected: auth.BasicAuth{Username: "u", Password: "k"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Auth: tt.auth}
			assert.Equal(t, tt.expected, cfg.Authenticator())
		})
	}
}

func TestApplyEnvAuth_RequiresBoth(t *testing.T) {
	t.Setenv("KAGGLE_USERNAME", "u")
	t.Setenv("KAGGLE_KEY", "")

	cfg := &Config{Auth: &AuthConfig{BearerAuth: &BearerAuth{Token: "t"}}}
	cfg.applyEnvAuth()
	assert.Equal(t, auth.BearerAuth{Token: "t"}, cfg.Authenticator())
}
