// Package kagglecache resolves handles inside Kaggle notebooks by attaching
// them to the notebook through the data proxy and waiting for the mount.
package kagglecache

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/glorpus-work/kagglehub/pkg/auth"
	"github.com/glorpus-work/kagglehub/pkg/errors"
	"github.com/glorpus-work/kagglehub/pkg/platform"
)

const (
	// AttachRequest attaches a datasource to the running notebook.
	AttachRequest = "AttachDatasourceUsingJwtRequest"

	jwtHandlerPath  = "/kaggle-jwt-handler/"
	authHeader      = "X-Kaggle-Authorization"
	proxyDataHeader = "X-KAGGLE-PROXY-DATA"

	// DefaultRequestTimeout bounds one call to the data proxy.
	DefaultRequestTimeout = 30 * time.Second
)

// Client calls the JWT-authenticated handlers of the notebook data proxy.
type Client struct {
	proxyURL string
	auth     auth.Authenticator
	http     *http.Client
}

// NewClient creates a proxy client from the notebook environment. The notebook
// token must be present and unexpired.
func NewClient(env platform.Environment, timeout time.Duration) (*Client, error) {
	if !env.InKaggleNotebook() {
		return nil, errors.Wrap(errors.ErrNotSupported, "not running in a Kaggle notebook")
	}
	if err := checkToken(env.UserSecretsToken, time.Now()); err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	chain := auth.Chain{
		auth.BearerAuth{Token: env.UserSecretsToken, Header: authHeader},
		auth.HeaderAuth{Headers: map[string]string{proxyDataHeader: env.DataProxyToken}},
	}
	if env.IAPToken != "" {
		chain = append(chain, auth.BearerAuth{Token: env.IAPToken})
	}

	return &Client{
		proxyURL: strings.TrimRight(env.DataProxyURL, "/"),
		auth:     chain,
		http:     &http.Client{Timeout: timeout},
	}, nil
}

// checkToken reads the expiry of the notebook token. The signature is the
// proxy's business; only an obviously unusable token is rejected here.
func checkToken(token string, now time.Time) error {
	if token == "" {
		return errors.Wrapf(errors.ErrMissingCredentials, "%s is not set", platform.UserSecretsTokenEnv)
	}
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return errors.Wrapf(errors.ErrMissingCredentials, "malformed %s: %v", platform.UserSecretsTokenEnv, err)
	}
	if claims.ExpiresAt != nil && !now.Before(claims.ExpiresAt.Time) {
		return errors.Wrapf(errors.ErrTokenExpired, "%s expired at %s", platform.UserSecretsTokenEnv, claims.ExpiresAt.Time.Format(time.RFC3339))
	}
	return nil
}

type envelope struct {
	WasSuccessful bool            `json:"wasSuccessful"`
	Result        json.RawMessage `json:"result"`
	Errors        []string        `json:"errors"`
}

// Post sends body to the named handler and decodes the result field of the
// response envelope into result.
func (c *Client) Post(ctx context.Context, request string, body, result any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.Wrapf(err, "failed to encode %s", request)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.proxyURL+jwtHandlerPath+request, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", request)
	}
	req.Header.Set("Content-Type", "application/json")
	if err := c.auth.Apply(req); err != nil {
		return errors.Wrap(err, "failed to apply authentication")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s failed", request)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "failed to read %s response", request)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.NewBackendError("%s failed with HTTP %d: %s", request, resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return errors.NewBackendError("malformed %s response: %v", request, err)
	}
	if !env.WasSuccessful {
		return errors.NewBackendError("%s was not successful: %s", request, strings.Join(env.Errors, "; "))
	}
	if result == nil {
		return nil
	}
	if len(env.Result) == 0 || string(env.Result) == "null" {
		return errors.NewBackendError("%s response has no result", request)
	}
	if err := json.Unmarshal(env.Result, result); err != nil {
		return errors.NewBackendError("malformed %s result: %v", request, err)
	}
	return nil
}
