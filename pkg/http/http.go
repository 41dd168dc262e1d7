// Package http is the authenticated client of the Kaggle platform API.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/glorpus-work/kagglehub/internal/logger"
	"github.com/glorpus-work/kagglehub/pkg/auth"
	"github.com/glorpus-work/kagglehub/pkg/errors"
	"github.com/glorpus-work/kagglehub/pkg/handle"
)

const (
	// ClientVersion is reported in the User-Agent and compared with the
	// version advertised by the server.
	ClientVersion = "0.1.0"

	// Default timeouts.
	DefaultConnectTimeout = 5 * time.Second
	DefaultReadTimeout    = 15 * time.Second

	apiPrefix = "api/v1"
)

// Options configures an HTTPClient. Zero values select the defaults.
type Options struct {
	// Endpoint is the platform base URL; defaults to handle.Endpoint().
	Endpoint string
	// Auth is applied to requests sent to the endpoint host. Nil sends
	// anonymous requests.
	Auth           auth.Authenticator
	ConnectTimeout time.Duration
	// ReadTimeout bounds the wait for response headers and every body read.
	ReadTimeout time.Duration
	// ShowProgress renders a progress bar on ProgressOutput while downloading.
	ShowProgress   bool
	ProgressOutput io.Writer
}

// HTTPClient handles HTTP operations against the platform API.
type HTTPClient struct {
	endpoint     *url.URL
	auth         auth.Authenticator
	client       *http.Client
	readTimeout  time.Duration
	userAgent    string
	showProgress bool
	progressOut  io.Writer
	warnedHub    atomic.Bool
}

// NewHTTPClient creates a new API client.
func NewHTTPClient(opts Options) (*HTTPClient, error) {
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = handle.Endpoint()
	}
	u, err := url.Parse(strings.TrimRight(endpoint, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.Wrapf(errors.ErrEmptyEndpoint, "invalid endpoint %q", endpoint)
	}

	connectTimeout := opts.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = DefaultConnectTimeout
	}
	readTimeout := opts.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = DefaultReadTimeout
	}
	progressOut := opts.ProgressOutput
	if progressOut == nil {
		progressOut = os.Stderr
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{Timeout: connectTimeout}).DialContext
	transport.TLSHandshakeTimeout = connectTimeout
	transport.ResponseHeaderTimeout = readTimeout

	return &HTTPClient{
		endpoint:     u,
		auth:         opts.Auth,
		client:       &http.Client{Transport: transport},
		readTimeout:  readTimeout,
		userAgent:    "kagglehub-go/" + ClientVersion,
		showProgress: opts.ShowProgress,
		progressOut:  progressOut,
	}, nil
}

// Get issues an authenticated GET and decodes the JSON response into out.
func (hc *HTTPClient) Get(ctx context.Context, path string, h handle.Handle, out any) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	resp, err := hc.do(ctx, hc.apiURL(path), nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := raiseForStatus(resp, h); err != nil {
		return err
	}
	hc.checkHubVersion(resp)

	body := newIdleTimeoutReader(resp.Body, hc.readTimeout, cancel)
	defer body.Stop()
	if err := json.NewDecoder(body).Decode(out); err != nil {
		if body.Expired() {
			return errors.Wrapf(errors.ErrReadTimeout, "reading %s", resp.Request.URL)
		}
		return errors.Wrapf(err, "failed to decode response of %s", resp.Request.URL)
	}
	return nil
}

// apiURL joins path (with an optional query) onto <endpoint>/api/v1/.
func (hc *HTTPClient) apiURL(path string) string {
	return hc.endpoint.String() + "/" + apiPrefix + "/" + strings.TrimLeft(path, "/")
}

// do sends a GET to rawURL. Credentials only go to the endpoint host.
func (hc *HTTPClient) do(ctx context.Context, rawURL string, header http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("User-Agent", hc.userAgent)
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	if hc.auth != nil && strings.EqualFold(req.URL.Host, hc.endpoint.Host) {
		if err := hc.auth.Apply(req); err != nil {
			return nil, errors.Wrap(err, "failed to apply credentials")
		}
	}

	logger.Debug("HTTP request", logger.Fields{"method": req.Method, "url": rawURL})
	resp, err := hc.client.Do(req)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return nil, fmt.Errorf("%w: %s: %w", errors.ErrReadTimeout, rawURL, err)
		}
		return nil, errors.Wrapf(err, "request to %s failed", rawURL)
	}
	return resp, nil
}
