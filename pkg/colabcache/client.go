// Package colabcache resolves models and datasets inside Google Colab through
// the runtime sidecar, which mounts them from a shared cache.
package colabcache

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/glorpus-work/kagglehub/pkg/errors"
)

// DefaultRequestTimeout bounds one call to the sidecar.
const DefaultRequestTimeout = 30 * time.Second

// Kind segments of the sidecar API.
const (
	modelsKind   = "models"
	datasetsKind = "datasets"
)

// Client talks to the sidecar runtime API at TBE_RUNTIME_ADDR.
type Client struct {
	base string
	http *http.Client
}

// NewClient creates a sidecar client for addr (host:port).
func NewClient(addr string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	base := strings.TrimRight(addr, "/")
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	return &Client{base: base + "/kagglehub/", http: &http.Client{Timeout: timeout}}
}

// IsSupported asks whether the sidecar can mount the described resource. A
// 404 means it cannot.
func (c *Client) IsSupported(ctx context.Context, kind string, body any) (bool, error) {
	status, _, err := c.post(ctx, kind+"/is_supported", body)
	if err != nil {
		return false, err
	}
	return status != http.StatusNotFound, nil
}

// Mount requests a mount and returns the slug it will appear under.
func (c *Client) Mount(ctx context.Context, kind string, body any) (string, error) {
	status, data, err := c.post(ctx, kind+"/mount", body)
	if err != nil {
		return "", err
	}
	if status == http.StatusNotFound {
		return "", errors.NewBackendError("%s mount returned HTTP 404: %s", kind, strings.TrimSpace(string(data)))
	}

	var resp struct {
		Slug string `json:"slug"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", errors.NewBackendError("malformed %s mount response: %v", kind, err)
	}
	if resp.Slug == "" {
		return "", errors.NewBackendError("%s mount response has no slug", kind)
	}
	return resp.Slug, nil
}

// post returns the status and body of any 2xx or 404 response.
func (c *Client) post(ctx context.Context, path string, body any) (int, []byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, nil, errors.Wrapf(err, "failed to encode %s request", path)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, errors.Wrapf(err, "failed to create %s request", path)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, errors.Wrapf(err, "colab sidecar request %s failed", path)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, errors.Wrapf(err, "failed to read %s response", path)
	}
	if resp.StatusCode != http.StatusNotFound && (resp.StatusCode < 200 || resp.StatusCode > 299) {
		return 0, nil, errors.NewBackendError("colab sidecar %s failed with HTTP %d: %s", path, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return resp.StatusCode, data, nil
}
