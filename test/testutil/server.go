// Package testutil provides a stub of the platform API for integration tests.
package testutil

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/glorpus-work/kagglehub/pkg/archive"
)

// TestServer answers platform API requests from registered responses. Routes
// are keyed by request path plus raw query, e.g.
// "/api/v1/datasets/download/o/d?dataset_version_number=1".
type TestServer struct {
	*httptest.Server

	mu       sync.Mutex
	routes   map[string]response
	requests []string
	auths    []string
}

type response struct {
	body        []byte
	contentType string
}

// NewTestServer starts a stub server that is closed when the test ends.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()
	ts := &TestServer{routes: make(map[string]response)}
	ts.Server = httptest.NewServer(http.HandlerFunc(ts.serve))
	t.Cleanup(ts.Close)
	return ts
}

// AddJSON registers a JSON response.
func (ts *TestServer) AddJSON(t *testing.T, route string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Failed to encode response for %s: %v", route, err)
	}
	ts.add(route, response{body: data, contentType: "application/json"})
}

// AddFile registers a binary download.
func (ts *TestServer) AddFile(route string, content []byte) {
	ts.add(route, response{body: content, contentType: "application/octet-stream"})
}

// AddBundle registers a tar.gz download holding files (relative path to content).
func (ts *TestServer) AddBundle(t *testing.T, route string, files map[string]string) {
	t.Helper()
	src := t.TempDir()
	for name, content := range files {
		p := filepath.Join(src, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("Failed to create directory for %s: %v", name, err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}

	archivePath := filepath.Join(t.TempDir(), "bundle.tar.gz")
	if err := archive.NewManager().Create(context.Background(), src, archivePath); err != nil {
		t.Fatalf("Failed to create bundle for %s: %v", route, err)
	}
	data, err := os.ReadFile(archivePath)
	if err != nil {
		t.Fatalf("Failed to read bundle for %s: %v", route, err)
	}
	ts.AddFile(route, data)
}

// Requests returns the routes requested so far, in order.
func (ts *TestServer) Requests() []string {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return append([]string(nil), ts.requests...)
}

// Authorizations returns the Authorization header of every request, in order.
func (ts *TestServer) Authorizations() []string {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return append([]string(nil), ts.auths...)
}

func (ts *TestServer) add(route string, r response) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.routes[route] = r
}

func (ts *TestServer) serve(w http.ResponseWriter, r *http.Request) {
	route := r.URL.Path
	if r.URL.RawQuery != "" {
		route += "?" + r.URL.RawQuery
	}

	ts.mu.Lock()
	ts.requests = append(ts.requests, route)
	ts.auths = append(ts.auths, r.Header.Get("Authorization"))
	resp, ok := ts.routes[route]
	ts.mu.Unlock()

	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message": "no such route"}`))
		return
	}

	w.Header().Set("Content-Type", resp.contentType)
	if resp.contentType != "application/json" {
		sum := md5.Sum(resp.body)
		w.Header().Set("x-goog-hash", "crc32c=AAAAAA==,md5="+base64.StdEncoding.EncodeToString(sum[:]))
	}
	// ServeContent answers Range requests.
	http.ServeContent(w, r, "", time.Time{}, bytes.NewReader(resp.body))
}
