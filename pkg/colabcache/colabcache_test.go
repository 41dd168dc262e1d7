package colabcache

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/kagglehub/pkg/errors"
	"github.com/glorpus-work/kagglehub/pkg/handle"
	"github.com/glorpus-work/kagglehub/pkg/mount"
	"github.com/glorpus-work/kagglehub/pkg/platform"
	"github.com/glorpus-work/kagglehub/pkg/resolver"
)

var testModel = handle.Model{Owner: "acme", Model: "net", Framework: "tf", Variation: "base", Version: 2}

func colabEnv(addr string) func() platform.Environment {
	return func() platform.Environment {
		return platform.Environment{ColabReleaseTag: "release-colab", ColabRuntimeAddr: addr}
	}
}

// sidecar serves the kagglehub runtime API. Resources in supported are
// mounted below base under their slug.
type sidecar struct {
	mu        sync.Mutex
	base      string
	supported map[string]string
	bodies    []map[string]any
}

func (s *sidecar) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)
	s.mu.Lock()
	s.bodies = append(s.bodies, body)
	s.mu.Unlock()

	key, _ := body["owner"].(string)
	slug, ok := s.supported[key]
	if !ok {
		http.NotFound(w, r)
		return
	}
	switch {
	case strings.HasSuffix(r.URL.Path, "/is_supported"):
		w.WriteHeader(http.StatusOK)
	case strings.HasSuffix(r.URL.Path, "/mount"):
		_ = os.MkdirAll(filepath.Join(s.base, slug), 0o755)
		_ = json.NewEncoder(w).Encode(map[string]string{"slug": slug})
	default:
		http.Error(w, "unexpected path", http.StatusBadRequest)
	}
}

func (s *sidecar) recorded() []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]any(nil), s.bodies...)
}

func newSidecar(t *testing.T, base string, supported map[string]string) (*sidecar, string) {
	t.Helper()
	sc := &sidecar{base: base, supported: supported}
	srv := httptest.NewServer(sc)
	t.Cleanup(srv.Close)
	return sc, strings.TrimPrefix(srv.URL, "http://")
}

func TestResolver_IsSupported(t *testing.T) {
	_, addr := newSidecar(t, t.TempDir(), map[string]string{"acme": "net-tf-base-2"})
	ctx := context.Background()

	tests := []struct {
		name    string
		opts    Options
		h       handle.Model
		wantErr error
	}{
		{name: "supported", opts: Options{Environment: colabEnv(addr)}, h: testModel},
		{name: "unknown to sidecar", opts: Options{Environment: colabEnv(addr)}, h: handle.Model{Owner: "other", Model: "m", Framework: "f", Variation: "v"}, wantErr: errors.ErrNotSupported},
		{name: "disabled", opts: Options{Disabled: true, Environment: colabEnv(addr)}, h: testModel, wantErr: errors.ErrNotSupported},
		{name: "not colab", opts: Options{Environment: func() platform.Environment { return platform.Environment{} }}, h: testModel, wantErr: errors.ErrNotSupported},
		{name: "no runtime address", opts: Options{Environment: colabEnv("")}, h: testModel, wantErr: errors.ErrNotSupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewModelResolver(tt.opts).IsSupported(ctx, tt.h, "")
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestResolver_ProbeFailurePropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := NewDatasetResolver(Options{Environment: colabEnv(srv.URL)}).
		IsSupported(context.Background(), handle.Dataset{Owner: "o", Dataset: "d"}, "")
	require.ErrorIs(t, err, errors.ErrBackend)
	assert.NotErrorIs(t, err, errors.ErrNotSupported)
}

func TestResolver_MountModel(t *testing.T) {
	base := t.TempDir()
	sc, addr := newSidecar(t, base, map[string]string{"acme": "net-tf-base-2"})

	res := NewModelResolver(Options{
		MountFolder: base,
		Wait:        mount.WaitOptions{Interval: 10 * time.Millisecond, Timeout: 5 * time.Second},
		Environment: colabEnv(addr),
	})
	got, err := res.Resolve(context.Background(), testModel, "", resolver.Options{ForceDownload: true})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "net-tf-base-2"), got)

	bodies := sc.recorded()
	require.Len(t, bodies, 1)
	assert.Equal(t, map[string]any{
		"owner":     "acme",
		"model":     "net",
		"framework": "tf",
		"variation": "base",
		"version":   float64(2),
	}, bodies[0])
}

func TestResolver_DatasetSubPath(t *testing.T) {
	base := t.TempDir()
	sc, addr := newSidecar(t, base, map[string]string{"o": "o-d"})
	require.NoError(t, os.MkdirAll(filepath.Join(base, "o-d"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(base, "o-d", "a.csv"), []byte("1"), 0o644))

	res := NewDatasetResolver(Options{MountFolder: base, Environment: colabEnv(addr)})
	h := handle.Dataset{Owner: "o", Dataset: "d"}

	got, err := res.Resolve(context.Background(), h, "a.csv", resolver.Options{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "o-d", "a.csv"), got)

	_, err = res.Resolve(context.Background(), h, "b.csv", resolver.Options{})
	require.ErrorIs(t, err, errors.ErrPathNotInMount)

	assert.NotContains(t, sc.recorded()[0], "version")
}

func TestClient_MountWithoutSlug(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Mount(context.Background(), datasetsKind, datasetRequest{Owner: "o", Dataset: "d"})
	require.ErrorIs(t, err, errors.ErrBackend)
	assert.Contains(t, err.Error(), "slug")
}
