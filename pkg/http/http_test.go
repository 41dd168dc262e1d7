package http

import (
	"bytes"
	"context"
	"crypto/md5" //nolint:gosec
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/glorpus-work/kagglehub/internal/logger"
	"github.com/glorpus-work/kagglehub/pkg/auth"
	mock_auth "github.com/glorpus-work/kagglehub/pkg/auth/mocks"
	"github.com/glorpus-work/kagglehub/pkg/errors"
	"github.com/glorpus-work/kagglehub/pkg/handle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var testModel = handle.Model{Owner: "acme", Model: "net", Framework: "tf", Variation: "base", Version: 2}

func newTestClient(t *testing.T, endpoint string, opts ...func(*Options)) *HTTPClient {
	t.Helper()
	o := Options{Endpoint: endpoint, Auth: auth.BasicAuth{Username: "user", Password: "key"}}
	for _, fn := range opts {
		fn(&o)
	}
	c, err := NewHTTPClient(o)
	require.NoError(t, err)
	return c
}

func md5Header(data []byte) string {
	sum := md5.Sum(data) //nolint:gosec
	return "crc32c=AAAAAA==,md5=" + base64.StdEncoding.EncodeToString(sum[:])
}

func payload(size int) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i * 7 % 251)
	}
	return data
}

func TestNewHTTPClient_InvalidEndpoint(t *testing.T) {
	_, err := NewHTTPClient(Options{Endpoint: "not a url"})
	assert.ErrorIs(t, err, errors.ErrEmptyEndpoint)
}

func TestGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/models/acme/net/tf/base/get", r.URL.Path)
		user, key, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "user", user)
		assert.Equal(t, "key", key)
		assert.Equal(t, "kagglehub-go/"+ClientVersion, r.UserAgent())
		_, _ = w.Write([]byte(`{"versionNumber": 7}`))
	}))
	defer srv.Close()

	var out struct {
		VersionNumber int `json:"versionNumber"`
	}
	err := newTestClient(t, srv.URL).Get(context.Background(), "models/acme/net/tf/base/get", testModel, &out)
	require.NoError(t, err)
	assert.Equal(t, 7, out.VersionNumber)
}

func TestGet_PreservesQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/kernels/pull", r.URL.Path)
		assert.Equal(t, "acme", r.URL.Query().Get("user_name"))
		assert.Equal(t, "eda", r.URL.Query().Get("kernel_slug"))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	var out map[string]any
	err := newTestClient(t, srv.URL).Get(context.Background(), "kernels/pull?user_name=acme&kernel_slug=eda", nil, &out)
	require.NoError(t, err)
}

func TestGet_ErrorMessages(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		h          handle.Handle
		sentinel   error
		contains   []string
		notContain string
	}{
		{
			name:     "not found",
			status:   http.StatusNotFound,
			h:        testModel,
			sentinel: errors.ErrNotFound,
			contains: []string{"404 Client Error", "Resource not found at URL", "/models/acme/net/tf/base/2", "correct resource identifiers", "no such model"},
		},
		{
			name:       "forbidden model",
			status:     http.StatusForbidden,
			h:          testModel,
			sentinel:   errors.ErrPermissionDenied,
			contains:   []string{"don't have permission", "requiring consent"},
			notContain: "rules",
		},
		{
			name:     "unauthorized competition",
			status:   http.StatusUnauthorized,
			h:        handle.Competition{Competition: "titanic"},
			sentinel: errors.ErrPermissionDenied,
			contains: []string{"accepted the competition rules", "/competitions/titanic/rules"},
		},
		{
			name:     "server error",
			status:   http.StatusInternalServerError,
			h:        testModel,
			contains: []string{"500 Server Error", "no such model"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"code": 1, "message": "no such model"}`))
			}))
			defer srv.Close()
			t.Setenv(handle.EndpointEnv, srv.URL)

			var out map[string]any
			err := newTestClient(t, srv.URL).Get(context.Background(), "anything", tt.h, &out)
			require.Error(t, err)

			var httpErr *errors.HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, tt.status, httpErr.StatusCode)
			assert.Equal(t, tt.h.URL(), httpErr.URL)
			if tt.sentinel != nil {
				assert.ErrorIs(t, err, tt.sentinel)
			}
			for _, s := range tt.contains {
				assert.Contains(t, err.Error(), s)
			}
			if tt.notContain != "" {
				assert.NotContains(t, err.Error(), tt.notContain)
			}
		})
	}
}

func TestDownloadFile(t *testing.T) {
	data := payload(3*chunkSize + 17)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/models/acme/net/tf/base/2/download", r.URL.Path)
		w.Header().Set(googHashHeader, md5Header(data))
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "nested", "2.archive")
	err := newTestClient(t, srv.URL).DownloadFile(context.Background(), "models/acme/net/tf/base/2/download", dest, testModel)
	require.NoError(t, err)

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(data, got))
}

func TestDownloadFile_Resume(t *testing.T) {
	data := payload(2*chunkSize + 321)
	const partial = chunkSize + 5

	var mu sync.Mutex
	var ranges []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		ranges = append(ranges, r.Header.Get("Range"))
		mu.Unlock()
		w.Header().Set(googHashHeader, md5Header(data))
		http.ServeContent(w, r, "blob", time.Time{}, bytes.NewReader(data))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "file.bin")
	require.NoError(t, os.WriteFile(dest, data[:partial], 0o644))

	err := newTestClient(t, srv.URL).DownloadFile(context.Background(), "datasets/download/acme/data/file.bin", dest, nil)
	require.NoError(t, err)

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(data, got), "resumed file must equal a full download")

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, ranges, 2)
	assert.Empty(t, ranges[0])
	assert.Equal(t, "bytes=1048581-", ranges[1])
}

func TestDownloadFile_ResumeFollowsRedirectWithoutCredentials(t *testing.T) {
	data := payload(4096)
	var rangeAuth string
	var rangeSeen bool
	storage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Range") != "" {
			rangeSeen = true
			rangeAuth = r.Header.Get("Authorization")
		}
		w.Header().Set(googHashHeader, md5Header(data))
		http.ServeContent(w, r, "blob", time.Time{}, bytes.NewReader(data))
	}))
	defer storage.Close()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, storage.URL+"/bucket/blob", http.StatusFound)
	}))
	defer api.Close()

	dest := filepath.Join(t.TempDir(), "file.bin")
	require.NoError(t, os.WriteFile(dest, data[:1000], 0o644))

	require.NoError(t, newTestClient(t, api.URL).DownloadFile(context.Background(), "competitions/data/download/x/file.bin", dest, nil))

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.True(t, rangeSeen, "range request goes to the resolved URL")
	assert.Empty(t, rangeAuth, "credentials stay on the API host")
}

func TestDownloadFile_RestartsWithoutRangeSupport(t *testing.T) {
	data := []byte("the complete and correct content")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Range"))
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "file.bin")
	require.NoError(t, os.WriteFile(dest, []byte("stale partial bytes that are longer than nothing"), 0o644))

	require.NoError(t, newTestClient(t, srv.URL).DownloadFile(context.Background(), "x", dest, nil))
	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestDownloadFile_AlreadyComplete(t *testing.T) {
	data := payload(2048)
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Header().Set(googHashHeader, md5Header(data))
		http.ServeContent(w, r, "blob", time.Time{}, bytes.NewReader(data))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "file.bin")
	require.NoError(t, os.WriteFile(dest, data, 0o644))

	require.NoError(t, newTestClient(t, srv.URL).DownloadFile(context.Background(), "x", dest, nil))
	assert.Equal(t, int32(1), requests.Load())
	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestDownloadFile_ChecksumMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(googHashHeader, md5Header([]byte("something else")))
		_, _ = w.Write([]byte("corrupted payload"))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "file.bin")
	err := newTestClient(t, srv.URL).DownloadFile(context.Background(), "x", dest, nil)
	require.Error(t, err)

	var corruption *errors.DataCorruptionError
	require.ErrorAs(t, err, &corruption)
	assert.ErrorIs(t, err, errors.ErrDataCorruption)
	assert.Equal(t, dest, corruption.Path)
	assert.NoFileExists(t, dest, "corrupted file is removed")
}

func TestDownloadFile_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "file.bin")
	err := newTestClient(t, srv.URL).DownloadFile(context.Background(), "x", dest, testModel)
	assert.ErrorIs(t, err, errors.ErrNotFound)
	assert.NoFileExists(t, dest)
}

func TestDownloadFile_StalledBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1000")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("first bytes"))
		w.(http.Flusher).Flush()
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, func(o *Options) { o.ReadTimeout = 100 * time.Millisecond })
	err := client.DownloadFile(context.Background(), "x", filepath.Join(t.TempDir(), "f"), nil)
	assert.ErrorIs(t, err, errors.ErrReadTimeout)
}

func TestDownloadFile_Progress(t *testing.T) {
	data := payload(10000)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	var progress bytes.Buffer
	client := newTestClient(t, srv.URL, func(o *Options) {
		o.ShowProgress = true
		o.ProgressOutput = &progress
	})
	dest := filepath.Join(t.TempDir(), "f")
	require.NoError(t, client.DownloadFile(context.Background(), "x", dest, nil))

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestCredentialsOnlyForEndpointHost(t *testing.T) {
	ctrl := gomock.NewController(t)
	authenticator := mock_auth.NewMockAuthenticator(ctrl)
	authenticator.EXPECT().Apply(gomock.Any()).Return(nil).Times(1)

	other := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer other.Close()
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer api.Close()

	client := newTestClient(t, api.URL, func(o *Options) { o.Auth = authenticator })

	resp, err := client.do(context.Background(), client.apiURL("x"), nil)
	require.NoError(t, err)
	_ = resp.Body.Close()

	resp, err = client.do(context.Background(), other.URL+"/blob", nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
}

func TestCheckHubVersion(t *testing.T) {
	var buf bytes.Buffer
	logger.SetTestOutput(&buf)
	defer logger.UnsetTestOutput()
	logger.InitLogger("debug", logger.FormatText)

	advertised := "99.0.0"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(HubVersionHeader, advertised)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	var out map[string]any
	require.NoError(t, client.Get(context.Background(), "a", nil, &out))
	require.NoError(t, client.Get(context.Background(), "b", nil, &out))
	assert.Equal(t, 1, strings.Count(buf.String(), "newer kagglehub client"), "warned exactly once")

	buf.Reset()
	advertised = "0.0.1"
	require.NoError(t, newTestClient(t, srv.URL).Get(context.Background(), "c", nil, &out))
	assert.NotContains(t, buf.String(), "newer kagglehub client")
}

func TestMD5FromGoogHash(t *testing.T) {
	tests := []struct {
		values []string
		want   string
	}{
		{[]string{"crc32c=n03x6A==,md5=Ojk9c3dhfxgoKVVHYwFbHQ=="}, "Ojk9c3dhfxgoKVVHYwFbHQ=="},
		{[]string{"crc32c=n03x6A==", "md5=abc="}, "abc="},
		{[]string{"crc32c=n03x6A=="}, ""},
		{nil, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, md5FromGoogHash(tt.values), tt.values)
	}
}
