//go:generate mockgen -destination=mocks/http.go . Client
package http

import (
	"context"

	"github.com/glorpus-work/kagglehub/pkg/handle"
)

// Client defines the interface for platform API operations. Paths are
// relative to <endpoint>/api/v1/ and may carry a query string. The handle, when
// given, tailors error messages to the resource being fetched.
type Client interface {
	// Get issues an authenticated GET and decodes the JSON response into out.
	Get(ctx context.Context, path string, h handle.Handle, out any) error

	// DownloadFile streams the response of path into dest. An existing dest is
	// resumed when the server supports byte ranges. The content is verified
	// against the MD5 digest of the x-goog-hash header when present.
	DownloadFile(ctx context.Context, path, dest string, h handle.Handle) error
}
