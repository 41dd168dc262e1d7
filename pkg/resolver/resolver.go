// Package resolver dispatches a handle to the most specific backend able to
// materialize it locally.
//
//go:generate mockgen -destination=mocks/resolver.go . Resolver
package resolver

import (
	"context"

	"github.com/glorpus-work/kagglehub/pkg/handle"
)

// Options tune a single resolution.
type Options struct {
	// ForceDownload discards any cached copy first. Mount backends only log it.
	ForceDownload bool
}

// Resolver produces a local path for handles of type H.
type Resolver[H handle.Handle] interface {
	// Name identifies the backend in diagnostics.
	Name() string

	// IsSupported returns nil when the backend can serve (h, path). An error
	// wrapping errors.ErrNotSupported means "not applicable here" and carries
	// the reason; any other error aborts the resolution.
	IsSupported(ctx context.Context, h H, path string) error

	// Resolve returns the local path of the whole bundle (path == "") or of
	// the single file path inside it.
	Resolve(ctx context.Context, h H, path string, opts Options) (string, error)
}
