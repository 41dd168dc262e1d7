package download

import (
	"context"

	"github.com/glorpus-work/kagglehub/pkg/handle"
	khttp "github.com/glorpus-work/kagglehub/pkg/http"
)

// Extractor unpacks a downloaded bundle archive into a directory.
type Extractor interface {
	ExtractAll(ctx context.Context, archivePath, destDir string) error
}

// Source describes how handles of one kind are addressed on the platform API.
type Source[H handle.Handle] struct {
	// Name identifies the resolver in diagnostics.
	Name string
	// Latest pins an unversioned handle to its current version. Nil for
	// kinds without versions.
	Latest func(ctx context.Context, client khttp.Client, h H) (H, error)
	// BundlePath is the API path of the archived bundle.
	BundlePath func(h H) string
	// FilePath is the API path of a single file inside the bundle.
	FilePath func(h H, path string) string
}
