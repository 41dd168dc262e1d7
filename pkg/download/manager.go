package download

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/kagglehub/internal/logger"
	"github.com/glorpus-work/kagglehub/pkg/cache"
	"github.com/glorpus-work/kagglehub/pkg/errors"
	"github.com/glorpus-work/kagglehub/pkg/fsutil"
	"github.com/glorpus-work/kagglehub/pkg/handle"
	khttp "github.com/glorpus-work/kagglehub/pkg/http"
	"github.com/glorpus-work/kagglehub/pkg/resolver"
)

// HTTPResolver fetches handles of one kind from the platform API into the
// local cache. It supports every request and is meant to sit first in a
// registry, below the environment-specific backends.
type HTTPResolver[H handle.Handle] struct {
	source    Source[H]
	client    khttp.Client
	cache     cache.Manager
	extractor Extractor
}

var _ resolver.Resolver[handle.Model] = (*HTTPResolver[handle.Model])(nil)

// New creates an HTTP resolver for the handles described by source.
func New[H handle.Handle](source Source[H], client khttp.Client, store cache.Manager, extractor Extractor) *HTTPResolver[H] {
	return &HTTPResolver[H]{
		source:    source,
		client:    client,
		cache:     store,
		extractor: extractor,
	}
}

// Name implements resolver.Resolver.
func (r *HTTPResolver[H]) Name() string { return r.source.Name }

// IsSupported implements resolver.Resolver. The HTTP backend handles everything.
func (r *HTTPResolver[H]) IsSupported(context.Context, H, string) error { return nil }

// Resolve returns the local path of (h, path), downloading it on a cache miss.
// Unversioned handles are pinned to the latest version before the lookup.
// A path that cleans to the resource root, such as ".", selects the bundle.
func (r *HTTPResolver[H]) Resolve(ctx context.Context, h H, path string, opts resolver.Options) (string, error) {
	path, err := cleanSubPath(path)
	if err != nil {
		return "", err
	}

	if r.source.Latest != nil {
		pinned, err := r.source.Latest(ctx, r.client, h)
		if err != nil {
			return "", err
		}
		h = pinned
	}

	if opts.ForceDownload {
		if _, err := r.cache.Delete(h, path); err != nil {
			return "", err
		}
	}

	cached, ok, err := r.cache.Load(h, path)
	if err != nil {
		return "", err
	}
	if ok {
		logger.Debug("Cache hit", logger.Fields{"handle": h.String(), "path": cached})
		return cached, nil
	}

	if path != "" {
		return r.fetchFile(ctx, h, path)
	}
	return r.fetchBundle(ctx, h)
}

func (r *HTTPResolver[H]) fetchFile(ctx context.Context, h H, path string) (string, error) {
	dest, err := r.cache.CachedPath(h, path)
	if err != nil {
		return "", err
	}
	if err := fsutil.EnsureFileDir(dest); err != nil {
		return "", errors.Wrapf(err, "failed to create directory for %s", dest)
	}

	logger.Info("Downloading file", logger.Fields{"handle": h.String(), "path": path})
	if err := r.client.DownloadFile(ctx, r.source.FilePath(h, path), dest, h); err != nil {
		return "", err
	}
	if err := r.cache.MarkComplete(h, path); err != nil {
		return "", err
	}
	return dest, nil
}

func (r *HTTPResolver[H]) fetchBundle(ctx context.Context, h H) (string, error) {
	dest, err := r.cache.CachedPath(h, "")
	if err != nil {
		return "", err
	}
	archivePath, err := r.cache.ArchivePath(h)
	if err != nil {
		return "", err
	}
	if err := fsutil.EnsureFileDir(archivePath); err != nil {
		return "", errors.Wrapf(err, "failed to create directory for %s", archivePath)
	}

	logger.Info("Downloading bundle", logger.Fields{"handle": h.String()})
	// A failed transfer leaves the partial archive in place to resume from.
	if err := r.client.DownloadFile(ctx, r.source.BundlePath(h), archivePath, h); err != nil {
		return "", err
	}

	// Leftovers of an interrupted extraction must not mix with the new content.
	if err := os.RemoveAll(dest); err != nil {
		return "", errors.Wrapf(err, "failed to clear %s", dest)
	}
	logger.Debug("Extracting archive", logger.Fields{"archive": archivePath, "dest": dest})
	if err := r.extractor.ExtractAll(ctx, archivePath, dest); err != nil {
		_ = os.Remove(archivePath)
		_ = os.RemoveAll(dest)
		return "", err
	}
	if err := os.Remove(archivePath); err != nil {
		logger.Warn("Failed to remove archive", logger.Fields{"archive": archivePath, "error": err.Error()})
	}

	if err := r.cache.MarkComplete(h, ""); err != nil {
		return "", err
	}
	return dest, nil
}

// cleanSubPath returns p in clean slash form, "" for the resource root, or
// ErrInvalidPath when p is absolute or climbs out of the resource.
func cleanSubPath(p string) (string, error) {
	if p == "" {
		return "", nil
	}
	if strings.HasPrefix(p, "/") || filepath.IsAbs(p) {
		return "", errors.Wrapf(errors.ErrInvalidPath, "%q must be relative", p)
	}
	clean := path.Clean(filepath.ToSlash(p))
	switch {
	case clean == ".":
		return "", nil
	case clean == ".." || strings.HasPrefix(clean, "../"):
		return "", errors.Wrapf(errors.ErrInvalidPath, "%q escapes the resource directory", p)
	}
	return clean, nil
}
