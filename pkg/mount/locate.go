package mount

import (
	"context"
	"os"
	"path/filepath"

	"github.com/glorpus-work/kagglehub/pkg/errors"
	"github.com/glorpus-work/kagglehub/pkg/fsutil"
)

// Locate waits for the resource mounted as slug below base and returns the
// local path of subPath inside it, or the mount root for an empty subPath.
func Locate(ctx context.Context, base, slug, subPath string, opts WaitOptions) (string, error) {
	root := filepath.Join(base, slug)
	if slug == "" || !fsutil.IsWithin(base, root) || root == filepath.Clean(base) {
		return "", errors.NewBackendError("invalid mount slug %q", slug)
	}
	if err := WaitForPath(ctx, root, opts); err != nil {
		return "", err
	}
	if subPath == "" {
		return root, nil
	}

	target := filepath.Join(root, filepath.FromSlash(subPath))
	if filepath.IsAbs(subPath) || !fsutil.IsWithin(root, target) {
		return "", errors.Wrapf(errors.ErrInvalidPath, "%q escapes the mounted resource", subPath)
	}
	if _, err := os.Stat(target); err != nil {
		return "", errors.Wrapf(errors.ErrPathNotInMount, "%q is not present in the mounted resource at %s", subPath, root)
	}
	return target, nil
}
