package download

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/glorpus-work/kagglehub/pkg/errors"
	"github.com/glorpus-work/kagglehub/pkg/handle"
	khttp "github.com/glorpus-work/kagglehub/pkg/http"
)

// ModelSource addresses model variations.
var ModelSource = Source[handle.Model]{
	Name: "model http",
	Latest: func(ctx context.Context, client khttp.Client, h handle.Model) (handle.Model, error) {
		if h.IsVersioned() {
			return h, nil
		}
		var resp struct {
			VersionNumber *int `json:"versionNumber"`
		}
		endpoint := modelPath(h) + "/get"
		if err := client.Get(ctx, endpoint, h, &resp); err != nil {
			return h, err
		}
		if resp.VersionNumber == nil {
			return h, errors.NewBackendError("unable to get the latest version for %s: response has no versionNumber", h)
		}
		return h.WithVersion(*resp.VersionNumber), nil
	},
	BundlePath: func(h handle.Model) string {
		return fmt.Sprintf("%s/%d/download", modelPath(h), h.Version)
	},
	FilePath: func(h handle.Model, p string) string {
		return fmt.Sprintf("%s/%d/download/%s", modelPath(h), h.Version, escapePath(p))
	},
}

// DatasetSource addresses datasets.
var DatasetSource = Source[handle.Dataset]{
	Name: "dataset http",
	Latest: func(ctx context.Context, client khttp.Client, h handle.Dataset) (handle.Dataset, error) {
		if h.IsVersioned() {
			return h, nil
		}
		var resp struct {
			CurrentVersionNumber *int `json:"currentVersionNumber"`
		}
		endpoint := "datasets/view/" + joinSegments(h.Owner, h.Dataset)
		if err := client.Get(ctx, endpoint, h, &resp); err != nil {
			return h, err
		}
		if resp.CurrentVersionNumber == nil {
			return h, errors.NewBackendError("unable to get the latest version for %s: response has no currentVersionNumber", h)
		}
		return h.WithVersion(*resp.CurrentVersionNumber), nil
	},
	BundlePath: func(h handle.Dataset) string {
		return fmt.Sprintf("datasets/download/%s?dataset_version_number=%d", joinSegments(h.Owner, h.Dataset), h.Version)
	},
	FilePath: func(h handle.Dataset, p string) string {
		return fmt.Sprintf("datasets/download/%s/%s?dataset_version_number=%d", joinSegments(h.Owner, h.Dataset), escapePath(p), h.Version)
	},
}

// CompetitionSource addresses competition data. Competitions have no versions.
var CompetitionSource = Source[handle.Competition]{
	Name: "competition http",
	BundlePath: func(h handle.Competition) string {
		return "competitions/data/download-all/" + url.PathEscape(h.Competition)
	},
	FilePath: func(h handle.Competition, p string) string {
		return "competitions/data/download/" + url.PathEscape(h.Competition) + "/" + escapePath(p)
	},
}

// NotebookSource addresses notebook outputs.
var NotebookSource = Source[handle.Notebook]{
	Name:   "notebook output http",
	Latest: latestNotebook,
	BundlePath: func(h handle.Notebook) string {
		return fmt.Sprintf("kernels/output/download/%s?version_number=%d", joinSegments(h.Owner, h.Notebook), h.Version)
	},
	FilePath: func(h handle.Notebook, p string) string {
		return fmt.Sprintf("kernels/output/download/%s/%s?version_number=%d", joinSegments(h.Owner, h.Notebook), escapePath(p), h.Version)
	},
}

// PackageSource addresses packages through their notebook output.
var PackageSource = notebookBacked("package http",
	func(h handle.Package) handle.Notebook { return h.Notebook },
	func(n handle.Notebook) handle.Package { return handle.Package{Notebook: n} })

// UtilityScriptSource addresses utility scripts through their notebook output.
var UtilityScriptSource = notebookBacked("utility script http",
	func(h handle.UtilityScript) handle.Notebook { return h.Notebook },
	func(n handle.Notebook) handle.UtilityScript { return handle.UtilityScript{Notebook: n} })

func latestNotebook(ctx context.Context, client khttp.Client, h handle.Notebook) (handle.Notebook, error) {
	if h.IsVersioned() {
		return h, nil
	}
	var resp struct {
		Metadata struct {
			CurrentVersionNumber *int `json:"currentVersionNumber"`
		} `json:"metadata"`
	}
	query := url.Values{"user_name": {h.Owner}, "kernel_slug": {h.Notebook}}
	if err := client.Get(ctx, "kernels/pull?"+query.Encode(), h, &resp); err != nil {
		return h, err
	}
	if resp.Metadata.CurrentVersionNumber == nil {
		return h, errors.NewBackendError("unable to get the latest version for %s: response has no metadata.currentVersionNumber", h)
	}
	return h.WithVersion(*resp.Metadata.CurrentVersionNumber), nil
}

func notebookBacked[H handle.Handle](name string, unwrap func(H) handle.Notebook, wrap func(handle.Notebook) H) Source[H] {
	return Source[H]{
		Name: name,
		Latest: func(ctx context.Context, client khttp.Client, h H) (H, error) {
			n, err := latestNotebook(ctx, client, unwrap(h))
			if err != nil {
				return h, err
			}
			return wrap(n), nil
		},
		BundlePath: func(h H) string { return NotebookSource.BundlePath(unwrap(h)) },
		FilePath:   func(h H, p string) string { return NotebookSource.FilePath(unwrap(h), p) },
	}
}

func modelPath(h handle.Model) string {
	return "models/" + joinSegments(h.Owner, h.Model, h.Framework, h.Variation)
}

// joinSegments escapes handle parts so that none of them can add path
// segments, a query or a fragment.
func joinSegments(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, part := range parts {
		escaped[i] = url.PathEscape(part)
	}
	return strings.Join(escaped, "/")
}

// escapePath escapes each segment of a slash-separated sub-path.
func escapePath(p string) string {
	segments := strings.Split(path.Clean("/" + p)[1:], "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}
