package colabcache

import (
	"context"
	"time"

	"github.com/glorpus-work/kagglehub/internal/logger"
	"github.com/glorpus-work/kagglehub/pkg/errors"
	"github.com/glorpus-work/kagglehub/pkg/handle"
	"github.com/glorpus-work/kagglehub/pkg/mount"
	"github.com/glorpus-work/kagglehub/pkg/platform"
	"github.com/glorpus-work/kagglehub/pkg/resolver"
)

// Options configures the Colab mount resolvers.
type Options struct {
	// MountFolder is where mounted resources appear. Defaults to
	// platform.DefaultMountFolder.
	MountFolder string
	// Disabled turns the backend off regardless of the environment.
	Disabled bool
	Wait     mount.WaitOptions
	// RequestTimeout bounds each sidecar call.
	RequestTimeout time.Duration
	// Environment defaults to platform.Detect and is consulted on every call.
	Environment func() platform.Environment
}

type modelRequest struct {
	Owner     string `json:"owner"`
	Model     string `json:"model"`
	Framework string `json:"framework"`
	Variation string `json:"variation"`
	Version   int    `json:"version,omitempty"`
}

type datasetRequest struct {
	Owner   string `json:"owner"`
	Dataset string `json:"dataset"`
	Version int    `json:"version,omitempty"`
}

// Resolver mounts handles of one kind through the sidecar.
type Resolver[H handle.Handle] struct {
	name    string
	kind    string
	request func(H) any
	opts    Options
}

var _ resolver.Resolver[handle.Model] = (*Resolver[handle.Model])(nil)

func newResolver[H handle.Handle](name, kind string, request func(H) any, opts Options) *Resolver[H] {
	if opts.MountFolder == "" {
		opts.MountFolder = platform.DefaultMountFolder
	}
	if opts.Environment == nil {
		opts.Environment = platform.Detect
	}
	return &Resolver[H]{name: name, kind: kind, request: request, opts: opts}
}

// NewModelResolver creates the model resolver.
func NewModelResolver(opts Options) *Resolver[handle.Model] {
	return newResolver("colab cache model", modelsKind, func(h handle.Model) any {
		return modelRequest{Owner: h.Owner, Model: h.Model, Framework: h.Framework, Variation: h.Variation, Version: h.Version}
	}, opts)
}

// NewDatasetResolver creates the dataset resolver.
func NewDatasetResolver(opts Options) *Resolver[handle.Dataset] {
	return newResolver("colab cache dataset", datasetsKind, func(h handle.Dataset) any {
		return datasetRequest{Owner: h.Owner, Dataset: h.Dataset, Version: h.Version}
	}, opts)
}

// Name implements resolver.Resolver.
func (r *Resolver[H]) Name() string { return r.name }

// IsSupported probes the sidecar. Transport failures are returned as is and
// stop the registry.
func (r *Resolver[H]) IsSupported(ctx context.Context, h H, _ string) error {
	if r.opts.Disabled {
		return errors.Wrapf(errors.ErrNotSupported, "disabled by %s", platform.DisableColabCacheEnv)
	}
	env := r.opts.Environment()
	if !env.InColab() {
		return errors.Wrap(errors.ErrNotSupported, "not running in Colab")
	}
	if env.ColabRuntimeAddr == "" {
		return errors.Wrapf(errors.ErrNotSupported, "%s is not set", platform.ColabRuntimeAddrEnv)
	}

	ok, err := NewClient(env.ColabRuntimeAddr, r.opts.RequestTimeout).IsSupported(ctx, r.kind, r.request(h))
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrapf(errors.ErrNotSupported, "%s is not available in the Colab cache", h)
	}
	return nil
}

// Resolve mounts h, waits for it and returns the local path of path inside it.
func (r *Resolver[H]) Resolve(ctx context.Context, h H, path string, opts resolver.Options) (string, error) {
	if opts.ForceDownload {
		logger.Info("Ignoring force download: mounted resources are always current", logger.Fields{"handle": h.String()})
	}
	env := r.opts.Environment()
	if env.ColabRuntimeAddr == "" {
		return "", errors.Wrapf(errors.ErrNotSupported, "%s is not set", platform.ColabRuntimeAddrEnv)
	}

	logger.Info("Mounting from Colab cache", logger.Fields{"handle": h.String()})
	slug, err := NewClient(env.ColabRuntimeAddr, r.opts.RequestTimeout).Mount(ctx, r.kind, r.request(h))
	if err != nil {
		return "", err
	}
	return mount.Locate(ctx, r.opts.MountFolder, slug, path, r.opts.Wait)
}
