package kagglecache

import (
	"context"
	"fmt"
	"time"

	"github.com/glorpus-work/kagglehub/internal/logger"
	"github.com/glorpus-work/kagglehub/pkg/errors"
	"github.com/glorpus-work/kagglehub/pkg/handle"
	"github.com/glorpus-work/kagglehub/pkg/mount"
	"github.com/glorpus-work/kagglehub/pkg/platform"
	"github.com/glorpus-work/kagglehub/pkg/resolver"
)

// Options configures the Kaggle mount resolvers.
type Options struct {
	// MountFolder is where attached resources appear. Defaults to
	// platform.DefaultMountFolder.
	MountFolder string
	// Disabled turns the backend off regardless of the environment.
	Disabled bool
	Wait     mount.WaitOptions
	// RequestTimeout bounds each proxy call.
	RequestTimeout time.Duration
	// Environment defaults to platform.Detect and is consulted on every call.
	Environment func() platform.Environment
}

// Resolver attaches handles of one kind to the running notebook.
type Resolver[H handle.Handle] struct {
	name   string
	attach func(H) any
	opts   Options
}

var _ resolver.Resolver[handle.Dataset] = (*Resolver[handle.Dataset])(nil)

func newResolver[H handle.Handle](name string, attach func(H) any, opts Options) *Resolver[H] {
	if opts.MountFolder == "" {
		opts.MountFolder = platform.DefaultMountFolder
	}
	if opts.Environment == nil {
		opts.Environment = platform.Detect
	}
	return &Resolver[H]{name: name, attach: attach, opts: opts}
}

// NewModelResolver creates the model resolver.
func NewModelResolver(opts Options) *Resolver[handle.Model] {
	return newResolver("kaggle cache model", attachModel, opts)
}

// NewDatasetResolver creates the dataset resolver.
func NewDatasetResolver(opts Options) *Resolver[handle.Dataset] {
	return newResolver("kaggle cache dataset", attachDataset, opts)
}

// NewCompetitionResolver creates the competition resolver.
func NewCompetitionResolver(opts Options) *Resolver[handle.Competition] {
	return newResolver("kaggle cache competition", attachCompetition, opts)
}

// NewNotebookResolver creates the notebook output resolver.
func NewNotebookResolver(opts Options) *Resolver[handle.Notebook] {
	return newResolver("kaggle cache notebook output", attachNotebook, opts)
}

// NewPackageResolver creates the package resolver. Packages attach as their notebook.
func NewPackageResolver(opts Options) *Resolver[handle.Package] {
	return newResolver("kaggle cache package", func(h handle.Package) any { return attachNotebook(h.Notebook) }, opts)
}

// NewUtilityScriptResolver creates the utility script resolver.
func NewUtilityScriptResolver(opts Options) *Resolver[handle.UtilityScript] {
	return newResolver("kaggle cache utility script", func(h handle.UtilityScript) any { return attachNotebook(h.Notebook) }, opts)
}

// Name implements resolver.Resolver.
func (r *Resolver[H]) Name() string { return r.name }

// IsSupported reports whether the process runs in a Kaggle notebook with a
// usable token. It makes no network calls.
func (r *Resolver[H]) IsSupported(_ context.Context, _ H, _ string) error {
	if r.opts.Disabled {
		return errors.Wrapf(errors.ErrNotSupported, "disabled by %s", platform.DisableKaggleCacheEnv)
	}
	env := r.opts.Environment()
	if !env.InKaggleNotebook() {
		return errors.Wrap(errors.ErrNotSupported, "not running in a Kaggle notebook")
	}
	if err := checkToken(env.UserSecretsToken, time.Now()); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrNotSupported, err)
	}
	return nil
}

// Resolve attaches h, waits for it to be mounted and returns the local path of
// path inside the mount.
func (r *Resolver[H]) Resolve(ctx context.Context, h H, path string, opts resolver.Options) (string, error) {
	if opts.ForceDownload {
		logger.Info("Ignoring force download: mounted resources are always current", logger.Fields{"handle": h.String()})
	}

	client, err := NewClient(r.opts.Environment(), r.opts.RequestTimeout)
	if err != nil {
		return "", err
	}

	var result struct {
		MountSlug string `json:"mountSlug"`
	}
	logger.Info("Attaching to notebook", logger.Fields{"handle": h.String()})
	if err := client.Post(ctx, AttachRequest, r.attach(h), &result); err != nil {
		return "", err
	}
	if result.MountSlug == "" {
		return "", errors.NewBackendError("%s response for %s has no mountSlug", AttachRequest, h)
	}

	return mount.Locate(ctx, r.opts.MountFolder, result.MountSlug, path, r.opts.Wait)
}
