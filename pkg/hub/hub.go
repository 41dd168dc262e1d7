// Package hub is the public entry point of kagglehub. A Hub parses handle
// strings, dispatches them through one resolver registry per resource kind
// and returns local paths.
package hub

import (
	"context"
	"io"
	"os"

	"github.com/glorpus-work/kagglehub/pkg/archive"
	"github.com/glorpus-work/kagglehub/pkg/cache"
	"github.com/glorpus-work/kagglehub/pkg/colabcache"
	"github.com/glorpus-work/kagglehub/pkg/config"
	"github.com/glorpus-work/kagglehub/pkg/download"
	"github.com/glorpus-work/kagglehub/pkg/handle"
	khttp "github.com/glorpus-work/kagglehub/pkg/http"
	"github.com/glorpus-work/kagglehub/pkg/kagglecache"
	"github.com/glorpus-work/kagglehub/pkg/resolver"
	"github.com/glorpus-work/kagglehub/pkg/tracking"
)

// Hub owns the registries, the cache and the API client.
type Hub struct {
	cache   cache.Manager
	tracker *tracking.Tracker

	models         *resolver.Registry[handle.Model]
	datasets       *resolver.Registry[handle.Dataset]
	competitions   *resolver.Registry[handle.Competition]
	notebooks      *resolver.Registry[handle.Notebook]
	packages       *resolver.Registry[handle.Package]
	utilityScripts *resolver.Registry[handle.UtilityScript]
}

// Option adjusts a single download call.
type Option func(*callOptions)

type callOptions struct {
	path  string
	force bool
}

// WithPath requests a single file of the resource instead of the whole bundle.
func WithPath(path string) Option {
	return func(o *callOptions) { o.path = path }
}

// WithForceDownload discards any cached copy before resolving. Mount backends
// ignore it.
func WithForceDownload() Option {
	return func(o *callOptions) { o.force = true }
}

// New builds a Hub from cfg. A nil cfg uses the defaults with the environment
// overrides applied. Per kind, the HTTP resolver is registered first so that
// the environment backends registered after it take precedence when they apply.
func New(cfg *config.Config) (*Hub, error) {
	return NewWithProgress(cfg, os.Stderr)
}

// NewWithProgress is New with an explicit progress bar destination.
func NewWithProgress(cfg *config.Config, progress io.Writer) (*Hub, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
		if err := cfg.ApplyEnv(); err != nil {
			return nil, err
		}
	}
	client, err := khttp.NewHTTPClient(khttp.Options{
		Endpoint:       cfg.Settings.Endpoint,
		Auth:           cfg.Authenticator(),
		ConnectTimeout: cfg.Settings.ConnectTimeout,
		ReadTimeout:    cfg.Settings.ReadTimeout,
		ShowProgress:   cfg.Settings.ShowProgress,
		ProgressOutput: progress,
	})
	if err != nil {
		return nil, err
	}
	store := cache.NewManagerFunc(cfg.CacheRoot)
	extractor := archive.NewManager()

	kaggle := kagglecache.Options{
		MountFolder: cfg.Settings.KaggleMountFolder,
		Disabled:    cfg.Settings.DisableKaggleCache,
		Wait:        cfg.MountWait(),
	}
	colab := colabcache.Options{
		MountFolder: cfg.Settings.ColabMountFolder,
		Disabled:    cfg.Settings.DisableColabCache,
		Wait:        cfg.MountWait(),
	}

	return &Hub{
		cache:   store,
		tracker: tracking.NewTracker(),
		models: resolver.NewRegistry[handle.Model](
			download.New(download.ModelSource, client, store, extractor),
			colabcache.NewModelResolver(colab),
			kagglecache.NewModelResolver(kaggle),
		),
		datasets: resolver.NewRegistry[handle.Dataset](
			download.New(download.DatasetSource, client, store, extractor),
			colabcache.NewDatasetResolver(colab),
			kagglecache.NewDatasetResolver(kaggle),
		),
		competitions: resolver.NewRegistry[handle.Competition](
			download.New(download.CompetitionSource, client, store, extractor),
			kagglecache.NewCompetitionResolver(kaggle),
		),
		notebooks: resolver.NewRegistry[handle.Notebook](
			download.New(download.NotebookSource, client, store, extractor),
			kagglecache.NewNotebookResolver(kaggle),
		),
		packages: resolver.NewRegistry[handle.Package](
			download.New(download.PackageSource, client, store, extractor),
			kagglecache.NewPackageResolver(kaggle),
		),
		utilityScripts: resolver.NewRegistry[handle.UtilityScript](
			download.New(download.UtilityScriptSource, client, store, extractor),
			kagglecache.NewUtilityScriptResolver(kaggle),
		),
	}, nil
}

// Cache returns the cache store used by the hub.
func (h *Hub) Cache() cache.Manager { return h.cache }

// Tracker returns the handles resolved so far.
func (h *Hub) Tracker() *tracking.Tracker { return h.tracker }

// ModelDownload resolves a model handle "owner/model/framework/variation[/version]".
func (h *Hub) ModelDownload(ctx context.Context, ref string, opts ...Option) (string, error) {
	return resolve(ctx, h, h.models, handle.ParseModel, ref, opts)
}

// DatasetDownload resolves a dataset handle "owner/dataset[/version]".
func (h *Hub) DatasetDownload(ctx context.Context, ref string, opts ...Option) (string, error) {
	return resolve(ctx, h, h.datasets, handle.ParseDataset, ref, opts)
}

// CompetitionDownload resolves a competition slug.
func (h *Hub) CompetitionDownload(ctx context.Context, ref string, opts ...Option) (string, error) {
	return resolve(ctx, h, h.competitions, handle.ParseCompetition, ref, opts)
}

// NotebookOutputDownload resolves the output of a notebook "owner/notebook[/version]".
func (h *Hub) NotebookOutputDownload(ctx context.Context, ref string, opts ...Option) (string, error) {
	return resolve(ctx, h, h.notebooks, handle.ParseNotebook, ref, opts)
}

// PackageDownload resolves a package published as notebook output.
func (h *Hub) PackageDownload(ctx context.Context, ref string, opts ...Option) (string, error) {
	return resolve(ctx, h, h.packages, handle.ParsePackage, ref, opts)
}

// UtilityScriptDownload resolves a utility script.
func (h *Hub) UtilityScriptDownload(ctx context.Context, ref string, opts ...Option) (string, error) {
	return resolve(ctx, h, h.utilityScripts, handle.ParseUtilityScript, ref, opts)
}

func resolve[H handle.Handle](ctx context.Context, hub *Hub, reg *resolver.Registry[H], parse func(string) (H, error), ref string, opts []Option) (string, error) {
	h, err := parse(ref)
	if err != nil {
		return "", err
	}
	var o callOptions
	for _, opt := range opts {
		opt(&o)
	}

	path, err := reg.Resolve(ctx, h, o.path, resolver.Options{ForceDownload: o.force})
	if err != nil {
		return "", err
	}
	hub.tracker.Record(h)
	return path, nil
}
