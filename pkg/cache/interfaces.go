package cache

import "github.com/glorpus-work/kagglehub/pkg/handle"

// Cache kind subfolders below the cache root.
const (
	ModelsSubfolder       = "models"
	DatasetsSubfolder     = "datasets"
	CompetitionsSubfolder = "competitions"
	NotebooksSubfolder    = "notebooks"

	markerSuffix  = ".complete"
	markerFolder  = ".complete"
	archiveSuffix = ".archive"
)

// Subfolders lists every kind subfolder in display order.
var Subfolders = []string{ModelsSubfolder, DatasetsSubfolder, CompetitionsSubfolder, NotebooksSubfolder}

// Manager defines the interface for cache management operations.
//
// An entry is addressed by a handle and an optional path relative to the
// handle's bundle; an empty path addresses the whole bundle.
type Manager interface {
	// CachedPath returns where the data for (h, path) lives.
	CachedPath(h handle.Handle, path string) (string, error)
	// ArchivePath returns where a bundle archive is downloaded before extraction.
	ArchivePath(h handle.Handle) (string, error)
	// Load returns the cached path and true only if both data and marker exist.
	Load(h handle.Handle, path string) (string, bool, error)
	// MarkComplete records that (h, path) was fully written.
	MarkComplete(h handle.Handle, path string) error
	// MarkIncomplete removes the completion marker of (h, path).
	MarkIncomplete(h handle.Handle, path string) error
	// Delete removes the marker, then the data, then empty ancestors. It
	// returns the removed data path, or "" when nothing was cached.
	Delete(h handle.Handle, path string) (string, error)

	Clean(options CleanOptions) (*CleanResult, error)
	GetInfo() (*Info, error)
	GetDirectory() (string, error)
}

// CleanOptions specifies what to clean from the cache.
type CleanOptions struct {
	// Subfolders to clean. Empty means all kind subfolders.
	Subfolders []string
}

// CleanResult contains information about what was cleaned.
type CleanResult struct {
	TotalFreed int64
	Freed      map[string]int64
}

// SubfolderInfo is the footprint of one kind subfolder.
type SubfolderInfo struct {
	Name  string
	Size  int64
	Files int
}

// Info represents cache information.
type Info struct {
	Directory  string
	TotalSize  int64
	Subfolders []SubfolderInfo
}
