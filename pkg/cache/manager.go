package cache

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/glorpus-work/kagglehub/internal/logger"
	"github.com/glorpus-work/kagglehub/pkg/errors"
	"github.com/glorpus-work/kagglehub/pkg/fsutil"
	"github.com/glorpus-work/kagglehub/pkg/handle"
)

// RootFunc yields the cache root. It is consulted on every operation.
type RootFunc func() (string, error)

// DefaultManager implements the Manager interface for cache operations.
type DefaultManager struct {
	root RootFunc
}

// NewManager creates a cache manager rooted at a fixed directory.
func NewManager(directory string) *DefaultManager {
	return NewManagerFunc(func() (string, error) { return directory, nil })
}

// NewManagerFunc creates a cache manager whose root is resolved by fn.
func NewManagerFunc(fn RootFunc) *DefaultManager {
	return &DefaultManager{root: fn}
}

// NewDefaultManager creates a cache manager following KAGGLEHUB_CACHE, falling
// back to ~/.cache/kagglehub.
func NewDefaultManager() *DefaultManager {
	return NewManagerFunc(fsutil.GetCacheDir)
}

// GetDirectory returns the current cache root.
func (cm *DefaultManager) GetDirectory() (string, error) {
	dir, err := cm.root()
	if err != nil {
		return "", errors.Wrap(err, "failed to get cache directory")
	}
	if dir == "" {
		return "", errors.ErrCacheDirectory
	}
	return dir, nil
}

// CachedPath returns where the data for (h, path) lives.
func (cm *DefaultManager) CachedPath(h handle.Handle, path string) (string, error) {
	_, dir, err := cm.bundleDir(h)
	if err != nil {
		return "", err
	}
	rel, err := cleanRelPath(path)
	if err != nil {
		return "", err
	}
	if rel == "" {
		return dir, nil
	}
	return filepath.Join(dir, rel), nil
}

// ArchivePath returns the download location of the bundle archive of h.
func (cm *DefaultManager) ArchivePath(h handle.Handle) (string, error) {
	_, dir, err := cm.bundleDir(h)
	if err != nil {
		return "", err
	}
	return dir + archiveSuffix, nil
}

// Load reports a hit only when both the data path and its marker exist.
func (cm *DefaultManager) Load(h handle.Handle, path string) (string, bool, error) {
	_, data, marker, err := cm.paths(h, path)
	if err != nil {
		return "", false, err
	}
	if !fsutil.Exists(marker) || !fsutil.Exists(data) {
		return "", false, nil
	}
	logger.Debug("Cache hit", logger.Fields{"handle": h.String(), "path": data})
	return data, true, nil
}

// MarkComplete creates the marker for (h, path). Callers must have finished
// writing the data first.
func (cm *DefaultManager) MarkComplete(h handle.Handle, path string) error {
	_, _, marker, err := cm.paths(h, path)
	if err != nil {
		return err
	}
	if err := fsutil.EnsureFileDir(marker); err != nil {
		return errors.Wrapf(err, "failed to create marker directory for %s", marker)
	}
	f, err := os.OpenFile(marker, os.O_CREATE|os.O_WRONLY, fsutil.FileModeDefault)
	if err != nil {
		return errors.Wrapf(err, "failed to create marker %s", marker)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "failed to close marker %s", marker)
	}
	now := time.Now()
	return os.Chtimes(marker, now, now)
}

// MarkIncomplete removes the marker for (h, path), leaving the data in place.
func (cm *DefaultManager) MarkIncomplete(h handle.Handle, path string) error {
	root, _, marker, err := cm.paths(h, path)
	if err != nil {
		return err
	}
	if err := removeIfExists(marker); err != nil {
		return err
	}
	return fsutil.PruneEmptyParents(marker, root)
}

// Delete removes the marker, then the data, then every ancestor directory
// left empty, stopping below the cache root.
func (cm *DefaultManager) Delete(h handle.Handle, path string) (string, error) {
	root, data, marker, err := cm.paths(h, path)
	if err != nil {
		return "", err
	}

	if err := removeIfExists(marker); err != nil {
		return "", err
	}
	if path == "" {
		// A deleted bundle takes its per-file markers with it.
		if err := os.RemoveAll(fileMarkerDir(data)); err != nil {
			return "", errors.Wrapf(err, "failed to remove file markers of %s", data)
		}
	}

	removed := ""
	if _, statErr := os.Lstat(data); statErr == nil {
		if err := os.RemoveAll(data); err != nil {
			return "", errors.Wrapf(err, "failed to remove %s", data)
		}
		removed = data
	} else if !stderrors.Is(statErr, fs.ErrNotExist) {
		return "", errors.Wrapf(statErr, "failed to inspect %s", data)
	}

	if err := fsutil.PruneEmptyParents(marker, root); err != nil {
		return "", errors.Wrap(err, "failed to prune marker directories")
	}
	if path == "" {
		if err := fsutil.PruneEmptyParents(fileMarkerDir(data), root); err != nil {
			return "", errors.Wrap(err, "failed to prune marker directories")
		}
	}
	if err := fsutil.PruneEmptyParents(data, root); err != nil {
		return "", errors.Wrap(err, "failed to prune data directories")
	}

	if removed != "" {
		logger.Debug("Removed cache entry", logger.Fields{"handle": h.String(), "path": removed})
	}
	return removed, nil
}

// paths returns the root, the data path and the marker path of (h, path).
func (cm *DefaultManager) paths(h handle.Handle, path string) (root, data, marker string, err error) {
	root, dir, err := cm.bundleDir(h)
	if err != nil {
		return "", "", "", err
	}
	rel, err := cleanRelPath(path)
	if err != nil {
		return "", "", "", err
	}
	if rel == "" {
		return root, dir, dir + markerSuffix, nil
	}
	return root, filepath.Join(dir, rel), filepath.Join(fileMarkerDir(dir), rel+markerSuffix), nil
}

// fileMarkerDir holds the per-file markers of the bundle at dir. It is a
// sibling of dir so that markers never mix with bundle data.
func fileMarkerDir(dir string) string {
	return filepath.Join(filepath.Dir(dir), markerFolder, filepath.Base(dir))
}

// bundleDir maps a handle onto its directory below the root.
func (cm *DefaultManager) bundleDir(h handle.Handle) (root, dir string, err error) {
	root, err = cm.GetDirectory()
	if err != nil {
		return "", "", err
	}

	var parts []string
	switch h := h.(type) {
	case handle.Model:
		parts = append([]string{ModelsSubfolder, h.Owner, h.Model, h.Framework, h.Variation}, versionPart(h.Version)...)
	case handle.Dataset:
		parts = append([]string{DatasetsSubfolder, h.Owner, h.Dataset}, versionPart(h.Version)...)
	case handle.Competition:
		parts = []string{CompetitionsSubfolder, h.Competition}
	case handle.Notebook:
		parts = notebookParts(h)
	case handle.Package:
		parts = notebookParts(h.Notebook)
	case handle.UtilityScript:
		parts = notebookParts(h.Notebook)
	default:
		return "", "", errors.Wrapf(errors.ErrUnsupportedHandleKind, "cache has no layout for %T", h)
	}

	for _, p := range parts {
		if p == "" || p == "." || p == ".." || strings.ContainsAny(p, `/\`) {
			return "", "", errors.NewInvalidHandle(h.String(), "segment %q cannot be used as a cache path", p)
		}
	}
	return root, filepath.Join(append([]string{root}, parts...)...), nil
}

func notebookParts(h handle.Notebook) []string {
	return append([]string{NotebooksSubfolder, h.Owner, h.Notebook}, versionPart(h.Version)...)
}

func versionPart(version int) []string {
	if version <= 0 {
		return nil
	}
	return []string{strconv.Itoa(version)}
}

// cleanRelPath normalizes a sub-path and rejects anything escaping the bundle.
func cleanRelPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if filepath.IsAbs(path) || strings.HasPrefix(path, "/") {
		return "", errors.Wrapf(errors.ErrInvalidPath, "%q must be relative", path)
	}
	clean := filepath.Clean(filepath.FromSlash(path))
	if clean == "." {
		return "", nil
	}
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", errors.Wrapf(errors.ErrInvalidPath, "%q escapes the resource directory", path)
	}
	return clean, nil
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return errors.Wrapf(err, "failed to remove %s", path)
	}
	return nil
}

// Clean removes cached kind subfolders and returns bytes freed.
func (cm *DefaultManager) Clean(options CleanOptions) (*CleanResult, error) {
	root, err := cm.GetDirectory()
	if err != nil {
		return nil, err
	}

	subfolders := options.Subfolders
	if len(subfolders) == 0 {
		subfolders = Subfolders
	}

	result := &CleanResult{Freed: make(map[string]int64, len(subfolders))}
	for _, name := range subfolders {
		if !isSubfolder(name) {
			return nil, errors.Wrapf(errors.ErrInvalidPath, "unknown cache subfolder %q", name)
		}
		size, err := cleanDirectory(filepath.Join(root, name))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to clean %s cache", name)
		}
		result.Freed[name] = size
		result.TotalFreed += size
	}
	return result, nil
}

// GetInfo returns information about the cache.
func (cm *DefaultManager) GetInfo() (*Info, error) {
	root, err := cm.GetDirectory()
	if err != nil {
		return nil, err
	}

	info := &Info{Directory: root}
	for _, name := range Subfolders {
		size, files, err := getDirSizeAndFiles(filepath.Join(root, name))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to get %s cache info", name)
		}
		info.Subfolders = append(info.Subfolders, SubfolderInfo{Name: name, Size: size, Files: files})
		info.TotalSize += size
	}
	return info, nil
}

func isSubfolder(name string) bool {
	for _, s := range Subfolders {
		if s == name {
			return true
		}
	}
	return false
}

// cleanDirectory removes a directory and returns bytes freed.
func cleanDirectory(dir string) (int64, error) {
	size, _, err := getDirSizeAndFiles(dir)
	if err != nil {
		return 0, err
	}
	if err := os.RemoveAll(dir); err != nil {
		return 0, errors.Wrapf(err, "failed to remove directory %s", dir)
	}
	return size, nil
}

// getDirSizeAndFiles calculates directory size and file count. A missing
// directory is empty.
func getDirSizeAndFiles(dir string) (size int64, count int, err error) {
	if _, err = os.Stat(dir); os.IsNotExist(err) {
		return 0, 0, nil
	}

	err = filepath.WalkDir(dir, func(_ string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		size += fi.Size()
		count++
		return nil
	})
	if err != nil {
		err = errors.Wrapf(err, "error walking directory %s", dir)
	}
	return size, count, err
}
