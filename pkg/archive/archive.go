// Package archive extracts downloaded resource bundles and creates test bundles.
package archive

import (
	"context"
	stderrors "errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/kagglehub/internal/logger"
	"github.com/glorpus-work/kagglehub/pkg/errors"
	"github.com/glorpus-work/kagglehub/pkg/fsutil"
	"github.com/mholt/archives"
)

// Manager handles archive extraction and creation operations.
type Manager struct{}

// NewManager creates a new Manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// ExtractAll extracts every entry of the archive at archivePath below destDir.
// The format is detected from the content, not the file name. Entries that
// would land outside destDir, directly or through a symlink, fail the whole
// extraction with ErrUnsafeArchiveEntry.
func (am *Manager) ExtractAll(ctx context.Context, archivePath, destDir string) error {
	file, err := os.Open(archivePath)
	if err != nil {
		return errors.Wrap(err, "failed to open archive file")
	}
	defer func() { _ = file.Close() }()

	extractor, err := identify(ctx, archivePath, file)
	if err != nil {
		return err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return errors.Wrap(err, "failed to rewind archive file")
	}

	absDest, err := filepath.Abs(destDir)
	if err != nil {
		return errors.Wrap(err, "failed to resolve destination directory")
	}
	if err := fsutil.EnsureDir(absDest); err != nil {
		return errors.Wrap(err, "failed to create destination directory")
	}
	if absDest, err = filepath.EvalSymlinks(absDest); err != nil {
		return errors.Wrap(err, "failed to resolve destination directory")
	}

	return extractor.Extract(ctx, file, func(_ context.Context, info archives.FileInfo) error {
		return am.extractEntry(absDest, info)
	})
}

// identify returns the extractor for the archive in r, or ErrUnsupportedArchive.
func identify(ctx context.Context, name string, r io.Reader) (archives.Extractor, error) {
	format, _, err := archives.Identify(ctx, filepath.Base(name), r)
	if stderrors.Is(err, archives.NoMatch) {
		return nil, errors.Wrapf(errors.ErrUnsupportedArchive, "%s", name)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to identify archive format")
	}

	// A lone compression layer (e.g. plain .gz) identifies as a
	// CompressedArchive without an extraction format.
	switch ca := format.(type) {
	case archives.CompressedArchive:
		if ca.Extraction == nil {
			return nil, errors.Wrapf(errors.ErrUnsupportedArchive, "%s is compressed but not an archive", name)
		}
	case *archives.CompressedArchive:
		if ca.Extraction == nil {
			return nil, errors.Wrapf(errors.ErrUnsupportedArchive, "%s is compressed but not an archive", name)
		}
	}
	extractor, ok := format.(archives.Extractor)
	if !ok {
		return nil, errors.Wrapf(errors.ErrUnsupportedArchive, "%s (%s)", name, format.Extension())
	}
	return extractor, nil
}

// Create creates a gzip-compressed tar archive from the specified source directory.
func (am *Manager) Create(ctx context.Context, sourceDir, archivePath string) error {
	absolutePath, err := filepath.Abs(sourceDir)
	if err != nil {
		return errors.Wrap(err, "failed to get absolute path for source directory")
	}

	archiveFiles, err := archives.FilesFromDisk(ctx, nil, map[string]string{
		absolutePath + string(os.PathSeparator): "",
	})
	if err != nil {
		return errors.Wrap(err, "failed to read files from disk")
	}

	file, err := os.Create(archivePath)
	if err != nil {
		return errors.Wrapf(err, "failed to create output file %s", archivePath)
	}
	defer func() {
		_ = file.Sync()
		_ = file.Close()
	}()

	format := archives.CompressedArchive{
		Compression: archives.Gz{},
		Archival:    archives.Tar{},
	}
	if err := format.Archive(ctx, file, archiveFiles); err != nil {
		return errors.Wrap(err, "failed to create archive")
	}
	return nil
}

// extractEntry writes a single archive entry below destDir.
func (am *Manager) extractEntry(destDir string, info archives.FileInfo) error {
	targetPath, err := safeJoin(destDir, info.NameInArchive)
	if err != nil {
		return err
	}
	if targetPath == destDir {
		return nil
	}

	switch {
	case info.IsDir():
		return fsutil.EnsureDir(targetPath)
	case info.Mode()&fs.ModeSymlink != 0:
		return am.writeSymlink(destDir, targetPath, info)
	case info.Mode().IsRegular():
		return am.writeRegularFile(destDir, targetPath, info)
	default:
		logger.Debug("Skipping special archive entry", logger.Fields{"entry": info.NameInArchive, "mode": info.Mode().String()})
		return nil
	}
}

// safeJoin resolves name below root, rejecting absolute names and names that
// climb out of root.
func safeJoin(root, name string) (string, error) {
	native := filepath.FromSlash(name)
	if filepath.IsAbs(native) || strings.HasPrefix(name, "/") || filepath.VolumeName(native) != "" {
		return "", errors.Wrapf(errors.ErrUnsafeArchiveEntry, "%q is absolute", name)
	}
	target := filepath.Join(root, native)
	if !fsutil.IsWithin(root, target) {
		return "", errors.Wrapf(errors.ErrUnsafeArchiveEntry, "%q", name)
	}
	return target, nil
}

// writeSymlink creates the link described by info, provided its target stays
// inside destDir.
func (am *Manager) writeSymlink(destDir, targetPath string, info archives.FileInfo) error {
	linkTarget := info.LinkTarget
	if linkTarget == "" && info.Open != nil {
		// Zip stores the link target as the entry body.
		f, err := info.Open()
		if err != nil {
			return errors.Wrapf(err, "failed to read symlink %s", info.NameInArchive)
		}
		body, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return errors.Wrapf(err, "failed to read symlink target %s", info.NameInArchive)
		}
		linkTarget = string(body)
	}

	if filepath.IsAbs(linkTarget) ||
		!fsutil.IsWithin(destDir, filepath.Join(filepath.Dir(targetPath), filepath.FromSlash(linkTarget))) {
		return errors.Wrapf(errors.ErrUnsafeArchiveEntry, "symlink %q points to %q", info.NameInArchive, linkTarget)
	}

	if err := fsutil.EnsureFileDir(targetPath); err != nil {
		return errors.Wrapf(err, "failed to create parent directory for symlink %s", info.NameInArchive)
	}
	_ = os.Remove(targetPath)
	return os.Symlink(linkTarget, targetPath)
}

// writeRegularFile copies a regular entry to targetPath and preserves metadata.
func (am *Manager) writeRegularFile(destDir, targetPath string, info archives.FileInfo) error {
	if err := fsutil.EnsureFileDir(targetPath); err != nil {
		return errors.Wrapf(err, "failed to create parent directory for %s", info.NameInArchive)
	}
	// Parent directories may be links extracted earlier.
	resolved, err := filepath.EvalSymlinks(filepath.Dir(targetPath))
	if err != nil {
		return errors.Wrapf(err, "failed to resolve parent directory of %s", info.NameInArchive)
	}
	if !fsutil.IsWithin(destDir, resolved) {
		return errors.Wrapf(errors.ErrUnsafeArchiveEntry, "%q is written through a symlink", info.NameInArchive)
	}

	srcFile, err := info.Open()
	if err != nil {
		return errors.Wrapf(err, "failed to open archive entry %s", info.NameInArchive)
	}
	defer func() { _ = srcFile.Close() }()

	perm := info.Mode().Perm()
	if perm == 0 {
		perm = fsutil.FileModeDefault
	}
	// Existing links are replaced, not followed.
	_ = os.Remove(targetPath)
	dstFile, err := os.OpenFile(targetPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return errors.Wrapf(err, "failed to create destination file %s", targetPath)
	}
	defer func() { _ = dstFile.Close() }()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return errors.Wrapf(err, "failed to copy file %s", info.NameInArchive)
	}
	if err := os.Chmod(targetPath, perm); err != nil {
		return errors.Wrapf(err, "failed to set permissions for %s", targetPath)
	}
	if mt := info.ModTime(); !mt.IsZero() {
		if err := os.Chtimes(targetPath, mt, mt); err != nil {
			return errors.Wrapf(err, "failed to set modification time for %s", targetPath)
		}
	}
	return nil
}
