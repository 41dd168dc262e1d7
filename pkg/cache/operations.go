package cache

import (
	"fmt"
	"strings"

	"github.com/glorpus-work/kagglehub/internal/logger"
	"github.com/glorpus-work/kagglehub/pkg/handle"
)

// Operation renders cache management results for the command line.
type Operation struct {
	manager Manager
}

// NewOperation creates a new cache operation instance.
func NewOperation(manager Manager) *Operation {
	return &Operation{
		manager: manager,
	}
}

// Clean cleans the given kind subfolders (all when empty).
func (op *Operation) Clean(subfolders ...string) (string, error) {
	logger.Debug("Cleaning cache", logger.Fields{"subfolders": subfolders})

	result, err := op.manager.Clean(CleanOptions{Subfolders: subfolders})
	if err != nil {
		return "", fmt.Errorf("failed to clean cache: %w", err)
	}

	if result.TotalFreed == 0 {
		return "No files were removed from the cache.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Successfully cleaned cache. Freed %s of disk space.", formatBytes(result.TotalFreed))
	for _, name := range Subfolders {
		if freed := result.Freed[name]; freed > 0 {
			fmt.Fprintf(&b, "\n- %s: %s", name, formatBytes(freed))
		}
	}
	return b.String(), nil
}

// GetInfo returns information about the cache.
func (op *Operation) GetInfo() (string, error) {
	info, err := op.manager.GetInfo()
	if err != nil {
		return "", fmt.Errorf("failed to get cache info: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Cache Information:\n  Directory:     %s\n  Total Size:    %s", info.Directory, formatBytes(info.TotalSize))
	for _, sub := range info.Subfolders {
		fmt.Fprintf(&b, "\n  %-14s %s (%d files)", sub.Name+":", formatBytes(sub.Size), sub.Files)
	}
	return b.String(), nil
}

// GetDirectory returns the cache directory path.
func (op *Operation) GetDirectory() (string, error) {
	return op.manager.GetDirectory()
}

// Delete removes one cache entry.
func (op *Operation) Delete(h handle.Handle, path string) (string, error) {
	removed, err := op.manager.Delete(h, path)
	if err != nil {
		return "", fmt.Errorf("failed to delete %s from cache: %w", h, err)
	}
	if removed == "" {
		return fmt.Sprintf("%s is not cached.", h), nil
	}
	return fmt.Sprintf("Removed %s", removed), nil
}

// formatBytes converts bytes to a human-readable string.
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	units := []string{"K", "M", "G", "T", "P", "E"}
	if exp < len(units) {
		return fmt.Sprintf("%.1f %sB", float64(bytes)/float64(div), units[exp])
	}
	return fmt.Sprintf("%d B", bytes)
}
