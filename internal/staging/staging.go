// Package staging manages per-run scratch directories under the cache
// directory. Each batch extracts padded video, frames and audio into
// <cache_dir>/<run id>; directories left behind by interrupted runs are
// removed once they age out. Only directories named by a run id are ever
// listed or removed.
package staging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"autovideo/internal/logging"
)

// DefaultMaxAge is how long an abandoned scratch directory is kept.
const DefaultMaxAge = 24 * time.Hour

// Dir is one run's scratch space.
type Dir struct {
	Root string
}

// IsRunDir reports whether name is a run id, the only directories this
// package creates under the cache directory.
func IsRunDir(name string) bool {
	_, err := uuid.Parse(name)
	return err == nil && len(name) == 36
}

// Create makes <base>/<runID> and returns it. runID must be a UUID.
func Create(base, runID string) (Dir, error) {
	base = strings.TrimSpace(base)
	if base == "" {
		return Dir{}, fmt.Errorf("scratch directory requires a base")
	}
	if !IsRunDir(runID) {
		return Dir{}, fmt.Errorf("scratch run id %q is not a uuid", runID)
	}
	root := filepath.Join(base, runID)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return Dir{}, fmt.Errorf("create scratch dir: %w", err)
	}
	return Dir{Root: root}, nil
}

// Video returns (and creates) the scratch directory for one video.
func (d Dir) Video(videoID string) (string, error) {
	path := filepath.Join(d.Root, strings.TrimSpace(videoID))
	if err := os.MkdirAll(filepath.Join(path, "frames"), 0o755); err != nil {
		return "", fmt.Errorf("create video scratch dir: %w", err)
	}
	return path, nil
}

// Remove deletes the scratch directory and everything in it.
func (d Dir) Remove() error {
	if d.Root == "" {
		return nil
	}
	return os.RemoveAll(d.Root)
}

// CleanStaleResult contains the outcome of a stale directory cleanup operation.
type CleanStaleResult struct {
	Removed []string
	Errors  []CleanupError
}

// CleanupError pairs a directory path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// CleanStale removes run directories under base older than maxAge. Files and
// directories not named by a run id are never touched.
func CleanStale(ctx context.Context, base string, maxAge time.Duration, logger *slog.Logger) CleanStaleResult {
	result := CleanStaleResult{}

	base = strings.TrimSpace(base)
	if base == "" {
		return result
	}

	entries, err := os.ReadDir(base)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, CleanupError{Path: base, Error: err})
		}
		return result
	}

	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		if !entry.IsDir() || !IsRunDir(entry.Name()) {
			continue
		}

		dirPath := filepath.Join(base, entry.Name())
		info, err := entry.Info()
		if err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: dirPath, Error: err})
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		if err := os.RemoveAll(dirPath); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: dirPath, Error: err})
			logging.WarnWithContext(logger, "failed to remove stale scratch directory", "scratch_cleanup_failed",
				logging.String("path", dirPath),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check cache_dir permissions"),
				logging.String(logging.FieldImpact, "disk space not reclaimed"),
			)
			continue
		}
		result.Removed = append(result.Removed, dirPath)
		if logger != nil {
			logger.Info("removed stale scratch directory",
				logging.String("path", dirPath),
				logging.Duration("age", time.Since(info.ModTime())),
				logging.String(logging.FieldEventType, "scratch_cleanup"),
			)
		}
	}

	return result
}

// DirInfo contains metadata about a scratch directory.
type DirInfo struct {
	Name    string
	Path    string
	ModTime time.Time
	Size    int64
}

// ListDirectories returns the run directories under base.
func ListDirectories(base string) ([]DirInfo, error) {
	base = strings.TrimSpace(base)
	if base == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(base)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var dirs []DirInfo
	for _, entry := range entries {
		if !entry.IsDir() || !IsRunDir(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		dirPath := filepath.Join(base, entry.Name())
		size, _ := dirSize(dirPath)
		dirs = append(dirs, DirInfo{
			Name:    entry.Name(),
			Path:    dirPath,
			ModTime: info.ModTime(),
			Size:    size,
		})
	}
	return dirs, nil
}

func dirSize(path string) (int64, error) {
	var size int64
	err := filepath.WalkDir(path, func(_ string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		size += info.Size()
		return nil
	})
	return size, err
}
