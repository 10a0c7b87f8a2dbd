package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
)

// PathError reports a rejected document path.
type PathError struct {
	Path   string
	Reason string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("path rejected: %s (input: %s)", e.Reason, e.Path)
}

// PathGuard confines user-supplied relative paths to a base directory. The
// file server uses it so a request can never read outside the served tree,
// whether through absolute paths, parent traversal, or symlinks that point
// elsewhere.
//
// Safe for concurrent use.
type PathGuard struct {
	base         string
	resolvedBase string
	maxLen       int
	checked      uint64
	rejected     uint64
}

// NewPathGuard creates a guard rooted at base, which must be an existing
// absolute directory.
func NewPathGuard(base string) (*PathGuard, error) {
	if base == "" {
		return nil, fmt.Errorf("base directory cannot be empty")
	}
	if !filepath.IsAbs(base) {
		return nil, fmt.Errorf("base directory must be absolute: %s", base)
	}
	info, err := os.Stat(base)
	if err != nil {
		return nil, fmt.Errorf("cannot access base directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("base path is not a directory: %s", base)
	}
	resolved, err := filepath.EvalSymlinks(base)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve base directory: %w", err)
	}
	return &PathGuard{base: base, resolvedBase: resolved, maxLen: 1024}, nil
}

// Resolve validates userPath and returns the absolute path it names inside
// the base directory. The returned path has had symlinks resolved and is
// safe to pass to os.Open and friends.
func (g *PathGuard) Resolve(userPath string) (string, error) {
	atomic.AddUint64(&g.checked, 1)

	if userPath == "" {
		return "", g.reject(userPath, "path cannot be empty")
	}
	if len(userPath) > g.maxLen {
		return "", g.reject(userPath, fmt.Sprintf("path longer than %d bytes", g.maxLen))
	}
	// filepath.IsLocal rejects absolute paths, leading "..", and reserved
	// names on Windows in one shot.
	if !filepath.IsLocal(userPath) {
		return "", g.reject(userPath, "path escapes the served directory")
	}

	full := filepath.Join(g.base, filepath.Clean(userPath))
	resolved, err := filepath.EvalSymlinks(full)
	if err != nil {
		// The target may not exist yet; resolving the parent still catches
		// symlinked directories pointing outside the base.
		parent, perr := filepath.EvalSymlinks(filepath.Dir(full))
		if perr != nil {
			return "", g.reject(userPath, "cannot resolve path")
		}
		resolved = filepath.Join(parent, filepath.Base(full))
	}

	rel, err := filepath.Rel(g.resolvedBase, resolved)
	if err != nil {
		return "", g.reject(userPath, "path is not relative to base")
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", g.reject(userPath, "resolved path escapes the served directory")
	}
	return resolved, nil
}

func (g *PathGuard) reject(path, reason string) error {
	atomic.AddUint64(&g.rejected, 1)
	return &PathError{Path: path, Reason: reason}
}

// Stats reports how many paths were checked and how many were rejected.
func (g *PathGuard) Stats() (checked, rejected uint64) {
	return atomic.LoadUint64(&g.checked), atomic.LoadUint64(&g.rejected)
}
