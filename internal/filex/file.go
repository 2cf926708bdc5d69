// Package filex holds small filesystem helpers for the command-line tools.
package filex

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// EnsureParentDir creates the directory that will hold path, private to the
// current user, and returns it.
func EnsureParentDir(path string) (string, error) {
	dir := filepath.Dir(path)

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// link is a test seam for os.Link.
var link = os.Link

// MoveNoReplace moves src to path, or to the first free one of
// "name (1).ext", "name (2).ext", ..., and returns where the file ended up.
// Each attempt is a hard link, which fails rather than replace a file that
// already holds the name.
func MoveNoReplace(src, path string) (string, error) {
	for i := 0; ; i++ {
		candidate := numbered(path, i)
		err := link(src, candidate)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("link %s: %w", candidate, err)
		}
		if err := os.Remove(src); err != nil {
			return "", fmt.Errorf("remove %s: %w", src, err)
		}
		return candidate, nil
	}
}

func numbered(path string, i int) string {
	if i == 0 {
		return path
	}
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s (%d)%s", strings.TrimSuffix(path, ext), i, ext)
}
