// Package files provides source-file discovery that is insensitive to the
// Unicode normalization form of file names.
//
// Korean group names may be stored on disk in decomposed (NFD) form — macOS
// does this — while the logical names used in configuration are composed
// (NFC), or vice versa. All name comparison here goes through NFC first.
package files

import (
	"os"
	"path/filepath"

	"golang.org/x/text/unicode/norm"

	apperrors "github.com/202510804-cloud/polar-plant-dashboard/internal/errors"
)

// NormalizeName returns the canonical (NFC) form of a file or sheet name.
func NormalizeName(name string) string {
	return norm.NFC.String(name)
}

// ResolveName finds the directory entry whose name is Unicode-equivalent to
// target under NFC normalization. The match is exact, not prefix or fuzzy.
// If several entries normalize to the same name the first in listing order
// wins; listing order is platform-dependent, so callers must not rely on
// which duplicate is chosen.
func ResolveName(entries []os.DirEntry, target string) (string, bool) {
	want := NormalizeName(target)
	for _, entry := range entries {
		if NormalizeName(entry.Name()) == want {
			return entry.Name(), true
		}
	}
	return "", false
}

// Discovery resolves logical file names inside a base directory.
type Discovery struct {
	baseDir string
}

// NewDiscovery creates a discovery instance rooted at baseDir.
func NewDiscovery(baseDir string) *Discovery {
	return &Discovery{baseDir: baseDir}
}

// BaseDir returns the base directory this discovery reads from.
func (d *Discovery) BaseDir() string {
	return d.baseDir
}

// CheckBase verifies that the base directory exists and is a directory.
// A missing directory is the fatal DIRECTORY_MISSING condition.
func (d *Discovery) CheckBase() error {
	info, err := os.Stat(d.baseDir)
	if err != nil {
		return apperrors.NewDirectoryMissingError(d.baseDir, err)
	}
	if !info.IsDir() {
		return apperrors.NewDirectoryMissingError(d.baseDir, nil)
	}
	return nil
}

// Resolve maps a logical file name to the absolute path of the matching
// entry in the base directory, comparing names under NFC normalization.
// The boolean result is false when no entry matches.
func (d *Discovery) Resolve(target string) (string, bool, error) {
	entries, err := os.ReadDir(d.baseDir)
	if err != nil {
		return "", false, apperrors.NewDirectoryMissingError(d.baseDir, err)
	}
	name, ok := ResolveName(entries, target)
	if !ok {
		return "", false, nil
	}
	return filepath.Join(d.baseDir, name), true, nil
}
