package template

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ExtractArchive unpacks the zip-formatted package at srcPath into destDir,
// mirroring every archive entry on disk. Parent directories are created on
// demand, so entry order inside the archive does not matter. Returns the list
// of extracted entry names in archive order.
//
// Extraction aborts on the first entry that cannot be read or written; the
// caller owns destDir and is responsible for cleanup in both outcomes.
func ExtractArchive(srcPath, destDir string) ([]string, error) {
	r, err := zip.OpenReader(srcPath)
	if err != nil {
		// zip.OpenReader fails on anything that is not a zip container,
		// which doubles as the upload signature check.
		return nil, &ArchiveError{Path: srcPath, Err: ErrInvalidArchive}
	}
	defer r.Close()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, &ArchiveError{Path: srcPath, Err: err}
	}

	var extracted []string
	for _, entry := range r.File {
		target, err := resolveEntryPath(destDir, entry.Name)
		if err != nil {
			return nil, &ArchiveError{Path: srcPath, Err: err}
		}

		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return nil, &ArchiveError{Path: srcPath, Err: err}
			}
			extracted = append(extracted, entry.Name)
			continue
		}

		if err := writeEntry(entry, target); err != nil {
			return nil, &ArchiveError{Path: srcPath, Err: err}
		}
		extracted = append(extracted, entry.Name)
	}

	return extracted, nil
}

// resolveEntryPath joins an archive entry name onto destDir and rejects
// entries that would escape it (zip-slip).
func resolveEntryPath(destDir, name string) (string, error) {
	target := filepath.Join(destDir, filepath.FromSlash(name))
	rel, err := filepath.Rel(destDir, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("entry %q escapes extraction directory", name)
	}
	return target, nil
}

// writeEntry copies one archive entry to disk, creating its parent directory
// first. The file handle is released before returning in every path.
func writeEntry(entry *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("create directory for %s: %w", entry.Name, err)
	}

	rc, err := entry.Open()
	if err != nil {
		return fmt.Errorf("open entry %s: %w", entry.Name, err)
	}
	defer rc.Close()

	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create file %s: %w", entry.Name, err)
	}

	if _, err := io.Copy(f, rc); err != nil {
		f.Close()
		os.Remove(target)
		return fmt.Errorf("write entry %s: %w", entry.Name, err)
	}

	// Close explicitly so a flush failure is not swallowed by defer.
	if err := f.Close(); err != nil {
		os.Remove(target)
		return fmt.Errorf("finalize entry %s: %w", entry.Name, err)
	}
	return nil
}
