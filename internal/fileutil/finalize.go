// Package fileutil provides shared file operation helpers.
package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const executableBits = 0o111

// TempContext holds state for an atomic file write: output goes to a
// temporary file and reaches its final path only on Commit, so a failed
// run never leaves a partial container at the destination.
type TempContext struct {
	SrcInfo os.FileInfo
	IsExec  bool
	TmpFile *os.File
	TmpName string

	final string
}

// NewTempContext stats the source file and creates a temp file next to
// outPath for atomic renaming. Caller must defer CleanupOnError.
func NewTempContext(filename, outPath string) (*TempContext, error) {
	info, err := os.Stat(filename)
	if err != nil {
		return nil, fmt.Errorf("getting file info for %q: %w", filename, err)
	}

	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%q is not a regular file", filename)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(outPath), ".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("creating temporary file: %w", err)
	}

	return &TempContext{
		SrcInfo: info,
		IsExec:  info.Mode()&executableBits != 0,
		TmpFile: tmpFile,
		TmpName: tmpFile.Name(),
		final:   outPath,
	}, nil
}

// NewTempOutput creates a freshly named output file in dir (the caller
// omitted a destination). The temp file itself is the final output; on
// failure it is removed entirely.
func NewTempOutput(filename, dir, pattern string) (*TempContext, error) {
	info, err := os.Stat(filename)
	if err != nil {
		return nil, fmt.Errorf("getting file info for %q: %w", filename, err)
	}

	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%q is not a regular file", filename)
	}

	if dir == "" {
		dir = os.TempDir()
	}

	tmpFile, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return nil, fmt.Errorf("creating output file: %w", err)
	}

	return &TempContext{
		SrcInfo: info,
		IsExec:  info.Mode()&executableBits != 0,
		TmpFile: tmpFile,
		TmpName: tmpFile.Name(),
		final:   tmpFile.Name(),
	}, nil
}

// CleanupOnError closes the temp file and removes it if the write failed.
// Removal is best-effort and never masks the original error.
func (tc *TempContext) CleanupOnError(errp *error) {
	tc.TmpFile.Close() //nolint:errcheck,gosec // best-effort cleanup

	if *errp != nil {
		os.Remove(tc.TmpName) //nolint:errcheck,gosec // best-effort cleanup
	}
}

// Commit closes the temp file and moves it to its final path, carrying
// the source's executable bit. Returns the final path.
func (tc *TempContext) Commit() (string, error) {
	perm := os.FileMode(0o600)

	if tc.IsExec {
		perm |= executableBits
	}

	if err := os.Chmod(tc.TmpName, perm); err != nil {
		return "", fmt.Errorf("setting file permissions: %w", err)
	}

	if err := tc.TmpFile.Close(); err != nil {
		return "", fmt.Errorf("closing temporary file: %w", err)
	}

	if tc.TmpName != tc.final {
		if err := os.Rename(tc.TmpName, tc.final); err != nil {
			return "", fmt.Errorf("renaming output file: %w", err)
		}
	}

	return tc.final, nil
}

// FinalizeOutput optionally preserves timestamps and returns the output
// file size.
func FinalizeOutput(outPath string, preserveTimestamps bool, modTime time.Time) (int64, error) {
	if preserveTimestamps {
		if err := os.Chtimes(outPath, modTime, modTime); err != nil {
			return 0, fmt.Errorf("preserving timestamps: %w", err)
		}
	}

	outInfo, err := os.Stat(outPath)
	if err != nil {
		return 0, fmt.Errorf("stat output %q: %w", outPath, err)
	}

	return outInfo.Size(), nil
}
