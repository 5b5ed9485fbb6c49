// Package archive files imported statement documents into the
// documents tree, named by statement date under the importer's account
// directory.
package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/davidciani/beancount-addons/pkg/importer"
	"github.com/davidciani/beancount-addons/pkg/pathutil"
)

// Filer files statement documents under the documents directory.
type Filer struct {
	pathResolver *pathutil.PathResolver
}

// NewFiler creates a new Filer.
func NewFiler(pathResolver *pathutil.PathResolver) *Filer {
	return &Filer{pathResolver: pathResolver}
}

// File moves (or copies) a statement into the documents tree as
// {documents}/{Account/Path}/{YYYY-MM-DD}.{name}. Name collisions get
// a numeric suffix; an existing document is never overwritten.
// It returns the destination path.
func (f *Filer) File(imp importer.Importer, sourcePath string, copyOnly bool) (string, error) {
	account := imp.Account(sourcePath)
	destDir := f.pathResolver.DocumentDir(account)
	if err := f.pathResolver.EnsureDir(destDir); err != nil {
		return "", fmt.Errorf("failed to create document directory: %w", err)
	}

	name := imp.Filename(sourcePath)
	if name == "" {
		name = filepath.Base(sourcePath)
	}

	date, err := imp.Date(sourcePath)
	if err != nil {
		return "", fmt.Errorf("failed to get statement date: %w", err)
	}
	if date.IsZero() {
		date = time.Now()
	}

	destPath := uniquePath(filepath.Join(destDir, date.Format("2006-01-02")+"."+name))

	if copyOnly {
		if err := copyFile(sourcePath, destPath); err != nil {
			return "", fmt.Errorf("failed to copy document: %w", err)
		}
	} else if err := moveFile(sourcePath, destPath); err != nil {
		return "", fmt.Errorf("failed to move document: %w", err)
	}

	return destPath, nil
}

// uniquePath returns path, or the first "{stem}_N{ext}" variant that
// doesn't exist yet.
func uniquePath(path string) string {
	if _, err := os.Stat(path); err != nil {
		return path
	}

	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, n, ext)
		if _, err := os.Stat(candidate); err != nil {
			return candidate
		}
	}
}

// moveFile renames the file, falling back to copy-and-remove across
// filesystem boundaries.
func moveFile(sourcePath, destPath string) error {
	if err := os.Rename(sourcePath, destPath); err == nil {
		return nil
	}

	if err := copyFile(sourcePath, destPath); err != nil {
		return err
	}
	return os.Remove(sourcePath)
}

func copyFile(sourcePath, destPath string) error {
	src, err := os.Open(sourcePath)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(destPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(destPath)
		return err
	}
	return dst.Close()
}

// SourceHash returns the content hash of a source file, used to skip
// statements that have already been archived under another name.
func SourceHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash file: %w", err)
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}
