package guru

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// ArchiveName is the zip artifact placed next to the working directory.
const ArchiveName = "guru.zip"

// Archive compresses the working directory into guru.zip in the directory's
// parent, replacing any stale archive from a previous build. Returns the
// archive path.
func Archive(outputDir string) (string, error) {
	outputDir = filepath.Clean(outputDir)
	archivePath := filepath.Join(filepath.Dir(outputDir), ArchiveName)

	if err := os.Remove(archivePath); err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("remove stale archive: %w", err)
	}

	f, err := os.Create(archivePath)
	if err != nil {
		return "", fmt.Errorf("create archive: %w", err)
	}

	zw := zip.NewWriter(f)
	err = filepath.WalkDir(outputDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(outputDir, p)
		if err != nil {
			return err
		}
		w, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		src, err := os.Open(p)
		if err != nil {
			return err
		}
		_, err = io.Copy(w, src)
		if cerr := src.Close(); err == nil {
			err = cerr
		}
		return err
	})
	if err != nil {
		_ = zw.Close()
		_ = f.Close()
		return "", fmt.Errorf("archive %s: %w", outputDir, err)
	}
	if err := zw.Close(); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("finalize archive: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close archive: %w", err)
	}
	return archivePath, nil
}
