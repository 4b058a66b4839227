package archiver

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/lehigh-university-libraries/yolosplit/internal/models"
)

// Archive zips every file under root into archivePath, preserving paths relative
// to root. An empty archivePath creates a temporary file. Returns the archive path.
func Archive(root, archivePath string) (string, error) {
	var out *os.File
	var err error
	if archivePath == "" {
		tempDir := os.TempDir()
		out, err = os.CreateTemp(tempDir, "dataset_split-*.zip")
		if err != nil {
			return "", models.NewIOError("create archive in", tempDir, err)
		}
	} else {
		out, err = os.Create(archivePath)
		if err != nil {
			return "", models.NewIOError("create archive", archivePath, err)
		}
	}
	archivePath = out.Name()

	absArchive, _ := filepath.Abs(archivePath)

	zw := zip.NewWriter(out)
	files := 0

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return models.NewIOError("walk", path, err)
		}
		if path == root {
			return nil
		}
		if abs, _ := filepath.Abs(path); abs == absArchive {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return models.NewIOError("resolve", path, err)
		}
		name := filepath.ToSlash(rel)

		info, err := d.Info()
		if err != nil {
			return models.NewIOError("stat", path, err)
		}

		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return models.NewIOError("build header for", path, err)
		}
		header.Name = name
		if d.IsDir() {
			header.Name += "/"
			header.Method = zip.Store
			_, err = zw.CreateHeader(header)
			return models.NewIOError("write entry", path, err)
		}
		header.Method = zip.Deflate

		return addFile(zw, header, path, &files)
	})

	closeErr := zw.Close()
	if err := out.Close(); closeErr == nil {
		closeErr = err
	}

	if walkErr != nil {
		os.Remove(archivePath)
		return "", walkErr
	}
	if closeErr != nil {
		os.Remove(archivePath)
		return "", models.NewIOError("finalize archive", archivePath, closeErr)
	}

	slog.Debug("Archive written", "path", archivePath, "files", files)
	return archivePath, nil
}

func addFile(zw *zip.Writer, header *zip.FileHeader, path string, files *int) error {
	src, err := os.Open(path)
	if err != nil {
		return models.NewIOError("open", path, err)
	}
	defer src.Close()

	w, err := zw.CreateHeader(header)
	if err != nil {
		return models.NewIOError("write entry", path, err)
	}
	if _, err := io.Copy(w, src); err != nil {
		return models.NewIOError("read", path, err)
	}
	*files++
	return nil
}

// Extract unpacks a zip archive into dest. Entries that would land outside dest
// are rejected with models.ErrInput; so is a file that is not a zip.
func Extract(archivePath, dest string) error {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		if errors.Is(err, zip.ErrFormat) {
			return fmt.Errorf("%w: %s is not a valid zip archive", models.ErrInput, filepath.Base(archivePath))
		}
		return models.NewIOError("open archive", archivePath, err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		name := filepath.FromSlash(f.Name)
		if strings.HasPrefix(f.Name, "__MACOSX/") {
			continue
		}
		if filepath.IsAbs(name) || !filepath.IsLocal(name) {
			return fmt.Errorf("%w: archive entry %q escapes the extraction directory", models.ErrInput, f.Name)
		}

		target := filepath.Join(dest, name)
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return models.NewIOError("create directory", target, err)
			}
			continue
		}

		if err := extractFile(f, target); err != nil {
			return err
		}
	}

	return nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return models.NewIOError("create directory", filepath.Dir(target), err)
	}

	rc, err := f.Open()
	if err != nil {
		return models.NewIOError("read entry", f.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return models.NewIOError("create", target, err)
	}

	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return models.NewIOError("write", target, err)
	}
	return models.NewIOError("close", target, out.Close())
}
