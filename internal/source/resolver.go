package source

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lehigh-university-libraries/yolosplit/internal/archiver"
	"github.com/lehigh-university-libraries/yolosplit/internal/models"
)

const (
	ImagesDir   = "images"
	LabelsDir   = "labels"
	ClassesFile = "classes.txt"
)

// Resolved is a dataset root with images/ and labels/ directly beneath it.
// Cleanup must be called once the pipeline is done with Root.
type Resolved struct {
	Root        string
	ClassesPath string // empty when the root has no classes.txt

	tempDir string
}

// Cleanup removes the extraction directory, if one was created. Safe to call more than once.
func (r *Resolved) Cleanup() error {
	if r == nil || r.tempDir == "" {
		return nil
	}
	dir := r.tempDir
	r.tempDir = ""
	if err := os.RemoveAll(dir); err != nil {
		return models.NewIOError("remove", dir, err)
	}
	slog.Debug("Removed extraction directory", "path", dir)
	return nil
}

// Resolve turns exactly one of archivePath or dirPath into a Resolved root.
// Archives are extracted into a fresh directory under workDir (os.TempDir when empty).
func Resolve(archivePath, dirPath, workDir string) (*Resolved, error) {
	archivePath = strings.TrimSpace(archivePath)
	dirPath = strings.TrimSpace(dirPath)

	switch {
	case archivePath != "" && dirPath != "":
		return nil, fmt.Errorf("%w: provide either a zip file or a directory path, not both", models.ErrInput)
	case archivePath == "" && dirPath == "":
		return nil, fmt.Errorf("%w: provide a zip file or a directory path", models.ErrInput)
	case archivePath != "":
		return resolveArchive(archivePath, workDir)
	default:
		return resolveDir(dirPath)
	}
}

func resolveDir(dirPath string) (*Resolved, error) {
	info, err := os.Stat(dirPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: directory not found: %s", models.ErrInput, dirPath)
		}
		return nil, models.NewIOError("stat", dirPath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: not a directory: %s", models.ErrInput, dirPath)
	}

	resolved := &Resolved{Root: dirPath}
	if err := resolved.verify(); err != nil {
		return nil, err
	}
	return resolved, nil
}

func resolveArchive(archivePath, workDir string) (*Resolved, error) {
	info, err := os.Stat(archivePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: zip file not found: %s", models.ErrInput, archivePath)
		}
		return nil, models.NewIOError("stat", archivePath, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: expected a zip file, got directory: %s", models.ErrInput, archivePath)
	}

	tempDir, err := os.MkdirTemp(workDir, "extract-*")
	if err != nil {
		return nil, models.NewIOError("create extraction directory in", workDir, err)
	}

	resolved := &Resolved{Root: tempDir, tempDir: tempDir}

	slog.Info("Extracting archive", "archive", archivePath, "dest", tempDir)
	if err := archiver.Extract(archivePath, tempDir); err != nil {
		_ = resolved.Cleanup()
		return nil, err
	}

	resolved.Root = descendSingleDir(tempDir)
	if err := resolved.verify(); err != nil {
		_ = resolved.Cleanup()
		return nil, err
	}
	return resolved, nil
}

// descendSingleDir handles archives made by compressing the dataset folder itself,
// where images/ and labels/ sit one level down.
func descendSingleDir(root string) string {
	if hasDir(root, ImagesDir) || hasDir(root, LabelsDir) {
		return root
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return root
	}

	var dirs []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") || e.Name() == "__MACOSX" {
			continue
		}
		if !e.IsDir() {
			return root
		}
		dirs = append(dirs, e.Name())
	}
	if len(dirs) != 1 {
		return root
	}
	return filepath.Join(root, dirs[0])
}

func (r *Resolved) verify() error {
	var missing []string
	for _, name := range []string{ImagesDir, LabelsDir} {
		if !hasDir(r.Root, name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required folder(s) %s/ in dataset root", models.ErrStructure, strings.Join(missing, "/, "))
	}

	classes := filepath.Join(r.Root, ClassesFile)
	if info, err := os.Stat(classes); err == nil && info.Mode().IsRegular() {
		r.ClassesPath = classes
	}
	return nil
}

func hasDir(root, name string) bool {
	info, err := os.Stat(filepath.Join(root, name))
	return err == nil && info.IsDir()
}
