package pipeline

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lehigh-university-libraries/yolosplit/internal/archiver"
	"github.com/lehigh-university-libraries/yolosplit/internal/manifest"
	"github.com/lehigh-university-libraries/yolosplit/internal/models"
	"github.com/lehigh-university-libraries/yolosplit/internal/source"
	"github.com/lehigh-university-libraries/yolosplit/internal/splitter"
)

const (
	OutputDirName = "output"
	ArchiveName   = "dataset_split.zip"
)

// Input is everything one split request needs. Exactly one of ArchivePath
// and DirPath must be set.
type Input struct {
	ArchivePath  string
	DirPath      string
	Ratios       models.SplitRatios
	Seed         int64
	WorkDir      string // parent of the per-run directory; empty = os.TempDir()
	Unmatched    splitter.UnmatchedPolicy
	ManifestPath string // optional .yaml/.yml/.parquet written after a successful split
}

// Result is what crosses the boundary back to the caller. On failure OutputDir
// and ArchivePath are empty and Status carries the error description.
type Result struct {
	OutputDir   string
	Status      string
	ArchivePath string
	Assignment  *models.SplitAssignment
	Err         error
}

// OK reports whether the run succeeded
func (r Result) OK() bool {
	return r.Err == nil
}

// Run resolves the source, splits it and archives the output. It never returns
// an error directly: failures are translated into Result.Status. Temporary
// extraction is removed on every path; on failure the whole run directory is.
func Run(in Input) Result {
	start := time.Now()

	res, err := run(in)
	if err != nil {
		slog.Error("Split failed", "kind", models.ErrorKind(err), "err", err, "duration", time.Since(start))
		return Result{
			Status: "❌ Error: " + err.Error(),
			Err:    err,
		}
	}

	slog.Info("Split finished", "output", res.OutputDir, "archive", res.ArchivePath,
		"pairs", res.Assignment.Total(), "duration", time.Since(start))
	return res
}

func run(in Input) (res Result, err error) {
	if err := splitter.ValidateRatios(in.Ratios); err != nil {
		return res, err
	}

	runDir, err := os.MkdirTemp(in.WorkDir, "yolosplit-*")
	if err != nil {
		return res, models.NewIOError("create working directory in", in.WorkDir, err)
	}
	defer func() {
		if err != nil {
			if rmErr := os.RemoveAll(runDir); rmErr != nil {
				slog.Warn("Failed to remove working directory", "path", runDir, "err", rmErr)
			}
		}
	}()

	resolved, err := source.Resolve(in.ArchivePath, in.DirPath, runDir)
	if err != nil {
		return res, err
	}
	defer func() {
		if cleanupErr := resolved.Cleanup(); cleanupErr != nil {
			slog.Warn("Failed to remove extracted source", "err", cleanupErr)
		}
	}()

	engine := splitter.NewEngine(splitter.Options{Unmatched: in.Unmatched})
	outputDir := filepath.Join(runDir, OutputDirName)

	split, err := engine.Split(resolved.Root, resolved.ClassesPath, outputDir, in.Ratios, in.Seed)
	if err != nil {
		return res, err
	}

	archivePath, err := archiver.Archive(outputDir, filepath.Join(runDir, ArchiveName))
	if err != nil {
		return res, err
	}

	if in.ManifestPath != "" {
		m := manifest.New(in.Seed, in.Ratios, split.Assignment, split.Items)
		if err := manifest.Write(in.ManifestPath, m); err != nil {
			return res, models.NewIOError("write manifest", in.ManifestPath, err)
		}
	}

	return Result{
		OutputDir:   outputDir,
		Status:      fmt.Sprintf("%s\nArchive: %s", split.Status, archivePath),
		ArchivePath: archivePath,
		Assignment:  split.Assignment,
	}, nil
}
