package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lehigh-university-libraries/yolosplit/internal/pipeline"
	"github.com/lehigh-university-libraries/yolosplit/internal/splitter"
	"github.com/spf13/cobra"
)

func newSplitCmd(root *rootOptions) *cobra.Command {
	var (
		zipPath      string
		dirPath      string
		train        float64
		val          float64
		test         float64
		seed         int64
		outPath      string
		keepOutput   string
		manifestPath string
		unmatched    string
	)

	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split a YOLO dataset into train/val/test",
		Long: `Shuffles the image/label pairs of a dataset with the given seed and copies
them into train/, val/ and test/ folders, each with images/ and labels/
subfolders and a copy of classes.txt when the source has one.

The source is either a zip archive (--zip) or a directory (--dir). Both must
contain images/ and labels/ at the root. Splits with a ratio of 0 are not
created.`,
		Example: `  # 70/20/10 split of a directory
  yolosplit split --dir ./dataset

  # 80/20 split of a zip with a fixed seed, saving the archive
  yolosplit split --zip ./dataset.zip --train 0.8 --val 0.2 --test 0 --seed 7 --out ./split.zip

  # Also record which file went where
  yolosplit split --dir ./dataset --manifest ./split.parquet`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := root.cfg
			flags := cmd.Flags()

			in := pipeline.Input{
				ArchivePath:  zipPath,
				DirPath:      dirPath,
				Ratios:       cfg.Ratios,
				Seed:         cfg.Seed,
				WorkDir:      cfg.WorkDir,
				ManifestPath: manifestPath,
			}
			if flags.Changed("train") {
				in.Ratios.Train = train
			}
			if flags.Changed("val") {
				in.Ratios.Val = val
			}
			if flags.Changed("test") {
				in.Ratios.Test = test
			}
			if flags.Changed("seed") {
				in.Seed = seed
			}
			if flags.Changed("unmatched") {
				cfg.Unmatched = unmatched
			}

			policy, err := splitter.ParseUnmatchedPolicy(cfg.Unmatched)
			if err != nil {
				return err
			}
			in.Unmatched = policy

			res := pipeline.Run(in)
			fmt.Fprintln(cmd.OutOrStdout(), res.Status)
			if !res.OK() {
				return res.Err
			}

			if outPath != "" {
				if err := copyArchive(res.ArchivePath, outPath); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Archive copied to: %s\n", outPath)
			}
			if keepOutput != "" {
				if err := os.CopyFS(keepOutput, os.DirFS(res.OutputDir)); err != nil {
					return fmt.Errorf("failed to copy output to %s: %w", keepOutput, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Output copied to: %s\n", keepOutput)
			}

			// Once the results are copied out, the working copy is no longer needed
			if outPath != "" || keepOutput != "" {
				runDir := filepath.Dir(res.OutputDir)
				if err := os.RemoveAll(runDir); err != nil {
					slog.Warn("Failed to remove working directory", "path", runDir, "err", err)
				}
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&zipPath, "zip", "", "Path to a zip archive containing images/ and labels/")
	flags.StringVar(&dirPath, "dir", "", "Path to a directory containing images/ and labels/")
	flags.Float64Var(&train, "train", 0, "Train ratio (default from config, 0.7)")
	flags.Float64Var(&val, "val", 0, "Validation ratio (default from config, 0.2)")
	flags.Float64Var(&test, "test", 0, "Test ratio (default from config, 0.1)")
	flags.Int64Var(&seed, "seed", 0, "Shuffle seed (default from config, 42)")
	flags.StringVarP(&outPath, "out", "o", "", "Copy the resulting zip archive to this path")
	flags.StringVar(&keepOutput, "keep-output", "", "Copy the split directory tree to this directory")
	flags.StringVar(&manifestPath, "manifest", "", "Write a manifest (.yaml, .yml or .parquet)")
	flags.StringVar(&unmatched, "unmatched", "", "Unmatched file policy: warn or silent")

	return cmd
}

func copyArchive(src, dst string) error {
	if src == "" {
		return errors.New("no archive was produced")
	}
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer in.Close()

	if dir := filepath.Dir(dst); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy archive to %s: %w", dst, err)
	}
	return out.Close()
}
