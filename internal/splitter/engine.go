package splitter

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lehigh-university-libraries/yolosplit/internal/logging"
	"github.com/lehigh-university-libraries/yolosplit/internal/models"
)

// UnmatchedPolicy controls how images without labels (and labels without images) are reported
type UnmatchedPolicy string

const (
	// UnmatchedWarn logs every excluded file and lists them in the status message
	UnmatchedWarn UnmatchedPolicy = "warn"
	// UnmatchedSilent drops excluded files without per-file logs; counts are still reported
	UnmatchedSilent UnmatchedPolicy = "silent"
)

// ParseUnmatchedPolicy accepts "warn", "silent" or "" (warn)
func ParseUnmatchedPolicy(s string) (UnmatchedPolicy, error) {
	switch UnmatchedPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", UnmatchedWarn:
		return UnmatchedWarn, nil
	case UnmatchedSilent:
		return UnmatchedSilent, nil
	default:
		return "", fmt.Errorf("unsupported unmatched policy: %s (supported: warn, silent)", s)
	}
}

// Options configures an Engine
type Options struct {
	Unmatched UnmatchedPolicy
	Logger    *slog.Logger
}

// Engine splits a paired dataset into train/val/test directories
type Engine struct {
	unmatched UnmatchedPolicy
	logger    *slog.Logger
}

// Result describes one completed split
type Result struct {
	OutputRoot string
	Status     string
	Assignment *models.SplitAssignment
	Items      []models.DatasetItem // matched pairs, sorted by stem
	Report     Report
}

// NewEngine creates a split engine
func NewEngine(opts Options) *Engine {
	if opts.Unmatched == "" {
		opts.Unmatched = UnmatchedWarn
	}
	if opts.Logger == nil {
		opts.Logger = logging.New("splitter")
	}
	return &Engine{
		unmatched: opts.Unmatched,
		logger:    opts.Logger,
	}
}

// Split pairs the files under root, assigns them to splits with seed and copies
// each non-empty split into outputRoot/<split>/{images,labels}. classesPath, when
// set, is copied into every created split. Nothing is written when ratios are
// invalid or no pairs are found. A failed copy stops the split and leaves the
// partial tree for the caller to discard.
func (e *Engine) Split(root, classesPath, outputRoot string, ratios models.SplitRatios, seed int64) (*Result, error) {
	if err := ValidateRatios(ratios); err != nil {
		return nil, err
	}

	pairing, err := PairFiles(root)
	if err != nil {
		return nil, err
	}
	e.logExcluded(pairing)

	if len(pairing.Items) == 0 {
		return nil, fmt.Errorf("%w: no matching image/label pairs found (%d image(s) without label, %d label(s) without image)",
			models.ErrEmptyDataset, len(pairing.UnmatchedImages), len(pairing.UnmatchedLabels))
	}

	e.logger.Info("Pairing complete", "pairs", len(pairing.Items),
		"unmatched_images", len(pairing.UnmatchedImages), "unmatched_labels", len(pairing.UnmatchedLabels))

	assignment := Assign(pairing.Stems(), ratios, seed)

	report := Report{
		Seed:            seed,
		Ratios:          ratios,
		Total:           len(pairing.Items),
		Counts:          make(map[models.Split]int, len(models.AllSplits)),
		UnmatchedImages: pairing.UnmatchedImages,
		UnmatchedLabels: pairing.UnmatchedLabels,
		Duplicates:      pairing.Duplicates,
		ListExcluded:    e.unmatched == UnmatchedWarn,
		OutputRoot:      outputRoot,
	}

	if err := os.MkdirAll(outputRoot, 0755); err != nil {
		return nil, models.NewIOError("create output directory", outputRoot, err)
	}

	items := make(map[string]models.DatasetItem, len(pairing.Items))
	for _, item := range pairing.Items {
		items[item.Stem] = item
	}

	for _, split := range models.AllSplits {
		stems := assignment.Stems(split)
		report.Counts[split] = len(stems)
		if len(stems) == 0 {
			continue
		}

		copied, err := e.materialize(outputRoot, split, stems, items, classesPath)
		if err != nil {
			return nil, err
		}
		if copied {
			report.ClassesCopied++
		}
	}

	return &Result{
		OutputRoot: outputRoot,
		Status:     report.String(),
		Assignment: assignment,
		Items:      pairing.Items,
		Report:     report,
	}, nil
}

func (e *Engine) materialize(outputRoot string, split models.Split, stems []string, items map[string]models.DatasetItem, classesSrc string) (bool, error) {
	splitDir := filepath.Join(outputRoot, string(split))
	imagesDir := filepath.Join(splitDir, "images")
	labelsDir := filepath.Join(splitDir, "labels")

	for _, dir := range []string{imagesDir, labelsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return false, models.NewIOError("create directory", dir, err)
		}
	}

	for _, stem := range stems {
		item := items[stem]
		if err := copyFile(item.ImagePath, filepath.Join(imagesDir, filepath.Base(item.ImagePath))); err != nil {
			return false, err
		}
		if err := copyFile(item.LabelPath, filepath.Join(labelsDir, filepath.Base(item.LabelPath))); err != nil {
			return false, err
		}
	}

	e.logger.Info("Split written", "split", split, "pairs", len(stems), "dir", splitDir)

	if classesSrc == "" {
		return false, nil
	}
	if err := copyFile(classesSrc, filepath.Join(splitDir, filepath.Base(classesSrc))); err != nil {
		return false, err
	}
	return true, nil
}

func (e *Engine) logExcluded(p *Pairing) {
	if e.unmatched != UnmatchedWarn {
		return
	}
	for _, name := range p.UnmatchedImages {
		e.logger.Warn("Image has no matching label, skipping", "file", name)
	}
	for _, name := range p.UnmatchedLabels {
		e.logger.Warn("Label has no matching image, skipping", "file", name)
	}
	for _, name := range p.Duplicates {
		e.logger.Warn("Duplicate stem, skipping", "file", name)
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return models.NewIOError("open", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return models.NewIOError("create", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return models.NewIOError("copy", src, fmt.Errorf("to %s: %w", dst, err))
	}
	return models.NewIOError("close", dst, out.Close())
}
