package splitter

import (
	"fmt"
	"strings"

	"github.com/lehigh-university-libraries/yolosplit/internal/models"
)

// maxListed caps how many excluded filenames appear in the status message
const maxListed = 10

// Report holds the numbers behind a status message
type Report struct {
	Seed            int64
	Ratios          models.SplitRatios
	Total           int
	Counts          map[models.Split]int
	UnmatchedImages []string
	UnmatchedLabels []string
	Duplicates      []string
	ListExcluded    bool
	ClassesCopied   int
	OutputRoot      string
}

// Skipped returns the splits whose ratio was exactly zero
func (r Report) Skipped() []models.Split {
	var skipped []models.Split
	for _, s := range models.AllSplits {
		if r.Ratios.Of(s) == 0 {
			skipped = append(skipped, s)
		}
	}
	return skipped
}

// String renders the multi-line status message
func (r Report) String() string {
	var b strings.Builder

	b.WriteString("✅ Split completed successfully!\n\n")
	fmt.Fprintf(&b, "Seed: %d\n", r.Seed)
	fmt.Fprintf(&b, "Total matched pairs: %d\n\n", r.Total)

	b.WriteString("Split counts:\n")
	for _, s := range models.AllSplits {
		if r.Ratios.Of(s) == 0 {
			continue
		}
		n := r.Counts[s]
		pct := 0.0
		if r.Total > 0 {
			pct = float64(n) / float64(r.Total) * 100
		}
		line := fmt.Sprintf("  %-6s %d pairs (%.1f%%)", string(s)+":", n, pct)
		if n == 0 {
			line += " - no pairs after rounding, not created"
		}
		b.WriteString(line + "\n")
	}

	if skipped := r.Skipped(); len(skipped) > 0 {
		names := make([]string, len(skipped))
		for i, s := range skipped {
			names[i] = string(s)
		}
		fmt.Fprintf(&b, "Skipped splits (ratio 0): %s\n", strings.Join(names, ", "))
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "Unmatched images (no label): %d\n", len(r.UnmatchedImages))
	r.writeNames(&b, "images", r.UnmatchedImages)
	fmt.Fprintf(&b, "Unmatched labels (no image): %d\n", len(r.UnmatchedLabels))
	r.writeNames(&b, "labels", r.UnmatchedLabels)
	if len(r.Duplicates) > 0 {
		fmt.Fprintf(&b, "Duplicate stems ignored: %d\n", len(r.Duplicates))
		r.writeNames(&b, "", r.Duplicates)
	}

	if r.ClassesCopied > 0 {
		fmt.Fprintf(&b, "classes.txt: copied to %d split(s)\n", r.ClassesCopied)
	} else {
		b.WriteString("classes.txt: not found in source, skipped\n")
	}

	if r.OutputRoot != "" {
		fmt.Fprintf(&b, "\nOutput directory: %s\n", r.OutputRoot)
	}

	return strings.TrimRight(b.String(), "\n")
}

func (r Report) writeNames(b *strings.Builder, dir string, names []string) {
	if !r.ListExcluded {
		return
	}
	for i, name := range names {
		if i == maxListed {
			fmt.Fprintf(b, "  ... and %d more\n", len(names)-maxListed)
			return
		}
		if dir != "" {
			name = dir + "/" + name
		}
		fmt.Fprintf(b, "  - %s\n", name)
	}
}
