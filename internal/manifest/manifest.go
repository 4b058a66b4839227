package manifest

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/yolosplit/internal/models"
)

// Entry records where one matched pair ended up
type Entry struct {
	Stem  string `json:"stem" yaml:"stem" parquet:"stem"`
	Split string `json:"split" yaml:"split" parquet:"split"`
	Image string `json:"image" yaml:"image" parquet:"image"`
	Label string `json:"label" yaml:"label" parquet:"label"`
}

// Manifest describes a complete split. It is written next to the archive,
// never inside the output tree.
type Manifest struct {
	Seed      int64              `yaml:"seed"`
	Ratios    models.SplitRatios `yaml:"ratios"`
	Counts    map[string]int     `yaml:"counts"`
	CreatedAt string             `yaml:"created_at"`
	Entries   []Entry            `yaml:"entries"`
}

// New builds a manifest from an assignment and the matched items.
// Entries are ordered by split, then by shuffled position.
func New(seed int64, ratios models.SplitRatios, a *models.SplitAssignment, items []models.DatasetItem) *Manifest {
	byStem := make(map[string]models.DatasetItem, len(items))
	for _, item := range items {
		byStem[item.Stem] = item
	}

	m := &Manifest{
		Seed:      seed,
		Ratios:    ratios,
		Counts:    make(map[string]int, len(models.AllSplits)),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Entries:   make([]Entry, 0, a.Total()),
	}

	for _, s := range models.AllSplits {
		stems := a.Stems(s)
		m.Counts[string(s)] = len(stems)
		for _, stem := range stems {
			item := byStem[stem]
			m.Entries = append(m.Entries, Entry{
				Stem:  stem,
				Split: string(s),
				Image: filepath.Base(item.ImagePath),
				Label: filepath.Base(item.LabelPath),
			})
		}
	}
	return m
}

// Write saves the manifest, choosing the format from the file extension
func Write(path string, m *Manifest) error {
	switch format(path) {
	case ".yaml":
		return writeYAML(path, m)
	case ".parquet":
		return writeParquet(path, m)
	default:
		return fmt.Errorf("unsupported manifest format: %s (supported: .yaml, .yml, .parquet)", filepath.Ext(path))
	}
}

// Load reads a manifest written by Write
func Load(path string) (*Manifest, error) {
	switch format(path) {
	case ".yaml":
		return loadYAML(path)
	case ".parquet":
		return loadParquet(path)
	default:
		return nil, fmt.Errorf("unsupported manifest format: %s (supported: .yaml, .yml, .parquet)", filepath.Ext(path))
	}
}

func format(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yml" {
		return ".yaml"
	}
	return ext
}

// Count returns how many entries belong to split s
func (m *Manifest) Count(s models.Split) int {
	n := 0
	for _, e := range m.Entries {
		if e.Split == string(s) {
			n++
		}
	}
	return n
}
