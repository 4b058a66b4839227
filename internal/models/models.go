package models

import (
	"fmt"
	"time"
)

// Split names one of the output subsets
type Split string

const (
	SplitTrain Split = "train"
	SplitVal   Split = "val"
	SplitTest  Split = "test"
)

// AllSplits lists the splits in canonical output order
var AllSplits = []Split{SplitTrain, SplitVal, SplitTest}

// ParseSplit converts a split name into a Split
func ParseSplit(name string) (Split, error) {
	switch Split(name) {
	case SplitTrain, SplitVal, SplitTest:
		return Split(name), nil
	default:
		return "", fmt.Errorf("unknown split: %q", name)
	}
}

// DatasetItem is one image and its label, keyed by filename stem
type DatasetItem struct {
	Stem      string `json:"stem"`
	ImagePath string `json:"image_path"`
	LabelPath string `json:"label_path,omitempty"`
}

// SplitRatios holds the requested fraction for each split
type SplitRatios struct {
	Train float64 `json:"train" yaml:"train"`
	Val   float64 `json:"val" yaml:"val"`
	Test  float64 `json:"test" yaml:"test"`
}

// DefaultRatios is the 70/20/10 split
var DefaultRatios = SplitRatios{Train: 0.7, Val: 0.2, Test: 0.1}

// Sum returns train+val+test
func (r SplitRatios) Sum() float64 {
	return r.Train + r.Val + r.Test
}

// Of returns the ratio for the given split
func (r SplitRatios) Of(s Split) float64 {
	switch s {
	case SplitTrain:
		return r.Train
	case SplitVal:
		return r.Val
	case SplitTest:
		return r.Test
	}
	return 0
}

// Job tracks one split request made through the web interface
type Job struct {
	ID          string      `json:"id"`
	Source      string      `json:"source"`
	Ratios      SplitRatios `json:"ratios"`
	Seed        int64       `json:"seed"`
	Status      string      `json:"status"`
	OK          bool        `json:"ok"`
	OutputDir   string      `json:"output_dir,omitempty"`
	ArchivePath string      `json:"-"`
	ArchiveURL  string      `json:"archive_url,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}
