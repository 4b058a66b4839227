package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/lehigh-university-libraries/yolosplit/internal/models"
)

func sampleManifest() *Manifest {
	a := models.NewSplitAssignment(map[models.Split][]string{
		models.SplitTrain: {"c", "a"},
		models.SplitVal:   {"b"},
	})
	items := []models.DatasetItem{
		{Stem: "a", ImagePath: "/data/images/a.jpg", LabelPath: "/data/labels/a.txt"},
		{Stem: "b", ImagePath: "/data/images/b.png", LabelPath: "/data/labels/b.txt"},
		{Stem: "c", ImagePath: "/data/images/c.jpeg", LabelPath: "/data/labels/c.txt"},
	}
	return New(42, models.SplitRatios{Train: 0.7, Val: 0.3}, a, items)
}

func TestNew(t *testing.T) {
	m := sampleManifest()

	want := []Entry{
		{Stem: "c", Split: "train", Image: "c.jpeg", Label: "c.txt"},
		{Stem: "a", Split: "train", Image: "a.jpg", Label: "a.txt"},
		{Stem: "b", Split: "val", Image: "b.png", Label: "b.txt"},
	}
	if diff := cmp.Diff(want, m.Entries); diff != "" {
		t.Errorf("Entries mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]int{"train": 2, "val": 1, "test": 0}, m.Counts); diff != "" {
		t.Errorf("Counts mismatch (-want +got):\n%s", diff)
	}
	if m.Count(models.SplitTrain) != 2 {
		t.Errorf("Expected 2 train entries, got %d", m.Count(models.SplitTrain))
	}
}

func TestWriteLoad(t *testing.T) {
	tests := []struct {
		name string
		file string
	}{
		{"yaml", "manifest.yaml"},
		{"yml", "manifest.yml"},
		{"parquet", "manifest.parquet"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			m := sampleManifest()

			if err := Write(path, m); err != nil {
				t.Fatalf("Write failed: %v", err)
			}

			loaded, err := Load(path)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}

			if diff := cmp.Diff(m, loaded); diff != "" {
				t.Errorf("Manifest mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.csv")

	if err := Write(path, sampleManifest()); err == nil {
		t.Error("Expected error writing unsupported format")
	}
	if _, err := os.Stat(path); err == nil {
		t.Error("No file should be created for unsupported format")
	}
	if _, err := Load(path); err == nil {
		t.Error("Expected error loading unsupported format")
	}
}

func TestLoadNonExistentFile(t *testing.T) {
	if _, err := Load("/nonexistent/manifest.parquet"); err == nil {
		t.Error("Expected error for non-existent parquet file")
	}
	if _, err := Load("/nonexistent/manifest.yaml"); err == nil {
		t.Error("Expected error for non-existent yaml file")
	}
}
