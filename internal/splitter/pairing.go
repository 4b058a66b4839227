package splitter

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lehigh-university-libraries/yolosplit/internal/models"
)

// Pairing is the result of matching images/ against labels/ by stem
type Pairing struct {
	Items           []models.DatasetItem // sorted by stem
	UnmatchedImages []string             // image filenames with no label
	UnmatchedLabels []string             // label filenames with no image
	Duplicates      []string             // "images/x.png" style paths whose stem was already taken
}

// Stems returns the matched stems in sorted order
func (p *Pairing) Stems() []string {
	stems := make([]string, len(p.Items))
	for i, item := range p.Items {
		stems[i] = item.Stem
	}
	return stems
}

// Stem strips the final extension from a filename
func Stem(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}

// PairFiles matches files in root/images and root/labels by stem
func PairFiles(root string) (*Pairing, error) {
	pairing := &Pairing{}

	images, err := listByStem(root, "images", pairing)
	if err != nil {
		return nil, err
	}
	labels, err := listByStem(root, "labels", pairing)
	if err != nil {
		return nil, err
	}

	for stem, image := range images {
		label, ok := labels[stem]
		if !ok {
			pairing.UnmatchedImages = append(pairing.UnmatchedImages, image)
			continue
		}
		pairing.Items = append(pairing.Items, models.DatasetItem{
			Stem:      stem,
			ImagePath: filepath.Join(root, "images", image),
			LabelPath: filepath.Join(root, "labels", label),
		})
	}
	for stem, label := range labels {
		if _, ok := images[stem]; !ok {
			pairing.UnmatchedLabels = append(pairing.UnmatchedLabels, label)
		}
	}

	sort.Slice(pairing.Items, func(i, j int) bool { return pairing.Items[i].Stem < pairing.Items[j].Stem })
	sort.Strings(pairing.UnmatchedImages)
	sort.Strings(pairing.UnmatchedLabels)
	sort.Strings(pairing.Duplicates)

	return pairing, nil
}

// listByStem maps stem -> filename for regular, non-hidden files in root/dir,
// following symlinks.
// When two files share a stem the lexicographically first wins.
func listByStem(root, dir string, pairing *Pairing) (map[string]string, error) {
	path := filepath.Join(root, dir)
	entries, err := os.ReadDir(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: missing required folder %s/ in dataset root", models.ErrStructure, dir)
		}
		return nil, models.NewIOError("list", path, err)
	}

	byStem := make(map[string]string, len(entries))
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		// Stat follows symlinks; dangling links, directories and devices are skipped
		info, err := os.Stat(filepath.Join(path, name))
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		stem := Stem(name)
		if _, taken := byStem[stem]; taken {
			pairing.Duplicates = append(pairing.Duplicates, dir+"/"+name)
			continue
		}
		byStem[stem] = name
	}
	return byStem, nil
}
