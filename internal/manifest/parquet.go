package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/lehigh-university-libraries/yolosplit/internal/models"
	"github.com/parquet-go/parquet-go"
)

// Key-value metadata carried in the parquet footer
const (
	metaSeed      = "yolosplit.seed"
	metaRatios    = "yolosplit.ratios"
	metaCreatedAt = "yolosplit.created_at"
)

func writeParquet(path string, m *Manifest) error {
	ratios, err := json.Marshal(m.Ratios)
	if err != nil {
		return fmt.Errorf("failed to encode ratios: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create parquet file: %w", err)
	}
	defer file.Close()

	writer := parquet.NewGenericWriter[Entry](file,
		parquet.KeyValueMetadata(metaSeed, strconv.FormatInt(m.Seed, 10)),
		parquet.KeyValueMetadata(metaRatios, string(ratios)),
		parquet.KeyValueMetadata(metaCreatedAt, m.CreatedAt),
	)

	if _, err := writer.Write(m.Entries); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}

	slog.Debug("Manifest written", "path", path, "format", "parquet", "entries", len(m.Entries))
	return nil
}

func loadParquet(path string) (*Manifest, error) {
	slog.Debug("Opening Parquet manifest", "path", path)

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	m := &Manifest{Counts: make(map[string]int, len(models.AllSplits))}
	for _, s := range models.AllSplits {
		m.Counts[string(s)] = 0
	}
	if v, ok := pf.Lookup(metaSeed); ok {
		if m.Seed, err = strconv.ParseInt(v, 10, 64); err != nil {
			return nil, fmt.Errorf("invalid seed metadata %q: %w", v, err)
		}
	}
	if v, ok := pf.Lookup(metaRatios); ok {
		var r models.SplitRatios
		if err := json.Unmarshal([]byte(v), &r); err != nil {
			return nil, fmt.Errorf("invalid ratios metadata: %w", err)
		}
		m.Ratios = r
	}
	m.CreatedAt, _ = pf.Lookup(metaCreatedAt)

	reader := parquet.NewGenericReader[Entry](pf)
	defer reader.Close()

	rows := make([]Entry, 128)
	for {
		n, err := reader.Read(rows)
		m.Entries = append(m.Entries, rows[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}

	for _, e := range m.Entries {
		m.Counts[e.Split]++
	}

	slog.Debug("Finished reading Parquet manifest", "entries", len(m.Entries))
	return m, nil
}
