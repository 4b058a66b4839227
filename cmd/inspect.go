package cmd

import (
	"fmt"
	"strings"

	"github.com/lehigh-university-libraries/yolosplit/internal/manifest"
	"github.com/lehigh-university-libraries/yolosplit/internal/models"
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	var manifestPath string
	var limit int
	var splitName string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Inspect a split manifest",
		Long: `Inspect a manifest written by "yolosplit split --manifest".

Prints the seed, ratios and per-split counts, followed by the first rows of
the assignment.`,
		Example: `  # Summary plus the first 10 rows
  yolosplit inspect --manifest ./split.parquet

  # Every validation entry
  yolosplit inspect --manifest ./split.yaml --split val --limit 0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var only models.Split
			if splitName != "" {
				s, err := models.ParseSplit(splitName)
				if err != nil {
					return err
				}
				only = s
			}

			m, err := manifest.Load(manifestPath)
			if err != nil {
				return fmt.Errorf("failed to load manifest: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Loaded %d entries from %s\n", len(m.Entries), manifestPath)
			fmt.Fprintln(out, strings.Repeat("=", 80))
			fmt.Fprintf(out, "Seed:       %d\n", m.Seed)
			fmt.Fprintf(out, "Ratios:     train=%.2f val=%.2f test=%.2f\n", m.Ratios.Train, m.Ratios.Val, m.Ratios.Test)
			if m.CreatedAt != "" {
				fmt.Fprintf(out, "Created:    %s\n", m.CreatedAt)
			}
			for _, s := range models.AllSplits {
				fmt.Fprintf(out, "%-11s %d\n", string(s)+":", m.Count(s))
			}
			fmt.Fprintln(out, strings.Repeat("-", 80))

			shown := 0
			for _, e := range m.Entries {
				if only != "" && e.Split != string(only) {
					continue
				}
				if limit > 0 && shown >= limit {
					fmt.Fprintf(out, "[... showing first %d entries ...]\n", limit)
					break
				}
				fmt.Fprintf(out, "%-6s %-30s %-30s %s\n", e.Split, e.Stem, e.Image, e.Label)
				shown++
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&manifestPath, "manifest", "", "Path to a .yaml, .yml or .parquet manifest (required)")
	cmd.Flags().IntVar(&limit, "limit", 10, "Number of entries to show (0 for all)")
	cmd.Flags().StringVar(&splitName, "split", "", "Only show entries of this split (train, val or test)")

	_ = cmd.MarkFlagRequired("manifest")

	return cmd
}
