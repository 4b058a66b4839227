package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/lehigh-university-libraries/yolosplit/internal/splitter"
	"github.com/spf13/cobra"
)

func newRatioCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ratio TRAIN VAL TEST",
		Short: "Check whether three split ratios are usable",
		Example: `  yolosplit ratio 0.7 0.2 0.1
  yolosplit ratio 0.8 0.2 0`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var values [3]float64
			for i, arg := range args {
				v, err := strconv.ParseFloat(arg, 64)
				if err != nil {
					return fmt.Errorf("invalid ratio %q: %w", arg, err)
				}
				values[i] = v
			}

			valid, message := splitter.RatioStatus(values[0], values[1], values[2])
			fmt.Fprintln(cmd.OutOrStdout(), message)
			if !valid {
				return errors.New("ratios do not sum to 1.0")
			}
			return nil
		},
	}
}
