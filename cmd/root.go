package cmd

import (
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/lehigh-university-libraries/yolosplit/internal/config"
	"github.com/lehigh-university-libraries/yolosplit/internal/logging"
	"github.com/spf13/cobra"
)

// rootOptions is shared by every subcommand; cfg is populated before RunE
type rootOptions struct {
	configPath string
	verbose    bool
	cfg        config.Config
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{cfg: config.Default()}

	cmd := &cobra.Command{
		Use:   "yolosplit",
		Short: "Split YOLO datasets into train/val/test",
		Long: `yolosplit shuffles a YOLO-format dataset (images/, labels/ and an optional
classes.txt) and repackages it into train, val and test splits.

The shuffle is seeded, so the same dataset, ratios and seed always produce the
same assignment. Results are written as a directory tree and a zip archive.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			cfg, err := config.Load(opts.configPath, cmd.Flags().Changed("config"))
			if err != nil {
				return err
			}
			if opts.verbose {
				cfg.LogLevel = "debug"
			}
			opts.cfg = cfg

			logging.Init(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat, cmd.ErrOrStderr())
			slog.Debug("Configuration loaded", "config", opts.configPath, "seed", cfg.Seed, "workdir", cfg.WorkDir)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultPath, "Path to YAML config file")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	// Add subcommands
	cmd.AddCommand(newSplitCmd(opts))
	cmd.AddCommand(newRatioCmd())
	cmd.AddCommand(newInspectCmd())
	cmd.AddCommand(newServeCmd(opts))

	return cmd
}
