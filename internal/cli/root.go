// Package cli provides the demodash administration command-line interface.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/akarsten/demodash-go/internal/config"
	"github.com/akarsten/demodash-go/internal/store"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose bool
	baseDir string

	// Global config and collaborators, initialized in PersistentPreRunE.
	cfg      config.Config
	logger   *slog.Logger
	closeLog func() error
	st       *store.Store
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "demodash",
	Short: "Manage file-backed assistant demos",
	Long: `Demodash manages the flat-file demo layout served by demodash-server.

A demo is a directory under public/demos/<id> holding a config.json, an
explainer document and per-assistant icons, plus shared instruction
documents under public/markdown. The commands here create, inspect and
remove demos without going through the HTTP API.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if baseDir != "" {
			cfg.BaseDir = baseDir
		}
		if verbose {
			cfg.LogLevel = slog.LevelDebug
		}

		logger, closeLog = config.SetupLogger(cfg.LogFile, cfg.LogLevel)

		// The CLI runs one operation per process, so the config cache is off.
		st, err = store.New(cfg.BaseDir, 0, logger)
		if err != nil {
			return fmt.Errorf("open demo store: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if closeLog != nil {
			if err := closeLog(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
			}
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&baseDir, "base-dir", "", "demo layout base directory (overrides DEMODASH_BASE_DIR)")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(chatCmd)
}
