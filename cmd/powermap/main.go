package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"powermap/internal/config"
	"powermap/internal/logging"
	"powermap/internal/pipeline"
)

var (
	// Global flags
	verbose    bool
	workspace  string
	configPath string
	timeout    time.Duration

	// Logger
	logger *zap.Logger

	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "powermap",
	Short: "powermap - UK government power map build pipeline",
	Long: `powermap builds the UK government power map: a static site showing who
holds power (departments, ministers, budgets) and where the electoral
pressure is (constituency demographics, 2024 results, Reform/Leave maps).

It is an offline ETL pipeline. Each subcommand runs one phase; running
without arguments runs the full build in order:
  extract -> ethnicity -> demographics -> elections -> issues ->
  timeline -> validate -> dist`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		if workspace == "" {
			workspace, _ = os.Getwd()
		}
		if configPath != "" {
			cfg, err = config.LoadFile(configPath)
		} else {
			cfg, err = config.Load(workspace)
		}
		if err != nil {
			return err
		}
		logging.Initialize(workspace)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: run the full build
		return runFullBuild(cmd)
	},
}

func newPipeline() *pipeline.Pipeline {
	return pipeline.New(workspace, cfg)
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: current)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: <workspace>/.powermap/config.yaml)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Operation timeout")

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(ethnicityCmd)
	rootCmd.AddCommand(demographicsCmd)
	rootCmd.AddCommand(electionsCmd)
	rootCmd.AddCommand(issuesCmd)
	rootCmd.AddCommand(timelineCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(distCmd)
	rootCmd.AddCommand(mapsCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
