package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/perfwave/phoenix-go/pkg/config"
	"github.com/perfwave/phoenix-go/pkg/mrlog"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Runtime tuning flags, applied on top of whatever configPath loads
	numThreads      int
	schedPolicy     string
	taskMultiplier  int
	loadFactor      float64
	initialCapacity int

	logger mrlog.Logger
	rtCfg  config.RuntimeConfig
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "phoenixctl",
	Short: "Run shared-memory MapReduce example workloads",
	Long: `phoenixctl drives the bundled MapReduce example applications
(word count, histogram, k-means, linear regression, matrix multiply,
string match, PCA) against the phoenix-go runtime.

Every subcommand shares the same runtime tuning flags: worker count,
scheduling policy, and container sizing.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := mrlog.LevelInfo
		if verbose {
			level = mrlog.LevelDebug
		}
		logger = mrlog.NewTextLogger(level, os.Stderr)

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		rtCfg = cfg.Runtime

		if cmd.Flags().Changed("threads") {
			rtCfg.NumThreads = numThreads
		}
		if cmd.Flags().Changed("sched-policy") {
			rtCfg.SchedPolicy = schedPolicy
		}
		if cmd.Flags().Changed("task-multiplier") {
			rtCfg.TaskMultiplier = taskMultiplier
		}
		if cmd.Flags().Changed("load-factor") {
			rtCfg.LoadFactor = loadFactor
		}
		if cmd.Flags().Changed("initial-capacity") {
			rtCfg.InitialCapacity = initialCapacity
		}

		return nil
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a phoenix config file (defaults to ./phoenix.yaml if present)")

	rootCmd.PersistentFlags().IntVar(&numThreads, "threads", 0, "Worker lane count (0 uses the CPU count)")
	rootCmd.PersistentFlags().StringVar(&schedPolicy, "sched-policy", "strand-fill", "Scheduling policy: strand-fill, core-fill, chip-fill")
	rootCmd.PersistentFlags().IntVar(&taskMultiplier, "task-multiplier", 16, "Map-task fan-out multiplier")
	rootCmd.PersistentFlags().Float64Var(&loadFactor, "load-factor", 0.5, "Advisory hash container resize threshold (validated, not applied)")
	rootCmd.PersistentFlags().IntVar(&initialCapacity, "initial-capacity", 64, "Advisory hash container starting bucket count (validated, not applied)")

	binName := BinName()
	rootCmd.Example = `  # Count word frequencies in a text file
  ` + binName + ` wordcount -i ./text.txt --top 10

  # Build a 24-bit BMP color histogram
  ` + binName + ` histogram -i ./image.bmp

  # Cluster random points with k-means
  ` + binName + ` kmeans -k 4 -n 10000

  # Run every bundled example with 8 worker lanes
  ` + binName + ` run --threads 8`
}

// GetLogger returns the configured logger.
func GetLogger() mrlog.Logger {
	return logger
}

// RuntimeConfig returns the runtime configuration assembled from flags
// and the loaded config file.
func RuntimeConfig() config.RuntimeConfig {
	return rtCfg
}

// BinName returns the base name of the current executable.
func BinName() string {
	return filepath.Base(os.Args[0])
}
