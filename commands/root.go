package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/penwyp/go-glider-monitor/internal/analyzer"
	"github.com/penwyp/go-glider-monitor/internal/core/model"
	"github.com/penwyp/go-glider-monitor/internal/core/motion"
	"github.com/penwyp/go-glider-monitor/internal/util"
	"github.com/spf13/cobra"
)

var (
	// Logging related
	debug   bool
	logFile string

	// Data paths
	dataDir  string
	cacheDir string

	// Output related
	outputFormat string
	timezone     string

	// Grouping
	groupBy string
	limit   int
	reset   bool

	// Analysis settings
	altitudeSource string
	windowSize     int
	turnThreshold  float64
	signTolerance  float64

	rootCmd = &cobra.Command{
		Use:   "go-glider-monitor [flags]",
		Short: "Glider flight log analysis tool",
		Long: `go-glider-monitor is a command-line tool for analyzing glider flight logs.

This tool scans IGC files in a directory, detects circling (thermalling) phases and reports flight statistics such as the time-weighted average climb rate.

Examples:
  go-glider-monitor                                   # Analyze IGC files in the current directory
  go-glider-monitor --dir ~/flights                   # Analyze specified directory
  go-glider-monitor --group-by day --output summary   # One row per flying day, summary view
  go-glider-monitor --output json --limit 10          # Last 10 flights as JSON
  go-glider-monitor --altitude pressure               # Use barometric altitude
  go-glider-monitor --window 30 --turn-threshold 270  # Tune circling detection
  go-glider-monitor export flight.igc --format csv    # Dump the enriched track
  go-glider-monitor watch --dir ~/flights             # Report new logs as they arrive`,
		SilenceUsage: true,
		RunE:         runAnalyze,
	}
)

const (
	defaultLogFile  = "~/.go-glider-monitor/logs/app.log"
	defaultCacheDir = "~/.go-glider-monitor/cache"
	defaultDataDir  = "."
)

func init() {
	// Input data configuration
	rootCmd.PersistentFlags().StringVar(&dataDir, "dir", defaultDataDir,
		"Directory searched recursively for IGC files")
	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", defaultCacheDir,
		"Directory holding cached flight summaries")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", defaultLogFile,
		"Log file path")

	// Data organization
	rootCmd.Flags().StringVar(&groupBy, "group-by", model.GroupByFlight,
		"Group by field (flight, day, month)")
	rootCmd.Flags().IntVar(&limit, "limit", 0,
		"Show only the most recent N rows (0 = unlimited)")

	// Output configuration
	rootCmd.Flags().StringVarP(&outputFormat, "output", "o", model.OutputTable,
		"Output format (table, json, csv, summary)")
	rootCmd.Flags().StringVar(&outputFormat, "format", "",
		"Alias for --output")
	rootCmd.Flags().StringVar(&timezone, "timezone", "Local",
		"Timezone used to group by day and month (e.g., Europe/Berlin, UTC)")

	// Analysis settings shared by every command
	rootCmd.PersistentFlags().StringVar(&altitudeSource, "altitude", model.AltitudeGNSS,
		"Altitude source (gnss, pressure)")
	rootCmd.PersistentFlags().IntVar(&windowSize, "window", motion.DefaultWindowSize,
		"Circling window size in heading changes")
	rootCmd.PersistentFlags().Float64Var(&turnThreshold, "turn-threshold", motion.DefaultTurnThreshold,
		"Net turn in degrees a window needs to count as circling")
	rootCmd.PersistentFlags().Float64Var(&signTolerance, "sign-tolerance", motion.DefaultSignTolerance,
		"Share of a window's turning allowed against its net direction")

	// System and debugging
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"Enable debug mode")
	rootCmd.Flags().BoolVarP(&reset, "reset", "r", false,
		"Clear cache before analysis")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	// Handle format alias
	if format := cmd.Flags().Lookup("format"); format != nil && format.Changed {
		outputFormat = format.Value.String()
	}

	if err := setupLogging(); err != nil {
		return err
	}

	cache := expandPath(cacheDir)
	if err := ensureDir(cache); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	// Clear cache if needed
	if reset {
		if err := clearCache(cache); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
		util.LogInfo("Cache cleared")
	}

	config := &analyzer.Config{
		DataDir:        expandPath(dataDir),
		CacheDir:       cache,
		OutputFormat:   outputFormat,
		Timezone:       timezone,
		GroupBy:        groupBy,
		Limit:          limit,
		Concurrency:    runtime.NumCPU(),
		AltitudeSource: altitudeSource,
		Motion:         motionConfig(),
		Output:         cmd.OutOrStdout(),
	}

	a, err := analyzer.New(config)
	if err != nil {
		return err
	}
	return a.Run()
}

func Execute() error {
	return rootCmd.Execute()
}

// Helper functions

// setupLogging logs to the log file, and to stderr as well in debug mode.
func setupLogging() error {
	level := "info"
	if debug {
		level = "debug"
	}

	return util.InitLogger(util.LoggerOptions{
		Level:   level,
		File:    expandPath(logFile),
		Console: debug,
	})
}

func motionConfig() motion.Config {
	return motion.Config{
		WindowSize:    windowSize,
		TurnThreshold: turnThreshold,
		SignTolerance: signTolerance,
	}
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}

func clearCache(cacheDir string) error {
	entries, err := os.ReadDir(cacheDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".json" {
			path := filepath.Join(cacheDir, entry.Name())
			if err := os.Remove(path); err != nil {
				return err
			}
		}
	}

	return nil
}
