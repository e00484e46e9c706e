package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/penwyp/go-glider-monitor/internal/analyzer"
	"github.com/penwyp/go-glider-monitor/internal/core/model"
	"github.com/penwyp/go-glider-monitor/internal/data/aggregator"
	"github.com/penwyp/go-glider-monitor/internal/data/watcher"
	"github.com/penwyp/go-glider-monitor/internal/util"
	"github.com/spf13/cobra"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Analyze IGC files as they are added or changed",
	Long: `Prints the flights already below --dir, then watches the directory tree and
prints one line per log that is created or rewritten. Removed logs are dropped
from the cache. Stop with Ctrl+C.`,
	SilenceUsage: true,
	RunE:         runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watcher.DefaultDebounce,
		"Quiet period before a changed file is analyzed")
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := setupLogging(); err != nil {
		return err
	}

	cache := expandPath(cacheDir)
	if err := ensureDir(cache); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	dir := expandPath(dataDir)
	out := cmd.OutOrStdout()
	a, err := analyzer.New(&analyzer.Config{
		DataDir:        dir,
		CacheDir:       cache,
		OutputFormat:   model.OutputTable,
		Concurrency:    runtime.NumCPU(),
		AltitudeSource: altitudeSource,
		Motion:         motionConfig(),
		Output:         out,
	})
	if err != nil {
		return err
	}

	fw, err := watcher.NewFileWatcher([]string{dir}, watchDebounce)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	defer fw.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintln(out, util.FormatHeaderTitle("Watching "+dir))
	if flights, err := a.Analyze(); err == nil {
		if err := a.Report(flights); err != nil {
			return err
		}
	} else {
		util.LogInfof("No flights yet: %v", err)
	}

	return watchLoop(ctx, a, fw.Events(), out)
}

// watchLoop handles events until ctx is cancelled or events is closed.
func watchLoop(ctx context.Context, a *analyzer.Analyzer, events <-chan model.FileEvent, out io.Writer) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			handleFileEvent(a, event, out)
		}
	}
}

func handleFileEvent(a *analyzer.Analyzer, event model.FileEvent, out io.Writer) {
	name := filepath.Base(event.Path)
	log := util.With(util.F("path", event.Path), util.F("op", event.Operation))
	log.Debug("File event")

	if event.Operation == model.FileOpRemove {
		if err := a.Forget(event.Path); err != nil {
			log.Warnf("Failed to drop cache entry: %v", err)
		}
		fmt.Fprintf(out, "%s removed\n", name)
		return
	}

	data, err := a.ProcessFile(event.Path)
	if err != nil {
		// a log still being copied is reported again on its next write
		if errors.Is(err, os.ErrNotExist) {
			return
		}
		log.Warnf("Failed to analyse: %v", err)
		fmt.Fprintf(out, "%s: %v\n", name, err)
		return
	}
	log.Info("Flight analysed", util.F("flight", data.FlightID), util.F("thermals", len(data.Thermals)))
	fmt.Fprintln(out, formatFlightLine(data))
}

// formatFlightLine renders one flight on a single line.
func formatFlightLine(d *aggregator.AggregatedData) string {
	row := analyzer.FlightRow(d)
	climb := util.Colorize(util.FormatClimbRate(row.AverageClimbRate), util.ClimbColor(row.AverageClimbRate))
	return fmt.Sprintf("%s  %s  %s  %s  circling %s  avg climb %s  thermals %d",
		d.FlightID,
		d.Takeoff.UTC().Format("2006-01-02 15:04 UTC"),
		util.FormatDuration(row.Duration),
		util.FormatDistance(row.Distance),
		util.FormatPercent(row.CirclingRatio),
		climb,
		row.Thermals,
	)
}
