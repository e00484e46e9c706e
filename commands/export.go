package commands

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/penwyp/go-glider-monitor/internal/analyzer"
	"github.com/penwyp/go-glider-monitor/internal/core/model"
	"github.com/penwyp/go-glider-monitor/internal/util"
	"github.com/spf13/cobra"
)

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export <file.igc>",
	Short: "Export the enriched track of one flight",
	Long: `Parses one IGC file, runs circling detection over it and writes every fix
with its heading and circling flag.

Examples:
  go-glider-monitor export flight.igc                       # CSV to stdout
  go-glider-monitor export flight.igc --format json --out track.json`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", model.OutputCSV,
		"Export format (csv, json)")
	exportCmd.Flags().StringVar(&exportOut, "out", "",
		"Write to this file instead of stdout")
}

func runExport(cmd *cobra.Command, args []string) error {
	if err := setupLogging(); err != nil {
		return err
	}

	a, err := analyzer.New(&analyzer.Config{
		DataDir:        expandPath(dataDir),
		CacheDir:       expandPath(cacheDir),
		Concurrency:    runtime.NumCPU(),
		AltitudeSource: altitudeSource,
		Motion:         motionConfig(),
	})
	if err != nil {
		return err
	}

	path := expandPath(args[0])
	if exportOut == "" {
		if err := a.ExportPoints(path, exportFormat, cmd.OutOrStdout()); err != nil {
			return err
		}
	} else if err := exportToFile(a, path, expandPath(exportOut)); err != nil {
		return err
	}
	util.LogInfof("Exported %s as %s", path, exportFormat)
	return nil
}

func exportToFile(a *analyzer.Analyzer, path, target string) error {
	file, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	return writeAndClose(a, path, file)
}

// writeAndClose exports into w and always closes it. A failed close is
// returned when the export itself succeeded.
func writeAndClose(a *analyzer.Analyzer, path string, w io.WriteCloser) error {
	err := a.ExportPoints(path, exportFormat, w)
	if closeErr := w.Close(); closeErr != nil && err == nil {
		err = fmt.Errorf("failed to write output file: %w", closeErr)
	}
	return err
}
