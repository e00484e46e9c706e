package formatter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

type CSVFormatter struct {
	out       io.Writer
	keyHeader string
}

func NewCSVFormatter(out io.Writer, keyHeader string) *CSVFormatter {
	return &CSVFormatter{out: out, keyHeader: keyHeader}
}

// Format writes raw figures: seconds, meters and m/s without unit suffixes.
func (f *CSVFormatter) Format(data []GroupedData) error {
	w := csv.NewWriter(f.out)

	headers := []string{
		f.keyHeader, "Flights", "Fixes", "Duration (s)", "Distance (m)", "Max Altitude (m)",
		"Circling (s)", "Circling Ratio", "Circling Gain (m)", "Avg Climb (m/s)",
		"Thermals", "Best Thermal (m/s)",
	}
	if err := w.Write(headers); err != nil {
		return err
	}

	for _, row := range data {
		record := []string{
			row.Key,
			strconv.Itoa(row.Flights),
			strconv.Itoa(row.Fixes),
			fmt.Sprintf("%.0f", row.Duration.Seconds()),
			fmt.Sprintf("%.1f", row.Distance),
			fmt.Sprintf("%.0f", row.MaxAltitude),
			fmt.Sprintf("%.0f", row.CirclingDuration.Seconds()),
			fmt.Sprintf("%.3f", row.CirclingRatio),
			fmt.Sprintf("%.0f", row.CirclingGain),
			fmt.Sprintf("%.3f", row.AverageClimbRate),
			strconv.Itoa(row.Thermals),
			fmt.Sprintf("%.3f", row.BestThermal),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
