package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/penwyp/go-glider-monitor/internal/util"
)

type TableFormatter struct {
	out     io.Writer
	headers []string
}

// NewTableFormatter writes a boxed table to out. keyHeader names the first
// column (Flight, Day or Month).
func NewTableFormatter(out io.Writer, keyHeader string) *TableFormatter {
	return &TableFormatter{
		out: out,
		headers: []string{
			keyHeader, "Flights", "Duration", "Distance", "Max Alt",
			"Circling", "Gain", "Avg Climb", "Best Thermal",
		},
	}
}

func (f *TableFormatter) Format(data []GroupedData) error {
	rows := make([][]string, 0, len(data)+1)
	for _, row := range data {
		rows = append(rows, f.cells(row))
	}
	total := f.cells(Total(data))
	widths := f.calculateColumnWidths(append(rows, total))

	var b strings.Builder
	f.writeBorder(&b, widths, "top")
	f.writeRow(&b, f.headers, widths)
	f.writeBorder(&b, widths, "middle")
	for _, row := range rows {
		f.writeRow(&b, row, widths)
	}
	f.writeBorder(&b, widths, "middle")
	f.writeRow(&b, total, widths)
	f.writeBorder(&b, widths, "bottom")

	_, err := io.WriteString(f.out, b.String())
	return err
}

func (f *TableFormatter) cells(row GroupedData) []string {
	best := "-"
	if row.Thermals > 0 {
		best = util.FormatClimbRate(row.BestThermal)
	}
	return []string{
		row.Key,
		fmt.Sprintf("%d", row.Flights),
		util.FormatDuration(row.Duration),
		util.FormatDistance(row.Distance),
		util.FormatAltitude(row.MaxAltitude),
		fmt.Sprintf("%s (%s)", util.FormatDuration(row.CirclingDuration), util.FormatPercent(row.CirclingRatio)),
		util.FormatAltitude(row.CirclingGain),
		util.FormatClimbRate(row.AverageClimbRate),
		best,
	}
}

// calculateColumnWidths sizes each column to its widest cell in display cells.
func (f *TableFormatter) calculateColumnWidths(rows [][]string) []int {
	widths := make([]int, len(f.headers))
	for i, header := range f.headers {
		widths[i] = max(util.GetDisplayWidth(header), 6)
	}
	for _, row := range rows {
		for i, value := range row {
			widths[i] = max(widths[i], util.GetDisplayWidth(value))
		}
	}
	return widths
}

func (f *TableFormatter) writeBorder(b *strings.Builder, widths []int, borderType string) {
	var left, middle, right string
	switch borderType {
	case "top":
		left, middle, right = "┌", "┬", "┐"
	case "middle":
		left, middle, right = "├", "┼", "┤"
	default:
		left, middle, right = "└", "┴", "┘"
	}

	b.WriteString(left)
	for i, width := range widths {
		b.WriteString(strings.Repeat("─", width+2))
		if i < len(widths)-1 {
			b.WriteString(middle)
		}
	}
	b.WriteString(right)
	b.WriteByte('\n')
}

// writeRow left-aligns the key column and right-aligns the figures.
func (f *TableFormatter) writeRow(b *strings.Builder, values []string, widths []int) {
	b.WriteString("│")
	for i, value := range values {
		b.WriteByte(' ')
		b.WriteString(util.PadString(value, widths[i], i == 0))
		b.WriteString(" │")
	}
	b.WriteByte('\n')
}
