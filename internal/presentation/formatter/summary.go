package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/penwyp/go-glider-monitor/internal/util"
)

const summaryRule = 60

// SummaryFormatter prints totals and a climb rate bar chart.
type SummaryFormatter struct {
	out   io.Writer
	width int
}

// NewSummaryFormatter sizes the bar chart to width cells; zero means the
// terminal width.
func NewSummaryFormatter(out io.Writer, width int) *SummaryFormatter {
	if width <= 0 {
		width = util.TerminalWidth()
	}
	return &SummaryFormatter{out: out, width: width}
}

func (f *SummaryFormatter) Format(data []GroupedData) error {
	var b strings.Builder

	b.WriteString(strings.Repeat("=", summaryRule) + "\n")
	b.WriteString(util.FormatHeaderTitle("Soaring Summary Report") + "\n")
	b.WriteString(strings.Repeat("=", summaryRule) + "\n\n")

	if len(data) == 0 {
		b.WriteString("No flights to summarize\n\n")
		b.WriteString(strings.Repeat("=", summaryRule) + "\n")
		_, err := io.WriteString(f.out, b.String())
		return err
	}

	first, last := data[0].Key, data[len(data)-1].Key
	if first == last {
		fmt.Fprintf(&b, "Range: %s\n\n", first)
	} else {
		fmt.Fprintf(&b, "Range: %s to %s\n\n", first, last)
	}

	total := Total(data)
	b.WriteString("Flying:\n")
	fmt.Fprintf(&b, "  Flights:        %d\n", total.Flights)
	fmt.Fprintf(&b, "  Fixes:          %s\n", util.FormatNumber(total.Fixes))
	fmt.Fprintf(&b, "  Flight time:    %s\n", util.FormatDuration(total.Duration))
	fmt.Fprintf(&b, "  Distance:       %s\n", util.FormatDistance(total.Distance))
	fmt.Fprintf(&b, "  Max altitude:   %s\n\n", util.FormatAltitude(total.MaxAltitude))

	b.WriteString("Thermalling:\n")
	fmt.Fprintf(&b, "  Circling time:  %s %s %s\n", util.FormatDuration(total.CirclingDuration),
		util.CreateProgressBar(total.CirclingRatio, 22), util.FormatPercent(total.CirclingRatio))
	fmt.Fprintf(&b, "  Thermals:       %d\n", total.Thermals)
	fmt.Fprintf(&b, "  Gain:           %s\n", util.FormatAltitude(total.CirclingGain))
	fmt.Fprintf(&b, "  Avg climb:      %s\n", util.Colorize(util.FormatClimbRate(total.AverageClimbRate), util.ClimbColor(total.AverageClimbRate)))
	if total.Thermals > 0 {
		fmt.Fprintf(&b, "  Best thermal:   %s\n", util.FormatClimbRate(total.BestThermal))
	}
	b.WriteString("\n")

	f.writeClimbChart(&b, data)

	b.WriteString("\n" + strings.Repeat("=", summaryRule) + "\n")
	_, err := io.WriteString(f.out, b.String())
	return err
}

// writeClimbChart draws one bar per row, scaled to the best average climb.
func (f *SummaryFormatter) writeClimbChart(b *strings.Builder, data []GroupedData) {
	b.WriteString("Average climb:\n")
	b.WriteString(util.FormatSectionSeparator(summaryRule) + "\n")

	keyWidth := 0
	best := 0.0
	for _, row := range data {
		keyWidth = max(keyWidth, util.GetDisplayWidth(row.Key))
		best = max(best, row.AverageClimbRate)
	}
	keyWidth = min(keyWidth, 24)

	// key, two spaces, bar, space, rate
	barWidth := max(f.width-keyWidth-3-len("+0.00 m/s"), 10)
	for _, row := range data {
		ratio := 0.0
		if best > 0 {
			ratio = row.AverageClimbRate / best
		}
		fmt.Fprintf(b, "%s  %s %s\n",
			util.PadString(util.TruncateString(row.Key, keyWidth), keyWidth, true),
			util.CreateProgressBar(ratio, barWidth),
			util.FormatClimbRate(row.AverageClimbRate))
	}
}
