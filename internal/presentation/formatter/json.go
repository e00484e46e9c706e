package formatter

import (
	"io"

	"github.com/bytedance/sonic"
)

type jsonRow struct {
	Key              string  `json:"key"`
	Flights          int     `json:"flights"`
	Fixes            int     `json:"fixes"`
	DurationSeconds  float64 `json:"durationSeconds"`
	DistanceMeters   float64 `json:"distanceMeters"`
	MaxAltitude      float64 `json:"maxAltitude"`
	CirclingSeconds  float64 `json:"circlingSeconds"`
	CirclingRatio    float64 `json:"circlingRatio"`
	CirclingGain     float64 `json:"circlingGain"`
	AverageClimbRate float64 `json:"averageClimbRate"`
	Thermals         int     `json:"thermals"`
	BestThermal      float64 `json:"bestThermal"`
}

type JSONFormatter struct {
	out io.Writer
}

func NewJSONFormatter(out io.Writer) *JSONFormatter {
	return &JSONFormatter{out: out}
}

func (f *JSONFormatter) Format(data []GroupedData) error {
	rows := make([]jsonRow, 0, len(data))
	for _, row := range data {
		rows = append(rows, jsonRow{
			Key:              row.Key,
			Flights:          row.Flights,
			Fixes:            row.Fixes,
			DurationSeconds:  row.Duration.Seconds(),
			DistanceMeters:   row.Distance,
			MaxAltitude:      row.MaxAltitude,
			CirclingSeconds:  row.CirclingDuration.Seconds(),
			CirclingRatio:    row.CirclingRatio,
			CirclingGain:     row.CirclingGain,
			AverageClimbRate: row.AverageClimbRate,
			Thermals:         row.Thermals,
			BestThermal:      row.BestThermal,
		})
	}
	return writeIndentedJSON(f.out, rows)
}

func writeIndentedJSON(out io.Writer, v interface{}) error {
	data, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = out.Write(data)
	return err
}
