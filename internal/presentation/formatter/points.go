package formatter

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/penwyp/go-glider-monitor/internal/core/model"
)

// PointHeaders are the columns of an enriched point export.
var PointHeaders = []string{"timestamp", "latitude", "longitude", "altitude", "heading", "circling"}

// WritePointsCSV writes one row per enriched point: RFC3339 UTC time,
// 7-decimal coordinates and circling as 0 or 1.
func WritePointsCSV(out io.Writer, points []model.EnrichedPoint) error {
	w := csv.NewWriter(out)
	if err := w.Write(PointHeaders); err != nil {
		return err
	}

	for _, p := range points {
		circling := "0"
		if p.Circling {
			circling = "1"
		}
		record := []string{
			p.Timestamp.UTC().Format(time.RFC3339),
			strconv.FormatFloat(p.Latitude, 'f', 7, 64),
			strconv.FormatFloat(p.Longitude, 'f', 7, 64),
			strconv.FormatFloat(p.Altitude, 'f', -1, 64),
			strconv.FormatFloat(p.Heading, 'f', -1, 64),
			circling,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

type jsonPoint struct {
	Timestamp string  `json:"timestamp"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`
	Heading   float64 `json:"heading"`
	Circling  bool    `json:"circling"`
}

// WritePointsJSON writes the same columns as WritePointsCSV as a JSON array.
func WritePointsJSON(out io.Writer, points []model.EnrichedPoint) error {
	rows := make([]jsonPoint, 0, len(points))
	for _, p := range points {
		rows = append(rows, jsonPoint{
			Timestamp: p.Timestamp.UTC().Format(time.RFC3339),
			Latitude:  p.Latitude,
			Longitude: p.Longitude,
			Altitude:  p.Altitude,
			Heading:   p.Heading,
			Circling:  p.Circling,
		})
	}
	return writeIndentedJSON(out, rows)
}
