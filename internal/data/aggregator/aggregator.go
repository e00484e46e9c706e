package aggregator

import (
	"fmt"
	"hash/crc32"
	"path/filepath"
	"strings"
	"time"

	"github.com/penwyp/go-glider-monitor/internal/core/model"
	"github.com/penwyp/go-glider-monitor/internal/core/motion"
	"github.com/penwyp/go-glider-monitor/internal/core/stats"
	"github.com/penwyp/go-glider-monitor/internal/util"
)

// settingsVersion is bumped whenever the summary layout or any derived
// figure changes meaning, so that older cache entries stop validating.
const settingsVersion = 1

// Aggregator turns the track of one flight into its cached summary.
type Aggregator struct {
	altitudeSource string
	motion         motion.Config
}

// AggregatedData is the analysis result for one IGC file.
type AggregatedData struct {
	FlightID     string            `json:"flightId"`
	FilePath     string            `json:"filePath"`
	Takeoff      time.Time         `json:"takeoff"`
	Landing      time.Time         `json:"landing"`
	Fixes        int               `json:"fixes"`
	InvalidFixes int               `json:"invalidFixes"`
	Stats        model.FlightStats `json:"stats"`
	Thermals     []model.Thermal   `json:"thermals,omitempty"`

	LastModified       int64  `json:"lastModified"`
	FileSize           int64  `json:"fileSize"`
	Inode              uint64 `json:"inode"`
	ContentFingerprint string `json:"content_fingerprint,omitempty"`
	SettingsHash       string `json:"settingsHash"`
}

// NewAggregator validates the detection settings and returns an Aggregator.
func NewAggregator(altitudeSource string, cfg motion.Config) (*Aggregator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if altitudeSource == "" {
		altitudeSource = model.AltitudeGNSS
	}

	util.LogDebugf("Creating aggregator: altitude=%s window=%d threshold=%.1f tolerance=%.2f",
		altitudeSource, cfg.WindowSize, cfg.TurnThreshold, cfg.SignTolerance)

	return &Aggregator{
		altitudeSource: altitudeSource,
		motion:         cfg,
	}, nil
}

// SettingsHash identifies every setting that changes the derived figures.
func (a *Aggregator) SettingsHash() string {
	key := fmt.Sprintf("v%d|%s|%d|%g|%g", settingsVersion, a.altitudeSource,
		a.motion.WindowSize, a.motion.TurnThreshold, a.motion.SignTolerance)
	return fmt.Sprintf("%08x", crc32.ChecksumIEEE([]byte(key)))
}

// Enrich runs the motion analyzer with the aggregator's settings.
func (a *Aggregator) Enrich(points []model.TrackPoint) ([]model.EnrichedPoint, error) {
	return motion.Enrich(points, a.motion)
}

// Aggregate summarises the parsed track of filePath.
func (a *Aggregator) Aggregate(filePath string, points []model.TrackPoint) (*AggregatedData, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("%s: no fix records: %w", filePath, model.ErrEmptySequence)
	}

	enriched, err := a.Enrich(points)
	if err != nil {
		return nil, err
	}

	flightStats, err := stats.Compute(enriched)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}

	invalid := 0
	for _, p := range points {
		if !p.Valid {
			invalid++
		}
	}

	return &AggregatedData{
		FlightID:     ExtractFlightID(filePath),
		FilePath:     filePath,
		Takeoff:      points[0].Timestamp,
		Landing:      points[len(points)-1].Timestamp,
		Fixes:        len(points),
		InvalidFixes: invalid,
		Stats:        flightStats,
		Thermals:     stats.Thermals(enriched),
		SettingsHash: a.SettingsHash(),
	}, nil
}

// ExtractFlightID returns the file name without its extension.
// For example: "/logs/2024-05-04-XCT-001.igc" -> "2024-05-04-XCT-001"
func ExtractFlightID(filePath string) string {
	filename := filepath.Base(filePath)
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}

// CacheKey names the cache entry of filePath. Logs with the same file name
// in different directories get different keys.
func CacheKey(filePath string) string {
	abs, err := filepath.Abs(filePath)
	if err != nil {
		abs = filePath
	}
	return fmt.Sprintf("%s-%08x", ExtractFlightID(filePath), crc32.ChecksumIEEE([]byte(abs)))
}
