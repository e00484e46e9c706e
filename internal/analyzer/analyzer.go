package analyzer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/penwyp/go-glider-monitor/internal/core/model"
	"github.com/penwyp/go-glider-monitor/internal/core/motion"
	"github.com/penwyp/go-glider-monitor/internal/data/aggregator"
	"github.com/penwyp/go-glider-monitor/internal/data/cache"
	"github.com/penwyp/go-glider-monitor/internal/data/parser"
	"github.com/penwyp/go-glider-monitor/internal/data/scanner"
	"github.com/penwyp/go-glider-monitor/internal/presentation/formatter"
	"github.com/penwyp/go-glider-monitor/internal/util"
)

// ErrNoFlights is returned when a directory holds no analysable log.
var ErrNoFlights = errors.New("no valid flights found")

type Config struct {
	DataDir        string
	CacheDir       string
	OutputFormat   string
	Timezone       string
	GroupBy        string
	Limit          int
	Concurrency    int
	AltitudeSource string
	Motion         motion.Config
	// Output receives reports; stdout when nil.
	Output io.Writer
}

// Validate checks the values the CLI passes through unparsed.
func (c *Config) Validate() error {
	switch c.OutputFormat {
	case "", model.OutputTable, model.OutputJSON, model.OutputCSV, model.OutputSummary:
	default:
		return fmt.Errorf("%w: unknown output format %q (want table, json, csv or summary)",
			model.ErrInvalidConfiguration, c.OutputFormat)
	}
	switch c.GroupBy {
	case "", model.GroupByFlight, model.GroupByDay, model.GroupByMonth:
	default:
		return fmt.Errorf("%w: unknown grouping %q (want flight, day or month)",
			model.ErrInvalidConfiguration, c.GroupBy)
	}
	if c.Limit < 0 {
		return fmt.Errorf("%w: limit must not be negative", model.ErrInvalidConfiguration)
	}
	if err := (parser.Options{AltitudeSource: c.AltitudeSource}).Validate(); err != nil {
		return err
	}
	return c.Motion.Validate()
}

type Analyzer struct {
	config     *Config
	cache      cache.Cache
	scanner    *scanner.FileScanner
	parser     *parser.Parser
	aggregator *aggregator.Aggregator
	location   *time.Location
	out        io.Writer
}

func New(config *Config) (*Analyzer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Concurrency <= 0 {
		config.Concurrency = runtime.NumCPU()
	}
	if config.GroupBy == "" {
		config.GroupBy = model.GroupByFlight
	}

	loc, err := util.LoadLocation(config.Timezone)
	if err != nil {
		return nil, err
	}

	agg, err := aggregator.NewAggregator(config.AltitudeSource, config.Motion)
	if err != nil {
		return nil, err
	}

	fileCache, err := cache.NewFileCache(config.CacheDir, agg.SettingsHash())
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	out := config.Output
	if out == nil {
		out = os.Stdout
	}

	return &Analyzer{
		config:     config,
		cache:      fileCache,
		scanner:    scanner.NewFileScanner(config.DataDir),
		parser:     parser.NewParser(config.Concurrency, parser.Options{AltitudeSource: config.AltitudeSource}),
		aggregator: agg,
		location:   loc,
		out:        out,
	}, nil
}

// Run analyses every log below DataDir and prints the report.
func (a *Analyzer) Run() error {
	flights, err := a.Analyze()
	if err != nil {
		return err
	}
	return a.Report(flights)
}

// Analyze returns one summary per readable log below DataDir, served from
// the cache where it is still valid. Unreadable logs are logged and skipped.
func (a *Analyzer) Analyze() ([]*aggregator.AggregatedData, error) {
	startTime := time.Now()
	util.LogInfo("Starting analysis of flight logs...")

	// Phase 1: Preload cache into memory
	preloadStart := time.Now()
	if err := a.cache.Preload(); err != nil {
		util.LogWarnf("Cache preload failed: %v", err)
	}
	preloadDuration := time.Since(preloadStart)
	memoryCount, fileCount := a.cache.GetCacheStats()
	util.LogDebug("Phase 1 - Cache preloaded",
		util.F("duration", preloadDuration.String()),
		util.F("memory", memoryCount),
		util.F("files", fileCount))

	// Phase 2: Scan files
	scanStart := time.Now()
	files, err := a.scanner.Scan()
	if err != nil {
		return nil, fmt.Errorf("failed to scan files: %w", err)
	}
	scanDuration := time.Since(scanStart)
	util.LogDebugf("Phase 2 - File scan duration: %v, found %d files", scanDuration, len(files))

	if len(files) == 0 {
		return nil, fmt.Errorf("no IGC files found in %s", a.config.DataDir)
	}
	util.LogInfof("Found %d IGC files", len(files))

	// Phase 3: Validate cache, parse the rest
	parseStart := time.Now()
	stats := NewCacheStats()

	keys := make(map[string]string, len(files))
	keyList := make([]string, 0, len(files))
	for _, file := range files {
		key := aggregator.CacheKey(file)
		keys[file] = key
		keyList = append(keyList, key)
	}

	validCache := a.cache.BatchValidate(keyList)

	var filesToParse []string
	missReasons := make(map[string]cache.CacheMissReason)
	flights := make([]*aggregator.AggregatedData, 0, len(files))
	for _, file := range files {
		result := validCache[keys[file]]
		if result.Valid {
			if cached := a.cache.Get(keys[file]); cached.Found {
				stats.IncrementTotal()
				stats.IncrementHit()
				flights = append(flights, cached.Data)
				continue
			}
		}
		filesToParse = append(filesToParse, file)
		missReasons[file] = result.MissReason
	}

	util.LogDebugf("Cache hit for %d files, need to parse %d files", len(flights), len(filesToParse))

	if len(filesToParse) > 0 {
		processed := int64(len(flights))
		for result := range a.parser.ParseFiles(filesToParse) {
			stats.IncrementTotal()
			processed++

			data, err := a.summarize(result)
			if err != nil {
				stats.IncrementFailure(result.File, err)
				util.LogWarnf("Failed to analyse %s: %v", result.File, err)
				continue
			}
			stats.IncrementMiss(result.File, missReasons[result.File])

			if err := a.cache.Set(keys[result.File], data); err != nil {
				util.LogWarnf("Failed to save cache for %s: %v", result.File, err)
			}
			flights = append(flights, data)

			if processed%100 == 0 {
				stats.PrintProgress(processed)
			}
		}
	}

	parseDuration := time.Since(parseStart)
	util.LogDebugf("Phase 3 - File parsing and processing duration: %v, flights: %d", parseDuration, len(flights))

	stats.PrintPeriodicStats()
	stats.PrintFinalStats()

	util.LogDebugf("Analysis duration: %v (preload:%v scan:%v parse:%v)",
		time.Since(startTime), preloadDuration, scanDuration, parseDuration)

	if len(flights) == 0 {
		return nil, ErrNoFlights
	}
	return flights, nil
}

func (a *Analyzer) summarize(result parser.ParseResult) (*aggregator.AggregatedData, error) {
	if result.Error != nil {
		return nil, result.Error
	}
	return a.aggregator.Aggregate(result.File, result.Points)
}

// ProcessFile analyses a single log, using the cache when it is still valid.
func (a *Analyzer) ProcessFile(path string) (*aggregator.AggregatedData, error) {
	key := aggregator.CacheKey(path)
	if cached := a.cache.Get(key); cached.Found {
		util.LogDebugf("Cache hit for %s", path)
		return cached.Data, nil
	}

	points, err := a.parser.ParseFile(path)
	data, err := a.summarize(parser.ParseResult{File: path, Points: points, Error: err})
	if err != nil {
		return nil, err
	}
	if err := a.cache.Set(key, data); err != nil {
		util.LogWarnf("Failed to save cache for %s: %v", path, err)
	}
	return data, nil
}

// Forget drops the cache entry of a log that no longer exists.
func (a *Analyzer) Forget(path string) error {
	return a.cache.Delete(aggregator.CacheKey(path))
}

// EnrichFile parses one log and runs the motion analyzer over it.
func (a *Analyzer) EnrichFile(path string) ([]model.EnrichedPoint, error) {
	points, err := a.parser.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return a.aggregator.Enrich(points)
}

// Report groups, sorts, limits and prints flights.
func (a *Analyzer) Report(flights []*aggregator.AggregatedData) error {
	groupStart := time.Now()
	grouped := a.groupData(flights)
	util.LogDebugf("Grouping duration: %v, number of groups: %d", time.Since(groupStart), len(grouped))

	if a.config.Limit > 0 && len(grouped) > a.config.Limit {
		util.LogDebugf("Applying result limit: %d -> %d", len(grouped), a.config.Limit)
		grouped = grouped[len(grouped)-a.config.Limit:]
	}

	return a.formatAndOutput(grouped)
}

// FlightRow turns one flight summary into an output row keyed by its ID.
func FlightRow(d *aggregator.AggregatedData) formatter.GroupedData {
	row := formatter.GroupedData{
		Key:              d.FlightID,
		Flights:          1,
		Fixes:            d.Fixes,
		Duration:         d.Stats.Duration,
		Distance:         d.Stats.Distance,
		MaxAltitude:      d.Stats.MaxAltitude,
		CirclingDuration: d.Stats.CirclingDuration,
		CirclingGain:     d.Stats.CirclingGain,
		AverageClimbRate: d.Stats.AverageClimbRate,
		CirclingRatio:    d.Stats.CirclingRatio,
		Thermals:         len(d.Thermals),
	}
	for i, th := range d.Thermals {
		if i == 0 || th.ClimbRate > row.BestThermal {
			row.BestThermal = th.ClimbRate
		}
	}
	return row
}

// groupData returns rows in chronological order: flights by takeoff, days
// and months by key.
func (a *Analyzer) groupData(flights []*aggregator.AggregatedData) []formatter.GroupedData {
	sorted := make([]*aggregator.AggregatedData, len(flights))
	copy(sorted, flights)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Takeoff.Equal(sorted[j].Takeoff) {
			return sorted[i].Takeoff.Before(sorted[j].Takeoff)
		}
		return sorted[i].FilePath < sorted[j].FilePath
	})

	if a.config.GroupBy == model.GroupByFlight {
		rows := make([]formatter.GroupedData, 0, len(sorted))
		for _, d := range sorted {
			rows = append(rows, FlightRow(d))
		}
		return rows
	}

	groupMap := make(map[string]*formatter.GroupedData)
	var order []string
	for _, d := range sorted {
		key := a.getGroupKey(d)
		group, ok := groupMap[key]
		if !ok {
			group = &formatter.GroupedData{Key: key}
			groupMap[key] = group
			order = append(order, key)
		}
		group.Merge(FlightRow(d))
	}

	sort.Strings(order)
	result := make([]formatter.GroupedData, 0, len(order))
	for _, key := range order {
		result = append(result, *groupMap[key])
	}
	return result
}

func (a *Analyzer) getGroupKey(d *aggregator.AggregatedData) string {
	switch a.config.GroupBy {
	case model.GroupByMonth:
		return util.MonthKey(d.Takeoff, a.location)
	case model.GroupByDay:
		return util.DayKey(d.Takeoff, a.location)
	default:
		return d.FlightID
	}
}

func (a *Analyzer) keyHeader() string {
	switch a.config.GroupBy {
	case model.GroupByDay:
		return "Day"
	case model.GroupByMonth:
		return "Month"
	default:
		return "Flight"
	}
}

func (a *Analyzer) formatAndOutput(data []formatter.GroupedData) error {
	switch a.config.OutputFormat {
	case model.OutputJSON:
		return formatter.NewJSONFormatter(a.out).Format(data)
	case model.OutputCSV:
		return formatter.NewCSVFormatter(a.out, a.keyHeader()).Format(data)
	case model.OutputSummary:
		return formatter.NewSummaryFormatter(a.out, 0).Format(data)
	default:
		return formatter.NewTableFormatter(a.out, a.keyHeader()).Format(data)
	}
}

// ExportPoints writes the enriched series of one log as csv or json.
func (a *Analyzer) ExportPoints(path, format string, out io.Writer) error {
	points, err := a.EnrichFile(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(format) {
	case model.OutputJSON:
		return formatter.WritePointsJSON(out, points)
	case "", model.OutputCSV:
		return formatter.WritePointsCSV(out, points)
	default:
		return fmt.Errorf("%w: unknown export format %q (want csv or json)", model.ErrInvalidConfiguration, format)
	}
}
