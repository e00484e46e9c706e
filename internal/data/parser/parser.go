package parser

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/penwyp/go-glider-monitor/internal/core/model"
	"github.com/penwyp/go-glider-monitor/internal/util"
)

// Options controls how fix records are turned into track points.
type Options struct {
	// AltitudeSource selects which altitude column feeds TrackPoint.Altitude.
	// Empty means model.AltitudeGNSS.
	AltitudeSource string
	// BaseDate is used when the log carries no HFDTE header before its first
	// fix. Zero means 1970-01-01 UTC.
	BaseDate time.Time
}

// DefaultOptions returns GNSS altitude with the synthetic epoch date.
func DefaultOptions() Options {
	return Options{AltitudeSource: model.AltitudeGNSS}
}

// Validate checks the altitude source name.
func (o Options) Validate() error {
	switch o.AltitudeSource {
	case "", model.AltitudeGNSS, model.AltitudePressure:
		return nil
	default:
		return fmt.Errorf("%w: unknown altitude source %q (want %s or %s)",
			model.ErrInvalidConfiguration, o.AltitudeSource, model.AltitudeGNSS, model.AltitudePressure)
	}
}

// Parser reads IGC files from disk.
type Parser struct {
	concurrency int
	options     Options
}

// ParseResult represents the result of parsing a single file.
type ParseResult struct {
	File   string
	Points []model.TrackPoint
	Error  error
}

// NewParser creates a new Parser instance.
func NewParser(concurrency int, options Options) *Parser {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Parser{
		concurrency: concurrency,
		options:     options,
	}
}

// ParseString decodes the full text of one IGC log.
func ParseString(text string, opts Options) ([]model.TrackPoint, error) {
	return Parse(strings.NewReader(text), opts)
}

// Parse decodes one IGC log. It either returns every fix record in input
// order or fails without returning any point.
func Parse(r io.Reader, opts Options) ([]model.TrackPoint, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	date := opts.BaseDate
	if date.IsZero() {
		date = time.Unix(0, 0).UTC()
	}
	date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	var points []model.TrackPoint
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	prevTOD := time.Duration(-1)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}

		switch line[0] {
		case 'B':
			fix, err := decodeFix(line, lineNo)
			if err != nil {
				return nil, err
			}
			if prevTOD >= 0 && fix.timeOfDay < prevTOD {
				date = date.AddDate(0, 0, 1)
			}
			prevTOD = fix.timeOfDay
			points = append(points, fix.toTrackPoint(date, opts.AltitudeSource, lineNo))
		case 'H':
			// The flight date only applies before the first fix.
			if len(points) > 0 || !isDateHeader(line) {
				continue
			}
			d, err := parseHeaderDate(line)
			if err != nil {
				util.LogWarnf("Ignoring unreadable date header on line %d: %v", lineNo, err)
				continue
			}
			date = d
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return points, nil
}

// ParseFile parses the log file at the specified path.
func (p *Parser) ParseFile(filepath string) ([]model.TrackPoint, error) {
	util.LogDebug("Start parsing file", util.F("path", filepath))

	file, err := os.Open(filepath)
	if err != nil {
		util.LogDebug("Failed to open file", util.F("path", filepath), util.F("error", err.Error()))
		return nil, err
	}
	defer file.Close()

	points, err := Parse(file, p.options)
	if err != nil {
		util.LogDebug("Failed to parse file", util.F("path", filepath), util.F("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", filepath, err)
	}

	util.LogDebug("Parsed file", util.F("path", filepath), util.F("fixes", len(points)))
	return points, nil
}

// ParseFiles parses multiple files concurrently and returns a channel of ParseResult.
func (p *Parser) ParseFiles(files []string) <-chan ParseResult {
	start := time.Now()
	results := make(chan ParseResult, len(files))
	var wg sync.WaitGroup

	util.LogDebug(fmt.Sprintf("Start concurrent parsing of %d files, concurrency: %d", len(files), p.concurrency))

	semaphore := make(chan struct{}, p.concurrency)

	for _, file := range files {
		wg.Add(1)
		go func(f string) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			fileStart := time.Now()
			points, err := p.ParseFile(f)
			fileDuration := time.Since(fileStart)

			if err != nil {
				util.LogDebug(fmt.Sprintf("File parsing failed: %s, duration %v - %v", f, fileDuration, err))
			}

			results <- ParseResult{
				File:   f,
				Points: points,
				Error:  err,
			}
		}(file)
	}

	go func() {
		wg.Wait()
		close(results)

		totalDuration := time.Since(start)
		util.LogDebug(fmt.Sprintf("Concurrent parsing finished, total duration: %v", totalDuration))
	}()

	return results
}
