package parser

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/penwyp/go-glider-monitor/internal/core/model"
)

// Column layout of a B record. Bytes past fixRecordLen are I-record
// extensions and are not decoded.
const (
	colTime       = 1
	colLatDeg     = 7
	colLatMin     = 9
	colLatMinFrac = 11
	colLatHemi    = 14
	colLonDeg     = 15
	colLonMin     = 18
	colLonMinFrac = 20
	colLonHemi    = 23
	colValidity   = 24
	colPressAlt   = 25
	colGNSSAlt    = 30
	fixRecordLen  = 35
)

type fix struct {
	timeOfDay   time.Duration
	latitude    float64
	longitude   float64
	valid       bool
	pressureAlt float64
	gnssAlt     float64
}

func (f fix) toTrackPoint(date time.Time, altitudeSource string, line int) model.TrackPoint {
	altitude := f.gnssAlt
	if altitudeSource == model.AltitudePressure {
		altitude = f.pressureAlt
	}
	return model.TrackPoint{
		Timestamp:        date.Add(f.timeOfDay),
		Latitude:         f.latitude,
		Longitude:        f.longitude,
		Altitude:         altitude,
		PressureAltitude: f.pressureAlt,
		GNSSAltitude:     f.gnssAlt,
		Valid:            f.valid,
		Line:             line,
	}
}

func decodeFix(line string, lineNo int) (fix, error) {
	fail := func(field string, err error) (fix, error) {
		return fix{}, &model.RecordError{Line: lineNo, Record: line, Field: field, Err: err}
	}

	if len(line) < fixRecordLen {
		return fail("length", fmt.Errorf("fix record has %d bytes, need %d", len(line), fixRecordLen))
	}

	var f fix

	tod, err := decodeTimeOfDay(line[colTime : colTime+6])
	if err != nil {
		return fail("time", err)
	}
	f.timeOfDay = tod

	f.latitude, err = decodeCoordinate(line[colLatDeg:colLatHemi], 2, line[colLatHemi], 'N', 'S', 90)
	if err != nil {
		return fail("latitude", err)
	}

	f.longitude, err = decodeCoordinate(line[colLonDeg:colLonHemi], 3, line[colLonHemi], 'E', 'W', 180)
	if err != nil {
		return fail("longitude", err)
	}

	switch line[colValidity] {
	case 'A':
		f.valid = true
	case 'V':
		f.valid = false
	default:
		return fail("validity", fmt.Errorf("unexpected flag %q", line[colValidity]))
	}

	pressure, err := strconv.Atoi(line[colPressAlt : colPressAlt+5])
	if err != nil {
		return fail("pressure altitude", err)
	}
	f.pressureAlt = float64(pressure)

	gnss, err := strconv.Atoi(line[colGNSSAlt : colGNSSAlt+5])
	if err != nil {
		return fail("gnss altitude", err)
	}
	f.gnssAlt = float64(gnss)

	return f, nil
}

func decodeTimeOfDay(s string) (time.Duration, error) {
	v, err := digits(s)
	if err != nil {
		return 0, err
	}
	h, m, sec := v/10000, v/100%100, v%100
	if h > 23 || m > 59 || sec > 59 {
		return 0, fmt.Errorf("%q is not a clock time", s)
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(sec)*time.Second, nil
}

// decodeCoordinate reads DD(D)MMmmm followed by a hemisphere letter.
func decodeCoordinate(s string, degDigits int, hemi, pos, neg byte, maxDeg int) (float64, error) {
	deg, err := digits(s[:degDigits])
	if err != nil {
		return 0, err
	}
	minutes, err := digits(s[degDigits : degDigits+2])
	if err != nil {
		return 0, err
	}
	thousandths, err := digits(s[degDigits+2 : degDigits+5])
	if err != nil {
		return 0, err
	}
	if minutes > 59 {
		return 0, fmt.Errorf("minutes %d out of range", minutes)
	}

	value := float64(deg) + (float64(minutes)+float64(thousandths)/1000)/60
	if value > float64(maxDeg) {
		return 0, fmt.Errorf("%.5f exceeds %d degrees", value, maxDeg)
	}

	switch hemi {
	case pos:
		return value, nil
	case neg:
		return -value, nil
	default:
		return 0, fmt.Errorf("hemisphere %q, want %c or %c", hemi, pos, neg)
	}
}

// digits parses an unsigned, all-digit field.
func digits(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("empty numeric field")
	}
	v := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("%q is not numeric", s)
		}
		v = v*10 + int(c-'0')
	}
	return v, nil
}

func isDateHeader(line string) bool {
	return len(line) >= 5 && line[2:5] == "DTE"
}

// parseHeaderDate reads HFDTEDDMMYY and HFDTEDATE:DDMMYY,NN.
func parseHeaderDate(line string) (time.Time, error) {
	rest := line[5:]
	rest = strings.TrimPrefix(rest, "DATE")
	rest = strings.TrimPrefix(rest, ":")
	if len(rest) < 6 {
		return time.Time{}, fmt.Errorf("date header %q too short", line)
	}

	v, err := digits(rest[:6])
	if err != nil {
		return time.Time{}, err
	}
	day, month, yy := v/10000, v/100%100, v%100
	year := 2000 + yy
	if yy >= 80 {
		year = 1900 + yy
	}

	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Day() != day || int(d.Month()) != month {
		return time.Time{}, fmt.Errorf("%02d/%02d/%02d is not a calendar date", day, month, yy)
	}
	return d, nil
}
