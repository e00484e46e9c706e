package fixtures

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const metersPerDegreeLat = 111320.0

// Fix is one synthetic B record.
type Fix struct {
	TimeOfDay   time.Duration
	Latitude    float64
	Longitude   float64
	PressureAlt int
	GNSSAlt     int
	Invalid     bool
}

// FormatFix renders a fix in the IGC B-record layout.
func FormatFix(f Fix) string {
	tod := f.TimeOfDay % (24 * time.Hour)
	if tod < 0 {
		tod += 24 * time.Hour
	}
	secs := int(tod / time.Second)
	validity := "A"
	if f.Invalid {
		validity = "V"
	}

	return fmt.Sprintf("B%02d%02d%02d%s%s%s%s%s",
		secs/3600, secs/60%60, secs%60,
		formatCoordinate(f.Latitude, 2, "N", "S"),
		formatCoordinate(f.Longitude, 3, "E", "W"),
		validity,
		formatAltitude(f.PressureAlt),
		formatAltitude(f.GNSSAlt),
	)
}

func formatCoordinate(v float64, degDigits int, pos, neg string) string {
	hemi := pos
	if v < 0 {
		hemi = neg
		v = -v
	}
	total := int(math.Round(v * 60000)) // thousandths of a minute
	deg := total / 60000
	rem := total % 60000
	return fmt.Sprintf("%0*d%02d%03d%s", degDigits, deg, rem/1000, rem%1000, hemi)
}

func formatAltitude(alt int) string {
	return fmt.Sprintf("%05d", alt)
}

// IGCBuilder assembles an IGC log from header lines and fixes.
type IGCBuilder struct {
	lines []string
}

// NewIGCBuilder starts a log with the usual A record.
func NewIGCBuilder() *IGCBuilder {
	return &IGCBuilder{lines: []string{"AXXXABCFLIGHT:1"}}
}

// Date adds an HFDTE header in the modern DATE: form.
func (b *IGCBuilder) Date(d time.Time) *IGCBuilder {
	b.lines = append(b.lines, fmt.Sprintf("HFDTEDATE:%02d%02d%02d,01", d.Day(), int(d.Month()), d.Year()%100))
	return b
}

// Line appends a raw record.
func (b *IGCBuilder) Line(s string) *IGCBuilder {
	b.lines = append(b.lines, s)
	return b
}

// Fixes appends B records.
func (b *IGCBuilder) Fixes(fixes ...Fix) *IGCBuilder {
	for _, f := range fixes {
		b.lines = append(b.lines, FormatFix(f))
	}
	return b
}

// String returns the log with CRLF line endings, as flight recorders write it.
func (b *IGCBuilder) String() string {
	return strings.Join(append(b.lines, "GREPLACEDSECURITYRECORD"), "\r\n") + "\r\n"
}

// WriteFile writes the log under dir and returns its path.
func (b *IGCBuilder) WriteFile(dir, name string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return "", err
	}
	return path, nil
}

// StraightGlide flies n one-second fixes from (lat, lon) on a constant
// heading, losing sink meters per second.
func StraightGlide(start time.Duration, lat, lon, headingDeg, speed float64, n, alt int, sink float64) []Fix {
	fixes := make([]Fix, 0, n)
	h := headingDeg * math.Pi / 180
	for i := 0; i < n; i++ {
		d := speed * float64(i)
		la := lat + d*math.Cos(h)/metersPerDegreeLat
		lo := lon + d*math.Sin(h)/(metersPerDegreeLat*math.Cos(lat*math.Pi/180))
		a := alt - int(math.Round(sink*float64(i)))
		fixes = append(fixes, Fix{
			TimeOfDay: start + time.Duration(i)*time.Second,
			Latitude:  la, Longitude: lo,
			PressureAlt: a, GNSSAlt: a,
		})
	}
	return fixes
}

// Circle flies n one-second fixes around (lat, lon) with the given radius and
// period, climbing climb meters per second. Clockwise when clockwise is set.
func Circle(start time.Duration, lat, lon, radius float64, period, n, alt int, climb float64, clockwise bool) []Fix {
	fixes := make([]Fix, 0, n)
	step := 2 * math.Pi / float64(period)
	if !clockwise {
		step = -step
	}
	for i := 0; i < n; i++ {
		theta := step * float64(i)
		la := lat + radius*math.Cos(theta)/metersPerDegreeLat
		lo := lon + radius*math.Sin(theta)/(metersPerDegreeLat*math.Cos(lat*math.Pi/180))
		a := alt + int(math.Round(climb*float64(i)))
		fixes = append(fixes, Fix{
			TimeOfDay: start + time.Duration(i)*time.Second,
			Latitude:  la, Longitude: lo,
			PressureAlt: a, GNSSAlt: a,
		})
	}
	return fixes
}

// SampleFlight is a glide, a clockwise thermal and a second glide, 1 Hz.
// It returns the builder and the number of fixes.
func SampleFlight(date time.Time) (*IGCBuilder, int) {
	start := 10 * time.Hour
	glide1 := StraightGlide(start, 36.23, 139.44, 90, 25, 120, 1200, 1)
	last := glide1[len(glide1)-1]
	thermal := Circle(start+120*time.Second, last.Latitude, last.Longitude+0.002, 80, 25, 200, last.GNSSAlt, 2, true)
	last = thermal[len(thermal)-1]
	glide2 := StraightGlide(start+320*time.Second, last.Latitude, last.Longitude, 180, 25, 120, last.GNSSAlt, 1)

	b := NewIGCBuilder().Date(date).Line("HFPLTPILOTINCHARGE:Test Pilot").Line("HFGTYGLIDERTYPE:ASK21")
	b.Fixes(glide1...).Line("E103000PEV").Fixes(thermal...).Fixes(glide2...)
	return b, len(glide1) + len(thermal) + len(glide2)
}
