package model

// Altitude sources
const (
	AltitudeGNSS     = "gnss"
	AltitudePressure = "pressure"
)

// Output formats
const (
	OutputTable   = "table"
	OutputJSON    = "json"
	OutputCSV     = "csv"
	OutputSummary = "summary"
)

// Grouping keys
const (
	GroupByFlight = "flight"
	GroupByDay    = "day"
	GroupByMonth  = "month"
)

// IGCExtension is the file extension of flight recorder logs.
const IGCExtension = ".igc"

// File event operations reported by the directory watcher.
const (
	FileOpCreate = "create"
	FileOpWrite  = "write"
	FileOpRemove = "remove"
)
