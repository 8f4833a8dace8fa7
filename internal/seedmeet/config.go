// Package seedmeet generates a synthetic meet, stores it in a running
// standings service and checks the served standings against a local run.
package seedmeet

import "time"

// Config holds configuration for one seeding run.
type Config struct {
	BaseURL    string        // Base URL of the service
	MeetID     string        // Meet id to store under; empty generates one
	Swimmers   int           // Number of swimmers to generate
	Seed       uint64        // Generator seed; equal seeds give equal meets
	Workers    int           // Concurrent swimmer report requests
	Timeout    time.Duration // HTTP request timeout
	OutputFile string        // Optional .yaml or .json copy of the meet
	Verbose    bool          // Log every verified swimmer
}

// Stats holds run statistics.
type Stats struct {
	SwimmersGenerated  int
	RecordsGenerated   int
	LeaderboardEntries int
	ReportsRetrieved   int
	ReportsFailed      int
	Mismatches         int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}
