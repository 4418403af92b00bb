// Package model holds the persistent record types for classification runs.
package model

import "time"

// RunStatus is the lifecycle state of a classification run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// RunResult summarizes a completed run by provenance.
type RunResult struct {
	Stations   int           `json:"stations"`
	Sampled    int           `json:"sampled"`
	Overridden int           `json:"overridden"`
	NoSample   int           `json:"no_sample"`
	Elapsed    time.Duration `json:"elapsed"`
}

// Run is one classification invocation: which inputs were used, how it
// ended, and per-provenance row counts.
type Run struct {
	ID         string     `json:"id"`
	InputPath  string     `json:"input_path"`
	RasterPath string     `json:"raster_path"`
	Status     RunStatus  `json:"status"`
	Result     *RunResult `json:"result,omitempty"`
	Error      string     `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
