package entity

import "time"

// Refresh triggers
const (
	TriggerManual    = "manual"
	TriggerScheduled = "scheduled"
)

// Station outcomes within a refresh run
const (
	OutcomeUpdated = "updated"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// Run status
const (
	RunStatusSucceeded = "SUCCEEDED"
	RunStatusFailed    = "FAILED"
)

// StationOutcome records what happened to one station during a refresh run
type StationOutcome struct {
	StationCode string `json:"stationCode" bson:"stationCode"`
	Table       string `json:"table,omitempty" bson:"table,omitempty"`
	Outcome     string `json:"outcome" bson:"outcome"`
	Trains      int    `json:"trains" bson:"trains"`
	Error       string `json:"error,omitempty" bson:"error,omitempty"`
}

// RefreshSummary is the result of one refresh run for a region
type RefreshSummary struct {
	RunID       string           `json:"runId" bson:"runId"`
	Region      string           `json:"region" bson:"region"`
	Trigger     string           `json:"trigger" bson:"trigger"`
	Status      string           `json:"status" bson:"status"`
	StartedAt   time.Time        `json:"startedAt" bson:"startedAt"`
	FinishedAt  time.Time        `json:"finishedAt" bson:"finishedAt"`
	Stations    []StationOutcome `json:"stations" bson:"stations"`
	Notified    bool             `json:"notified" bson:"notified"`
	NotifyError string           `json:"notifyError,omitempty" bson:"notifyError,omitempty"`
	Error       string           `json:"error,omitempty" bson:"error,omitempty"`
}

// Succeeded reports whether the run completed
func (s *RefreshSummary) Succeeded() bool {
	return s.Status == RunStatusSucceeded
}

// Count returns the number of stations with the given outcome
func (s *RefreshSummary) Count(outcome string) int {
	n := 0
	for _, st := range s.Stations {
		if st.Outcome == outcome {
			n++
		}
	}
	return n
}
