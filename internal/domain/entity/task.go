package entity

import "time"

// Task kinds
const (
	TaskRefreshTrains  = "refresh_trains"
	TaskImportStations = "import_stations"
)

// Task is a unit of background work
type Task struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	Target     string    `json:"target"` // region for refreshes, city for imports
	Trigger    string    `json:"trigger"`
	EnqueuedAt time.Time `json:"enqueuedAt"`
}
