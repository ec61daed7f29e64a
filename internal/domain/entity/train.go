package entity

import "strings"

// TrainRecord represents a train passing a station
type TrainRecord struct {
	TrainNo       string   `json:"trainNo" validate:"required"`
	TrainName     string   `json:"trainName"`
	ArrivalTime   string   `json:"arrivalTime"`
	DepartureTime string   `json:"departureTime"`
	Classes       []string `json:"classes"`
}

// ClassList returns the service classes joined by commas, as stored in a train table
func (t TrainRecord) ClassList() string {
	return strings.Join(t.Classes, ",")
}

// StoredTrain is a row of a per-station train table
type StoredTrain struct {
	TrainNo       string `json:"train_no"`
	TrainName     string `json:"train_name"`
	ArrivalTime   string `json:"arrival_time"`
	DepartureTime string `json:"departure_time"`
	Classes       string `json:"classes"`
}
