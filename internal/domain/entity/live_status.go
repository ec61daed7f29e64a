package entity

// StationStop is a stop on a live train route
type StationStop struct {
	SiNo               int    `json:"si_no"`
	StationCode        string `json:"station_code"`
	StationName        string `json:"station_name"`
	DistanceFromSource int    `json:"distance_from_source"`
	Sta                string `json:"sta"`
	Std                string `json:"std"`
	Eta                string `json:"eta"`
	Etd                string `json:"etd"`
	Halt               int    `json:"halt"`
	ArrivalDelay       int    `json:"arrival_delay"`
	PlatformNumber     int    `json:"platform_number"`
	StoppageNumber     int    `json:"stoppage_number"`
}

// LiveTrainStatus is the filtered view of a train's live running status
type LiveTrainStatus struct {
	TrainNumber        string        `json:"train_number"`
	TrainName          string        `json:"train_name"`
	Source             string        `json:"source"`
	Destination        string        `json:"destination"`
	SourceStnName      string        `json:"source_stn_name"`
	DestStnName        string        `json:"dest_stn_name"`
	CurrentStationCode string        `json:"current_station_code"`
	CurrentStationName string        `json:"current_station_name"`
	Status             string        `json:"status"`
	PlatformNumber     int           `json:"platform_number"`
	UpcomingStations   []StationStop `json:"upcoming_stations"`
	PreviousStations   []StationStop `json:"previous_stations"`
}
