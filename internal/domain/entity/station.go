package entity

// Station represents a railway station belonging to a region table
type Station struct {
	Name      string `json:"name"`
	EngName   string `json:"eng_name,omitempty"`
	Code      string `json:"code" validate:"required"`
	StateName string `json:"state_name"`
}
