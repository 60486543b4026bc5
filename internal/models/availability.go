package models

// AvailabilityDay is one day of a public event's availability. DateStr is
// empty for weekday-pattern entries.
type AvailabilityDay struct {
	DateStr     string   `json:"dateStr,omitempty"`
	Day         string   `json:"day"`
	IsAvailable bool     `json:"isAvailable"`
	Slots       []string `json:"slots"`
}

// DayAvailability is a single weekday rule of a host's availability.
type DayAvailability struct {
	Day         string `json:"day"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	IsAvailable bool   `json:"isAvailable"`
}

// WeeklyAvailability is the authenticated view of a host's availability.
type WeeklyAvailability struct {
	TimeGap int               `json:"timeGap"`
	Days    []DayAvailability `json:"days"`
}
