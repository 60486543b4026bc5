package models

import "time"

// MeetingFilter selects which meetings the backend returns for a host.
type MeetingFilter string

const (
	MeetingFilterUpcoming  MeetingFilter = "UPCOMING"
	MeetingFilterPast      MeetingFilter = "PAST"
	MeetingFilterCancelled MeetingFilter = "CANCELLED"
)

// Meeting represents a booked meeting as the backend reports it.
type Meeting struct {
	ID              string     `json:"id"`
	GuestName       string     `json:"guestName"`
	GuestEmail      string     `json:"guestEmail"`
	AdditionalInfo  string     `json:"additionalInfo,omitempty"`
	StartTime       time.Time  `json:"startTime"`
	EndTime         time.Time  `json:"endTime"`
	MeetLink        string     `json:"meetLink,omitempty"`
	CalendarEventID string     `json:"calendarEventId,omitempty"`
	Status          string     `json:"status"`
	Event           *EventType `json:"event,omitempty"`
}

// CreateMeetingPayload is the body of a public booking request.
// StartTime and EndTime are UTC wall-clock strings (2006-01-02T15:04).
type CreateMeetingPayload struct {
	EventID        string `json:"eventId"`
	StartTime      string `json:"startTime"`
	EndTime        string `json:"endTime"`
	GuestName      string `json:"guestName"`
	GuestEmail     string `json:"guestEmail"`
	AdditionalInfo string `json:"additionalInfo,omitempty"`
	Timezone       string `json:"timezone"`
}

// MeetingConfirmation is returned once a booking has been accepted.
type MeetingConfirmation struct {
	MeetLink string  `json:"meetLink"`
	Meeting  Meeting `json:"meeting"`
}
