package models

// LocationType is the backend-facing tag that combines a conferencing
// platform with the calendar the meeting is written to.
type LocationType string

const (
	LocationGoogleMeetAndCalendar LocationType = "GOOGLE_MEET_AND_CALENDAR"
	LocationZoomMeeting           LocationType = "ZOOM_MEETING"
	LocationZoomGoogleCalendar    LocationType = "ZOOM_GOOGLE_CALENDAR"
	LocationZoomOutlookCalendar   LocationType = "ZOOM_OUTLOOK_CALENDAR"
	LocationTeamsMeeting          LocationType = "MICROSOFT_TEAMS"
	LocationTeamsOutlookCalendar  LocationType = "MICROSOFT_TEAMS_OUTLOOK_CALENDAR"
)

// EventType is a bookable meeting template published by a host.
type EventType struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Slug         string       `json:"slug"`
	Description  string       `json:"description,omitempty"`
	Duration     int          `json:"duration"`
	LocationType LocationType `json:"locationType"`
	IsPrivate    bool         `json:"isPrivate"`
	CalendarID   string       `json:"calendar_id,omitempty"`
	CalendarName string       `json:"calendar_name,omitempty"`
	MeetingCount int          `json:"_count,omitempty"`
}

// EventTypeDraft is what the creation flow submits. It is discarded after
// a successful create or when the flow is closed.
type EventTypeDraft struct {
	Title        string       `json:"title"`
	Duration     int          `json:"duration"`
	Description  string       `json:"description,omitempty"`
	LocationType LocationType `json:"locationType"`
	CalendarID   string       `json:"calendar_id,omitempty"`
	CalendarName string       `json:"calendar_name,omitempty"`
}
