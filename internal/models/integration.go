package models

// IntegrationAppType identifies a connectable third-party app.
type IntegrationAppType string

const (
	AppGoogleMeetAndCalendar IntegrationAppType = "GOOGLE_MEET_AND_CALENDAR"
	AppZoomMeeting           IntegrationAppType = "ZOOM_MEETING"
	AppMicrosoftTeams        IntegrationAppType = "MICROSOFT_TEAMS"
	AppOutlookCalendar       IntegrationAppType = "OUTLOOK_CALENDAR"
)

// IntegrationStatus is one entry of the integrations page.
type IntegrationStatus struct {
	Provider    string             `json:"provider"`
	Title       string             `json:"title"`
	AppType     IntegrationAppType `json:"app_type"`
	Category    string             `json:"category"`
	IsConnected bool               `json:"isConnected"`
}

// User is the authenticated account.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	ImageURL string `json:"imageUrl,omitempty"`
}
