// Package eventtype implements the event type creation flow: choosing a
// conferencing platform, checking that its integration is connected and
// pairing it with an optional calendar.
package eventtype

import (
	"fmt"
	"strings"

	"calbook/internal/models"
)

// Platform is a conferencing platform a host can pick.
type Platform string

const (
	GoogleMeet Platform = "GOOGLE_MEET"
	Zoom       Platform = "ZOOM"
	Teams      Platform = "MICROSOFT_TEAMS"
)

// Platforms lists the selectable platforms in display order.
var Platforms = []Platform{GoogleMeet, Zoom, Teams}

// AppType is the integration that must be connected to use p.
func (p Platform) AppType() models.IntegrationAppType {
	switch p {
	case Zoom:
		return models.AppZoomMeeting
	case Teams:
		return models.AppMicrosoftTeams
	default:
		return models.AppGoogleMeetAndCalendar
	}
}

func (p Platform) Title() string {
	switch p {
	case Zoom:
		return "Zoom"
	case Teams:
		return "Microsoft Teams"
	default:
		return "Google Meet"
	}
}

// ParsePlatform accepts the constant names as well as short forms such as
// "meet", "zoom" and "teams".
func ParsePlatform(s string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "google_meet", "google-meet", "googlemeet", "meet", "google":
		return GoogleMeet, nil
	case "zoom":
		return Zoom, nil
	case "microsoft_teams", "microsoft-teams", "teams":
		return Teams, nil
	}
	return "", fmt.Errorf("unknown platform %q", s)
}
