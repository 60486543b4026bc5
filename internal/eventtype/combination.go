package eventtype

import (
	"fmt"

	"calbook/internal/models"
	"calbook/internal/provider"
)

// NoCalendar stands for "no specific calendar selected".
const NoCalendar provider.Provider = ""

// Warning flags a platform and calendar pairing the backend does not
// support. It never blocks submission.
type Warning struct {
	Platform Platform
	Provider provider.Provider
}

func (w *Warning) String() string {
	return fmt.Sprintf("%s does not work with %s; the platform default will be used", w.Platform.Title(), w.Provider.Label())
}

var combinations = map[Platform]map[provider.Provider]models.LocationType{
	GoogleMeet: {
		NoCalendar:      models.LocationGoogleMeetAndCalendar,
		provider.Google: models.LocationGoogleMeetAndCalendar,
	},
	Zoom: {
		NoCalendar:       models.LocationZoomMeeting,
		provider.Google:  models.LocationZoomGoogleCalendar,
		provider.Outlook: models.LocationZoomOutlookCalendar,
	},
	Teams: {
		NoCalendar:       models.LocationTeamsMeeting,
		provider.Outlook: models.LocationTeamsOutlookCalendar,
	},
}

// Combine returns the location type for a platform paired with a calendar
// provider. Unsupported pairs fall back to the platform's no-calendar
// location and come with a warning.
func Combine(p Platform, prov provider.Provider) (models.LocationType, *Warning) {
	table, ok := combinations[p]
	if !ok {
		table = combinations[GoogleMeet]
	}
	if loc, ok := table[prov]; ok {
		return loc, nil
	}
	return table[NoCalendar], &Warning{Platform: p, Provider: prov}
}

// Supported reports whether p can write meetings to a prov calendar.
func Supported(p Platform, prov provider.Provider) bool {
	_, warn := Combine(p, prov)
	return warn == nil
}
