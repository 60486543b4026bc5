// Package integration handles the user-facing side of connecting
// third-party apps: starting the OAuth flow and processing its return.
package integration

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"calbook/internal/models"
	"calbook/internal/notify"
)

// Query parameters the backend appends when redirecting back from an
// OAuth provider.
const (
	ParamSuccess      = "success"
	ParamError        = "error"
	ParamAppType      = "app_type"
	ParamErrorMessage = "error_message"
)

var returnParams = []string{ParamSuccess, ParamError, ParamAppType, ParamErrorMessage}

// ParseReturn turns OAuth return parameters into a notification. It returns
// a copy of u without those parameters; ok is false when u carried none.
func ParseReturn(u *url.URL) (n notify.Notification, cleaned *url.URL, ok bool) {
	q := u.Query()
	present := false
	for _, p := range returnParams {
		if q.Has(p) {
			present = true
			q.Del(p)
		}
	}
	stripped := *u
	stripped.RawQuery = q.Encode()
	if !present {
		return notify.Notification{}, &stripped, false
	}

	orig := u.Query()
	app := AppTitle(models.IntegrationAppType(orig.Get(ParamAppType)))
	switch {
	case orig.Get(ParamSuccess) == "true":
		n = notify.Notification{Level: notify.LevelSuccess, Message: app + " connected successfully"}
	case orig.Get(ParamErrorMessage) != "":
		n = notify.Notification{Level: notify.LevelError, Message: orig.Get(ParamErrorMessage)}
	case orig.Get(ParamError) != "":
		n = notify.Notification{Level: notify.LevelError, Message: fmt.Sprintf("Failed to connect %s: %s", app, orig.Get(ParamError))}
	default:
		n = notify.Notification{Level: notify.LevelError, Message: "Failed to connect " + app}
	}
	return n, &stripped, true
}

// AppTitle names an app type for messages.
func AppTitle(t models.IntegrationAppType) string {
	switch t {
	case models.AppGoogleMeetAndCalendar:
		return "Google Meet & Calendar"
	case models.AppZoomMeeting:
		return "Zoom"
	case models.AppMicrosoftTeams:
		return "Microsoft Teams"
	case models.AppOutlookCalendar:
		return "Outlook Calendar"
	case "":
		return "integration"
	}
	return strings.ReplaceAll(strings.ToLower(string(t)), "_", " ")
}

// ParseAppType accepts an app type in any case, with dashes or underscores.
func ParseAppType(s string) (models.IntegrationAppType, error) {
	t := models.IntegrationAppType(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")))
	switch t {
	case models.AppGoogleMeetAndCalendar, models.AppZoomMeeting, models.AppMicrosoftTeams, models.AppOutlookCalendar:
		return t, nil
	}
	return "", fmt.Errorf("unknown app type %q", s)
}

// Connector starts an OAuth connection.
type Connector interface {
	ConnectIntegration(ctx context.Context, appType models.IntegrationAppType) (string, error)
}

// Connect returns the provider consent URL for appType.
func Connect(ctx context.Context, c Connector, appType models.IntegrationAppType) (*url.URL, error) {
	raw, err := c.ConnectIntegration(ctx, appType)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", AppTitle(appType), err)
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return nil, fmt.Errorf("backend returned an invalid consent url %q", raw)
	}
	return u, nil
}
