// Package google lists the user's Google calendars directly from the
// Calendar API, as an alternative to the backend's synced copy.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"calbook/internal/models"
	"calbook/internal/provider"
)

const (
	credentialsFile = "credentials.json"
	oobRedirectURL  = "urn:ietf:wg:oauth:2.0:oob"
)

// CalendarSource reads the calendar list of one authenticated account.
type CalendarSource struct {
	service *calendar.Service
	logger  *slog.Logger
}

// NewCalendarSource builds a source from the token saved by the
// google-auth command.
func NewCalendarSource(ctx context.Context, logger *slog.Logger, clientID, clientSecret, tokenFile string) (*CalendarSource, error) {
	config, err := OAuthConfig(clientID, clientSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to get OAuth config: %w", err)
	}

	token, err := tokenFromFile(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("could not load token %s: %w. Please run the 'google-auth' command first", tokenFile, err)
	}

	service, err := calendar.NewService(ctx, option.WithHTTPClient(config.Client(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return &CalendarSource{service: service, logger: logger}, nil
}

// NewCalendarSourceWithService wraps an existing service, e.g. one pointed
// at a test server.
func NewCalendarSourceWithService(logger *slog.Logger, service *calendar.Service) *CalendarSource {
	return &CalendarSource{service: service, logger: logger}
}

// ListCalendars returns every calendar in the account's calendar list,
// following pagination.
func (s *CalendarSource) ListCalendars(ctx context.Context, writableOnly bool) ([]models.CalendarDescriptor, error) {
	call := s.service.CalendarList.List().ShowHidden(false)
	if writableOnly {
		call = call.MinAccessRole(string(models.AccessWriter))
	}

	var out []models.CalendarDescriptor
	err := call.Pages(ctx, func(page *calendar.CalendarList) error {
		for _, item := range page.Items {
			out = append(out, toDescriptor(item))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list calendars: %w", err)
	}
	s.logger.Info("Fetched calendars from Google", "count", len(out), "writableOnly", writableOnly)
	return out, nil
}

func toDescriptor(item *calendar.CalendarListEntry) models.CalendarDescriptor {
	role := models.AccessRole(item.AccessRole)
	name := item.SummaryOverride
	if name == "" {
		name = item.Summary
	}
	return models.CalendarDescriptor{
		ID:              item.Id,
		Name:            name,
		IsPrimary:       item.Primary,
		AccessRole:      role,
		IsActive:        !item.Hidden && !item.Deleted,
		IsWritable:      role == models.AccessOwner || role == models.AccessWriter,
		BackgroundColor: item.BackgroundColor,
		ForegroundColor: item.ForegroundColor,
		TimeZone:        item.TimeZone,
		Summary:         item.Description,
		Metadata:        map[string]string{provider.MetadataKey: string(provider.Google)},
	}
}

// OAuthConfig returns the desktop-flow OAuth config. Explicit client
// credentials win over a local credentials.json.
func OAuthConfig(clientID, clientSecret string) (*oauth2.Config, error) {
	if clientID != "" && clientSecret != "" {
		return &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  oobRedirectURL,
			Scopes:       []string{calendar.CalendarReadonlyScope},
			Endpoint:     google.Endpoint,
		}, nil
	}

	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("credentials.json not found. Please provide GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET or place credentials.json in the working directory")
		}
		return nil, fmt.Errorf("unable to read client secret file: %w", err)
	}

	config, err := google.ConfigFromJSON(b, calendar.CalendarReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret file to config: %w", err)
	}
	config.RedirectURL = oobRedirectURL
	return config, nil
}

// TokenFromWeb exchanges an authorization code for a token.
func TokenFromWeb(ctx context.Context, config *oauth2.Config, authCode string) (*oauth2.Token, error) {
	return config.Exchange(ctx, authCode)
}

// SaveToken saves a token to a file path.
func SaveToken(path string, token *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("unable to create token file: %w", err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}

func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}
