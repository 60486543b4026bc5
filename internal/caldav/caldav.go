// Package caldav exports confirmed meetings as iCalendar events, either to
// a writer or to a CalDAV calendar.
package caldav

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"
	"github.com/google/uuid"

	"calbook/internal/models"
)

const productID = "-//calbook//EN"

// basicAuthTransport adds Basic Auth and the client user agent to requests.
type basicAuthTransport struct {
	username  string
	password  string
	transport http.RoundTripper
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.SetBasicAuth(t.username, t.password)
	req.Header.Set("User-Agent", "calbook/1.0")
	return t.transport.RoundTrip(req)
}

// Event is what gets written for a booked meeting.
type Event struct {
	UID       string
	Title     string
	Organizer string
	Guest     string
	Notes     string
	MeetLink  string
	Start     time.Time
	End       time.Time
}

// EventFromConfirmation builds an Event for conf. The UID is the backend
// meeting id when known, otherwise a fresh one.
func EventFromConfirmation(conf models.MeetingConfirmation, title, organizer string) Event {
	m := conf.Meeting
	uid := m.ID
	if uid == "" {
		uid = uuid.New().String()
	}
	if title == "" && m.Event != nil {
		title = m.Event.Title
	}
	link := conf.MeetLink
	if link == "" {
		link = m.MeetLink
	}
	return Event{
		UID:       uid,
		Title:     title,
		Organizer: organizer,
		Guest:     m.GuestEmail,
		Notes:     m.AdditionalInfo,
		MeetLink:  link,
		Start:     m.StartTime.UTC(),
		End:       m.EndTime.UTC(),
	}
}

// Calendar wraps ev in a VCALENDAR.
func (ev Event) Calendar(now time.Time) *ical.Calendar {
	ve := ical.NewComponent(ical.CompEvent)
	ve.Props.SetText(ical.PropUID, ev.UID)
	ve.Props.SetText(ical.PropSummary, ev.Title)
	ve.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())
	ve.Props.SetDateTime(ical.PropDateTimeStart, ev.Start)
	ve.Props.SetDateTime(ical.PropDateTimeEnd, ev.End)

	if ev.Notes != "" {
		ve.Props.SetText(ical.PropDescription, ev.Notes)
	}
	if ev.MeetLink != "" {
		ve.Props.SetText(ical.PropLocation, ev.MeetLink)
		if u, err := url.Parse(ev.MeetLink); err == nil {
			ve.Props.SetURI(ical.PropURL, u)
		}
	}
	if ev.Organizer != "" {
		p := ical.NewProp(ical.PropOrganizer)
		p.SetText("mailto:" + ev.Organizer)
		ve.Props.Add(p)
	}
	if ev.Guest != "" {
		p := ical.NewProp(ical.PropAttendee)
		p.SetText("mailto:" + ev.Guest)
		ve.Props.Add(p)
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)
	cal.Children = append(cal.Children, ve)
	return cal
}

// EncodeConfirmation writes conf to w as an .ics document.
func EncodeConfirmation(w io.Writer, conf models.MeetingConfirmation, title, organizer string) error {
	cal := EventFromConfirmation(conf, title, organizer).Calendar(time.Now())
	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode event to iCal format: %w", err)
	}
	return nil
}

// Client pushes events to one calendar on a CalDAV server.
type Client struct {
	caldavClient *caldav.Client
	webdavClient *webdav.Client
	logger       *slog.Logger
	endpoint     string
	calendarPath string
}

// NewClient connects to endpoint and locates the calendar named
// calendarName.
func NewClient(ctx context.Context, logger *slog.Logger, endpoint, username, password, calendarName string) (*Client, error) {
	httpClient := &http.Client{
		Timeout: 30 * time.Second,
		Transport: &basicAuthTransport{
			username:  username,
			password:  password,
			transport: http.DefaultTransport,
		},
	}

	caldavClient, err := caldav.NewClient(httpClient, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create caldav client: %w", err)
	}
	webdavClient, err := webdav.NewClient(httpClient, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create webdav client: %w", err)
	}

	c := &Client{
		caldavClient: caldavClient,
		webdavClient: webdavClient,
		logger:       logger,
		endpoint:     endpoint,
	}

	logger.Info("Finding CalDAV calendar", "calendarName", calendarName)
	calendarPath, err := c.findCalendar(ctx, calendarName)
	if err != nil {
		return nil, fmt.Errorf("could not find calendar '%s': %w", calendarName, err)
	}
	c.calendarPath = calendarPath
	logger.Info("Found CalDAV calendar", "path", calendarPath)
	return c, nil
}

// Push stores conf on the calendar, replacing an earlier copy with the same
// UID.
func (c *Client) Push(ctx context.Context, conf models.MeetingConfirmation, title, organizer string) error {
	ev := EventFromConfirmation(conf, title, organizer)
	c.logger.Debug("Pushing meeting to CalDAV", "title", ev.Title, "uid", ev.UID)

	eventPath := path.Join(c.calendarPath, ev.UID+".ics")
	writer, err := c.webdavClient.Create(ctx, eventPath)
	if err != nil {
		return fmt.Errorf("failed to create event on CalDAV server: %w", err)
	}
	if err := ical.NewEncoder(writer).Encode(ev.Calendar(time.Now())); err != nil {
		writer.Close()
		return fmt.Errorf("failed to encode event to iCal format: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to upload event: %w", err)
	}

	c.logger.Info("Pushed meeting to CalDAV", "title", ev.Title, "uid", ev.UID)
	return nil
}

// findCalendar returns the path of the calendar with the given name.
func (c *Client) findCalendar(ctx context.Context, name string) (string, error) {
	principal, err := c.caldavClient.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to find principal path: %w", err)
	}
	homeSet, err := c.caldavClient.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return "", fmt.Errorf("failed to find calendar home set: %w", err)
	}
	calendars, err := c.caldavClient.FindCalendars(ctx, homeSet)
	if err != nil {
		return "", fmt.Errorf("failed to find calendars: %w", err)
	}
	for _, cal := range calendars {
		if strings.EqualFold(cal.Name, name) {
			return cal.Path, nil
		}
	}
	return "", fmt.Errorf("no calendar found with name '%s'", name)
}
