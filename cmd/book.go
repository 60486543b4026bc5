package main

import (
	"bufio"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/urfave/cli/v2"

	"calbook/internal/booking"
	"calbook/internal/caldav"
	"calbook/internal/models"
	"calbook/internal/slot"
)

func availabilityCommand() *cli.Command {
	return &cli.Command{
		Name:  "availability",
		Usage: "Show availability.",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show your weekly availability.",
				Action: func(c *cli.Context) error {
					e, err := loadEnv(c)
					if err != nil {
						return err
					}
					if _, err := e.requireSession(); err != nil {
						return err
					}
					a, err := e.client.UserAvailability(c.Context)
					if err != nil {
						return fmt.Errorf("failed to get availability: %w", err)
					}
					fmt.Fprintf(c.App.Writer, "Time gap: %d minutes\n", a.TimeGap)
					for _, d := range a.Days {
						if !d.IsAvailable {
							fmt.Fprintf(c.App.Writer, "%-10s unavailable\n", d.Day)
							continue
						}
						fmt.Fprintf(c.App.Writer, "%-10s %s - %s\n", d.Day, d.StartTime, d.EndTime)
					}
					return nil
				},
			},
			{
				Name:      "public",
				Usage:     "List the open slots of an event on a date.",
				ArgsUsage: "<event-id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "date", Usage: "YYYY-MM-DD, defaults to today"},
					&cli.StringFlag{Name: "timezone"},
					&cli.StringFlag{Name: "hour-type", Usage: "12h or 24h"},
				},
				Action: func(c *cli.Context) error {
					e, err := loadEnv(c)
					if err != nil {
						return err
					}
					eventID := c.Args().First()
					if eventID == "" {
						return errors.New("an event id is required")
					}
					ctl, err := stateFromFlags(c, e, booking.NewState(time.Now(), e.cfg.Booking.DefaultTimezone))
					if err != nil {
						return err
					}
					s := ctl.State()
					days, err := e.client.PublicAvailability(c.Context, eventID, s.Timezone, s.Date)
					if err != nil {
						return fmt.Errorf("failed to get availability: %w", err)
					}
					printSlots(c, s, booking.ResolveSlots(days, s.Date))
					return nil
				},
			},
		},
	}
}

func bookCommand() *cli.Command {
	return &cli.Command{
		Name:      "book",
		Usage:     "Book a slot on a public event.",
		ArgsUsage: "<event-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "link", Usage: "Resume from a booking link"},
			&cli.StringFlag{Name: "date", Usage: "YYYY-MM-DD"},
			&cli.StringFlag{Name: "time", Usage: "HH:MM, one of the offered slots"},
			&cli.StringFlag{Name: "timezone"},
			&cli.StringFlag{Name: "hour-type", Usage: "12h or 24h"},
			&cli.StringFlag{Name: "name"},
			&cli.StringFlag{Name: "email"},
			&cli.StringFlag{Name: "notes"},
			&cli.StringFlag{Name: "ics", Usage: "Write the confirmed meeting to this .ics file"},
			&cli.BoolFlag{Name: "caldav", Usage: "Push the confirmed meeting to the configured CalDAV calendar"},
		},
		Action: runBook,
	}
}

func runBook(c *cli.Context) error {
	e, err := loadEnv(c)
	if err != nil {
		return err
	}
	reader := bufio.NewReader(os.Stdin)

	eventID, initial, err := bookingStart(c, e)
	if err != nil {
		return err
	}
	if initial.Success {
		fmt.Fprintln(c.App.Writer, "This link is for a booking that is already confirmed. Starting a new one.")
	}

	ev, err := e.client.PublicEvent(c.Context, eventID)
	if err != nil {
		return fmt.Errorf("failed to load event: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "%s (%d minutes)\n", ev.Title, ev.Duration)

	ctl, err := stateFromFlags(c, e, initial)
	if err != nil {
		return err
	}
	if ctl.State().Success {
		ctl.ResetSuccess()
	}
	flow := booking.NewFlow(eventID, ev.Duration, ctl,
		booking.NewFetcher(e.client, e.logger),
		booking.NewSubmitter(e.client, e.logger),
		e.notifier,
	)

	slots, err := flow.Load(c.Context)
	if err != nil {
		return err
	}
	if len(slots) == 0 {
		return fmt.Errorf("no slots are available on %s", ctl.State().Date)
	}
	printSlots(c, ctl.State(), slots)

	if err := pickSlot(c, reader, flow); err != nil {
		return err
	}
	ctl.Advance()
	base := bookingBase(e, eventID)
	if display, ok := ctl.State().DisplaySlot(); ok {
		fmt.Fprintf(c.App.Writer, "Selected %s\nResume later with: %s\n", display, booking.Link(base, ctl.State()))
	}

	guest := booking.Guest{Name: c.String("name"), Email: c.String("email"), Notes: c.String("notes")}
	if guest.Name == "" {
		guest.Name = prompt(c, reader, "Your name: ")
	}
	if guest.Email == "" {
		guest.Email = prompt(c, reader, "Your email: ")
	}

	conf, err := flow.Confirm(c.Context, guest)
	if err != nil {
		return err
	}
	if conf.MeetLink != "" {
		fmt.Fprintf(c.App.Writer, "Join at %s\n", conf.MeetLink)
	}
	fmt.Fprintf(c.App.Writer, "Booking link: %s\n", booking.Link(base, ctl.State()))

	if conf.Meeting.StartTime.IsZero() {
		if start, err := slot.Start(ctl.State().Slot); err == nil {
			conf.Meeting.StartTime = start
			conf.Meeting.EndTime = booking.EndTime(start, ev.Duration)
		}
		conf.Meeting.GuestName = guest.Name
		conf.Meeting.GuestEmail = guest.Email
		conf.Meeting.AdditionalInfo = guest.Notes
	}

	return exportConfirmation(c, e, conf, ev)
}

// bookingStart reads the event and initial state from --link or the
// arguments.
func bookingStart(c *cli.Context, e *env) (string, booking.State, error) {
	if raw := c.String("link"); raw != "" {
		u, s, err := booking.ParseLink(raw, time.Now(), e.cfg.Booking.DefaultTimezone)
		if err != nil {
			return "", booking.State{}, err
		}
		eventID := eventIDFromPath(u)
		if eventID == "" {
			return "", booking.State{}, fmt.Errorf("no event id in link %s", raw)
		}
		if u.Query().Get(booking.ParamHourType) == "" {
			s.HourType = configHourType(e)
		}
		return eventID, s, nil
	}

	eventID := c.Args().First()
	if eventID == "" {
		return "", booking.State{}, errors.New("an event id or --link is required")
	}
	s := booking.NewState(time.Now(), e.cfg.Booking.DefaultTimezone)
	s.HourType = configHourType(e)
	return eventID, s, nil
}

func eventIDFromPath(u *url.URL) string {
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	return parts[len(parts)-1]
}

func configHourType(e *env) slot.HourType {
	h, err := slot.ParseHourType(e.cfg.Booking.HourType)
	if err != nil {
		return slot.Hour24
	}
	return h
}

// stateFromFlags applies --timezone, --hour-type and --date on top of s.
// A new date drops the slot.
func stateFromFlags(c *cli.Context, e *env, s booking.State) (*booking.Controller, error) {
	ctl := booking.NewController(s)
	if tz := c.String("timezone"); tz != "" {
		if err := ctl.SetTimezone(tz); err != nil {
			return nil, err
		}
	}
	if raw := c.String("hour-type"); raw != "" {
		h, err := slot.ParseHourType(raw)
		if err != nil {
			return nil, err
		}
		ctl.SetHourType(h)
	} else if s.HourType == "" {
		ctl.SetHourType(configHourType(e))
	}
	if raw := c.String("date"); raw != "" {
		d, err := civil.ParseDate(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q: %w", raw, err)
		}
		if d != ctl.State().Date {
			ctl.ClearSlot()
			ctl.SelectDate(d)
		}
	}
	return ctl, nil
}

// pickSlot keeps a still-offered slot from the link, or takes --time, or
// asks.
func pickSlot(c *cli.Context, reader *bufio.Reader, flow *booking.Flow) error {
	timeOfDay := c.String("time")
	if timeOfDay == "" {
		if current := flow.Controller().State().Slot; current != "" {
			if start, err := slot.Start(current); err == nil {
				timeOfDay = start.Format("15:04")
			}
		}
	}
	if timeOfDay == "" {
		timeOfDay = prompt(c, reader, "Pick a time (HH:MM): ")
	}
	return flow.PickSlot(timeOfDay)
}

func printSlots(c *cli.Context, s booking.State, slots []string) {
	if len(slots) == 0 {
		fmt.Fprintf(c.App.Writer, "No slots on %s\n", s.Date)
		return
	}
	fmt.Fprintf(c.App.Writer, "Slots on %s (%s):\n", s.Date, s.Timezone)
	for _, t := range slots {
		label, err := slot.FormatTimeOfDay(t, s.HourType)
		if err != nil {
			continue
		}
		fmt.Fprintf(c.App.Writer, "  %s  [%s]\n", label, t)
	}
}

func bookingBase(e *env, eventID string) *url.URL {
	u, err := url.Parse(e.cfg.Booking.AppURL)
	if err != nil {
		u = &url.URL{}
	}
	return u.JoinPath("book", eventID)
}

func exportConfirmation(c *cli.Context, e *env, conf models.MeetingConfirmation, ev models.EventType) error {
	if conf.Meeting.Event == nil {
		conf.Meeting.Event = &ev
	}
	if path := c.String("ics"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("unable to create ics file: %w", err)
		}
		defer f.Close()
		if err := caldav.EncodeConfirmation(f, conf, ev.Title, ""); err != nil {
			return err
		}
		e.logger.Info("Wrote calendar file", "file", path)
	}

	if !c.Bool("caldav") {
		return nil
	}
	if !e.cfg.CalDAV.Enabled() {
		return errors.New("CALDAV_USERNAME, CALDAV_PASSWORD and CALDAV_CALENDAR_NAME must be set to use --caldav")
	}
	client, err := caldav.NewClient(c.Context, e.logger, e.cfg.CalDAV.Endpoint, e.cfg.CalDAV.Username, e.cfg.CalDAV.Password, e.cfg.CalDAV.CalendarName)
	if err != nil {
		return err
	}
	return client.Push(c.Context, conf, ev.Title, "")
}
