package main

import (
	"bufio"
	"errors"
	"fmt"
	"net/url"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"calbook/internal/api"
	"calbook/internal/calendars"
	"calbook/internal/eventtype"
	"calbook/internal/google"
	"calbook/internal/integration"
	"calbook/internal/models"
	"calbook/internal/notify"
	"calbook/internal/provider"
	"calbook/internal/session"
)

func loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Sign in and store the session token.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "password", Usage: "Prompted for when omitted"},
		},
		Action: func(c *cli.Context) error {
			e, err := loadEnv(c)
			if err != nil {
				return err
			}
			password := c.String("password")
			if password == "" {
				password = prompt(c, bufio.NewReader(os.Stdin), "Password: ")
			}

			res, err := e.client.Login(c.Context, c.String("email"), password)
			if err != nil {
				notify.Error(e.notifier, err)
				return fmt.Errorf("login failed: %w", err)
			}
			sess := session.Session{AccessToken: res.AccessToken, ExpiresAt: res.ExpiresAt, User: res.User}
			if err := e.sessions.Save(sess); err != nil {
				return err
			}
			e.logger.Info("Session saved", "file", e.sessions.Path())
			notify.Success(e.notifier, "Signed in as %s", res.User.Email)
			return nil
		},
	}
}

func logoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "Forget the stored session.",
		Action: func(c *cli.Context) error {
			e, err := loadEnv(c)
			if err != nil {
				return err
			}
			if err := e.sessions.Clear(); err != nil {
				return err
			}
			notify.Success(e.notifier, "Signed out")
			return nil
		},
	}
}

func registerCommand() *cli.Command {
	return &cli.Command{
		Name:  "register",
		Usage: "Create a host account.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Required: true},
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "password", Usage: "Prompted for when omitted"},
		},
		Action: func(c *cli.Context) error {
			e, err := loadEnv(c)
			if err != nil {
				return err
			}
			password := c.String("password")
			if password == "" {
				password = prompt(c, bufio.NewReader(os.Stdin), "Password: ")
			}
			user, err := e.client.Register(c.Context, api.RegisterRequest{
				Name:     c.String("name"),
				Email:    c.String("email"),
				Password: password,
			})
			if err != nil {
				notify.Error(e.notifier, err)
				return fmt.Errorf("registration failed: %w", err)
			}
			notify.Success(e.notifier, "Account created for %s. Run 'calbook login' to sign in.", user.Email)
			return nil
		},
	}
}

func eventTypesCommand() *cli.Command {
	return &cli.Command{
		Name:  "event-types",
		Usage: "Manage bookable event types.",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List your event types with their booking links.",
				Action: func(c *cli.Context) error {
					e, err := loadEnv(c)
					if err != nil {
						return err
					}
					if _, err := e.requireSession(); err != nil {
						return err
					}
					list, err := e.client.ListEventTypes(c.Context)
					if err != nil {
						return fmt.Errorf("failed to list event types: %w", err)
					}
					tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
					fmt.Fprintln(tw, "ID\tTITLE\tMINUTES\tLOCATION\tPRIVATE\tLINK")
					for _, ev := range list.Events {
						link := fmt.Sprintf("%s/book/%s", e.cfg.Booking.AppURL, ev.ID)
						fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%t\t%s\n", ev.ID, ev.Title, ev.Duration, ev.LocationType, ev.IsPrivate, link)
					}
					return tw.Flush()
				},
			},
			{
				Name:  "create",
				Usage: "Create an event type on a connected conferencing platform.",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Required: true},
					&cli.IntFlag{Name: "duration", Value: 30, Usage: "Length in minutes"},
					&cli.StringFlag{Name: "description"},
					&cli.StringFlag{Name: "platform", Required: true, Usage: "GOOGLE_MEET, ZOOM or MICROSOFT_TEAMS"},
					&cli.StringFlag{Name: "calendar", Usage: "Calendar id or name to write meetings to"},
				},
				Action: createEventType,
			},
			{
				Name:      "delete",
				Usage:     "Delete an event type.",
				ArgsUsage: "<event-id>",
				Action: func(c *cli.Context) error {
					e, err := loadEnv(c)
					if err != nil {
						return err
					}
					id := c.Args().First()
					if id == "" {
						return errors.New("an event id is required")
					}
					if err := e.client.DeleteEventType(c.Context, id); err != nil {
						notify.Error(e.notifier, err)
						return fmt.Errorf("failed to delete event type: %w", err)
					}
					notify.Success(e.notifier, "Event type deleted")
					return nil
				},
			},
			{
				Name:      "toggle-privacy",
				Usage:     "Switch an event type between public and private.",
				ArgsUsage: "<event-id>",
				Action: func(c *cli.Context) error {
					e, err := loadEnv(c)
					if err != nil {
						return err
					}
					id := c.Args().First()
					if id == "" {
						return errors.New("an event id is required")
					}
					ev, err := e.client.ToggleEventPrivacy(c.Context, id)
					if err != nil {
						notify.Error(e.notifier, err)
						return fmt.Errorf("failed to toggle privacy: %w", err)
					}
					visibility := "public"
					if ev.IsPrivate {
						visibility = "private"
					}
					notify.Success(e.notifier, "%s is now %s", ev.Title, visibility)
					return nil
				},
			},
		},
	}
}

func createEventType(c *cli.Context) error {
	e, err := loadEnv(c)
	if err != nil {
		return err
	}
	if _, err := e.requireSession(); err != nil {
		return err
	}
	platform, err := eventtype.ParsePlatform(c.String("platform"))
	if err != nil {
		return err
	}

	classifier := provider.NewHeuristic(e.logger)
	composer := eventtype.NewComposer(e.client, e.client, eventtype.Options{
		IntegrationsURL: e.cfg.Booking.AppURL + "/integrations",
		WritableOnly:    e.cfg.Calendar.WritableOnly,
		Classifier:      classifier,
		Logger:          e.logger,
	})
	defer composer.Close()

	if _, err := composer.SelectPlatform(c.Context, platform); err != nil {
		var nce *eventtype.NotConnectedError
		if errors.As(err, &nce) {
			e.notifier.Notify(notify.Notification{Level: notify.LevelError, Message: nce.Error(), Link: nce.Link})
		} else {
			notify.Error(e.notifier, err)
		}
		return err
	}

	if name := c.String("calendar"); name != "" {
		dir := calendars.NewDirectory(e.logger, e.client, classifier)
		cal, err := dir.Find(c.Context, name, e.cfg.Calendar.WritableOnly)
		if err != nil {
			return err
		}
		if err := composer.SelectCalendar(&cal); err != nil {
			return err
		}
		e.logger.Debug("Calendar selected", "calendar", dir.Caption(cal))
	}
	if _, warn := composer.Location(); warn != nil {
		notify.Info(e.notifier, "%s", warn.String())
	}

	ev, err := composer.Submit(c.Context, eventtype.Details{
		Title:       c.String("title"),
		Duration:    c.Int("duration"),
		Description: c.String("description"),
	})
	if err != nil {
		notify.Error(e.notifier, err)
		return err
	}
	notify.Success(e.notifier, "Event type %q created: %s/book/%s", ev.Title, e.cfg.Booking.AppURL, ev.ID)
	return nil
}

func integrationsCommand() *cli.Command {
	return &cli.Command{
		Name:  "integrations",
		Usage: "Connect conferencing and calendar apps.",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "Show every app and whether it is connected.",
				Action: func(c *cli.Context) error {
					e, err := loadEnv(c)
					if err != nil {
						return err
					}
					items, err := e.client.ListIntegrations(c.Context)
					if err != nil {
						return fmt.Errorf("failed to list integrations: %w", err)
					}
					tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
					fmt.Fprintln(tw, "APP\tTYPE\tCATEGORY\tCONNECTED")
					for _, it := range items {
						fmt.Fprintf(tw, "%s\t%s\t%s\t%t\n", it.Title, it.AppType, it.Category, it.IsConnected)
					}
					return tw.Flush()
				},
			},
			{
				Name:      "connect",
				Usage:     "Print the consent URL for an app.",
				ArgsUsage: "<app-type>",
				Action: func(c *cli.Context) error {
					e, err := loadEnv(c)
					if err != nil {
						return err
					}
					appType, err := integration.ParseAppType(c.Args().First())
					if err != nil {
						return err
					}
					u, err := integration.Connect(c.Context, e.client, appType)
					if err != nil {
						notify.Error(e.notifier, err)
						return err
					}
					fmt.Fprintf(c.App.Writer, "Open this link to connect %s:\n%s\n", integration.AppTitle(appType), u)
					return nil
				},
			},
			{
				Name:      "return",
				Usage:     "Report the outcome of an OAuth redirect URL.",
				ArgsUsage: "<url>",
				Action: func(c *cli.Context) error {
					e, err := loadEnv(c)
					if err != nil {
						return err
					}
					u, err := url.Parse(c.Args().First())
					if err != nil {
						return fmt.Errorf("invalid url: %w", err)
					}
					n, _, ok := integration.ParseReturn(u)
					if !ok {
						notify.Info(e.notifier, "No integration result in this URL")
						return nil
					}
					e.notifier.Notify(n)
					return nil
				},
			},
		},
	}
}

func calendarsCommand() *cli.Command {
	sourceFlag := &cli.StringFlag{Name: "source", Value: "backend", Usage: "backend or google"}
	return &cli.Command{
		Name:  "calendars",
		Usage: "Inspect calendars meetings can be written to.",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List calendars with their provider.",
				Flags: []cli.Flag{
					sourceFlag,
					&cli.BoolFlag{Name: "writable", Usage: "Only calendars events can be created on"},
				},
				Action: func(c *cli.Context) error {
					e, err := loadEnv(c)
					if err != nil {
						return err
					}
					dir, err := calendarDirectory(c, e)
					if err != nil {
						return err
					}
					cals, err := dir.List(c.Context, c.Bool("writable"))
					if err != nil {
						return err
					}
					printCalendars(c, dir, cals)
					return nil
				},
			},
			{
				Name:  "sync",
				Usage: "Ask the backend to refresh calendars from the providers.",
				Action: func(c *cli.Context) error {
					e, err := loadEnv(c)
					if err != nil {
						return err
					}
					dir := calendars.NewDirectory(e.logger, e.client, nil)
					n, err := dir.Sync(c.Context)
					if err != nil {
						notify.Error(e.notifier, err)
						return err
					}
					notify.Success(e.notifier, "Synced %d calendars", n)
					return nil
				},
			},
		},
	}
}

func calendarDirectory(c *cli.Context, e *env) (*calendars.Directory, error) {
	switch c.String("source") {
	case "", "backend":
		if _, err := e.requireSession(); err != nil {
			return nil, err
		}
		return calendars.NewDirectory(e.logger, e.client, nil), nil
	case "google":
		src, err := google.NewCalendarSource(c.Context, e.logger, e.cfg.Google.ClientID, e.cfg.Google.ClientSecret, e.cfg.Google.TokenFile)
		if err != nil {
			return nil, err
		}
		return calendars.NewDirectory(e.logger, src, nil), nil
	default:
		return nil, fmt.Errorf("unknown calendar source %q", c.String("source"))
	}
}

func printCalendars(c *cli.Context, dir *calendars.Directory, cals []models.CalendarDescriptor) {
	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCALENDAR\tROLE\tWRITABLE")
	for _, cal := range cals {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\n", cal.ID, dir.Caption(cal), cal.AccessRole, cal.IsWritable)
	}
	_ = tw.Flush()
}

func meetingsCommand() *cli.Command {
	return &cli.Command{
		Name:  "meetings",
		Usage: "List and cancel booked meetings.",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List meetings.",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "filter", Value: string(models.MeetingFilterUpcoming), Usage: "UPCOMING, PAST or CANCELLED"},
				},
				Action: func(c *cli.Context) error {
					e, err := loadEnv(c)
					if err != nil {
						return err
					}
					if _, err := e.requireSession(); err != nil {
						return err
					}
					meetings, err := e.client.ListMeetings(c.Context, models.MeetingFilter(c.String("filter")))
					if err != nil {
						return fmt.Errorf("failed to list meetings: %w", err)
					}
					tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
					fmt.Fprintln(tw, "ID\tEVENT\tGUEST\tSTART (UTC)\tSTATUS\tLINK")
					for _, m := range meetings {
						title := ""
						if m.Event != nil {
							title = m.Event.Title
						}
						fmt.Fprintf(tw, "%s\t%s\t%s <%s>\t%s\t%s\t%s\n",
							m.ID, title, m.GuestName, m.GuestEmail, m.StartTime.UTC().Format("2006-01-02 15:04"), m.Status, m.MeetLink)
					}
					return tw.Flush()
				},
			},
			{
				Name:      "cancel",
				Usage:     "Cancel a meeting.",
				ArgsUsage: "<meeting-id>",
				Action: func(c *cli.Context) error {
					e, err := loadEnv(c)
					if err != nil {
						return err
					}
					id := c.Args().First()
					if id == "" {
						return errors.New("a meeting id is required")
					}
					if err := e.client.CancelMeeting(c.Context, id); err != nil {
						notify.Error(e.notifier, err)
						return fmt.Errorf("failed to cancel meeting: %w", err)
					}
					notify.Success(e.notifier, "Meeting cancelled")
					return nil
				},
			},
		},
	}
}
