package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	_ "time/tzdata"

	"github.com/urfave/cli/v2"

	"calbook/internal/api"
	"calbook/internal/config"
	"calbook/internal/notify"
	"calbook/internal/session"
)

func main() {
	app := &cli.App{
		Name:  "calbook",
		Usage: "Book meetings and manage event types on a scheduling backend.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "env-file", Usage: "Load settings from this file instead of ./.env"},
			&cli.StringFlag{Name: "log-level", Usage: "Override LOG_LEVEL (debug, info, warn, error)"},
		},
		Commands: []*cli.Command{
			loginCommand(),
			logoutCommand(),
			registerCommand(),
			eventTypesCommand(),
			integrationsCommand(),
			calendarsCommand(),
			availabilityCommand(),
			bookCommand(),
			meetingsCommand(),
			serveCommand(),
			googleAuthCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

// env is what every command needs: settings, a logger, the session file
// and an API client bound to it.
type env struct {
	cfg      config.Config
	logger   *slog.Logger
	sessions *session.Store
	client   *api.Client
	notifier notify.Notifier
}

func loadEnv(c *cli.Context) (*env, error) {
	var files []string
	if f := c.String("env-file"); f != "" {
		files = append(files, f)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return nil, err
	}
	if lvl := c.String("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)
	notifier := notify.NewConsole(c.App.Writer, logger)
	sessions := session.NewStore(cfg.API.SessionFile)

	client, err := api.New(cfg.API.BaseURL,
		api.WithLogger(logger),
		api.WithTokenSource(sessions),
		api.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
		api.WithUnauthorizedHandler(func() {
			if err := sessions.Clear(); err != nil {
				logger.Warn("Failed to clear session", "error", err)
			}
			notify.Info(notifier, "Your session has expired. Run 'calbook login' to sign in again.")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create api client: %w", err)
	}

	return &env{cfg: cfg, logger: logger, sessions: sessions, client: client, notifier: notifier}, nil
}

// requireSession fails early when there is no usable login.
func (e *env) requireSession() (session.Session, error) {
	sess, err := e.sessions.Load()
	if err != nil {
		return session.Session{}, fmt.Errorf("%w. Run 'calbook login' first", err)
	}
	return sess, nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
}

// prompt reads one trimmed line from stdin.
func prompt(c *cli.Context, reader *bufio.Reader, label string) string {
	fmt.Fprint(c.App.Writer, label)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}
