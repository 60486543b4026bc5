package eventtype

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-playground/validator/v10"

	"calbook/internal/models"
	"calbook/internal/provider"
)

// ConnectionState is where the platform selection stands.
type ConnectionState int

const (
	Unselected ConnectionState = iota
	CheckingConnection
	Connected
	Disconnected
)

func (s ConnectionState) String() string {
	switch s {
	case CheckingConnection:
		return "checking"
	case Connected:
		return "connected"
	case Disconnected:
		return "disconnected"
	default:
		return "unselected"
	}
}

var (
	ErrCheckInProgress     = errors.New("connection check already running for this platform")
	ErrNotConnected        = errors.New("integration not connected")
	ErrNotReady            = errors.New("select a connected platform first")
	ErrCalendarNotWritable = errors.New("calendar is read-only")
)

// NotConnectedError tells the user where to connect the platform.
type NotConnectedError struct {
	Platform Platform
	Link     string
}

func (e *NotConnectedError) Error() string {
	return fmt.Sprintf("%s is not connected. Connect it on the integrations page", e.Platform.Title())
}

func (e *NotConnectedError) Is(target error) bool { return target == ErrNotConnected }

// IntegrationChecker reports whether an integration is connected.
type IntegrationChecker interface {
	CheckIntegration(ctx context.Context, appType models.IntegrationAppType) (bool, error)
}

// Creator persists a new event type.
type Creator interface {
	CreateEventType(ctx context.Context, draft models.EventTypeDraft) (models.EventType, error)
}

// Details are the free-form fields of a new event type.
type Details struct {
	Title       string `json:"title" validate:"required,max=120"`
	Duration    int    `json:"duration" validate:"gt=0,lte=1440"`
	Description string `json:"description" validate:"max=2000"`
}

// Options configure a Composer. WritableOnly rejects calendars that events
// cannot be created on.
type Options struct {
	IntegrationsURL string
	WritableOnly    bool
	Classifier      provider.Classifier
	Logger          *slog.Logger
}

// Composer is one open event type creation flow. Connection checks are
// memoised until Close.
type Composer struct {
	checker    IntegrationChecker
	creator    Creator
	classifier provider.Classifier
	opts       Options
	logger     *slog.Logger
	validate   *validator.Validate
	cache      *ConnectionCache

	mu       sync.Mutex
	platform Platform
	state    ConnectionState
	checking map[Platform]bool
	calendar *models.CalendarDescriptor
}

func NewComposer(checker IntegrationChecker, creator Creator, opts Options) *Composer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	classifier := opts.Classifier
	if classifier == nil {
		classifier = provider.NewHeuristic(logger)
	}
	return &Composer{
		checker:    checker,
		creator:    creator,
		classifier: classifier,
		opts:       opts,
		logger:     logger,
		validate:   validator.New(),
		cache:      NewConnectionCache(),
		checking:   make(map[Platform]bool),
	}
}

// State returns the selected platform and its connection state.
func (c *Composer) State() (Platform, ConnectionState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.platform, c.state
}

// SelectPlatform picks p and checks its integration unless an earlier
// check in this flow already found it connected.
func (c *Composer) SelectPlatform(ctx context.Context, p Platform) (ConnectionState, error) {
	c.mu.Lock()
	if c.checking[p] {
		c.mu.Unlock()
		return CheckingConnection, ErrCheckInProgress
	}
	c.platform = p
	if c.cache.Connected(p) {
		c.state = Connected
		c.mu.Unlock()
		return Connected, nil
	}
	c.state = CheckingConnection
	c.checking[p] = true
	c.mu.Unlock()

	connected, err := c.checker.CheckIntegration(ctx, p.AppType())

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.checking, p)

	var result ConnectionState
	switch {
	case err != nil:
		result = Disconnected
		err = fmt.Errorf("check %s integration: %w", p.Title(), err)
	case !connected:
		result = Disconnected
		err = &NotConnectedError{Platform: p, Link: c.opts.IntegrationsURL}
	default:
		result = Connected
		c.cache.MarkConnected(p)
	}
	if c.platform == p {
		c.state = result
	}
	c.logger.Debug("Checked platform connection", "platform", p, "state", result)
	return result, err
}

// SelectCalendar sets the optional target calendar; nil clears it.
func (c *Composer) SelectCalendar(cal *models.CalendarDescriptor) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cal != nil && c.opts.WritableOnly && !cal.IsWritable {
		return fmt.Errorf("%s: %w", cal.Name, ErrCalendarNotWritable)
	}
	if cal == nil {
		c.calendar = nil
		return nil
	}
	selected := *cal
	c.calendar = &selected
	return nil
}

// CanSubmit is true once the selected platform is connected.
func (c *Composer) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == Connected
}

// Location resolves the location type for the current selection.
func (c *Composer) Location() (models.LocationType, *Warning) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.locationLocked()
}

func (c *Composer) locationLocked() (models.LocationType, *Warning) {
	prov := NoCalendar
	if c.calendar != nil {
		prov = c.classifier.Classify(c.calendar.ID, c.calendar.Name, c.calendar.Metadata)
	}
	return Combine(c.platform, prov)
}

// Draft assembles the creation body for d.
func (c *Composer) Draft(d Details) (models.EventTypeDraft, error) {
	if err := c.validate.Struct(d); err != nil {
		return models.EventTypeDraft{}, fmt.Errorf("invalid event type: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Connected {
		return models.EventTypeDraft{}, ErrNotReady
	}
	loc, warn := c.locationLocked()
	if warn != nil {
		c.logger.Warn("Unsupported platform and calendar pairing", "platform", warn.Platform, "provider", warn.Provider)
	}
	draft := models.EventTypeDraft{
		Title:        d.Title,
		Duration:     d.Duration,
		Description:  d.Description,
		LocationType: loc,
	}
	if c.calendar != nil {
		draft.CalendarID = c.calendar.ID
		draft.CalendarName = c.calendar.Name
	}
	return draft, nil
}

// Submit creates the event type and closes the flow on success.
func (c *Composer) Submit(ctx context.Context, d Details) (models.EventType, error) {
	draft, err := c.Draft(d)
	if err != nil {
		return models.EventType{}, err
	}
	ev, err := c.creator.CreateEventType(ctx, draft)
	if err != nil {
		return models.EventType{}, fmt.Errorf("create event type: %w", err)
	}
	c.logger.Info("Event type created", "id", ev.ID, "title", ev.Title, "locationType", draft.LocationType)
	c.Close()
	return ev, nil
}

// Close discards the selection and the connection memo.
func (c *Composer) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Clear()
	c.platform = ""
	c.state = Unselected
	c.calendar = nil
}
