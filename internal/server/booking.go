package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/gin-gonic/gin"

	"calbook/internal/api"
	"calbook/internal/booking"
	"calbook/internal/integration"
	"calbook/internal/models"
	"calbook/internal/notify"
	"calbook/internal/slot"
)

// page is one request's view of a booking link.
type page struct {
	eventID string
	event   *models.EventType
	flow    *booking.Flow
	notes   *notify.Recorder
	slots   []string
}

func (s *Server) open(c *gin.Context) *page {
	eventID := c.Param("eventID")
	q := c.Request.URL.Query()

	ctl := booking.NewController(booking.ParseQuery(q, s.now(), s.defaultTimezone))
	if q.Get(booking.ParamHourType) == "" {
		ctl.SetHourType(s.hourType)
	}

	p := &page{eventID: eventID, notes: &notify.Recorder{}}
	duration := 0
	ev, err := s.backend.PublicEvent(c.Request.Context(), eventID)
	if err != nil {
		s.logger.Warn("Failed to load event", "eventID", eventID, "error", err)
		_ = c.Error(err)
		notify.Error(p.notes, fmt.Errorf("load event: %w", err))
	} else {
		p.event = &ev
		duration = ev.Duration
	}

	p.flow = booking.NewFlow(eventID, duration,
		ctl,
		booking.NewFetcher(s.backend, s.logger),
		booking.NewSubmitter(s.backend, s.logger),
		p.notes,
	)
	return p
}

// load resolves the selected day's slots. Failures are recorded on the page.
func (p *page) load(c *gin.Context) error {
	slots, err := p.flow.Load(c.Request.Context())
	p.slots = slots
	if err != nil {
		_ = c.Error(err)
	}
	return err
}

func (s *Server) link(p *page) string {
	base := s.appURL.JoinPath("book", p.eventID)
	return booking.Link(base, p.flow.Controller().State()).String()
}

func (s *Server) view(p *page) BookingView {
	st := p.flow.Controller().State()
	v := BookingView{
		EventID:       p.eventID,
		Event:         p.event,
		State:         stateView(st),
		Slots:         slotViews(p.slots, st.Date, st.Slot, st.HourType),
		Link:          s.link(p),
		MeetLink:      p.flow.MeetLink(),
		Notifications: p.notes.All(),
	}
	if display, ok := st.DisplaySlot(); ok {
		v.SelectedSlot = display
	}
	return v
}

func (s *Server) render(c *gin.Context, status int, p *page) {
	c.JSON(status, s.view(p))
}

// redirect sends the client to the page's new link.
func (s *Server) redirect(c *gin.Context, p *page) {
	c.Redirect(http.StatusSeeOther, s.link(p))
}

// fail records err on the page and renders it with status.
func (s *Server) fail(c *gin.Context, status int, p *page, err error) {
	_ = c.Error(err)
	notify.Error(p.notes, err)
	s.render(c, status, p)
}

func (s *Server) viewBooking(c *gin.Context) {
	p := s.open(c)
	if !p.flow.Controller().State().Success && p.event != nil {
		_ = p.load(c)
	}
	if p.slots == nil {
		p.slots = []string{}
	}
	s.render(c, http.StatusOK, p)
}

func (s *Server) selectDate(c *gin.Context) {
	p := s.open(c)
	date, err := civil.ParseDate(c.PostForm("date"))
	if err != nil {
		s.fail(c, http.StatusBadRequest, p, fmt.Errorf("invalid date %q", c.PostForm("date")))
		return
	}
	ctl := p.flow.Controller()
	ctl.ClearSlot()
	ctl.SelectDate(date)
	s.redirect(c, p)
}

func (s *Server) selectSlot(c *gin.Context) {
	p := s.open(c)
	timeOfDay := strings.TrimSpace(c.PostForm("time"))
	if timeOfDay == "" {
		p.flow.Controller().ClearSlot()
		s.redirect(c, p)
		return
	}
	if p.event == nil {
		s.render(c, http.StatusBadGateway, p)
		return
	}
	if err := p.load(c); err != nil {
		s.render(c, http.StatusBadGateway, p)
		return
	}
	if err := p.flow.PickSlot(timeOfDay); err != nil {
		s.fail(c, http.StatusUnprocessableEntity, p, err)
		return
	}
	s.redirect(c, p)
}

func (s *Server) changeTimezone(c *gin.Context) {
	p := s.open(c)
	ctl := p.flow.Controller()
	if tz := c.PostForm("timezone"); tz != "" {
		if err := ctl.SetTimezone(tz); err != nil {
			s.fail(c, http.StatusBadRequest, p, err)
			return
		}
	}
	if raw := c.PostForm("hourType"); raw != "" {
		h, err := slot.ParseHourType(raw)
		if err != nil {
			s.fail(c, http.StatusBadRequest, p, err)
			return
		}
		ctl.SetHourType(h)
	}
	s.redirect(c, p)
}

func (s *Server) advance(c *gin.Context) {
	p := s.open(c)
	if p.flow.Controller().State().Slot == "" {
		s.fail(c, http.StatusUnprocessableEntity, p, slot.ErrNoSlot)
		return
	}
	p.flow.Controller().Advance()
	s.redirect(c, p)
}

func (s *Server) retreat(c *gin.Context) {
	p := s.open(c)
	p.flow.Controller().Retreat()
	s.redirect(c, p)
}

func (s *Server) reset(c *gin.Context) {
	p := s.open(c)
	p.flow.Controller().ResetSuccess()
	s.redirect(c, p)
}

// confirm books the selected slot. On success the response is a redirect to
// the finished link whose body also carries the meet link.
func (s *Server) confirm(c *gin.Context) {
	p := s.open(c)
	_, err := p.flow.Confirm(c.Request.Context(), booking.Guest{
		Name:  strings.TrimSpace(c.PostForm("name")),
		Email: strings.TrimSpace(c.PostForm("email")),
		Notes: c.PostForm("notes"),
	})
	if err != nil {
		_ = c.Error(err)
		s.render(c, confirmStatus(err), p)
		return
	}
	c.Header("Location", s.link(p))
	s.render(c, http.StatusSeeOther, p)
}

func confirmStatus(err error) int {
	var verr *booking.ValidationError
	var apiErr *api.Error
	switch {
	case errors.Is(err, slot.ErrNoSlot), errors.Is(err, booking.ErrSlotNotOffered), errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &apiErr) && apiErr.Validation():
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

// integrationReturn handles the redirect back from an OAuth provider and
// forwards to the integrations page without the OAuth parameters.
func (s *Server) integrationReturn(c *gin.Context) {
	n, cleaned, ok := integration.ParseReturn(c.Request.URL)
	target := s.appURL.JoinPath("integrations")
	target.RawQuery = cleaned.RawQuery

	c.Header("Location", target.String())
	if !ok {
		c.JSON(http.StatusSeeOther, gin.H{"notifications": []notify.Notification{}})
		return
	}
	s.logger.Info("Integration return", "level", n.Level, "message", n.Message)
	c.JSON(http.StatusSeeOther, gin.H{"notifications": []notify.Notification{n}})
}
