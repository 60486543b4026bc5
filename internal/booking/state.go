// Package booking holds a guest's in-progress booking and the flow that
// turns it into a meeting.
package booking

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"

	"calbook/internal/slot"
)

// State is a guest's in-progress booking. Its URL form (see Query) is the
// durable representation, so a link is enough to resume it.
type State struct {
	Date     civil.Date
	Slot     string // encoded by the slot codec; empty when nothing is picked
	Timezone string
	HourType slot.HourType
	Next     bool // on the guest details step
	Success  bool
}

// NewState returns the initial state for a booking page opened at now.
func NewState(now time.Time, timezone string) State {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		timezone, loc = "UTC", time.UTC
	}
	return State{
		Date:     civil.DateOf(now.In(loc)),
		Timezone: timezone,
		HourType: slot.Hour24,
	}
}

// DisplaySlot renders the selected slot. ok is false when no slot is picked.
func (s State) DisplaySlot() (display string, ok bool) {
	out, err := slot.Decode(s.Slot, s.Timezone, s.HourType)
	if err != nil {
		return "", false
	}
	return out, true
}

// Controller owns a State and applies the user's actions to it. It is not
// safe for concurrent use.
type Controller struct {
	state State
}

// NewController starts a Controller from initial, e.g. a parsed link.
func NewController(initial State) *Controller {
	return &Controller{state: initial}
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	return c.state
}

// SelectDate replaces the date. The slot is left alone; callers that change
// day must clear it (Flow.ChangeDate does).
func (c *Controller) SelectDate(date civil.Date) {
	c.state.Date = date
}

// SelectSlot encodes timeOfDay against the current date. A nil timeOfDay or
// an unset date clears the slot.
func (c *Controller) SelectSlot(timeOfDay *string) error {
	if timeOfDay == nil || c.state.Date.IsZero() {
		c.state.Slot = ""
		return nil
	}
	encoded, err := slot.Encode(c.state.Date, *timeOfDay)
	if err != nil {
		return fmt.Errorf("select slot: %w", err)
	}
	c.state.Slot = encoded
	return nil
}

// ClearSlot drops the selected slot.
func (c *Controller) ClearSlot() {
	c.state.Slot = ""
}

// Advance moves to the guest details step.
func (c *Controller) Advance() {
	c.state.Next = true
}

// Retreat goes back to date and time selection.
func (c *Controller) Retreat() {
	c.state.Next = false
}

// MarkSuccess records a completed booking. It only ever sets the flag.
func (c *Controller) MarkSuccess() {
	c.state.Success = true
}

// ResetSuccess starts a fresh booking from a completed one.
func (c *Controller) ResetSuccess() {
	c.state.Success = false
	c.state.Next = false
	c.state.Slot = ""
}

// SetTimezone switches the display timezone. Unknown zones are rejected.
func (c *Controller) SetTimezone(timezone string) error {
	if _, err := time.LoadLocation(timezone); err != nil {
		return fmt.Errorf("unknown timezone %q: %w", timezone, err)
	}
	c.state.Timezone = timezone
	return nil
}

// SetHourType switches between 12h and 24h display.
func (c *Controller) SetHourType(h slot.HourType) {
	c.state.HourType = h
}
