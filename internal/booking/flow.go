package booking

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"cloud.google.com/go/civil"

	"calbook/internal/models"
	"calbook/internal/notify"
	"calbook/internal/slot"
)

// ErrSlotNotOffered is returned when a time is picked that the current
// day's availability does not contain.
var ErrSlotNotOffered = errors.New("slot is not offered on the selected date")

// Guest is the details form of the second step.
type Guest struct {
	Name  string
	Email string
	Notes string
}

// Flow drives one booking page: date and slot selection against the
// event's availability, then submission.
type Flow struct {
	eventID  string
	duration int

	ctl       *Controller
	fetcher   *Fetcher
	submitter *Submitter
	notifier  notify.Notifier

	slots    []string
	meetLink string
}

func NewFlow(eventID string, durationMinutes int, ctl *Controller, fetcher *Fetcher, submitter *Submitter, notifier notify.Notifier) *Flow {
	return &Flow{
		eventID:   eventID,
		duration:  durationMinutes,
		ctl:       ctl,
		fetcher:   fetcher,
		submitter: submitter,
		notifier:  notifier,
	}
}

func (f *Flow) Controller() *Controller { return f.ctl }

// Slots returns the slot labels offered for the selected date.
func (f *Flow) Slots() []string { return f.slots }

// MeetLink is the link of the confirmed meeting, if any.
func (f *Flow) MeetLink() string { return f.meetLink }

// Load fetches availability for the current state and resolves the day's
// slots. A selected slot the day no longer offers is cleared. On failure
// the day has no slots and the error is shown.
func (f *Flow) Load(ctx context.Context) ([]string, error) {
	if err := f.resolve(ctx); err != nil {
		if errors.Is(err, ErrSuperseded) {
			return nil, err
		}
		notify.Error(f.notifier, err)
		return f.slots, err
	}
	if s := f.ctl.State(); s.Slot != "" && !f.offers(s.Slot) {
		f.ctl.ClearSlot()
	}
	return f.slots, nil
}

// resolve fetches and resolves the slots of the selected date.
func (f *Flow) resolve(ctx context.Context) error {
	s := f.ctl.State()
	days, err := f.fetcher.Fetch(ctx, f.eventID, s.Timezone, s.Date)
	if errors.Is(err, ErrSuperseded) {
		return err
	}
	if err != nil {
		f.slots = []string{}
		return err
	}
	f.slots = ResolveSlots(days, s.Date)
	return nil
}

// offers reports whether an encoded slot is one of the selected day's
// resolved times.
func (f *Flow) offers(encoded string) bool {
	start, err := slot.Start(encoded)
	if err != nil || civil.DateOf(start) != f.ctl.State().Date {
		return false
	}
	for _, t := range f.slots {
		hour, minute, err := slot.ParseTimeOfDay(t)
		if err == nil && hour == start.Hour() && minute == start.Minute() {
			return true
		}
	}
	return false
}

// ChangeDate clears the selected slot, moves to date and loads its slots.
func (f *Flow) ChangeDate(ctx context.Context, date civil.Date) ([]string, error) {
	f.ctl.ClearSlot()
	f.slots = nil
	f.ctl.SelectDate(date)
	return f.Load(ctx)
}

// PickSlot selects one of the offered times.
func (f *Flow) PickSlot(timeOfDay string) error {
	if !slices.Contains(f.slots, timeOfDay) {
		return fmt.Errorf("%s: %w", timeOfDay, ErrSlotNotOffered)
	}
	return f.ctl.SelectSlot(&timeOfDay)
}

// Confirm submits the booking after checking the selected slot is still
// offered. On failure the state is left as it was so the guest can submit
// again.
func (f *Flow) Confirm(ctx context.Context, g Guest) (models.MeetingConfirmation, error) {
	s := f.ctl.State()
	if s.Slot == "" {
		notify.Error(f.notifier, slot.ErrNoSlot)
		return models.MeetingConfirmation{}, slot.ErrNoSlot
	}
	if err := f.resolve(ctx); err != nil {
		if !errors.Is(err, ErrSuperseded) {
			notify.Error(f.notifier, err)
		}
		return models.MeetingConfirmation{}, err
	}
	if !f.offers(s.Slot) {
		err := fmt.Errorf("%s: %w", s.Slot, ErrSlotNotOffered)
		notify.Error(f.notifier, err)
		return models.MeetingConfirmation{}, err
	}
	conf, err := f.submitter.Submit(ctx, SubmitRequest{
		GuestName:  g.Name,
		GuestEmail: g.Email,
		Notes:      g.Notes,
		EventID:    f.eventID,
		Slot:       s.Slot,
		Duration:   f.duration,
		Timezone:   s.Timezone,
	})
	if err != nil {
		notify.Error(f.notifier, err)
		return models.MeetingConfirmation{}, err
	}
	f.meetLink = conf.MeetLink
	f.ctl.MarkSuccess()
	notify.Success(f.notifier, "Meeting scheduled")
	return conf, nil
}
