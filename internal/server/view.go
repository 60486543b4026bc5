package server

import (
	"cloud.google.com/go/civil"

	"calbook/internal/booking"
	"calbook/internal/models"
	"calbook/internal/notify"
	"calbook/internal/slot"
)

type StateView struct {
	Date     string `json:"date"`
	Slot     string `json:"slot,omitempty"`
	Timezone string `json:"timezone"`
	HourType string `json:"hourType"`
	Next     bool   `json:"next"`
	Success  bool   `json:"success"`
}

type SlotView struct {
	Time     string `json:"time"`
	Label    string `json:"label"`
	Value    string `json:"value"`
	Selected bool   `json:"selected"`
}

// BookingView is the JSON body of every booking page response.
type BookingView struct {
	EventID       string                `json:"eventId"`
	Event         *models.EventType     `json:"event,omitempty"`
	State         StateView             `json:"state"`
	Slots         []SlotView            `json:"slots"`
	SelectedSlot  string                `json:"selectedSlot,omitempty"`
	Link          string                `json:"link"`
	MeetLink      string                `json:"meetLink,omitempty"`
	Notifications []notify.Notification `json:"notifications"`
}

func stateView(s booking.State) StateView {
	return StateView{
		Date:     s.Date.String(),
		Slot:     s.Slot,
		Timezone: s.Timezone,
		HourType: string(s.HourType),
		Next:     s.Next,
		Success:  s.Success,
	}
}

// slotViews labels the offered times. Times that do not parse are skipped.
func slotViews(times []string, date civil.Date, selected string, hourType slot.HourType) []SlotView {
	out := make([]SlotView, 0, len(times))
	for _, t := range times {
		value, err := slot.Encode(date, t)
		if err != nil {
			continue
		}
		label, err := slot.FormatTimeOfDay(t, hourType)
		if err != nil {
			continue
		}
		out = append(out, SlotView{Time: t, Label: label, Value: value, Selected: value == selected})
	}
	return out
}
