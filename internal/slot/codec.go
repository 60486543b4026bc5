// Package slot converts a selected time slot between the compact form carried
// in booking links and the string shown to a guest.
package slot

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// WireLayout is the UTC wall-clock layout of a decoded slot.
const WireLayout = "2006-01-02T15:04"

const (
	timeOfDayLayout       = "15:04"
	timeWithSecondsLayout = "15:04:05"
)

// ErrNoSlot is returned when there is nothing to decode.
var ErrNoSlot = errors.New("no slot selected")

// HourType selects 12-hour or 24-hour rendering.
type HourType string

const (
	Hour12 HourType = "12h"
	Hour24 HourType = "24h"
)

// ParseHourType accepts "12h" or "24h".
func ParseHourType(s string) (HourType, error) {
	switch HourType(s) {
	case Hour12, Hour24:
		return HourType(s), nil
	}
	return "", fmt.Errorf("invalid hour type %q", s)
}

func (h HourType) layout() string {
	if h == Hour12 {
		return "3:04 PM"
	}
	return timeOfDayLayout
}

// ParseTimeOfDay parses a slot label such as "09:30". A seconds suffix
// ("09:30:00") is accepted and dropped; anything else is rejected.
func ParseTimeOfDay(s string) (hour, minute int, err error) {
	s = strings.TrimSpace(s)
	layout := timeOfDayLayout
	if len(s) == len(timeWithSecondsLayout) {
		layout = timeWithSecondsLayout
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return t.Hour(), t.Minute(), nil
}

// Encode combines a calendar date with a slot label. The hour and minute are
// taken verbatim as UTC wall clock and the result is percent-encoded so it
// can travel as a single query value.
func Encode(date civil.Date, timeOfDay string) (string, error) {
	if !date.IsValid() {
		return "", fmt.Errorf("invalid date %s", date)
	}
	hour, minute, err := ParseTimeOfDay(timeOfDay)
	if err != nil {
		return "", err
	}
	t := time.Date(date.Year, date.Month, date.Day, hour, minute, 0, 0, time.UTC)
	return url.QueryEscape(t.Format(WireLayout)), nil
}

// Unescape returns the wall-clock form of an encoded slot.
func Unescape(encoded string) (string, error) {
	if strings.TrimSpace(encoded) == "" {
		return "", ErrNoSlot
	}
	raw, err := url.QueryUnescape(encoded)
	if err != nil {
		return "", fmt.Errorf("invalid slot encoding %q: %w", encoded, err)
	}
	return raw, nil
}

// Start returns the UTC instant an encoded slot refers to.
func Start(encoded string) (time.Time, error) {
	raw, err := Unescape(encoded)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.ParseInLocation(WireLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid slot %q: %w", raw, err)
	}
	return t, nil
}

// Decode renders an encoded slot for display. The timezone is only a label:
// the wall clock is shown as encoded and never shifted into that zone.
func Decode(encoded, timezone string, hourType HourType) (string, error) {
	t, err := Start(encoded)
	if err != nil {
		return "", err
	}
	out := t.Format("Jan 2, 2006 " + hourType.layout())
	if timezone != "" {
		out += " (" + timezone + ")"
	}
	return out, nil
}

// FormatTimeOfDay renders a slot label in the requested hour format.
func FormatTimeOfDay(timeOfDay string, hourType HourType) (string, error) {
	hour, minute, err := ParseTimeOfDay(timeOfDay)
	if err != nil {
		return "", err
	}
	return time.Date(2000, 1, 1, hour, minute, 0, 0, time.UTC).Format(hourType.layout()), nil
}
