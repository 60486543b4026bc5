package booking

import (
	"net/url"
	"strconv"
	"time"

	"cloud.google.com/go/civil"

	"calbook/internal/slot"
)

// Query parameter names of a booking link.
const (
	ParamDate     = "date"
	ParamSlot     = "slot"
	ParamTimezone = "timezone"
	ParamHourType = "hourType"
	ParamNext     = "next"
	ParamSuccess  = "success"
)

// ParseQuery rebuilds a State from booking link parameters. Missing or
// malformed values fall back to the defaults of NewState, and a slot that
// does not belong to the selected date is dropped.
func ParseQuery(v url.Values, now time.Time, defaultTimezone string) State {
	tz := defaultTimezone
	if raw := v.Get(ParamTimezone); raw != "" {
		if _, err := time.LoadLocation(raw); err == nil {
			tz = raw
		}
	}
	s := NewState(now, tz)

	if d, err := civil.ParseDate(v.Get(ParamDate)); err == nil {
		s.Date = d
	}
	if h, err := slot.ParseHourType(v.Get(ParamHourType)); err == nil {
		s.HourType = h
	}
	if raw := v.Get(ParamSlot); raw != "" {
		if start, err := slot.Start(raw); err == nil && civil.DateOf(start) == s.Date {
			s.Slot = raw
		}
	}
	s.Next, _ = strconv.ParseBool(v.Get(ParamNext))
	s.Success, _ = strconv.ParseBool(v.Get(ParamSuccess))
	return s
}

// Query returns the link parameters for s. False flags and an empty slot
// are omitted.
func (s State) Query() url.Values {
	v := url.Values{}
	s.Apply(v)
	return v
}

// Apply writes s into v, replacing any booking parameters already there and
// leaving unrelated ones untouched.
func (s State) Apply(v url.Values) {
	v.Set(ParamDate, s.Date.String())
	v.Set(ParamTimezone, s.Timezone)
	v.Set(ParamHourType, string(s.HourType))
	setOrDelete(v, ParamSlot, s.Slot)
	setOrDelete(v, ParamNext, boolParam(s.Next))
	setOrDelete(v, ParamSuccess, boolParam(s.Success))
}

// Link returns base with s encoded in its query string.
func Link(base *url.URL, s State) *url.URL {
	u := *base
	q := u.Query()
	s.Apply(q)
	u.RawQuery = q.Encode()
	return &u
}

// ParseLink resumes a booking from a shared link.
func ParseLink(raw string, now time.Time, defaultTimezone string) (*url.URL, State, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, State{}, err
	}
	return u, ParseQuery(u.Query(), now, defaultTimezone), nil
}

func boolParam(b bool) string {
	if b {
		return "true"
	}
	return ""
}

func setOrDelete(v url.Values, key, value string) {
	if value == "" {
		v.Del(key)
		return
	}
	v.Set(key, value)
}
