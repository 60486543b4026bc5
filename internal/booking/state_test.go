package booking

import (
	"net/url"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calbook/internal/slot"
)

var june3 = civil.Date{Year: 2025, Month: time.June, Day: 3}

func TestNewStateUsesTimezoneToday(t *testing.T) {
	now := time.Date(2025, time.June, 3, 23, 30, 0, 0, time.UTC)
	s := NewState(now, "Asia/Tokyo")
	assert.Equal(t, civil.Date{Year: 2025, Month: time.June, Day: 4}, s.Date)
	assert.Equal(t, slot.Hour24, s.HourType)

	s = NewState(now, "Not/AZone")
	assert.Equal(t, "UTC", s.Timezone)
	assert.Equal(t, june3, s.Date)
}

func TestControllerSelectSlot(t *testing.T) {
	c := NewController(State{Date: june3, Timezone: "UTC", HourType: slot.Hour24})

	tod := "09:30"
	require.NoError(t, c.SelectSlot(&tod))
	assert.Equal(t, "2025-06-03T09%3A30", c.State().Slot)

	bad := "25:00"
	assert.Error(t, c.SelectSlot(&bad))
	assert.Equal(t, "2025-06-03T09%3A30", c.State().Slot)

	require.NoError(t, c.SelectSlot(nil))
	assert.Empty(t, c.State().Slot)

	empty := NewController(State{})
	require.NoError(t, empty.SelectSlot(&tod))
	assert.Empty(t, empty.State().Slot)
}

func TestControllerSelectDateKeepsSlot(t *testing.T) {
	c := NewController(State{Date: june3, Timezone: "UTC"})
	tod := "10:00"
	require.NoError(t, c.SelectSlot(&tod))

	c.SelectDate(june3.AddDays(1))
	assert.Equal(t, "2025-06-03T10%3A00", c.State().Slot)
}

func TestControllerWizardAndSuccess(t *testing.T) {
	c := NewController(State{Date: june3})
	c.Advance()
	assert.True(t, c.State().Next)
	c.Retreat()
	assert.False(t, c.State().Next)

	c.MarkSuccess()
	c.MarkSuccess()
	assert.True(t, c.State().Success)

	c.ResetSuccess()
	assert.False(t, c.State().Success)
}

func TestControllerSetTimezone(t *testing.T) {
	c := NewController(State{Timezone: "UTC"})
	require.NoError(t, c.SetTimezone("Europe/Berlin"))
	assert.Equal(t, "Europe/Berlin", c.State().Timezone)
	assert.Error(t, c.SetTimezone("Mars/Olympus"))
	assert.Equal(t, "Europe/Berlin", c.State().Timezone)
}

func TestQueryRoundTrip(t *testing.T) {
	want := State{
		Date:     june3,
		Slot:     "2025-06-03T09%3A00",
		Timezone: "America/New_York",
		HourType: slot.Hour12,
		Next:     true,
	}
	link := Link(&url.URL{Scheme: "https", Host: "book.example.com", Path: "/book/E1"}, want)

	_, got, err := ParseLink(link.String(), time.Now(), "UTC")
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "/book/E1", link.Path)
	assert.NotContains(t, link.RawQuery, ParamSuccess)
}

func TestParseQueryDefaults(t *testing.T) {
	now := time.Date(2025, time.June, 3, 12, 0, 0, 0, time.UTC)
	v := url.Values{
		ParamDate:     {"not-a-date"},
		ParamTimezone: {"Nope/Zone"},
		ParamHourType: {"13h"},
		ParamNext:     {"maybe"},
	}
	got := ParseQuery(v, now, "Europe/London")
	assert.Equal(t, State{Date: june3, Timezone: "Europe/London", HourType: slot.Hour24}, got)
}

func TestParseQueryDropsSlotFromOtherDay(t *testing.T) {
	v := url.Values{
		ParamDate: {"2025-06-04"},
		ParamSlot: {"2025-06-03T09%3A00"},
	}
	got := ParseQuery(v, time.Now(), "UTC")
	assert.Empty(t, got.Slot)
}

func TestApplyKeepsUnrelatedParams(t *testing.T) {
	v := url.Values{"ref": {"newsletter"}, ParamSuccess: {"true"}}
	State{Date: june3, Timezone: "UTC", HourType: slot.Hour24}.Apply(v)
	assert.Equal(t, "newsletter", v.Get("ref"))
	assert.Empty(t, v.Get(ParamSuccess))
	assert.Equal(t, "2025-06-03", v.Get(ParamDate))
}

func TestDisplaySlot(t *testing.T) {
	_, ok := State{}.DisplaySlot()
	assert.False(t, ok)

	got, ok := State{Slot: "2025-06-03T09%3A00", Timezone: "UTC", HourType: slot.Hour12}.DisplaySlot()
	assert.True(t, ok)
	assert.Equal(t, "Jun 3, 2025 9:00 AM (UTC)", got)
}
