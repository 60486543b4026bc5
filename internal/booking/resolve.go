package booking

import (
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"calbook/internal/models"
)

// ResolveSlots picks the slot list for date: an entry whose DateStr matches
// exactly wins, then an entry for the same weekday, otherwise no slots.
func ResolveSlots(days []models.AvailabilityDay, date civil.Date) []string {
	want := date.String()
	for _, d := range days {
		if d.DateStr == want {
			return cloneSlots(d.Slots)
		}
	}
	weekday := date.In(time.UTC).Weekday().String()
	for _, d := range days {
		if strings.EqualFold(d.Day, weekday) {
			return cloneSlots(d.Slots)
		}
	}
	return []string{}
}

// DateDisabled reports whether a date can't be picked at all. No date is
// ever disabled here; days without availability just resolve to no slots.
func DateDisabled(civil.Date) bool {
	return false
}

func cloneSlots(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
