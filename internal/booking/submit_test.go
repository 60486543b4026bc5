package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calbook/internal/models"
)

type fakeCreator struct {
	payloads []models.CreateMeetingPayload
	err      error
}

func (f *fakeCreator) CreatePublicMeeting(_ context.Context, p models.CreateMeetingPayload) (models.MeetingConfirmation, error) {
	f.payloads = append(f.payloads, p)
	if f.err != nil {
		return models.MeetingConfirmation{}, f.err
	}
	return models.MeetingConfirmation{MeetLink: "https://meet.example.com/abc"}, nil
}

func validRequest() SubmitRequest {
	return SubmitRequest{
		GuestName:  "Ada Lovelace",
		GuestEmail: "ada@example.com",
		Notes:      "About the engine",
		EventID:    "E1",
		Slot:       "2025-06-03T09%3A00",
		Duration:   30,
		Timezone:   "Europe/London",
	}
}

func TestSubmitBuildsPayload(t *testing.T) {
	creator := &fakeCreator{}
	s := NewSubmitter(creator, nil)

	conf, err := s.Submit(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, "https://meet.example.com/abc", conf.MeetLink)

	require.Len(t, creator.payloads, 1)
	assert.Equal(t, models.CreateMeetingPayload{
		EventID:        "E1",
		StartTime:      "2025-06-03T09:00",
		EndTime:        "2025-06-03T09:30",
		GuestName:      "Ada Lovelace",
		GuestEmail:     "ada@example.com",
		AdditionalInfo: "About the engine",
		Timezone:       "Europe/London",
	}, creator.payloads[0])
}

func TestSubmitValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SubmitRequest)
		field  string
	}{
		{"missing name", func(r *SubmitRequest) { r.GuestName = "  " }, "guestName"},
		{"bad email", func(r *SubmitRequest) { r.GuestEmail = "ada-at-example" }, "guestEmail"},
		{"no slot", func(r *SubmitRequest) { r.Slot = "" }, "slot"},
		{"zero duration", func(r *SubmitRequest) { r.Duration = 0 }, "duration"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creator := &fakeCreator{}
			req := validRequest()
			tt.mutate(&req)

			_, err := NewSubmitter(creator, nil).Submit(context.Background(), req)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Empty(t, creator.payloads)
		})
	}
}

func TestSubmitPropagatesBackendError(t *testing.T) {
	boom := errors.New("slot already booked")
	_, err := NewSubmitter(&fakeCreator{err: boom}, nil).Submit(context.Background(), validRequest())
	assert.ErrorIs(t, err, boom)
}

func TestEndTime(t *testing.T) {
	tests := []struct {
		start    time.Time
		duration int
		want     time.Time
	}{
		{time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC), 30, time.Date(2025, 6, 3, 9, 30, 0, 0, time.UTC)},
		{time.Date(2025, 6, 3, 23, 45, 0, 0, time.UTC), 30, time.Date(2025, 6, 4, 0, 15, 0, 0, time.UTC)},
		{time.Date(2025, 3, 30, 0, 30, 0, 0, time.UTC), 60, time.Date(2025, 3, 30, 1, 30, 0, 0, time.UTC)},
		{time.Date(2025, 12, 31, 23, 0, 0, 0, time.UTC), 90, time.Date(2026, 1, 1, 0, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EndTime(tt.start, tt.duration))
	}
}
