package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"calbook/internal/models"
	"calbook/internal/slot"
)

// MeetingCreator creates a meeting on the backend.
type MeetingCreator interface {
	CreatePublicMeeting(ctx context.Context, payload models.CreateMeetingPayload) (models.MeetingConfirmation, error)
}

// SubmitRequest is everything needed to book a slot.
type SubmitRequest struct {
	GuestName  string `json:"guestName" validate:"required"`
	GuestEmail string `json:"guestEmail" validate:"required,email"`
	Notes      string `json:"additionalInfo"`
	EventID    string `json:"eventId" validate:"required"`
	Slot       string `json:"slot" validate:"required"`
	Duration   int    `json:"duration" validate:"gt=0"`
	Timezone   string `json:"timezone" validate:"required"`
}

// ValidationError reports guest input the backend would reject.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Submitter turns a selected slot and guest details into a meeting.
type Submitter struct {
	creator  MeetingCreator
	validate *validator.Validate
	logger   *slog.Logger
}

func NewSubmitter(creator MeetingCreator, logger *slog.Logger) *Submitter {
	if logger == nil {
		logger = slog.Default()
	}
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	})
	return &Submitter{creator: creator, validate: v, logger: logger}
}

// Submit validates req, assembles the payload and sends it once. Nothing
// is retried; resubmitting is up to the caller.
func (s *Submitter) Submit(ctx context.Context, req SubmitRequest) (models.MeetingConfirmation, error) {
	payload, err := s.Payload(req)
	if err != nil {
		return models.MeetingConfirmation{}, err
	}

	s.logger.Info("Submitting booking", "eventID", payload.EventID, "start", payload.StartTime, "end", payload.EndTime)
	conf, err := s.creator.CreatePublicMeeting(ctx, payload)
	if err != nil {
		return models.MeetingConfirmation{}, fmt.Errorf("create meeting: %w", err)
	}
	s.logger.Info("Booking confirmed", "eventID", payload.EventID, "meetLink", conf.MeetLink)
	return conf, nil
}

// Payload builds the creation body for req.
func (s *Submitter) Payload(req SubmitRequest) (models.CreateMeetingPayload, error) {
	req.GuestName = strings.TrimSpace(req.GuestName)
	req.GuestEmail = strings.TrimSpace(req.GuestEmail)
	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return models.CreateMeetingPayload{}, &ValidationError{Field: verrs[0].Field(), Message: validationMessage(verrs[0])}
		}
		return models.CreateMeetingPayload{}, err
	}

	wallClock, err := slot.Unescape(req.Slot)
	if err != nil {
		return models.CreateMeetingPayload{}, err
	}
	start, err := slot.Start(req.Slot)
	if err != nil {
		return models.CreateMeetingPayload{}, err
	}

	return models.CreateMeetingPayload{
		EventID:        req.EventID,
		StartTime:      wallClock,
		EndTime:        EndTime(start, req.Duration).Format(slot.WireLayout),
		GuestName:      req.GuestName,
		GuestEmail:     req.GuestEmail,
		AdditionalInfo: req.Notes,
		Timezone:       req.Timezone,
	}, nil
}

// EndTime adds duration minutes to start by rebuilding the date in UTC, so
// no local DST transition can shift it.
func EndTime(start time.Time, durationMinutes int) time.Time {
	start = start.UTC()
	return time.Date(start.Year(), start.Month(), start.Day(), start.Hour(), start.Minute()+durationMinutes, 0, 0, time.UTC)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "gt":
		return "must be greater than " + fe.Param()
	}
	return "is invalid"
}
