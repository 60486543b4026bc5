package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"cloud.google.com/go/civil"

	"calbook/internal/models"
)

// ErrSuperseded is returned by a fetch whose query was replaced by a newer
// one before it completed. Its result must be ignored.
var ErrSuperseded = errors.New("availability query superseded")

// AvailabilitySource reads the public availability of an event.
type AvailabilitySource interface {
	PublicAvailability(ctx context.Context, eventID, timezone string, date civil.Date) ([]models.AvailabilityDay, error)
}

// Query identifies an availability request.
type Query struct {
	EventID  string
	Timezone string
	Date     string
}

func QueryFor(eventID, timezone string, date civil.Date) Query {
	return Query{EventID: eventID, Timezone: timezone, Date: date.String()}
}

// Fetcher keeps at most one availability request in flight. Starting a new
// query cancels the previous one, and results are applied in query order
// rather than completion order. A repeated query joins the request already
// in flight.
type Fetcher struct {
	source AvailabilitySource
	logger *slog.Logger

	mu       sync.Mutex
	seq      uint64
	cancel   context.CancelFunc
	latest   Query
	inflight *call
	cached   bool
	days     []models.AvailabilityDay
}

// call is one request to the source shared by every caller of its query.
type call struct {
	done chan struct{}
	days []models.AvailabilityDay
	err  error
}

func NewFetcher(source AvailabilitySource, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{source: source, logger: logger}
}

// Fetch returns the availability for (eventID, timezone, date). The result
// of the latest successful query is reused when the key has not changed.
func (f *Fetcher) Fetch(ctx context.Context, eventID, timezone string, date civil.Date) ([]models.AvailabilityDay, error) {
	q := QueryFor(eventID, timezone, date)

	f.mu.Lock()
	if f.cached && f.latest == q {
		days := f.days
		f.mu.Unlock()
		return days, nil
	}
	if c := f.inflight; c != nil && f.latest == q {
		seq := f.seq
		f.mu.Unlock()
		f.logger.Debug("Joining in-flight availability request", "date", q.Date)
		return f.wait(ctx, c, seq)
	}
	if f.cancel != nil {
		f.cancel()
	}
	f.seq++
	seq := f.seq
	f.latest = q
	f.cached = false
	c := &call{done: make(chan struct{})}
	f.inflight = c
	ctx, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	f.mu.Unlock()
	defer cancel()

	f.logger.Debug("Fetching availability", "eventID", q.EventID, "timezone", q.Timezone, "date", q.Date)
	days, err := f.source.PublicAvailability(ctx, eventID, timezone, date)
	if err != nil {
		days, err = nil, fmt.Errorf("fetch availability for %s: %w", q.Date, err)
	}
	c.days, c.err = days, err
	close(c.done)

	f.mu.Lock()
	defer f.mu.Unlock()
	if seq != f.seq {
		f.logger.Debug("Discarding superseded availability result", "date", q.Date)
		return nil, ErrSuperseded
	}
	f.inflight = nil
	f.cancel = nil
	if err != nil {
		return nil, err
	}
	f.cached = true
	f.days = days
	return days, nil
}

// wait blocks until c completes and returns its result unless a newer
// query started in the meantime.
func (f *Fetcher) wait(ctx context.Context, c *call, seq uint64) ([]models.AvailabilityDay, error) {
	select {
	case <-c.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	f.mu.Lock()
	superseded := seq != f.seq
	f.mu.Unlock()
	if superseded {
		return nil, ErrSuperseded
	}
	return c.days, c.err
}

// Latest returns the most recently requested query.
func (f *Fetcher) Latest() Query {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.latest
}

// Invalidate drops the cached result so the next Fetch hits the source.
func (f *Fetcher) Invalidate() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cached = false
	f.days = nil
}
