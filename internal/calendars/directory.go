// Package calendars keeps the read-only list of calendars a host can
// attach event types to.
package calendars

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"calbook/internal/models"
	"calbook/internal/provider"
)

// Source lists calendars.
type Source interface {
	ListCalendars(ctx context.Context, writableOnly bool) ([]models.CalendarDescriptor, error)
}

// Syncer is implemented by sources that can refresh from the providers.
type Syncer interface {
	SyncCalendars(ctx context.Context) (int, error)
}

// Directory caches calendar lists per query until the next Sync.
type Directory struct {
	logger     *slog.Logger
	source     Source
	classifier provider.Classifier

	mu    sync.Mutex
	cache map[bool][]models.CalendarDescriptor
}

// NewDirectory creates a Directory. A nil classifier uses the heuristic one.
func NewDirectory(logger *slog.Logger, source Source, classifier provider.Classifier) *Directory {
	if classifier == nil {
		classifier = provider.NewHeuristic(logger)
	}
	return &Directory{
		logger:     logger,
		source:     source,
		classifier: classifier,
		cache:      make(map[bool][]models.CalendarDescriptor),
	}
}

// List returns the calendars, reusing an earlier result for the same
// query. With writableOnly, read-only calendars are never returned even if
// the source includes them.
func (d *Directory) List(ctx context.Context, writableOnly bool) ([]models.CalendarDescriptor, error) {
	d.mu.Lock()
	cached, ok := d.cache[writableOnly]
	d.mu.Unlock()
	if ok {
		d.logger.Debug("Using cached calendars", "writableOnly", writableOnly, "count", len(cached))
		return cached, nil
	}

	cals, err := d.source.ListCalendars(ctx, writableOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list calendars: %w", err)
	}
	if writableOnly {
		cals = Writable(cals)
	}

	d.mu.Lock()
	d.cache[writableOnly] = cals
	d.mu.Unlock()
	d.logger.Info("Fetched calendars", "writableOnly", writableOnly, "count", len(cals))
	return cals, nil
}

// Sync refreshes the source when it supports it and drops every cached
// list.
func (d *Directory) Sync(ctx context.Context) (int, error) {
	synced := 0
	if s, ok := d.source.(Syncer); ok {
		n, err := s.SyncCalendars(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to sync calendars: %w", err)
		}
		synced = n
	}

	d.mu.Lock()
	clear(d.cache)
	d.mu.Unlock()
	d.logger.Info("Calendars synced", "count", synced)
	return synced, nil
}

// Find looks a calendar up by id, or by case-insensitive name.
func (d *Directory) Find(ctx context.Context, idOrName string, writableOnly bool) (models.CalendarDescriptor, error) {
	cals, err := d.List(ctx, writableOnly)
	if err != nil {
		return models.CalendarDescriptor{}, err
	}
	for _, c := range cals {
		if c.ID == idOrName {
			return c, nil
		}
	}
	for _, c := range cals {
		if strings.EqualFold(c.Name, idOrName) {
			return c, nil
		}
	}
	return models.CalendarDescriptor{}, fmt.Errorf("no calendar found with id or name '%s'", idOrName)
}

// Provider infers the backing provider of cal.
func (d *Directory) Provider(cal models.CalendarDescriptor) provider.Provider {
	return d.classifier.Classify(cal.ID, cal.Name, cal.Metadata)
}

// Caption is the picker label for cal, e.g. "Work (Google Calendar)".
func (d *Directory) Caption(cal models.CalendarDescriptor) string {
	name := cal.Name
	if name == "" {
		name = cal.Summary
	}
	if name == "" {
		name = cal.ID
	}
	if cal.IsPrimary {
		name += ", primary"
	}
	return fmt.Sprintf("%s (%s)", name, d.Provider(cal).Label())
}

// Writable filters out calendars events cannot be created on.
func Writable(cals []models.CalendarDescriptor) []models.CalendarDescriptor {
	out := make([]models.CalendarDescriptor, 0, len(cals))
	for _, c := range cals {
		if c.IsWritable {
			out = append(out, c)
		}
	}
	return out
}
