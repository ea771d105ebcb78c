// Package calendar provides an in-memory Service used in tests and local development.
package calendar

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/amaan34/tailortalk/internal/models"
)

// FakeService is an in-memory calendar backend. It is safe for concurrent
// use and mirrors the Service semantics closely enough to drive the full
// dialogue engine in tests and local development.
type FakeService struct {
	mu     sync.RWMutex
	events map[string]models.CalendarEvent

	// Err, when set, is returned by every call. Lets tests exercise the
	// engine's failure handling.
	Err error
}

// NewFakeService creates an empty in-memory calendar.
func NewFakeService() *FakeService {
	return &FakeService{events: make(map[string]models.CalendarEvent)}
}

// Seed inserts an event directly, bypassing CreateEvent, and returns its id.
func (f *FakeService) Seed(ev models.CalendarEvent) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	f.events[ev.ID] = ev
	return ev.ID
}

// FreeBusy reports each stored event overlapping the window as a busy
// interval, clipped to the queried window as Google's freebusy endpoint
// clips its busy periods.
func (f *FakeService) FreeBusy(ctx context.Context, start, end time.Time) ([]models.BusyInterval, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	var busy []models.BusyInterval
	for _, ev := range f.events {
		if !ev.Start.Before(end) || !start.Before(ev.End) {
			continue
		}
		b := models.BusyInterval{Start: ev.Start, End: ev.End}
		if b.Start.Before(start) {
			b.Start = start
		}
		if end.Before(b.End) {
			b.End = end
		}
		busy = append(busy, b)
	}
	sort.Slice(busy, func(i, j int) bool { return busy[i].Start.Before(busy[j].Start) })
	return busy, nil
}

// CreateEvent stores a new event with a generated id.
func (f *FakeService) CreateEvent(ctx context.Context, req models.BookingRequest) (*models.CalendarEvent, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	ev := models.CalendarEvent{
		ID:          uuid.NewString(),
		Summary:     req.Title,
		Start:       req.Start,
		End:         req.End,
		Description: req.Description,
		Attendees:   req.Attendees,
	}
	f.events[ev.ID] = ev
	return &ev, nil
}

// UpdateEvent moves a stored event to a new window.
func (f *FakeService) UpdateEvent(ctx context.Context, eventID string, start, end time.Time) (*models.CalendarEvent, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	ev, ok := f.events[eventID]
	if !ok {
		return nil, fmt.Errorf("event %s not found", eventID)
	}
	ev.Start = start
	ev.End = end
	f.events[eventID] = ev
	return &ev, nil
}

// DeleteEvent removes a stored event.
func (f *FakeService) DeleteEvent(ctx context.Context, eventID string) error {
	if f.Err != nil {
		return f.Err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.events[eventID]; !ok {
		return fmt.Errorf("event %s not found", eventID)
	}
	delete(f.events, eventID)
	return nil
}

// SearchEvents returns stored events overlapping the window, ordered by
// start time, optionally filtered by a case-insensitive summary match.
func (f *FakeService) SearchEvents(ctx context.Context, start, end time.Time, query string) ([]models.CalendarEvent, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	var out []models.CalendarEvent
	for _, ev := range f.events {
		if !ev.Start.Before(end) || !start.Before(ev.End) {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(ev.Summary), strings.ToLower(query)) {
			continue
		}
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

// Count returns the number of stored events.
func (f *FakeService) Count() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.events)
}
