// Package calendar provides the Google Calendar backed implementation of the Service port.
package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/amaan34/tailortalk/internal/models"
)

// DefaultCalendarID is the Google Calendar id used when none is configured.
const DefaultCalendarID = "primary"

// GoogleService implements Service against the Google Calendar v3 API.
type GoogleService struct {
	service    *calendar.Service
	calendarID string
}

// NewGoogleService creates a GoogleService from an already-authorized HTTP
// client (OAuth token lifecycle is the host's concern). An empty calendarID
// defaults to the primary calendar.
func NewGoogleService(ctx context.Context, client *http.Client, calendarID string) (*GoogleService, error) {
	service, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	if calendarID == "" {
		calendarID = DefaultCalendarID
	}
	slog.Debug("calendar.NewGoogleService: service created", "calendarID", calendarID)
	return &GoogleService{service: service, calendarID: calendarID}, nil
}

// FreeBusy queries the freebusy endpoint for the configured calendar.
func (g *GoogleService) FreeBusy(ctx context.Context, start, end time.Time) ([]models.BusyInterval, error) {
	resp, err := g.service.Freebusy.Query(&calendar.FreeBusyRequest{
		TimeMin: start.Format(time.RFC3339),
		TimeMax: end.Format(time.RFC3339),
		Items:   []*calendar.FreeBusyRequestItem{{Id: g.calendarID}},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("freebusy query failed: %w", err)
	}

	cal, ok := resp.Calendars[g.calendarID]
	if !ok {
		return nil, nil
	}
	var busy []models.BusyInterval
	for _, period := range cal.Busy {
		bStart, err := time.Parse(time.RFC3339, period.Start)
		if err != nil {
			return nil, fmt.Errorf("failed to parse busy start %q: %w", period.Start, err)
		}
		bEnd, err := time.Parse(time.RFC3339, period.End)
		if err != nil {
			return nil, fmt.Errorf("failed to parse busy end %q: %w", period.End, err)
		}
		busy = append(busy, models.BusyInterval{Start: bStart, End: bEnd})
	}
	slog.Debug("calendar.FreeBusy: query succeeded", "busyCount", len(busy))
	return busy, nil
}

// CreateEvent inserts an event and returns the backend's copy.
func (g *GoogleService) CreateEvent(ctx context.Context, req models.BookingRequest) (*models.CalendarEvent, error) {
	event := &calendar.Event{
		Summary:     req.Title,
		Description: req.Description,
		Start:       &calendar.EventDateTime{DateTime: req.Start.Format(time.RFC3339)},
		End:         &calendar.EventDateTime{DateTime: req.End.Format(time.RFC3339)},
	}
	for _, email := range req.Attendees {
		event.Attendees = append(event.Attendees, &calendar.EventAttendee{Email: email})
	}

	created, err := g.service.Events.Insert(g.calendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	slog.Info("calendar.CreateEvent: event created", "eventID", created.Id, "title", req.Title)
	return fromGoogleEvent(created), nil
}

// UpdateEvent patches the start/end of an existing event.
func (g *GoogleService) UpdateEvent(ctx context.Context, eventID string, start, end time.Time) (*models.CalendarEvent, error) {
	patch := &calendar.Event{
		Start: &calendar.EventDateTime{DateTime: start.Format(time.RFC3339)},
		End:   &calendar.EventDateTime{DateTime: end.Format(time.RFC3339)},
	}
	updated, err := g.service.Events.Patch(g.calendarID, eventID, patch).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update event %s: %w", eventID, err)
	}
	slog.Info("calendar.UpdateEvent: event updated", "eventID", eventID)
	return fromGoogleEvent(updated), nil
}

// DeleteEvent removes an event by id.
func (g *GoogleService) DeleteEvent(ctx context.Context, eventID string) error {
	if err := g.service.Events.Delete(g.calendarID, eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete event %s: %w", eventID, err)
	}
	slog.Info("calendar.DeleteEvent: event deleted", "eventID", eventID)
	return nil
}

// SearchEvents lists events overlapping the window, ordered by start time.
func (g *GoogleService) SearchEvents(ctx context.Context, start, end time.Time, query string) ([]models.CalendarEvent, error) {
	call := g.service.Events.List(g.calendarID).
		TimeMin(start.Format(time.RFC3339)).
		TimeMax(end.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime")
	if query != "" {
		call = call.Q(query)
	}
	resp, err := call.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	var events []models.CalendarEvent
	for _, item := range resp.Items {
		if ev := fromGoogleEvent(item); ev != nil {
			events = append(events, *ev)
		}
	}
	slog.Debug("calendar.SearchEvents: query succeeded", "count", len(events))
	return events, nil
}

// fromGoogleEvent converts a Google event into the shared model. All-day
// events carry only a Date; those fall back to the zero time.
func fromGoogleEvent(item *calendar.Event) *models.CalendarEvent {
	if item == nil {
		return nil
	}
	ev := &models.CalendarEvent{
		ID:          item.Id,
		Summary:     item.Summary,
		Description: item.Description,
	}
	if item.Start != nil && item.Start.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, item.Start.DateTime); err == nil {
			ev.Start = t
		}
	}
	if item.End != nil && item.End.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, item.End.DateTime); err == nil {
			ev.End = t
		}
	}
	for _, a := range item.Attendees {
		ev.Attendees = append(ev.Attendees, a.Email)
	}
	return ev
}
