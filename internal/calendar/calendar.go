// Package calendar defines the calendar backend port consumed by the
// dialogue engine, with a Google Calendar implementation and an in-memory
// fake for tests.
package calendar

import (
	"context"
	"time"

	"github.com/amaan34/tailortalk/internal/models"
)

// Service is the narrow contract the dialogue engine holds against a
// calendar backend. Implementations own authentication and transport;
// retry policy, if any, belongs here too, never in the engine.
type Service interface {
	// FreeBusy returns the busy intervals between start and end.
	FreeBusy(ctx context.Context, start, end time.Time) ([]models.BusyInterval, error)

	// CreateEvent creates an event and returns the backend's authoritative copy.
	CreateEvent(ctx context.Context, req models.BookingRequest) (*models.CalendarEvent, error)

	// UpdateEvent moves an existing event to a new start/end window.
	UpdateEvent(ctx context.Context, eventID string, start, end time.Time) (*models.CalendarEvent, error)

	// DeleteEvent removes an event by id.
	DeleteEvent(ctx context.Context, eventID string) error

	// SearchEvents lists events overlapping [start, end), optionally
	// filtered by a free-text query.
	SearchEvents(ctx context.Context, start, end time.Time, query string) ([]models.CalendarEvent, error)
}
