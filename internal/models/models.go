// Package models defines the core data structures for TailorTalk.
//
// It includes types for chat turns, booking requests, calendar events and
// appointment slots, which are shared across modules.
package models

import (
	"errors"
	"time"
)

// Intent is the classified purpose of a user utterance.
type Intent string

const (
	// IntentUnknown is the zero value before any classification has run.
	IntentUnknown Intent = ""
	// IntentFindEvent asks to look up existing events.
	IntentFindEvent Intent = "find_event"
	// IntentBookAppointment asks to create a new appointment.
	IntentBookAppointment Intent = "book_appointment"
	// IntentCheckAvailability asks whether a day or window is free.
	IntentCheckAvailability Intent = "check_availability"
	// IntentCancelAppointment asks to delete an existing appointment.
	IntentCancelAppointment Intent = "cancel_appointment"
	// IntentRescheduleAppointment asks to move an existing appointment.
	IntentRescheduleAppointment Intent = "reschedule_appointment"
	// IntentGeneralInquiry covers greetings, help requests and anything unrecognized.
	IntentGeneralInquiry Intent = "general_inquiry"
)

// IsValidIntent checks if the given intent is one of the closed set.
func IsValidIntent(i Intent) bool {
	switch i {
	case IntentFindEvent, IntentBookAppointment, IntentCheckAvailability,
		IntentCancelAppointment, IntentRescheduleAppointment, IntentGeneralInquiry:
		return true
	default:
		return false
	}
}

// ParseIntent maps free-form classifier output onto the closed intent set.
// Anything unrecognized degrades to IntentGeneralInquiry.
func ParseIntent(s string) Intent {
	i := Intent(s)
	if IsValidIntent(i) {
		return i
	}
	return IntentGeneralInquiry
}

// Validation constants for input validation
const (
	// MaxMessageLength defines the maximum allowed length for an inbound chat message
	MaxMessageLength = 4096
	// MaxTitleLength defines the maximum allowed length for an appointment title
	MaxTitleLength = 256
	// DefaultSlotDuration is the fixed bookable slot length
	DefaultSlotDuration = 30 * time.Minute
	// BusinessDayStartHour is the first bookable hour of a business day (local time)
	BusinessDayStartHour = 9
	// BusinessDayEndHour is the hour the business day closes (local time)
	BusinessDayEndHour = 17
)

// Error variables for better error handling and testability
var (
	ErrEmptySessionID   = errors.New("session_id cannot be empty")
	ErrEmptyMessage     = errors.New("message content cannot be empty")
	ErrMessageTooLong   = errors.New("message content exceeds maximum length")
	ErrEmptyTitle       = errors.New("booking title cannot be empty")
	ErrTitleTooLong     = errors.New("booking title exceeds maximum length")
	ErrInvalidTimeRange = errors.New("start time must be before end time")
)

// Role identifies the author of a chat turn.
type Role string

const (
	// RoleUser marks a turn written by the end user.
	RoleUser Role = "user"
	// RoleAgent marks a turn written by the assistant.
	RoleAgent Role = "agent"
)

// ChatTurn represents a single message in a conversation history.
type ChatTurn struct {
	Role Role      `json:"role"`
	Text string    `json:"text"`
	Time time.Time `json:"time"`
}

// ChatMessage is the inbound payload for a conversation turn.
type ChatMessage struct {
	Content   string `json:"content"`
	SessionID string `json:"session_id"`
}

// Validate performs validation on an inbound chat message.
func (m *ChatMessage) Validate() error {
	if m.SessionID == "" {
		return ErrEmptySessionID
	}
	if m.Content == "" {
		return ErrEmptyMessage
	}
	if len(m.Content) > MaxMessageLength {
		return ErrMessageTooLong
	}
	return nil
}

// BookingRequest describes an appointment to be created.
type BookingRequest struct {
	Title       string    `json:"title"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Description string    `json:"description,omitempty"`
	Attendees   []string  `json:"attendees,omitempty"`
	SessionID   string    `json:"session_id,omitempty"`
}

// Validate performs validation on a booking request.
func (r *BookingRequest) Validate() error {
	if r.Title == "" {
		return ErrEmptyTitle
	}
	if len(r.Title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if !r.Start.Before(r.End) {
		return ErrInvalidTimeRange
	}
	return nil
}

// BookingResponse reports the outcome of a direct booking call.
type BookingResponse struct {
	Success   bool   `json:"success"`
	BookingID string `json:"booking_id,omitempty"`
	Message   string `json:"message"`
}

// CalendarEvent mirrors an event owned by the calendar backend.
// The core never mutates these directly; it issues create/update/delete
// requests and treats backend responses as authoritative.
type CalendarEvent struct {
	ID          string    `json:"id"`
	Summary     string    `json:"summary"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Description string    `json:"description,omitempty"`
	Attendees   []string  `json:"attendees,omitempty"`
}

// BusyInterval is a [Start, End) range during which the calendar reports
// the user unavailable.
type BusyInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// AppointmentSlot is a fixed-duration bookable window derived from free
// gaps within a business day. Slots are computed, never persisted.
type AppointmentSlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// TurnRecord is one processed conversation turn, kept for audit.
type TurnRecord struct {
	SessionID string    `json:"session_id"`
	Role      Role      `json:"role"`
	Body      string    `json:"body"`
	Intent    Intent    `json:"intent,omitempty"`
	Time      time.Time `json:"time"`
}

// BookingRecord is a confirmed booking, kept for audit.
type BookingRecord struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id,omitempty"`
	EventID   string    `json:"event_id"`
	Title     string    `json:"title"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	CreatedAt time.Time `json:"created_at"`
}

// APIStatus represents the status of an API response.
type APIStatus string

const (
	// APIStatusOK indicates an API request completed successfully.
	APIStatusOK APIStatus = "ok"
	// APIStatusError indicates an API request failed with an error.
	APIStatusError APIStatus = "error"
)

// APIResponse represents a standard API response with a status and optional data.
type APIResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Result  interface{} `json:"result,omitempty"`
}

// Success creates a successful API response with optional result data.
func Success(result interface{}) APIResponse {
	return APIResponse{Status: string(APIStatusOK), Result: result}
}

// Error creates an error API response with a message.
func Error(message string) APIResponse {
	return APIResponse{Status: string(APIStatusError), Message: message}
}
