// Package models defines conversation state structures for TailorTalk sessions.
package models

import "time"

// RescheduleState tracks the two-phase reschedule flow across turns.
type RescheduleState string

const (
	// RescheduleIdle means no reschedule is in progress.
	RescheduleIdle RescheduleState = "IDLE"
	// RescheduleAwaitingNewTime means a target event has been identified and
	// the next inbound message is interpreted as its new time.
	RescheduleAwaitingNewTime RescheduleState = "AWAITING_NEW_TIME"
)

// ConversationState holds everything the dialogue engine knows about one
// session. It is owned by the session store and mutated only by engine nodes.
//
// Availability, AvailabilityError, IsSlotAvailable, UserInformedSlotBusy and
// CancellationCandidates are per-turn scratch: they are cleared at the start
// of every user turn so stale results never leak into unrelated turns.
// Reschedule state and History survive across turns.
type ConversationState struct {
	SessionID string     `json:"session_id"`
	History   []ChatTurn `json:"history"`

	Intent         Intent     `json:"intent,omitempty"`
	ParsedDatetime *time.Time `json:"parsed_datetime,omitempty"`

	Availability         []BusyInterval `json:"availability,omitempty"`
	AvailabilityError    string         `json:"availability_error,omitempty"`
	AvailabilityChecked  bool           `json:"availability_checked"`
	IsSlotAvailable      bool           `json:"is_slot_available"`
	UserInformedSlotBusy bool           `json:"user_informed_slot_is_busy"`

	BookingConfirmed bool            `json:"booking_confirmed"`
	BookingDetails   *BookingRequest `json:"booking_details,omitempty"`

	CancellationCandidates []CalendarEvent `json:"cancellation_candidates,omitempty"`

	Reschedule        RescheduleState `json:"reschedule"`
	EventToReschedule *CalendarEvent  `json:"event_to_reschedule,omitempty"`

	// Scratch carries node-specific data whose shape varies by node.
	// Everything with a stable shape has a named field above.
	Scratch map[string]string `json:"scratch,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewConversationState creates a fresh state for a session: all booleans
// false, empty collections, empty intent.
func NewConversationState(sessionID string) *ConversationState {
	now := time.Now()
	return &ConversationState{
		SessionID:  sessionID,
		Reschedule: RescheduleIdle,
		Scratch:    make(map[string]string),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// ResetTurn clears all per-turn scratch fields before a new user turn
// enters the dialogue graph. Cross-turn state (history, pending reschedule)
// is preserved.
func (s *ConversationState) ResetTurn() {
	s.Availability = nil
	s.AvailabilityError = ""
	s.AvailabilityChecked = false
	s.IsSlotAvailable = false
	s.UserInformedSlotBusy = false
	s.BookingConfirmed = false
	s.BookingDetails = nil
	s.CancellationCandidates = nil
}

// AppendTurn appends a message to the session history. History is
// append-only and never reordered.
func (s *ConversationState) AppendTurn(role Role, text string) {
	s.History = append(s.History, ChatTurn{Role: role, Text: text, Time: time.Now()})
	s.UpdatedAt = time.Now()
}

// LastUserMessage returns the text of the most recent user turn, or "" if
// there is none.
func (s *ConversationState) LastUserMessage() string {
	for i := len(s.History) - 1; i >= 0; i-- {
		if s.History[i].Role == RoleUser {
			return s.History[i].Text
		}
	}
	return ""
}

// LastAgentMessage returns the text of the most recent agent turn, or "" if
// there is none.
func (s *ConversationState) LastAgentMessage() string {
	for i := len(s.History) - 1; i >= 0; i-- {
		if s.History[i].Role == RoleAgent {
			return s.History[i].Text
		}
	}
	return ""
}
