package models

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestChatMessageValidate(t *testing.T) {
	tests := []struct {
		name    string
		msg     ChatMessage
		wantErr error
	}{
		{name: "valid", msg: ChatMessage{SessionID: "s1", Content: "hello"}},
		{name: "missing session", msg: ChatMessage{Content: "hello"}, wantErr: ErrEmptySessionID},
		{name: "missing content", msg: ChatMessage{SessionID: "s1"}, wantErr: ErrEmptyMessage},
		{
			name:    "content too long",
			msg:     ChatMessage{SessionID: "s1", Content: strings.Repeat("x", MaxMessageLength+1)},
			wantErr: ErrMessageTooLong,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.msg.Validate()
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestBookingRequestValidate(t *testing.T) {
	start := time.Date(2025, 6, 3, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		req     BookingRequest
		wantErr error
	}{
		{name: "valid", req: BookingRequest{Title: "Dentist", Start: start, End: start.Add(30 * time.Minute)}},
		{name: "missing title", req: BookingRequest{Start: start, End: start.Add(time.Hour)}, wantErr: ErrEmptyTitle},
		{
			name:    "title too long",
			req:     BookingRequest{Title: strings.Repeat("x", MaxTitleLength+1), Start: start, End: start.Add(time.Hour)},
			wantErr: ErrTitleTooLong,
		},
		{name: "end before start", req: BookingRequest{Title: "Dentist", Start: start, End: start.Add(-time.Hour)}, wantErr: ErrInvalidTimeRange},
		{name: "zero duration", req: BookingRequest{Title: "Dentist", Start: start, End: start}, wantErr: ErrInvalidTimeRange},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestParseIntent(t *testing.T) {
	tests := []struct {
		in   string
		want Intent
	}{
		{"book_appointment", IntentBookAppointment},
		{"check_availability", IntentCheckAvailability},
		{"cancel_appointment", IntentCancelAppointment},
		{"reschedule_appointment", IntentRescheduleAppointment},
		{"find_event", IntentFindEvent},
		{"general_inquiry", IntentGeneralInquiry},
		{"", IntentGeneralInquiry},
		{"BOOK_APPOINTMENT", IntentGeneralInquiry},
		{"order_pizza", IntentGeneralInquiry},
	}
	for _, tc := range tests {
		if got := ParseIntent(tc.in); got != tc.want {
			t.Errorf("ParseIntent(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestIsValidIntentRejectsUnknown(t *testing.T) {
	if IsValidIntent(IntentUnknown) {
		t.Error("unknown intent must not be valid")
	}
	if IsValidIntent(Intent("something_else")) {
		t.Error("arbitrary strings must not be valid intents")
	}
}
