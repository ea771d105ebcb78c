package agent

import (
	"testing"
	"time"

	"github.com/amaan34/tailortalk/internal/models"
)

func TestRouteFromEntry(t *testing.T) {
	state := models.NewConversationState("s1")
	if got := routeFromEntry(state); got != nodeUnderstandIntent {
		t.Errorf("idle session should route to understand_intent, got %q", got)
	}

	state.Reschedule = models.RescheduleAwaitingNewTime
	state.EventToReschedule = &models.CalendarEvent{ID: "ev-1"}
	if got := routeFromEntry(state); got != nodeCompleteReschedule {
		t.Errorf("pending reschedule should bypass classification, got %q", got)
	}

	// Awaiting state without a target must not enter the completion node.
	state.EventToReschedule = nil
	if got := routeFromEntry(state); got != nodeUnderstandIntent {
		t.Errorf("awaiting without target should fall back, got %q", got)
	}
}

func TestRouteAfterIntent(t *testing.T) {
	cases := []struct {
		intent models.Intent
		want   NodeID
	}{
		{models.IntentFindEvent, nodeFindEventForAction},
		{models.IntentBookAppointment, nodeExtractDatetime},
		{models.IntentCheckAvailability, nodeExtractDatetime},
		{models.IntentCancelAppointment, nodeFindEventForAction},
		{models.IntentRescheduleAppointment, nodeFindEventForAction},
		{models.IntentGeneralInquiry, nodeHandleGeneralInquiry},
		{models.IntentUnknown, nodeClarifyDetails},
	}
	for _, tc := range cases {
		state := models.NewConversationState("s1")
		state.Intent = tc.intent
		if got := routeAfterIntent(state); got != tc.want {
			t.Errorf("intent %q: expected %q, got %q", tc.intent, tc.want, got)
		}
	}
}

func TestRouteAfterExtraction(t *testing.T) {
	when := time.Date(2025, 6, 3, 15, 0, 0, 0, time.UTC)

	state := models.NewConversationState("s1")
	state.Intent = models.IntentBookAppointment
	if got := routeAfterExtraction(state); got != nodeClarifyDetails {
		t.Errorf("missing datetime should clarify, got %q", got)
	}

	state.ParsedDatetime = &when
	if got := routeAfterExtraction(state); got != nodeCheckSpecificSlot {
		t.Errorf("booking should check the exact slot first, got %q", got)
	}

	state.Intent = models.IntentCheckAvailability
	if got := routeAfterExtraction(state); got != nodeCheckAvailability {
		t.Errorf("availability check should use the day window, got %q", got)
	}

	state.Intent = models.IntentGeneralInquiry
	if got := routeAfterExtraction(state); got != nodeClarifyDetails {
		t.Errorf("unexpected intent with datetime should clarify, got %q", got)
	}
}

func TestRouteAfterSpecificSlot(t *testing.T) {
	state := models.NewConversationState("s1")
	state.IsSlotAvailable = true
	if got := routeAfterSpecificSlot(state); got != nodeConfirmBooking {
		t.Errorf("free slot should book, got %q", got)
	}
	state.IsSlotAvailable = false
	if got := routeAfterSpecificSlot(state); got != nodeCheckAvailability {
		t.Errorf("busy slot should fall through to day availability, got %q", got)
	}
}

func TestRouteAfterEventSearch(t *testing.T) {
	ev := models.CalendarEvent{ID: "ev-1"}

	state := models.NewConversationState("s1")
	state.Intent = models.IntentFindEvent
	state.CancellationCandidates = []models.CalendarEvent{ev, ev}
	if got := routeAfterEventSearch(state); got != nodeListFoundEvents {
		t.Errorf("find_event always lists, got %q", got)
	}

	state.Intent = models.IntentCancelAppointment
	state.CancellationCandidates = nil
	if got := routeAfterEventSearch(state); got != nodeListFoundEvents {
		t.Errorf("zero matches should report emptiness, got %q", got)
	}

	state.CancellationCandidates = []models.CalendarEvent{ev}
	if got := routeAfterEventSearch(state); got != nodeHandleCancellation {
		t.Errorf("single match should cancel, got %q", got)
	}

	state.Intent = models.IntentRescheduleAppointment
	if got := routeAfterEventSearch(state); got != nodeHandleRescheduleRequest {
		t.Errorf("single match should start reschedule, got %q", got)
	}

	state.CancellationCandidates = []models.CalendarEvent{ev, ev}
	if got := routeAfterEventSearch(state); got != nodeClarifyCancellation {
		t.Errorf("multiple matches should disambiguate, got %q", got)
	}
}

func TestRoutersArePure(t *testing.T) {
	// Same state in, same node out, and no mutation observable.
	state := models.NewConversationState("s1")
	state.Intent = models.IntentBookAppointment
	before := *state

	first := routeAfterIntent(state)
	second := routeAfterIntent(state)
	if first != second {
		t.Errorf("router not deterministic: %q vs %q", first, second)
	}
	if state.Intent != before.Intent || len(state.History) != len(before.History) {
		t.Error("router mutated state")
	}
}

func TestParseIntentPayload(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    models.Intent
	}{
		{"plain json", `{"intent": "book_appointment"}`, models.IntentBookAppointment},
		{"fenced json", "```json\n{\"intent\": \"cancel_appointment\"}\n```", models.IntentCancelAppointment},
		{"non-json", "sure, I can help with that", models.IntentGeneralInquiry},
		{"unknown intent", `{"intent": "order_pizza"}`, models.IntentGeneralInquiry},
		{"empty", "", models.IntentGeneralInquiry},
	}
	for _, tc := range cases {
		if got := parseIntentPayload(tc.content); got != tc.want {
			t.Errorf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}
