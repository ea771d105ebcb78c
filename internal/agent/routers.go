// Package agent decision functions. Routers are pure mappings from state
// to the next node id; they never mutate state.
package agent

import "github.com/amaan34/tailortalk/internal/models"

// routeFromEntry sends a pending reschedule straight to its completion
// node, bypassing intent classification; everything else starts with
// understanding intent.
func routeFromEntry(state *models.ConversationState) NodeID {
	if state.Reschedule == models.RescheduleAwaitingNewTime && state.EventToReschedule != nil {
		return nodeCompleteReschedule
	}
	return nodeUnderstandIntent
}

// routeAfterIntent dispatches on the classified intent. The intent set is
// closed; an unknown value can only mean a bug upstream and lands in
// clarification.
func routeAfterIntent(state *models.ConversationState) NodeID {
	switch state.Intent {
	case models.IntentFindEvent:
		return nodeFindEventForAction
	case models.IntentBookAppointment, models.IntentCheckAvailability:
		return nodeExtractDatetime
	case models.IntentCancelAppointment, models.IntentRescheduleAppointment:
		return nodeFindEventForAction
	case models.IntentGeneralInquiry:
		return nodeHandleGeneralInquiry
	default:
		return nodeClarifyDetails
	}
}

// routeAfterExtraction requires a parsed datetime to proceed: booking gets
// an exact-window check before committing, availability gets the
// day-window check.
func routeAfterExtraction(state *models.ConversationState) NodeID {
	if state.ParsedDatetime == nil {
		return nodeClarifyDetails
	}
	switch state.Intent {
	case models.IntentBookAppointment:
		return nodeCheckSpecificSlot
	case models.IntentCheckAvailability:
		return nodeCheckAvailability
	default:
		return nodeClarifyDetails
	}
}

// routeAfterSpecificSlot books a free slot, or falls through to the day
// availability check to offer alternatives when the slot is taken.
func routeAfterSpecificSlot(state *models.ConversationState) NodeID {
	if state.IsSlotAvailable {
		return nodeConfirmBooking
	}
	return nodeCheckAvailability
}

// routeAfterAvailability always proceeds to slot suggestion.
func routeAfterAvailability(state *models.ConversationState) NodeID {
	return nodeSuggestTimes
}

// routeAfterEventSearch routes on the candidate count and the original
// intent: find_event always lists regardless of count; cancel and
// reschedule need exactly one match, with zero reported as empty and
// several sent to disambiguation.
func routeAfterEventSearch(state *models.ConversationState) NodeID {
	if state.Intent == models.IntentFindEvent {
		return nodeListFoundEvents
	}
	switch len(state.CancellationCandidates) {
	case 0:
		return nodeListFoundEvents
	case 1:
		if state.Intent == models.IntentRescheduleAppointment {
			return nodeHandleRescheduleRequest
		}
		return nodeHandleCancellation
	default:
		return nodeClarifyCancellation
	}
}
