// Package agent node bodies. Each node reads and mutates the shared
// conversation state; port failures are caught at the node boundary and
// converted into an apologetic response so the graph never crashes a
// session on a single turn's failure.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/amaan34/tailortalk/internal/models"
	"github.com/amaan34/tailortalk/internal/slots"
	"github.com/amaan34/tailortalk/internal/timeparse"
)

// scratchKeyClassifierError flags a failed classifier call for the
// general-inquiry node, which swaps its canned help for an apology.
const scratchKeyClassifierError = "classifier_error"

// searchWindowMargin is the half-width of the window searched around a
// time-specific utterance when locating events to cancel or reschedule.
const searchWindowMargin = 2 * time.Hour

const apologyRetry = "I'm sorry, I ran into a problem talking to your calendar. Please try again in a moment."

// entryRouterNode is a pure routing point; the decision lives in routeFromEntry.
func (e *Engine) entryRouterNode(ctx context.Context, state *models.ConversationState) bool {
	return false
}

// understandIntentNode classifies the latest user utterance. A transport
// failure or malformed classifier output never fails the turn: intent
// degrades to general_inquiry.
func (e *Engine) understandIntentNode(ctx context.Context, state *models.ConversationState) bool {
	utterance := state.LastUserMessage()
	content, err := e.classifier.Classify(ctx, utterance)
	if err != nil {
		slog.Warn("agent.understandIntent: classifier call failed", "sessionID", state.SessionID, "error", err)
		state.Intent = models.IntentGeneralInquiry
		state.Scratch[scratchKeyClassifierError] = err.Error()
		return false
	}
	state.Intent = parseIntentPayload(content)
	slog.Debug("agent.understandIntent: classified", "sessionID", state.SessionID, "intent", state.Intent)
	return false
}

// parseIntentPayload extracts the intent from raw classifier output.
// Markdown fences are tolerated; anything unparseable defaults to
// general_inquiry.
func parseIntentPayload(content string) models.Intent {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
		content = strings.TrimSpace(content)
	}
	var payload struct {
		Intent string `json:"intent"`
	}
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		slog.Debug("agent.parseIntentPayload: malformed classifier output, defaulting", "error", err)
		return models.IntentGeneralInquiry
	}
	return models.ParseIntent(payload.Intent)
}

// extractDatetimeNode runs the temporal extractor on the latest utterance.
// Extraction failure clears any previously extracted datetime rather than
// silently preserving a stale value from a prior turn.
func (e *Engine) extractDatetimeNode(ctx context.Context, state *models.ConversationState) bool {
	t, err := e.extractor.Extract(state.LastUserMessage(), e.now())
	if err != nil {
		state.ParsedDatetime = nil
		slog.Debug("agent.extractDatetime: no datetime extracted", "sessionID", state.SessionID)
		return false
	}
	state.ParsedDatetime = &t
	slog.Debug("agent.extractDatetime: extracted", "sessionID", state.SessionID, "datetime", t)
	return false
}

// checkSpecificSlotNode asks the calendar whether the exact requested
// window is free before committing to a booking.
func (e *Engine) checkSpecificSlotNode(ctx context.Context, state *models.ConversationState) bool {
	start := *state.ParsedDatetime
	end := start.Add(models.DefaultSlotDuration)

	busy, err := e.cal.FreeBusy(ctx, start, end)
	if err != nil {
		slog.Warn("agent.checkSpecificSlot: freebusy failed", "sessionID", state.SessionID, "error", err)
		state.AvailabilityError = err.Error()
		e.respond(state, apologyRetry)
		return true
	}
	state.IsSlotAvailable = len(busy) == 0
	if !state.IsSlotAvailable {
		state.UserInformedSlotBusy = true
	}
	slog.Debug("agent.checkSpecificSlot: checked", "sessionID", state.SessionID, "available", state.IsSlotAvailable)
	return false
}

// checkAvailabilityNode queries free/busy for the full business-hours
// window of the requested day.
func (e *Engine) checkAvailabilityNode(ctx context.Context, state *models.ConversationState) bool {
	ref := e.now()
	if state.ParsedDatetime != nil {
		ref = *state.ParsedDatetime
	}
	dayStart, dayEnd := slots.BusinessWindow(ref.In(e.loc))

	busy, err := e.cal.FreeBusy(ctx, dayStart, dayEnd)
	if err != nil {
		slog.Warn("agent.checkAvailability: freebusy failed", "sessionID", state.SessionID, "error", err)
		state.AvailabilityError = err.Error()
		e.respond(state, apologyRetry)
		return true
	}
	state.Availability = busy
	state.AvailabilityChecked = true
	slog.Debug("agent.checkAvailability: checked", "sessionID", state.SessionID, "busyCount", len(busy))
	return false
}

// suggestTimesNode runs the slot calculator over the day's availability
// and emits the bookable slots as the response. Terminal.
func (e *Engine) suggestTimesNode(ctx context.Context, state *models.ConversationState) bool {
	ref := e.now()
	if state.ParsedDatetime != nil {
		ref = *state.ParsedDatetime
	}
	dayStart, dayEnd := slots.BusinessWindow(ref.In(e.loc))
	free := slots.Compute(dayStart, dayEnd, state.Availability, models.DefaultSlotDuration)

	var b strings.Builder
	if state.UserInformedSlotBusy {
		b.WriteString("That time is already taken. ")
	}
	if len(free) == 0 {
		b.WriteString(fmt.Sprintf("I'm afraid %s is fully booked. Would another day work?", dayStart.Format("Monday, Jan 2")))
		e.respond(state, b.String())
		return true
	}

	b.WriteString(fmt.Sprintf("Here are the available 30-minute slots on %s:\n", dayStart.Format("Monday, Jan 2")))
	for _, s := range free {
		b.WriteString(fmt.Sprintf("  • %s\n", formatWindow(s.Start, s.End)))
	}
	b.WriteString("Which one would you like?")
	e.respond(state, b.String())
	return true
}

// confirmBookingNode creates the event for the requested slot. Terminal.
func (e *Engine) confirmBookingNode(ctx context.Context, state *models.ConversationState) bool {
	start := *state.ParsedDatetime
	req := models.BookingRequest{
		Title:       "Meeting booked by TailorTalk",
		Start:       start,
		End:         start.Add(models.DefaultSlotDuration),
		Description: "This meeting was booked by the TailorTalk assistant.",
		SessionID:   state.SessionID,
	}

	event, err := e.cal.CreateEvent(ctx, req)
	if err != nil {
		slog.Warn("agent.confirmBooking: create failed", "sessionID", state.SessionID, "error", err)
		e.respond(state, "I'm sorry, I couldn't book that appointment. Please try again in a moment.")
		return true
	}

	state.BookingConfirmed = true
	state.BookingDetails = &req
	e.respond(state, fmt.Sprintf("Success! Your appointment is booked for %s.", formatTime(event.Start)))
	slog.Info("agent.confirmBooking: booked", "sessionID", state.SessionID, "eventID", event.ID)
	return true
}

// clarifyDetailsNode asks for the information the turn was missing. Terminal.
func (e *Engine) clarifyDetailsNode(ctx context.Context, state *models.ConversationState) bool {
	switch state.Intent {
	case models.IntentBookAppointment:
		e.respond(state, "I'd be happy to book that. What day and time would you like?")
	case models.IntentCheckAvailability:
		e.respond(state, "Sure — which day should I check?")
	default:
		e.respond(state, "Could you tell me a bit more about what you'd like to do? For example: \"book a meeting tomorrow at 3pm\".")
	}
	return true
}

// findEventForActionNode searches the calendar for events matching the
// utterance, for the cancel/reschedule/find flows. A date-only utterance
// searches the whole calendar day; a time-specific one searches ±2 hours
// around the instant; no temporal expression at all searches today.
func (e *Engine) findEventForActionNode(ctx context.Context, state *models.ConversationState) bool {
	now := e.now().In(e.loc)

	var start, end time.Time
	if t, err := e.extractor.Extract(state.LastUserMessage(), now); err == nil {
		state.ParsedDatetime = &t
		if timeparse.IsDateOnly(t) {
			start = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, e.loc)
			end = start.AddDate(0, 0, 1)
		} else {
			start = t.Add(-searchWindowMargin)
			end = t.Add(searchWindowMargin)
		}
	} else {
		state.ParsedDatetime = nil
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, e.loc)
		end = start.AddDate(0, 0, 1)
	}

	events, err := e.cal.SearchEvents(ctx, start, end, "")
	if err != nil {
		slog.Warn("agent.findEventForAction: search failed", "sessionID", state.SessionID, "error", err)
		e.respond(state, apologyRetry)
		return true
	}
	state.CancellationCandidates = events
	slog.Debug("agent.findEventForAction: searched", "sessionID", state.SessionID, "window_start", start, "window_end", end, "matches", len(events))
	return false
}

// listFoundEventsNode formats the found events as the response, reporting
// emptiness when nothing matched. Terminal.
func (e *Engine) listFoundEventsNode(ctx context.Context, state *models.ConversationState) bool {
	if len(state.CancellationCandidates) == 0 {
		e.respond(state, "I couldn't find any events in that time frame.")
		return true
	}
	var b strings.Builder
	b.WriteString("Here's what I found:\n")
	for _, ev := range state.CancellationCandidates {
		b.WriteString(fmt.Sprintf("  • %s — %s (%s)\n", ev.Summary, formatTime(ev.Start), formatWindow(ev.Start, ev.End)))
	}
	e.respond(state, b.String())
	return true
}

// clarifyCancellationNode asks the user to disambiguate among multiple
// candidate events. Terminal.
func (e *Engine) clarifyCancellationNode(ctx context.Context, state *models.ConversationState) bool {
	var b strings.Builder
	b.WriteString("I found more than one event in that time frame:\n")
	for _, ev := range state.CancellationCandidates {
		b.WriteString(fmt.Sprintf("  • %s — %s\n", ev.Summary, formatTime(ev.Start)))
	}
	b.WriteString("Which one did you mean? A more specific time would help.")
	e.respond(state, b.String())
	return true
}

// handleCancellationNode deletes the single matched event. Terminal.
func (e *Engine) handleCancellationNode(ctx context.Context, state *models.ConversationState) bool {
	target := state.CancellationCandidates[0]
	if err := e.cal.DeleteEvent(ctx, target.ID); err != nil {
		slog.Warn("agent.handleCancellation: delete failed", "sessionID", state.SessionID, "eventID", target.ID, "error", err)
		e.respond(state, "I'm sorry, I couldn't cancel that event. Please try again in a moment.")
		return true
	}
	e.respond(state, fmt.Sprintf("Done — I've cancelled \"%s\" on %s.", target.Summary, formatTime(target.Start)))
	slog.Info("agent.handleCancellation: cancelled", "sessionID", state.SessionID, "eventID", target.ID)
	return true
}

// handleRescheduleRequestNode records the reschedule target and asks for
// the new time. The next inbound message for this session bypasses intent
// classification and is interpreted as the new time. Terminal.
func (e *Engine) handleRescheduleRequestNode(ctx context.Context, state *models.ConversationState) bool {
	target := state.CancellationCandidates[0]
	state.EventToReschedule = &target
	state.Reschedule = models.RescheduleAwaitingNewTime
	e.respond(state, fmt.Sprintf("Sure — when would you like to move \"%s\" (currently %s) to?", target.Summary, formatTime(target.Start)))
	return true
}

// completeRescheduleNode interprets the current message as the new time
// for the pending reschedule, validates it against availability and
// updates the event. The pending state is cleared once the reschedule
// completes; on a parse failure or conflict the flow stays pending and
// asks again. Terminal.
func (e *Engine) completeRescheduleNode(ctx context.Context, state *models.ConversationState) bool {
	target := state.EventToReschedule

	newStart, err := e.extractor.Extract(state.LastUserMessage(), e.now())
	if err != nil {
		e.respond(state, "I couldn't make out a time there. When should I move it to? For example: \"tomorrow at 2pm\".")
		return true
	}
	duration := target.End.Sub(target.Start)
	if duration <= 0 {
		duration = models.DefaultSlotDuration
	}
	newEnd := newStart.Add(duration)

	busy, err := e.cal.FreeBusy(ctx, newStart, newEnd)
	if err != nil {
		slog.Warn("agent.completeReschedule: freebusy failed", "sessionID", state.SessionID, "error", err)
		state.AvailabilityError = err.Error()
		e.respond(state, apologyRetry)
		return true
	}
	// Ignore the conflict the target itself causes when it overlaps the
	// proposed window. Freebusy clips busy periods to the queried window,
	// so the target shows up as any sub-interval of its own slot, not an
	// exact match.
	conflict := false
	for _, b := range busy {
		if !b.Start.Before(target.Start) && !target.End.Before(b.End) {
			continue
		}
		conflict = true
		break
	}
	if conflict {
		e.respond(state, fmt.Sprintf("%s is already taken. Could you pick a different time?", formatTime(newStart)))
		return true
	}

	updated, err := e.cal.UpdateEvent(ctx, target.ID, newStart, newEnd)
	if err != nil {
		slog.Warn("agent.completeReschedule: update failed", "sessionID", state.SessionID, "eventID", target.ID, "error", err)
		e.respond(state, "I'm sorry, I couldn't move that event. Please try again in a moment.")
		return true
	}

	state.EventToReschedule = nil
	state.Reschedule = models.RescheduleIdle
	e.respond(state, fmt.Sprintf("All set — \"%s\" is now scheduled for %s.", updated.Summary, formatTime(updated.Start)))
	slog.Info("agent.completeReschedule: rescheduled", "sessionID", state.SessionID, "eventID", updated.ID)
	return true
}

// handleGeneralInquiryNode emits the canned help response, or an apology
// when the turn's classifier call failed. Terminal.
func (e *Engine) handleGeneralInquiryNode(ctx context.Context, state *models.ConversationState) bool {
	if _, failed := state.Scratch[scratchKeyClassifierError]; failed {
		delete(state.Scratch, scratchKeyClassifierError)
		e.respond(state, "I'm sorry, I had trouble understanding that just now. Could you rephrase it?")
		return true
	}
	e.respond(state, "I'm TailorTalk, your scheduling assistant. I can book appointments, check availability, list your events, and cancel or reschedule them. Try \"book a meeting tomorrow at 3pm\".")
	return true
}
