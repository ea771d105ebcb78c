// Package agent implements the dialogue engine: a directed graph of named
// steps and decision functions that routes a conversation turn through
// intent classification, datetime extraction, availability checks and the
// terminal calendar actions.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/amaan34/tailortalk/internal/calendar"
	"github.com/amaan34/tailortalk/internal/models"
	"github.com/amaan34/tailortalk/internal/session"
	"github.com/amaan34/tailortalk/internal/timeparse"
)

// IntentClassifier is the LLM port consumed by the understand_intent node.
// It returns the raw completion text; parsing the intent out of it,
// including the general_inquiry fallback for malformed output, is the
// engine's job.
type IntentClassifier interface {
	Classify(ctx context.Context, utterance string) (string, error)
}

// NodeID names a step in the dialogue graph.
type NodeID string

// Graph node identifiers.
const (
	nodeEntryRouter             NodeID = "entry_router"
	nodeUnderstandIntent        NodeID = "understand_intent"
	nodeExtractDatetime         NodeID = "extract_datetime"
	nodeCheckSpecificSlot       NodeID = "check_specific_slot"
	nodeCheckAvailability       NodeID = "check_availability"
	nodeSuggestTimes            NodeID = "suggest_times"
	nodeConfirmBooking          NodeID = "confirm_booking"
	nodeClarifyDetails          NodeID = "clarify_details"
	nodeFindEventForAction      NodeID = "find_event_for_action"
	nodeListFoundEvents         NodeID = "list_found_events"
	nodeClarifyCancellation     NodeID = "clarify_cancellation"
	nodeHandleCancellation      NodeID = "handle_cancellation"
	nodeHandleRescheduleRequest NodeID = "handle_reschedule_request"
	nodeCompleteReschedule      NodeID = "complete_reschedule"
	nodeHandleGeneralInquiry    NodeID = "handle_general_inquiry"
)

// nodeFunc is a node body. It may mutate state and call ports. A true
// return halts the turn: terminal nodes always halt, and any node halts
// after converting a port failure into a user-facing apology.
type nodeFunc func(ctx context.Context, state *models.ConversationState) bool

// routerFunc is a decision function: a pure mapping from state to the next
// node. Mutation is confined to node bodies.
type routerFunc func(state *models.ConversationState) NodeID

// Reply is what a processed turn hands back to the caller.
type Reply struct {
	Message string                    `json:"message"`
	Intent  models.Intent             `json:"intent"`
	State   *models.ConversationState `json:"-"`
}

// Engine drives conversation turns through the dialogue graph.
type Engine struct {
	classifier IntentClassifier
	cal        calendar.Service
	extractor  *timeparse.Extractor
	sessions   *session.Store
	loc        *time.Location
	now        func() time.Time

	nodes   map[NodeID]nodeFunc
	routers map[NodeID]routerFunc
}

// Opts holds engine configuration.
type Opts struct {
	Location *time.Location
	Now      func() time.Time
}

// Option configures the engine.
type Option func(*Opts)

// WithLocation sets the single reference timezone all times are interpreted in.
func WithLocation(loc *time.Location) Option {
	return func(o *Opts) { o.Location = loc }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *Opts) { o.Now = now }
}

// NewEngine wires the dialogue engine with its ports.
func NewEngine(classifier IntentClassifier, cal calendar.Service, sessions *session.Store, opts ...Option) *Engine {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	e := &Engine{
		classifier: classifier,
		cal:        cal,
		extractor:  timeparse.NewExtractor(cfg.Location),
		sessions:   sessions,
		loc:        cfg.Location,
		now:        cfg.Now,
	}
	e.nodes = map[NodeID]nodeFunc{
		nodeEntryRouter:             e.entryRouterNode,
		nodeUnderstandIntent:        e.understandIntentNode,
		nodeExtractDatetime:         e.extractDatetimeNode,
		nodeCheckSpecificSlot:       e.checkSpecificSlotNode,
		nodeCheckAvailability:       e.checkAvailabilityNode,
		nodeSuggestTimes:            e.suggestTimesNode,
		nodeConfirmBooking:          e.confirmBookingNode,
		nodeClarifyDetails:          e.clarifyDetailsNode,
		nodeFindEventForAction:      e.findEventForActionNode,
		nodeListFoundEvents:         e.listFoundEventsNode,
		nodeClarifyCancellation:     e.clarifyCancellationNode,
		nodeHandleCancellation:      e.handleCancellationNode,
		nodeHandleRescheduleRequest: e.handleRescheduleRequestNode,
		nodeCompleteReschedule:      e.completeRescheduleNode,
		nodeHandleGeneralInquiry:    e.handleGeneralInquiryNode,
	}
	e.routers = map[NodeID]routerFunc{
		nodeEntryRouter:        routeFromEntry,
		nodeUnderstandIntent:   routeAfterIntent,
		nodeExtractDatetime:    routeAfterExtraction,
		nodeCheckSpecificSlot:  routeAfterSpecificSlot,
		nodeCheckAvailability:  routeAfterAvailability,
		nodeFindEventForAction: routeAfterEventSearch,
	}
	return e
}

// ProcessMessage runs one conversation turn to completion. The only error
// returned is infrastructure failure; every recoverable condition inside
// the graph becomes a natural-language response instead.
func (e *Engine) ProcessMessage(ctx context.Context, message, sessionID string) (*Reply, error) {
	if sessionID == "" {
		return nil, models.ErrEmptySessionID
	}
	if message == "" {
		return nil, models.ErrEmptyMessage
	}

	state := e.sessions.GetOrCreate(sessionID)
	state.ResetTurn()
	state.AppendTurn(models.RoleUser, message)

	slog.Debug("agent.ProcessMessage: turn started", "sessionID", sessionID, "messageLength", len(message))

	current := nodeEntryRouter
	for steps := 0; ; steps++ {
		// A bounded walk: the graph is a DAG per turn, so hitting the
		// bound means a routing bug, not user input.
		if steps > len(e.nodes) {
			slog.Error("agent.ProcessMessage: node budget exceeded", "sessionID", sessionID, "node", current)
			e.respond(state, "I'm sorry, something went wrong on my end. Could you try that again?")
			break
		}

		node, ok := e.nodes[current]
		if !ok {
			slog.Error("agent.ProcessMessage: unknown node", "sessionID", sessionID, "node", current)
			e.respond(state, "I'm sorry, something went wrong on my end. Could you try that again?")
			break
		}

		slog.Debug("agent.ProcessMessage: executing node", "sessionID", sessionID, "node", current)
		if halt := node(ctx, state); halt {
			break
		}

		router, ok := e.routers[current]
		if !ok {
			slog.Error("agent.ProcessMessage: non-terminal node has no router", "sessionID", sessionID, "node", current)
			e.respond(state, "I'm sorry, something went wrong on my end. Could you try that again?")
			break
		}
		next := router(state)
		slog.Debug("agent.ProcessMessage: routed", "sessionID", sessionID, "from", current, "to", next)
		current = next
	}

	e.sessions.Save(sessionID, state)
	reply := &Reply{
		Message: state.LastAgentMessage(),
		Intent:  state.Intent,
		State:   state,
	}
	slog.Info("agent.ProcessMessage: turn completed", "sessionID", sessionID, "intent", state.Intent, "terminal", current)
	return reply, nil
}

// respond appends an agent message to the session history. The last
// response appended during a turn is what the caller receives.
func (e *Engine) respond(state *models.ConversationState, msg string) {
	state.AppendTurn(models.RoleAgent, msg)
}

// formatTime renders an instant the way responses present times to users.
func formatTime(t time.Time) string {
	return t.Format("Mon, Jan 2 at 3:04 PM")
}

// formatWindow renders a slot or event window.
func formatWindow(start, end time.Time) string {
	return fmt.Sprintf("%s – %s", start.Format("3:04 PM"), end.Format("3:04 PM"))
}
