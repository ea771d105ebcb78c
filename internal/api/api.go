// Package api exposes the TailorTalk HTTP endpoints: chat turns, direct
// booking, availability lookup and health.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/amaan34/tailortalk/internal/agent"
	"github.com/amaan34/tailortalk/internal/calendar"
	"github.com/amaan34/tailortalk/internal/models"
	"github.com/amaan34/tailortalk/internal/slots"
	"github.com/amaan34/tailortalk/internal/store"
)

// Server holds the wired dependencies for the HTTP layer.
type Server struct {
	engine  *agent.Engine
	cal     calendar.Service
	records store.Store
}

// NewServer creates the HTTP server facade.
func NewServer(engine *agent.Engine, cal calendar.Service, records store.Store) *Server {
	return &Server{engine: engine, cal: cal, records: records}
}

// Handler returns the route mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/chat", s.chatHandler)
	mux.HandleFunc("/book", s.bookHandler)
	mux.HandleFunc("/availability", s.availabilityHandler)
	mux.HandleFunc("/health", s.healthHandler)
	return mux
}

// Run serves the API on addr until the listener fails.
func (s *Server) Run(addr string) error {
	slog.Info("api.Run: serving", "addr", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// chatReply is the result payload of a processed chat turn.
type chatReply struct {
	Reply     string        `json:"reply"`
	Intent    models.Intent `json:"intent"`
	SessionID string        `json:"session_id"`
}

// chatHandler processes one conversation turn.
func (s *Server) chatHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONResponse(w, http.StatusMethodNotAllowed, models.Error("method not allowed"))
		return
	}

	var msg models.ChatMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("invalid JSON payload"))
		return
	}
	if err := msg.Validate(); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}

	reply, err := s.engine.ProcessMessage(r.Context(), msg.Content, msg.SessionID)
	if err != nil {
		slog.Error("api.chatHandler: turn failed", "error", err, "sessionID", msg.SessionID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("failed to process message"))
		return
	}

	s.recordTurns(msg, reply)

	writeJSONResponse(w, http.StatusOK, models.Success(chatReply{
		Reply:     reply.Message,
		Intent:    reply.Intent,
		SessionID: msg.SessionID,
	}))
}

// recordTurns persists the user and agent turns. Record-keeping failures
// are logged, never surfaced to the caller.
func (s *Server) recordTurns(msg models.ChatMessage, reply *agent.Reply) {
	now := time.Now()
	if err := s.records.AddTurn(models.TurnRecord{
		SessionID: msg.SessionID, Role: models.RoleUser, Body: msg.Content, Intent: reply.Intent, Time: now,
	}); err != nil {
		slog.Warn("api.recordTurns: failed to record user turn", "error", err, "sessionID", msg.SessionID)
	}
	if err := s.records.AddTurn(models.TurnRecord{
		SessionID: msg.SessionID, Role: models.RoleAgent, Body: reply.Message, Intent: reply.Intent, Time: now,
	}); err != nil {
		slog.Warn("api.recordTurns: failed to record agent turn", "error", err, "sessionID", msg.SessionID)
	}
	if reply.State != nil && reply.State.BookingConfirmed && reply.State.BookingDetails != nil {
		d := reply.State.BookingDetails
		if err := s.records.AddBooking(models.BookingRecord{
			ID:        uuid.NewString(),
			SessionID: msg.SessionID,
			Title:     d.Title,
			Start:     d.Start,
			End:       d.End,
			CreatedAt: now,
		}); err != nil {
			slog.Warn("api.recordTurns: failed to record booking", "error", err, "sessionID", msg.SessionID)
		}
	}
}

// bookHandler creates an event directly, bypassing the dialogue.
func (s *Server) bookHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONResponse(w, http.StatusMethodNotAllowed, models.Error("method not allowed"))
		return
	}

	var req models.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("invalid JSON payload"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}

	event, err := s.cal.CreateEvent(r.Context(), req)
	if err != nil {
		slog.Error("api.bookHandler: create failed", "error", err)
		writeJSONResponse(w, http.StatusBadGateway, models.Error("failed to create event"))
		return
	}

	record := models.BookingRecord{
		ID:        uuid.NewString(),
		SessionID: req.SessionID,
		EventID:   event.ID,
		Title:     event.Summary,
		Start:     event.Start,
		End:       event.End,
		CreatedAt: time.Now(),
	}
	if err := s.records.AddBooking(record); err != nil {
		slog.Warn("api.bookHandler: failed to record booking", "error", err, "eventID", event.ID)
	}

	writeJSONResponse(w, http.StatusOK, models.Success(models.BookingResponse{
		Success:   true,
		BookingID: event.ID,
		Message:   "appointment booked",
	}))
}

// availabilityResult is the result payload of an availability lookup.
type availabilityResult struct {
	Busy  []models.BusyInterval    `json:"busy"`
	Slots []models.AppointmentSlot `json:"slots"`
}

// availabilityHandler returns busy intervals and free slots for a window.
func (s *Server) availabilityHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONResponse(w, http.StatusMethodNotAllowed, models.Error("method not allowed"))
		return
	}

	start, err := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
	if err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("invalid or missing start (RFC3339)"))
		return
	}
	end, err := time.Parse(time.RFC3339, r.URL.Query().Get("end"))
	if err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("invalid or missing end (RFC3339)"))
		return
	}
	if !start.Before(end) {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("start must be before end"))
		return
	}

	busy, err := s.cal.FreeBusy(r.Context(), start, end)
	if err != nil {
		slog.Error("api.availabilityHandler: freebusy failed", "error", err)
		writeJSONResponse(w, http.StatusBadGateway, models.Error("failed to query availability"))
		return
	}

	free := slots.Compute(start, end, busy, models.DefaultSlotDuration)
	writeJSONResponse(w, http.StatusOK, models.Success(availabilityResult{Busy: busy, Slots: free}))
}

// healthHandler reports liveness.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, models.Success(map[string]string{"service": "tailortalk"}))
}
