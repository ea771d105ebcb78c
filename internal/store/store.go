// Package store provides record storage backends for TailorTalk.
//
// It keeps processed conversation turns and confirmed bookings for audit,
// with in-memory, SQLite and PostgreSQL implementations. The dialogue
// session state itself is deliberately not persisted here.
package store

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/amaan34/tailortalk/internal/models"
)

// Store is the record-keeping contract used by the API layer.
type Store interface {
	AddTurn(r models.TurnRecord) error
	GetTurns(sessionID string) ([]models.TurnRecord, error)
	AddBooking(b models.BookingRecord) error
	GetBookings() ([]models.BookingRecord, error)
	Close() error
}

// Opts holds configuration for store backends.
type Opts struct {
	DSN string
}

// Option configures a store backend.
type Option func(*Opts)

// WithDSN sets the database connection string (file path for SQLite,
// connection URL for Postgres).
func WithDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// DetectDSNType reports the database driver implied by a DSN: "postgres"
// for connection URLs and key=value strings, "sqlite3" for file paths.
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return "postgres"
	}
	return "sqlite3"
}

// NewStore picks a backend from the DSN: empty means in-memory, a postgres
// DSN selects PostgreSQL, anything else is treated as a SQLite file path.
func NewStore(opts ...Option) (Store, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	switch {
	case cfg.DSN == "":
		slog.Debug("store.NewStore: no DSN provided, using in-memory store")
		return NewInMemoryStore(), nil
	case DetectDSNType(cfg.DSN) == "postgres":
		slog.Debug("store.NewStore: detected PostgreSQL DSN")
		return NewPostgresStore(opts...)
	default:
		slog.Debug("store.NewStore: detected SQLite DSN", "path", cfg.DSN)
		return NewSQLiteStore(opts...)
	}
}

// InMemoryStore is a simple in-memory store for turn and booking records.
// It is the default backend and the one tests use.
type InMemoryStore struct {
	mu       sync.RWMutex
	turns    []models.TurnRecord
	bookings []models.BookingRecord
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// AddTurn appends a turn record.
func (s *InMemoryStore) AddTurn(r models.TurnRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns, r)
	return nil
}

// GetTurns returns the records for one session in insertion order.
func (s *InMemoryStore) GetTurns(sessionID string) ([]models.TurnRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.TurnRecord
	for _, r := range s.turns {
		if r.SessionID == sessionID {
			out = append(out, r)
		}
	}
	return out, nil
}

// AddBooking appends a booking record.
func (s *InMemoryStore) AddBooking(b models.BookingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings = append(s.bookings, b)
	return nil
}

// GetBookings returns all booking records in insertion order.
func (s *InMemoryStore) GetBookings() ([]models.BookingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.BookingRecord, len(s.bookings))
	copy(out, s.bookings)
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error { return nil }
