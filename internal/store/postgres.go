// Package store provides record storage backends for TailorTalk.
//
// This file implements the PostgreSQL-backed store.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	_ "github.com/lib/pq"

	"github.com/amaan34/tailortalk/internal/models"
)

// Database connection pool configuration constants
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// PostgresStore persists records in a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres store based on the provided options.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.DSN == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres database: %w", err)
	}
	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	if _, err := db.Exec(postgresMigrations); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("store.NewPostgresStore: store ready")
	return &PostgresStore{db: db}, nil
}

// AddTurn inserts a turn record.
func (s *PostgresStore) AddTurn(r models.TurnRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO turns (session_id, role, body, intent, time) VALUES ($1, $2, $3, $4, $5)`,
		r.SessionID, string(r.Role), r.Body, string(r.Intent), r.Time,
	)
	if err != nil {
		slog.Error("PostgresStore.AddTurn failed", "error", err, "sessionID", r.SessionID)
		return fmt.Errorf("failed to insert turn for %s: %w", r.SessionID, err)
	}
	return nil
}

// GetTurns returns the records for one session in insertion order.
func (s *PostgresStore) GetTurns(sessionID string) ([]models.TurnRecord, error) {
	rows, err := s.db.Query(
		`SELECT session_id, role, body, intent, time FROM turns WHERE session_id = $1 ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query turns: %w", err)
	}
	defer rows.Close()

	var turns []models.TurnRecord
	for rows.Next() {
		var r models.TurnRecord
		var role, intent string
		if err := rows.Scan(&r.SessionID, &role, &r.Body, &intent, &r.Time); err != nil {
			return nil, fmt.Errorf("failed to scan turn row: %w", err)
		}
		r.Role = models.Role(role)
		r.Intent = models.Intent(intent)
		turns = append(turns, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate turn rows: %w", err)
	}
	return turns, nil
}

// AddBooking inserts a booking record.
func (s *PostgresStore) AddBooking(b models.BookingRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO bookings (id, session_id, event_id, title, start_time, end_time, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		b.ID, b.SessionID, b.EventID, b.Title, b.Start, b.End, b.CreatedAt,
	)
	if err != nil {
		slog.Error("PostgresStore.AddBooking failed", "error", err, "bookingID", b.ID)
		return fmt.Errorf("failed to insert booking %s: %w", b.ID, err)
	}
	return nil
}

// GetBookings returns all booking records in insertion order.
func (s *PostgresStore) GetBookings() ([]models.BookingRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, session_id, event_id, title, start_time, end_time, created_at FROM bookings ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []models.BookingRecord
	for rows.Next() {
		var b models.BookingRecord
		if err := rows.Scan(&b.ID, &b.SessionID, &b.EventID, &b.Title, &b.Start, &b.End, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan booking row: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate booking rows: %w", err)
	}
	return bookings, nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
