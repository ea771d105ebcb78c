// Package store provides record storage backends for TailorTalk.
//
// This file implements the SQLite-backed store.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	_ "github.com/mattn/go-sqlite3"

	"github.com/amaan34/tailortalk/internal/models"
)

// DefaultDirPermissions defines the default permissions for database directories
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteStore persists records in a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN is a file path to the SQLite database file; its directory is
// created if missing.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.DSN == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(cfg.DSN)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("sqlite ping failed: %w", err)
	}
	if _, err := db.Exec(sqliteMigrations); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("store.NewSQLiteStore: store ready", "dsn", cfg.DSN)
	return &SQLiteStore{db: db}, nil
}

// AddTurn inserts a turn record.
func (s *SQLiteStore) AddTurn(r models.TurnRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO turns (session_id, role, body, intent, time) VALUES (?, ?, ?, ?, ?)`,
		r.SessionID, string(r.Role), r.Body, string(r.Intent), r.Time,
	)
	if err != nil {
		slog.Error("SQLiteStore.AddTurn failed", "error", err, "sessionID", r.SessionID)
		return fmt.Errorf("failed to insert turn for %s: %w", r.SessionID, err)
	}
	return nil
}

// GetTurns returns the records for one session in insertion order.
func (s *SQLiteStore) GetTurns(sessionID string) ([]models.TurnRecord, error) {
	rows, err := s.db.Query(
		`SELECT session_id, role, body, intent, time FROM turns WHERE session_id = ? ORDER BY id`,
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
func (s *SQLiteStore) AddBooking(b models.BookingRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO bookings (id, session_id, event_id, title, start_time, end_time, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.SessionID, b.EventID, b.Title, b.Start, b.End, b.CreatedAt,
	)
	if err != nil {
		slog.Error("SQLiteStore.AddBooking failed", "error", err, "bookingID", b.ID)
		return fmt.Errorf("failed to insert booking %s: %w", b.ID, err)
	}
	return nil
}

// GetBookings returns all booking records in insertion order.
func (s *SQLiteStore) GetBookings() ([]models.BookingRecord, error) {
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
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
