/*
Package store provides PostgreSQL persistence for rooms, registered users,
and chat history.

This file defines the Store and its query methods. The schema is small on
purpose: rooms exist as records of handed-out codes, users map a device id to
its chosen display name, and messages keep per-room chat history for replay.
*/
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ChatLine is one persisted chat message, ready for history replay.
type ChatLine struct {
	Username string
	Message  string
}

// Store wraps the connection pool with the application's queries.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore returns a Store using the given pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// CreateRoom records a room. Creating an already-recorded room is a no-op.
func (s *Store) CreateRoom(ctx context.Context, name string, private bool) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO rooms (name, private)
		 VALUES ($1, $2)
		 ON CONFLICT (name) DO NOTHING`,
		name, private,
	)
	if err != nil {
		return fmt.Errorf("failed to create room %q: %w", name, err)
	}

	return nil
}

// AddMessage appends one chat message to a room's history.
func (s *Store) AddMessage(ctx context.Context, room, username, message string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO messages (room, username, message)
		 VALUES ($1, $2, $3)`,
		room, username, message,
	)
	if err != nil {
		return fmt.Errorf("failed to persist message in room %q: %w", room, err)
	}

	return nil
}

// RecentMessages returns up to limit most recent messages of a room in
// chronological order.
func (s *Store) RecentMessages(ctx context.Context, room string, limit int) ([]ChatLine, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT username, message FROM (
		     SELECT id, username, message
		     FROM messages
		     WHERE room = $1
		     ORDER BY id DESC
		     LIMIT $2
		 ) recent
		 ORDER BY id ASC`,
		room, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query history of room %q: %w", room, err)
	}
	defer rows.Close()

	var lines []ChatLine
	for rows.Next() {
		var line ChatLine
		if err := rows.Scan(&line.Username, &line.Message); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		lines = append(lines, line)
	}

	return lines, rows.Err()
}

// UserByDevice looks up the display name registered for a device id. The
// second return value reports whether a registration exists.
func (s *Store) UserByDevice(ctx context.Context, device string) (string, bool, error) {
	var name string

	err := s.pool.QueryRow(ctx,
		`SELECT name FROM users WHERE device = $1`,
		device,
	).Scan(&name)

	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to look up device: %w", err)
	}

	return name, true, nil
}

// SetUsername registers or replaces the display name for a device id.
func (s *Store) SetUsername(ctx context.Context, device, name string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (device, name)
		 VALUES ($1, $2)
		 ON CONFLICT (device)
		 DO UPDATE SET name = EXCLUDED.name`,
		device, name,
	)
	if err != nil {
		return fmt.Errorf("failed to set username: %w", err)
	}

	return nil
}

// AllUsernames returns every registered display name.
func (s *Store) AllUsernames(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT name FROM users`)
	if err != nil {
		return nil, fmt.Errorf("failed to query usernames: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan username row: %w", err)
		}
		names = append(names, name)
	}

	return names, rows.Err()
}
