package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Event represents one committed gesture.
type Event struct {
	ID          string
	Number      int
	Name        string
	Confidence  int
	CommittedAt time.Time
}

// EventRepository provides operations on the gesture event history.
type EventRepository struct {
	db *sql.DB
}

// Events returns the event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// Insert records a committed gesture. A missing ID is generated.
func (r *EventRepository) Insert(e *Event) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CommittedAt.IsZero() {
		e.CommittedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO gesture_events (id, number, name, confidence, committed_at)
		 VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.Number, e.Name, e.Confidence, e.CommittedAt,
	)
	return err
}

// GetByID retrieves a single event.
func (r *EventRepository) GetByID(id string) (*Event, error) {
	e := &Event{}
	err := r.db.QueryRow(
		`SELECT id, number, name, confidence, committed_at
		 FROM gesture_events WHERE id = ?`,
		id,
	).Scan(&e.ID, &e.Number, &e.Name, &e.Confidence, &e.CommittedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return e, nil
}

// List retrieves the most recent events, newest first. A limit of 0 or
// less returns all events.
func (r *EventRepository) List(limit int) ([]*Event, error) {
	query := `SELECT id, number, name, confidence, committed_at
		 FROM gesture_events ORDER BY committed_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		e := &Event{}
		if err := rows.Scan(&e.ID, &e.Number, &e.Name, &e.Confidence, &e.CommittedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

// Count returns the total number of recorded events.
func (r *EventRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM gesture_events`).Scan(&n)
	return n, err
}

// Prune deletes events committed before the given time and returns how
// many were removed.
func (r *EventRepository) Prune(before time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM gesture_events WHERE committed_at < ?`, before)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
