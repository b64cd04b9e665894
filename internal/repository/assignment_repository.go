package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/summitops/guest-transport/internal/model"
)

// AssignmentRepo provides data access to the assignments table.  An
// assignment seats one guest on one transport schedule; a unique
// index on (guest_id, direction) guarantees a guest rides at most one
// vehicle per direction.  Moving a guest between schedules is
// orchestrated by the handler inside a single transaction using the
// Tx methods here together with ScheduleRepo's lock helpers.
type AssignmentRepo struct {
	db *sql.DB
}

// NewAssignmentRepo returns a new AssignmentRepo bound to the given database.
func NewAssignmentRepo(db *sql.DB) *AssignmentRepo { return &AssignmentRepo{db: db} }

// scanAssignment reads one assignments row.
func scanAssignment(sc rowScanner) (model.Assignment, error) {
	var a model.Assignment
	err := sc.Scan(&a.ID, &a.GuestID, &a.ScheduleID, &a.Direction, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// GetByGuestAndDirection fetches the guest's current assignment for
// one direction.  ErrNotFound is returned when the guest is not
// assigned in that direction.
func (r *AssignmentRepo) GetByGuestAndDirection(ctx context.Context, guestID uint64, direction string) (model.Assignment, error) {
	const q = `SELECT id, guest_id, schedule_id, direction, created_at, updated_at
	           FROM assignments WHERE guest_id = ? AND direction = ? LIMIT 1`
	a, err := scanAssignment(r.db.QueryRowContext(ctx, q, guestID, direction))
	if errors.Is(err, sql.ErrNoRows) {
		return a, ErrNotFound
	}
	return a, err
}

// GetByGuestAndDirectionTx is GetByGuestAndDirection inside the
// provided transaction with a row lock, so the assignment cannot be
// moved by anyone else until the caller commits or rolls back.
func (r *AssignmentRepo) GetByGuestAndDirectionTx(ctx context.Context, tx *sql.Tx, guestID uint64, direction string) (model.Assignment, error) {
	const q = `SELECT id, guest_id, schedule_id, direction, created_at, updated_at
	           FROM assignments WHERE guest_id = ? AND direction = ? LIMIT 1 FOR UPDATE`
	a, err := scanAssignment(tx.QueryRowContext(ctx, q, guestID, direction))
	if errors.Is(err, sql.ErrNoRows) {
		return a, ErrNotFound
	}
	return a, err
}

// CreateTx inserts a new assignment within the provided transaction
// and populates the generated ID.  The unique (guest_id, direction)
// index turns a concurrent double-assign into ErrVersionConflict so
// the caller can re-read and retry.  Capacity must be verified by the
// caller beforehand under the schedule lock.
func (r *AssignmentRepo) CreateTx(ctx context.Context, tx *sql.Tx, a *model.Assignment) error {
	const q = `INSERT INTO assignments (guest_id, schedule_id, direction) VALUES (?, ?, ?)`
	result, err := tx.ExecContext(ctx, q, a.GuestID, a.ScheduleID, a.Direction)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrVersionConflict
		}
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}

// MoveTx points an existing assignment at a different schedule within
// the provided transaction.  The caller must hold the row lock from
// GetByGuestAndDirectionTx and have verified target capacity.
func (r *AssignmentRepo) MoveTx(ctx context.Context, tx *sql.Tx, assignmentID, toScheduleID uint64) error {
	_, err := tx.ExecContext(ctx, `UPDATE assignments SET schedule_id = ? WHERE id = ?`, toScheduleID, assignmentID)
	return err
}

// AssignedGuest pairs an assignment with the guest's flight details
// for that direction.  It is the shape the flight-status consumer
// works from when a delay or cancellation needs the affected riders.
type AssignedGuest struct {
	GuestID      uint64
	ScheduleID   uint64
	Email        string
	FirstName    string
	LastName     string
	FlightNumber string
	FlightDate   string
	FlightTime   string
}

// ListAssignedByDirection returns every assigned guest for one
// direction whose record carries a flight number, joined with the
// flight fields that matter for that direction.  Soft-deleted guests
// are excluded.  When nobody qualifies, an empty slice is returned.
func (r *AssignmentRepo) ListAssignedByDirection(ctx context.Context, direction string) ([]AssignedGuest, error) {
	var q string
	switch direction {
	case model.DirectionArrival:
		q = `SELECT a.guest_id, a.schedule_id, g.email, g.first_name, g.last_name,
		            g.arrival_flight_number, g.arrival_date, g.arrival_time
		     FROM assignments a
		     JOIN guests g ON g.id = a.guest_id
		     WHERE a.direction = ? AND g.deleted_at IS NULL AND g.arrival_flight_number <> ''`
	case model.DirectionDeparture:
		q = `SELECT a.guest_id, a.schedule_id, g.email, g.first_name, g.last_name,
		            g.departure_flight_number, g.departure_date, g.departure_time
		     FROM assignments a
		     JOIN guests g ON g.id = a.guest_id
		     WHERE a.direction = ? AND g.deleted_at IS NULL AND g.departure_flight_number <> ''`
	default:
		return nil, fmt.Errorf("unknown direction %q", direction)
	}
	rows, err := r.db.QueryContext(ctx, q, direction)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]AssignedGuest, 0)
	for rows.Next() {
		var ag AssignedGuest
		if err := rows.Scan(
			&ag.GuestID, &ag.ScheduleID, &ag.Email, &ag.FirstName, &ag.LastName,
			&ag.FlightNumber, &ag.FlightDate, &ag.FlightTime,
		); err != nil {
			return nil, err
		}
		out = append(out, ag)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
