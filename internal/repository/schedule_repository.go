package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/summitops/guest-transport/internal/model"
)

// ScheduleRepo provides read access to transport schedules and their
// vehicles.  Occupancy is always counted live from the assignments
// table rather than cached on the schedule, so listings and capacity
// checks can never drift from the actual seat usage.
type ScheduleRepo struct {
	db *sql.DB
}

// NewScheduleRepo returns a new ScheduleRepo bound to the given database.
func NewScheduleRepo(db *sql.DB) *ScheduleRepo { return &ScheduleRepo{db: db} }

// ListWithOccupancy returns all schedules for one direction and
// service date, each joined with its vehicle and the current count of
// assigned guests.  Dates and times are formatted back into the
// canonical YYYY-MM-DD / HH:MM forms the rest of the system speaks.
// Schedules are ordered by pickup time, then ID, for deterministic
// output.  When none exist, an empty slice is returned.
func (r *ScheduleRepo) ListWithOccupancy(ctx context.Context, direction, serviceDate string) ([]model.ScheduleOccupancy, error) {
	const q = `SELECT s.id, s.vehicle_id, s.direction,
	                  DATE_FORMAT(s.service_date, '%Y-%m-%d'),
	                  TIME_FORMAT(s.pickup_time, '%H:%i'),
	                  s.status, s.created_at, s.updated_at,
	                  v.name, v.type, v.capacity,
	                  COUNT(a.id)
	           FROM transport_schedules s
	           JOIN vehicles v ON v.id = s.vehicle_id
	           LEFT JOIN assignments a ON a.schedule_id = s.id
	           WHERE s.direction = ? AND s.service_date = ?
	           GROUP BY s.id, s.vehicle_id, s.direction, s.service_date, s.pickup_time,
	                    s.status, s.created_at, s.updated_at, v.name, v.type, v.capacity
	           ORDER BY s.pickup_time, s.id`
	rows, err := r.db.QueryContext(ctx, q, direction, serviceDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.ScheduleOccupancy, 0)
	for rows.Next() {
		var so model.ScheduleOccupancy
		if err := rows.Scan(
			&so.Schedule.ID, &so.Schedule.VehicleID, &so.Schedule.Direction,
			&so.Schedule.ServiceDate, &so.Schedule.PickupTime,
			&so.Schedule.Status, &so.Schedule.CreatedAt, &so.Schedule.UpdatedAt,
			&so.VehicleName, &so.VehicleType, &so.Capacity,
			&so.Assigned,
		); err != nil {
			return nil, err
		}
		out = append(out, so)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetWithOccupancy returns one schedule with its vehicle and assigned
// count.  ErrNotFound is returned when the schedule does not exist.
func (r *ScheduleRepo) GetWithOccupancy(ctx context.Context, id uint64) (model.ScheduleOccupancy, error) {
	const q = `SELECT s.id, s.vehicle_id, s.direction,
	                  DATE_FORMAT(s.service_date, '%Y-%m-%d'),
	                  TIME_FORMAT(s.pickup_time, '%H:%i'),
	                  s.status, s.created_at, s.updated_at,
	                  v.name, v.type, v.capacity,
	                  (SELECT COUNT(*) FROM assignments a WHERE a.schedule_id = s.id)
	           FROM transport_schedules s
	           JOIN vehicles v ON v.id = s.vehicle_id
	           WHERE s.id = ?`
	var so model.ScheduleOccupancy
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&so.Schedule.ID, &so.Schedule.VehicleID, &so.Schedule.Direction,
		&so.Schedule.ServiceDate, &so.Schedule.PickupTime,
		&so.Schedule.Status, &so.Schedule.CreatedAt, &so.Schedule.UpdatedAt,
		&so.VehicleName, &so.VehicleType, &so.Capacity,
		&so.Assigned,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return so, ErrNotFound
	}
	return so, err
}

// LockForAssignTx locks one schedule row inside the provided
// transaction and returns its direction, status and vehicle capacity.
// The row lock serializes concurrent capacity checks against the same
// schedule; the lock is released when the caller commits or rolls
// back.  FOR UPDATE is kept on a single-table statement and the
// vehicle is read separately, since vehicles are static reference
// rows that need no lock.  ErrNotFound is returned when the schedule
// does not exist.
func (r *ScheduleRepo) LockForAssignTx(ctx context.Context, tx *sql.Tx, id uint64) (direction, status string, capacity int, err error) {
	var vehicleID uint64
	err = tx.QueryRowContext(ctx,
		`SELECT vehicle_id, direction, status FROM transport_schedules WHERE id = ? FOR UPDATE`,
		id).Scan(&vehicleID, &direction, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", 0, ErrNotFound
	}
	if err != nil {
		return "", "", 0, err
	}
	err = tx.QueryRowContext(ctx, `SELECT capacity FROM vehicles WHERE id = ?`, vehicleID).Scan(&capacity)
	if err != nil {
		return "", "", 0, err
	}
	return direction, status, capacity, nil
}

// CountAssignedTx returns the number of guests currently assigned to
// a schedule, read inside the provided transaction.  Callers that
// need a stable count must hold the schedule lock from
// LockForAssignTx first.
func (r *ScheduleRepo) CountAssignedTx(ctx context.Context, tx *sql.Tx, scheduleID uint64) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM assignments WHERE schedule_id = ?`, scheduleID).Scan(&n)
	return n, err
}
