package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/summitops/guest-transport/internal/model"
)

// GuestRepo provides CRUD operations for the guests table.  Guests are
// the authoritative registration records; writes happen either when an
// import diff is applied or through direct edits, always inside a
// transaction owned by the caller.  Every write is guarded by the
// row's version column so that concurrent changes surface as
// ErrVersionConflict instead of silently overwriting each other.
type GuestRepo struct {
	db *sql.DB
}

// NewGuestRepo returns a new GuestRepo bound to the given database.
func NewGuestRepo(db *sql.DB) *GuestRepo { return &GuestRepo{db: db} }

// DB exposes the underlying handle so handlers can begin the
// transactions that span guest, assignment and audit writes.
func (r *GuestRepo) DB() *sql.DB {
	return r.db
}

// guestCols is the column list shared by every SELECT in this file so
// scanGuest can stay in sync with a single definition.
const guestCols = `id, email, first_name, last_name, organization,
	arrival_date, arrival_time, arrival_flight_number,
	departure_date, departure_time, departure_flight_number,
	hotel, check_in_date, check_out_date,
	needs_arrival_transfer, needs_departure_transfer, extend_stay, is_vip,
	registration_status, notes, version, deleted_at, created_at, updated_at`

// guestColumns maps canonical import fields to guest table columns.
// Boolean columns store TINYINT(1) and accept only the canonical
// "true"/"false" strings the transformers produce.
var guestColumns = map[model.CanonicalField]struct {
	name    string
	boolean bool
}{
	model.FieldEmail:                  {"email", false},
	model.FieldFirstName:              {"first_name", false},
	model.FieldLastName:               {"last_name", false},
	model.FieldOrganization:           {"organization", false},
	model.FieldArrivalDate:            {"arrival_date", false},
	model.FieldArrivalTime:            {"arrival_time", false},
	model.FieldArrivalFlightNumber:    {"arrival_flight_number", false},
	model.FieldDepartureDate:          {"departure_date", false},
	model.FieldDepartureTime:          {"departure_time", false},
	model.FieldDepartureFlightNumber:  {"departure_flight_number", false},
	model.FieldHotel:                  {"hotel", false},
	model.FieldCheckInDate:            {"check_in_date", false},
	model.FieldCheckOutDate:           {"check_out_date", false},
	model.FieldNeedsArrivalTransfer:   {"needs_arrival_transfer", true},
	model.FieldNeedsDepartureTransfer: {"needs_departure_transfer", true},
	model.FieldExtendStay:             {"extend_stay", true},
	model.FieldIsVIP:                  {"is_vip", true},
	model.FieldRegistrationStatus:     {"registration_status", false},
	model.FieldNotes:                  {"notes", false},
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanGuest reads one guests row in guestCols order.
func scanGuest(sc rowScanner) (model.Guest, error) {
	var g model.Guest
	var deletedAt sql.NullTime
	err := sc.Scan(
		&g.ID, &g.Email, &g.FirstName, &g.LastName, &g.Organization,
		&g.ArrivalDate, &g.ArrivalTime, &g.ArrivalFlightNumber,
		&g.DepartureDate, &g.DepartureTime, &g.DepartureFlightNumber,
		&g.Hotel, &g.CheckInDate, &g.CheckOutDate,
		&g.NeedsArrivalTransfer, &g.NeedsDepartureTransfer, &g.ExtendStay, &g.IsVIP,
		&g.RegistrationStatus, &g.Notes, &g.Version, &deletedAt, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return g, err
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		g.DeletedAt = &t
	}
	return g, nil
}

// List returns every active (non-deleted) guest ordered by last name,
// first name and ID.  The ordering keeps the output deterministic for
// diffing and display.  When no guests exist, an empty slice is
// returned.
func (r *GuestRepo) List(ctx context.Context) ([]model.Guest, error) {
	const q = `SELECT ` + guestCols + ` FROM guests
	           WHERE deleted_at IS NULL
	           ORDER BY last_name, first_name, id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	guests := make([]model.Guest, 0)
	for rows.Next() {
		g, err := scanGuest(rows)
		if err != nil {
			return nil, err
		}
		guests = append(guests, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return guests, nil
}

// GetByID fetches one active guest by ID.  Soft-deleted guests are
// treated as absent; ErrNotFound is returned for both cases.
func (r *GuestRepo) GetByID(ctx context.Context, id uint64) (model.Guest, error) {
	const q = `SELECT ` + guestCols + ` FROM guests WHERE id = ? AND deleted_at IS NULL LIMIT 1`
	g, err := scanGuest(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return g, ErrNotFound
	}
	return g, err
}

// GetByEmail fetches one active guest by email address.  The email
// column carries a case-insensitive collation, so lookups match
// regardless of case while the stored value keeps the case the guest
// registered with.
func (r *GuestRepo) GetByEmail(ctx context.Context, email string) (model.Guest, error) {
	const q = `SELECT ` + guestCols + ` FROM guests WHERE email = ? AND deleted_at IS NULL LIMIT 1`
	g, err := scanGuest(r.db.QueryRowContext(ctx, q, strings.TrimSpace(email)))
	if errors.Is(err, sql.ErrNoRows) {
		return g, ErrNotFound
	}
	return g, err
}

// CreateTx inserts a new guest at version 1 within the scope of an
// existing transaction and populates the generated ID, version and
// timestamps on the provided struct.  The caller must commit or
// rollback the transaction.
//
// When the email already belongs to a soft-deleted guest, that row is
// revived in place instead: its fields are overwritten with the new
// values, deleted_at is cleared and the version is bumped, so history
// written against the old ID stays attached to the same person.  An
// email held by an active guest returns ErrDuplicateEmail.
func (r *GuestRepo) CreateTx(ctx context.Context, tx *sql.Tx, g *model.Guest) error {
	const q = `INSERT INTO guests (email, first_name, last_name, organization,
	            arrival_date, arrival_time, arrival_flight_number,
	            departure_date, departure_time, departure_flight_number,
	            hotel, check_in_date, check_out_date,
	            needs_arrival_transfer, needs_departure_transfer, extend_stay, is_vip,
	            registration_status, notes, version)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)`
	result, err := tx.ExecContext(ctx, q,
		g.Email, g.FirstName, g.LastName, g.Organization,
		g.ArrivalDate, g.ArrivalTime, g.ArrivalFlightNumber,
		g.DepartureDate, g.DepartureTime, g.DepartureFlightNumber,
		g.Hotel, g.CheckInDate, g.CheckOutDate,
		g.NeedsArrivalTransfer, g.NeedsDepartureTransfer, g.ExtendStay, g.IsVIP,
		g.RegistrationStatus, g.Notes,
	)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return r.reviveTx(ctx, tx, g)
		}
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	g.ID = uint64(id)
	return r.refreshTx(ctx, tx, g)
}

// reviveTx handles the duplicate-email path of CreateTx: if the
// conflicting row is soft-deleted it is brought back with the new
// field values, otherwise ErrDuplicateEmail is returned.
func (r *GuestRepo) reviveTx(ctx context.Context, tx *sql.Tx, g *model.Guest) error {
	// Lock the existing row while deciding whether to revive it.
	const sel = `SELECT id, deleted_at FROM guests WHERE email = ? LIMIT 1 FOR UPDATE`
	var id uint64
	var deletedAt sql.NullTime
	err := tx.QueryRowContext(ctx, sel, g.Email).Scan(&id, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		// The conflicting row vanished between the insert and the probe.
		return ErrDuplicateEmail
	}
	if err != nil {
		return err
	}
	if !deletedAt.Valid {
		return ErrDuplicateEmail
	}
	const upd = `UPDATE guests SET email = ?, first_name = ?, last_name = ?, organization = ?,
	              arrival_date = ?, arrival_time = ?, arrival_flight_number = ?,
	              departure_date = ?, departure_time = ?, departure_flight_number = ?,
	              hotel = ?, check_in_date = ?, check_out_date = ?,
	              needs_arrival_transfer = ?, needs_departure_transfer = ?, extend_stay = ?, is_vip = ?,
	              registration_status = ?, notes = ?,
	              version = version + 1, deleted_at = NULL
	             WHERE id = ?`
	_, err = tx.ExecContext(ctx, upd,
		g.Email, g.FirstName, g.LastName, g.Organization,
		g.ArrivalDate, g.ArrivalTime, g.ArrivalFlightNumber,
		g.DepartureDate, g.DepartureTime, g.DepartureFlightNumber,
		g.Hotel, g.CheckInDate, g.CheckOutDate,
		g.NeedsArrivalTransfer, g.NeedsDepartureTransfer, g.ExtendStay, g.IsVIP,
		g.RegistrationStatus, g.Notes,
		id,
	)
	if err != nil {
		return err
	}
	g.ID = id
	return r.refreshTx(ctx, tx, g)
}

// refreshTx re-reads the guest row inside the transaction to populate
// version, timestamps and defaults after a write.
func (r *GuestRepo) refreshTx(ctx context.Context, tx *sql.Tx, g *model.Guest) error {
	const q = `SELECT ` + guestCols + ` FROM guests WHERE id = ?`
	fresh, err := scanGuest(tx.QueryRowContext(ctx, q, g.ID))
	if err != nil {
		return err
	}
	*g = fresh
	return nil
}

// UpdateFieldsTx applies field-level changes to one active guest
// within the provided transaction, guarded by the expected version.
// The version predicate makes the update a compare-and-swap: when the
// row has moved on since the caller read it, no rows match and
// ErrVersionConflict is returned so the caller can re-read and retry.
// ErrNotFound is returned when the guest does not exist or is
// soft-deleted, and ErrDuplicateEmail when an email change collides
// with another guest.  Passing no changes has no effect and returns
// nil.
func (r *GuestRepo) UpdateFieldsTx(ctx context.Context, tx *sql.Tx, id uint64, expectedVersion uint32, changes []model.FieldChange) error {
	if len(changes) == 0 {
		return nil
	}
	query := `UPDATE guests SET `
	args := make([]interface{}, 0, len(changes)+2)
	for i, ch := range changes {
		col, ok := guestColumns[ch.Field]
		if !ok {
			return fmt.Errorf("update guest %d: unknown field %q", id, ch.Field)
		}
		if i > 0 {
			query += ", "
		}
		query += col.name + " = ?"
		if col.boolean {
			args = append(args, ch.NewValue == "true")
		} else {
			args = append(args, ch.NewValue)
		}
	}
	query += ", version = version + 1 WHERE id = ? AND version = ? AND deleted_at IS NULL"
	args = append(args, id, expectedVersion)
	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrDuplicateEmail
		}
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return r.conflictReasonTx(ctx, tx, id)
	}
	return nil
}

// SoftDeleteTx marks one active guest as deleted within the provided
// transaction, guarded by the expected version.  The row is kept so a
// later import of the same email can be reviewed and revived instead
// of silently recreated.  Returns ErrVersionConflict on a stale
// version and ErrNotFound when the guest is absent or already
// deleted.
func (r *GuestRepo) SoftDeleteTx(ctx context.Context, tx *sql.Tx, id uint64, expectedVersion uint32) error {
	const q = `UPDATE guests SET deleted_at = UTC_TIMESTAMP(), version = version + 1
	           WHERE id = ? AND version = ? AND deleted_at IS NULL`
	result, err := tx.ExecContext(ctx, q, id, expectedVersion)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return r.conflictReasonTx(ctx, tx, id)
	}
	return nil
}

// conflictReasonTx distinguishes why a version-guarded write matched
// no rows: the guest is gone (ErrNotFound) or somebody else changed
// it first (ErrVersionConflict).
func (r *GuestRepo) conflictReasonTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	var v uint32
	err := tx.QueryRowContext(ctx, `SELECT version FROM guests WHERE id = ? AND deleted_at IS NULL`, id).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return ErrVersionConflict
}
