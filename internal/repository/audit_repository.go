package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/summitops/guest-transport/internal/model"
)

// AuditRepo provides append and read access to the audit_log table.
// Every guest mutation writes one entry inside the same transaction
// as the mutation itself, so the log can never show a change that was
// rolled back.  Field-level changes are stored as a JSON document in
// the changes column.
type AuditRepo struct {
	db *sql.DB
}

// NewAuditRepo returns a new AuditRepo bound to the given database.
func NewAuditRepo(db *sql.DB) *AuditRepo { return &AuditRepo{db: db} }

// InsertTx appends one audit entry within the provided transaction
// and populates the generated ID.  An empty change list is stored as
// an empty JSON array rather than NULL so readers never need a null
// check.
func (r *AuditRepo) InsertTx(ctx context.Context, tx *sql.Tx, e *model.AuditEntry) error {
	changes := e.Changes
	if changes == nil {
		changes = []model.FieldChange{}
	}
	payload, err := json.Marshal(changes)
	if err != nil {
		return err
	}
	const q = `INSERT INTO audit_log (guest_id, op, change_source, session_id, actor, changes)
	           VALUES (?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q, e.GuestID, e.Op, e.ChangeSource, e.SessionID, e.Actor, payload)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return nil
}

// ListByGuest returns the most recent audit entries for one guest,
// newest first, up to limit.  When the guest has no history, an empty
// slice is returned.
func (r *AuditRepo) ListByGuest(ctx context.Context, guestID uint64, limit int) ([]model.AuditEntry, error) {
	const q = `SELECT id, guest_id, op, change_source, session_id, actor, changes, created_at
	           FROM audit_log WHERE guest_id = ? ORDER BY id DESC LIMIT ?`
	return r.list(ctx, q, guestID, limit)
}

// ListBySession returns every audit entry written by one import
// apply, in write order, so a whole batch can be reconstructed from
// its session ID.
func (r *AuditRepo) ListBySession(ctx context.Context, sessionID string) ([]model.AuditEntry, error) {
	const q = `SELECT id, guest_id, op, change_source, session_id, actor, changes, created_at
	           FROM audit_log WHERE session_id = ? ORDER BY id`
	return r.list(ctx, q, sessionID)
}

func (r *AuditRepo) list(ctx context.Context, q string, args ...interface{}) ([]model.AuditEntry, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := make([]model.AuditEntry, 0)
	for rows.Next() {
		var e model.AuditEntry
		var payload []byte
		if err := rows.Scan(&e.ID, &e.GuestID, &e.Op, &e.ChangeSource, &e.SessionID, &e.Actor, &payload, &e.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(payload, &e.Changes); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
