package model

import "time"

// Audit operations.
const (
	AuditOpCreate = "create"
	AuditOpUpdate = "update"
	AuditOpDelete = "delete"
)

// Change sources recorded on audit entries.
const (
	ChangeSourceImport   = "import"
	ChangeSourceManual   = "manual"
	ChangeSourceReassign = "reassign"
)

// Pseudo-fields used by reassignment audit entries.  They never
// appear in import mappings; values are schedule IDs as decimal
// strings, "" when the guest was unassigned.
const (
	FieldArrivalSchedule   CanonicalField = "arrivalSchedule"
	FieldDepartureSchedule CanonicalField = "departureSchedule"
)

// FieldChange is one field-level edit with full provenance: what
// the value was, what it became, and the semantic kind of the new
// value.  It appears both in diffs under review and in persisted
// audit entries.
type FieldChange struct {
	Field    CanonicalField `json:"field"`
	OldValue string         `json:"old_value"`
	NewValue string         `json:"new_value"`
	Kind     CellKind       `json:"kind,omitempty"`
}

// AuditEntry is one append-only record of a guest mutation.  All
// entries written by a single import apply share the import's
// session ID, so a whole batch can be reconstructed afterwards.
//
// Fields:
//  ID           – primary key identifier.
//  GuestID      – guest the change was applied to.
//  Op           – create, update or delete.
//  ChangeSource – import, manual or reassign.
//  SessionID    – import session correlation id, empty for manual edits.
//  Actor        – subject of the token that made the change.
//  Changes      – field-level changes, stored as JSON.
//  CreatedAt    – timestamp when the entry was written.
type AuditEntry struct {
	ID           uint64        // audit_log.id
	GuestID      uint64        // audit_log.guest_id
	Op           string        // audit_log.op
	ChangeSource string        // audit_log.change_source
	SessionID    string        // audit_log.session_id
	Actor        string        // audit_log.actor
	Changes      []FieldChange // audit_log.changes (JSON)
	CreatedAt    time.Time     // audit_log.created_at
}
