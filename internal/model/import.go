package model

import "time"

// CanonicalField names one attribute of the internal guest schema.
// Import columns are mapped onto these fields; everything the
// mapper cannot place survives in the row's unknown bucket instead
// of being dropped.
type CanonicalField string

const (
	FieldEmail                  CanonicalField = "email"
	FieldFirstName              CanonicalField = "firstName"
	FieldLastName               CanonicalField = "lastName"
	FieldOrganization           CanonicalField = "organization"
	FieldArrivalDate            CanonicalField = "arrivalDate"
	FieldArrivalTime            CanonicalField = "arrivalTime"
	FieldArrivalFlightNumber    CanonicalField = "arrivalFlightNumber"
	FieldDepartureDate          CanonicalField = "departureDate"
	FieldDepartureTime          CanonicalField = "departureTime"
	FieldDepartureFlightNumber  CanonicalField = "departureFlightNumber"
	FieldHotel                  CanonicalField = "hotel"
	FieldCheckInDate            CanonicalField = "checkInDate"
	FieldCheckOutDate           CanonicalField = "checkOutDate"
	FieldNeedsArrivalTransfer   CanonicalField = "needsArrivalTransfer"
	FieldNeedsDepartureTransfer CanonicalField = "needsDepartureTransfer"
	FieldExtendStay             CanonicalField = "extendStay"
	FieldIsVIP                  CanonicalField = "isVip"
	FieldRegistrationStatus     CanonicalField = "registrationStatus"
	FieldNotes                  CanonicalField = "notes"
)

// AllCanonicalFields lists every field in declaration order.  The
// order doubles as the tie-break for auto-mapping, so it is part of
// the mapper's contract and must stay stable.
var AllCanonicalFields = []CanonicalField{
	FieldEmail,
	FieldFirstName,
	FieldLastName,
	FieldOrganization,
	FieldArrivalDate,
	FieldArrivalTime,
	FieldArrivalFlightNumber,
	FieldDepartureDate,
	FieldDepartureTime,
	FieldDepartureFlightNumber,
	FieldHotel,
	FieldCheckInDate,
	FieldCheckOutDate,
	FieldNeedsArrivalTransfer,
	FieldNeedsDepartureTransfer,
	FieldExtendStay,
	FieldIsVIP,
	FieldRegistrationStatus,
	FieldNotes,
}

// RequiredCanonicalFields must all be mapped before a diff can be
// computed.
var RequiredCanonicalFields = []CanonicalField{
	FieldEmail,
	FieldFirstName,
	FieldLastName,
}

// CellKind classifies the probable type of one spreadsheet cell.
type CellKind string

const (
	KindEmpty   CellKind = "empty"
	KindText    CellKind = "text"
	KindNumber  CellKind = "number"
	KindDecimal CellKind = "decimal"
	KindDate    CellKind = "date"
	KindTime    CellKind = "time"
	KindEmail   CellKind = "email"
	KindBoolean CellKind = "boolean"
	KindNull    CellKind = "null"
)

// Cell is one spreadsheet cell: the inferred kind plus the raw text
// exactly as it appeared in the file.  Raw is always preserved so a
// reviewer can see what the sender actually typed.
type Cell struct {
	Kind CellKind `json:"kind"`
	Raw  string   `json:"raw"`
}

// RawRow is one data row as parsed, keyed by source column header.
// Row is the 1-based position in the file including the header row,
// so the first data row is row 2 — the number a reviewer sees when
// they open the file themselves.
type RawRow struct {
	Row   int             `json:"row"`
	Cells map[string]Cell `json:"cells"`
}

// ColumnMapping assigns source columns to canonical fields.  At
// most one column may feed a given field; SetColumn upholds that by
// evicting the previous holder.
type ColumnMapping map[string]CanonicalField

// SetColumn maps column to field, clearing any other column that
// currently holds the field.  An empty field unmaps the column.
func (m ColumnMapping) SetColumn(column string, field CanonicalField) {
	if field == "" {
		delete(m, column)
		return
	}
	for col, f := range m {
		if f == field && col != column {
			delete(m, col)
		}
	}
	m[column] = field
}

// CanonicalRow is one import row after mapping and transformation.
// Fields holds canonical string forms ("2026-09-14", "14:30",
// "true"); Unknown carries unmapped columns verbatim.
type CanonicalRow struct {
	Row     int                       `json:"row"`
	Fields  map[CanonicalField]string `json:"fields"`
	Unknown map[string]string         `json:"unknown,omitempty"`
}

// Severity grades cell issues and analyzer alerts.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// CellIssue reports one suspicious cell, or a column-wide
// observation when Row is zero.
type CellIssue struct {
	Row      int      `json:"row,omitempty"`
	Column   string   `json:"column"`
	Severity Severity `json:"severity"`
	Detected CellKind `json:"detected,omitempty"`
	Expected CellKind `json:"expected,omitempty"`
	Message  string   `json:"message"`
}

// RowError marks one import row as unusable.  Rows with errors are
// excluded from matching and can never reach the store.
type RowError struct {
	Row     int            `json:"row"`
	Field   CanonicalField `json:"field,omitempty"`
	Message string         `json:"message"`
}

// GuestRef identifies an existing guest inside a diff without
// duplicating the whole record.
type GuestRef struct {
	GuestID uint64 `json:"guest_id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Version uint32 `json:"version"`
}

// ModifiedGuest pairs a matched guest with the field-level changes
// an import row would make.  Version is the guest's version at the
// moment the diff was computed; apply uses it as the optimistic
// concurrency predicate.
type ModifiedGuest struct {
	GuestID uint64        `json:"guest_id"`
	Email   string        `json:"email"`
	Name    string        `json:"name"`
	Row     int           `json:"row"`
	Version uint32        `json:"version"`
	Changes []FieldChange `json:"changes"`
}

// ImportDiff is the reviewable merge plan between an import file
// and the current guest list.  The five buckets partition the
// input: every valid row lands in exactly one of Added or Modified
// (or contributes to Unchanged), every invalid row in Errors, and
// every existing non-deleted guest in exactly one of Modified,
// Removed or Unchanged.  Computing a diff mutates nothing.
type ImportDiff struct {
	Added     []CanonicalRow  `json:"added"`
	Modified  []ModifiedGuest `json:"modified"`
	Removed   []GuestRef      `json:"removed"`
	Unchanged []GuestRef      `json:"unchanged"`
	Errors    []RowError      `json:"errors"`
}

// Alert is one advisory finding from the import analyzer.  Alerts
// inform the reviewer; they never block an apply.
type Alert struct {
	Type        Severity `json:"type"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Items       []string `json:"items,omitempty"`
	Overflow    int      `json:"overflow,omitempty"`
}

// DateOrder selects how ambiguous numeric dates are read.
type DateOrder string

const (
	DateOrderDayFirst   DateOrder = "day_first"
	DateOrderMonthFirst DateOrder = "month_first"
)

// Import session lifecycle states.
const (
	SessionStatusMapping   = "mapping"
	SessionStatusDiffed    = "diffed"
	SessionStatusApplied   = "applied"
	SessionStatusCancelled = "cancelled"
)

// ImportSession is the whole in-flight import: parsed rows, the
// evolving column mapping and, once computed, the diff under
// review.  Sessions live in redis with a TTL and leave no trace
// when cancelled; the session ID doubles as the audit correlation
// id once the diff is applied.
type ImportSession struct {
	ID        string        `json:"id"`
	CreatedBy string        `json:"created_by"`
	CreatedAt time.Time     `json:"created_at"`
	Status    string        `json:"status"`
	FileName  string        `json:"file_name"`
	Columns   []string      `json:"columns"`
	Rows      []RawRow      `json:"rows"`
	Mapping   ColumnMapping `json:"mapping"`
	DateOrder DateOrder     `json:"date_order"`
	Issues    []CellIssue   `json:"issues,omitempty"`
	Diff      *ImportDiff   `json:"diff,omitempty"`
	Alerts    []Alert       `json:"alerts,omitempty"`
	DiffAt    *time.Time    `json:"diff_at,omitempty"`
}
