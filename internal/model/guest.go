package model

import "time"

// Guest is the authoritative registration record for one attendee.
// Guests are created and updated either by applying a reviewed
// import diff or by direct edits; the diff computation itself never
// touches them.  Identity is the email address, unique
// case-insensitively.  Rows are soft-deleted so that a later import
// of the same person can be reviewed instead of silently recreated.
//
// Fields:
//  ID                     – primary key identifier.
//  Email                  – unique identity key (case-insensitive).
//  FirstName              – given name.
//  LastName               – family name.
//  Organization           – company or delegation, free text.
//  ArrivalDate            – ISO date (YYYY-MM-DD) of arrival, if known.
//  ArrivalTime            – wall-clock time (HH:MM) of arrival.
//  ArrivalFlightNumber    – marketing flight number for the arrival leg.
//  DepartureDate          – ISO date of departure.
//  DepartureTime          – wall-clock time of departure.
//  DepartureFlightNumber  – marketing flight number for the departure leg.
//  Hotel                  – accommodation name.
//  CheckInDate            – hotel check-in date.
//  CheckOutDate           – hotel check-out date.
//  NeedsArrivalTransfer   – guest asked for a ride from the airport.
//  NeedsDepartureTransfer – guest asked for a ride to the airport.
//  ExtendStay             – guest extends beyond the event dates.
//  IsVIP                  – flagged for VIP handling.
//  RegistrationStatus     – registration workflow state, free text.
//  Notes                  – operator notes.
//  Version                – optimistic concurrency token; starts at 1
//                           and increments on every committed change.
//  DeletedAt              – soft-delete timestamp (nullable).
//  CreatedAt              – timestamp when the record was created.
//  UpdatedAt              – timestamp when the record was last updated.
type Guest struct {
	ID                     uint64     // guests.id
	Email                  string     // guests.email
	FirstName              string     // guests.first_name
	LastName               string     // guests.last_name
	Organization           string     // guests.organization
	ArrivalDate            string     // guests.arrival_date
	ArrivalTime            string     // guests.arrival_time
	ArrivalFlightNumber    string     // guests.arrival_flight_number
	DepartureDate          string     // guests.departure_date
	DepartureTime          string     // guests.departure_time
	DepartureFlightNumber  string     // guests.departure_flight_number
	Hotel                  string     // guests.hotel
	CheckInDate            string     // guests.check_in_date
	CheckOutDate           string     // guests.check_out_date
	NeedsArrivalTransfer   bool       // guests.needs_arrival_transfer
	NeedsDepartureTransfer bool       // guests.needs_departure_transfer
	ExtendStay             bool       // guests.extend_stay
	IsVIP                  bool       // guests.is_vip
	RegistrationStatus     string     // guests.registration_status
	Notes                  string     // guests.notes
	Version                uint32     // guests.version
	DeletedAt              *time.Time // guests.deleted_at (nullable)
	CreatedAt              time.Time  // guests.created_at
	UpdatedAt              time.Time  // guests.updated_at
}

// FullName returns "First Last" for display and duplicate-name
// heuristics.
func (g *Guest) FullName() string {
	if g.FirstName == "" {
		return g.LastName
	}
	if g.LastName == "" {
		return g.FirstName
	}
	return g.FirstName + " " + g.LastName
}

// Field returns the canonical string form of one field, the same
// representation the import pipeline produces.  Booleans render as
// "true"/"false" so that incoming rows and stored guests compare
// with plain string equality.
func (g *Guest) Field(f CanonicalField) string {
	switch f {
	case FieldEmail:
		return g.Email
	case FieldFirstName:
		return g.FirstName
	case FieldLastName:
		return g.LastName
	case FieldOrganization:
		return g.Organization
	case FieldArrivalDate:
		return g.ArrivalDate
	case FieldArrivalTime:
		return g.ArrivalTime
	case FieldArrivalFlightNumber:
		return g.ArrivalFlightNumber
	case FieldDepartureDate:
		return g.DepartureDate
	case FieldDepartureTime:
		return g.DepartureTime
	case FieldDepartureFlightNumber:
		return g.DepartureFlightNumber
	case FieldHotel:
		return g.Hotel
	case FieldCheckInDate:
		return g.CheckInDate
	case FieldCheckOutDate:
		return g.CheckOutDate
	case FieldNeedsArrivalTransfer:
		return boolString(g.NeedsArrivalTransfer)
	case FieldNeedsDepartureTransfer:
		return boolString(g.NeedsDepartureTransfer)
	case FieldExtendStay:
		return boolString(g.ExtendStay)
	case FieldIsVIP:
		return boolString(g.IsVIP)
	case FieldRegistrationStatus:
		return g.RegistrationStatus
	case FieldNotes:
		return g.Notes
	}
	return ""
}

// SetField writes the canonical string form of one field back onto
// the struct.  Unknown fields are ignored; boolean fields accept
// only the canonical "true"/"false" forms produced by the
// transformers.
func (g *Guest) SetField(f CanonicalField, v string) {
	switch f {
	case FieldEmail:
		g.Email = v
	case FieldFirstName:
		g.FirstName = v
	case FieldLastName:
		g.LastName = v
	case FieldOrganization:
		g.Organization = v
	case FieldArrivalDate:
		g.ArrivalDate = v
	case FieldArrivalTime:
		g.ArrivalTime = v
	case FieldArrivalFlightNumber:
		g.ArrivalFlightNumber = v
	case FieldDepartureDate:
		g.DepartureDate = v
	case FieldDepartureTime:
		g.DepartureTime = v
	case FieldDepartureFlightNumber:
		g.DepartureFlightNumber = v
	case FieldHotel:
		g.Hotel = v
	case FieldCheckInDate:
		g.CheckInDate = v
	case FieldCheckOutDate:
		g.CheckOutDate = v
	case FieldNeedsArrivalTransfer:
		g.NeedsArrivalTransfer = v == "true"
	case FieldNeedsDepartureTransfer:
		g.NeedsDepartureTransfer = v == "true"
	case FieldExtendStay:
		g.ExtendStay = v == "true"
	case FieldIsVIP:
		g.IsVIP = v == "true"
	case FieldRegistrationStatus:
		g.RegistrationStatus = v
	case FieldNotes:
		g.Notes = v
	}
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
