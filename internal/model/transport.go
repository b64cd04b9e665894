package model

import "time"

// Transfer directions.
const (
	DirectionArrival   = "arrival"
	DirectionDeparture = "departure"
)

// Schedule states.
const (
	ScheduleStatusActive    = "active"
	ScheduleStatusCancelled = "cancelled"
)

// Vehicle is one bus, minivan or car available for transfers.
//
// Fields:
//  ID       – primary key identifier.
//  Name     – human-readable label ("Bus 2", "Van A").
//  Type     – vehicle class (bus, minivan, car), free text.
//  Capacity – maximum number of guests it can carry.
type Vehicle struct {
	ID       uint64 // vehicles.id
	Name     string // vehicles.name
	Type     string // vehicles.type
	Capacity int    // vehicles.capacity
}

// TransportSchedule is one planned trip of a vehicle on one service
// date.  Guests are attached to schedules through assignments;
// occupancy is always counted from assignments, never cached here.
//
// Fields:
//  ID          – primary key identifier.
//  VehicleID   – vehicle running the trip.
//  Direction   – arrival (airport to venue) or departure.
//  ServiceDate – ISO date the trip runs on.
//  PickupTime  – wall-clock pickup time (HH:MM).
//  Status      – active or cancelled.
//  CreatedAt   – timestamp when the record was created.
//  UpdatedAt   – timestamp when the record was last updated.
type TransportSchedule struct {
	ID          uint64    // transport_schedules.id
	VehicleID   uint64    // transport_schedules.vehicle_id
	Direction   string    // transport_schedules.direction
	ServiceDate string    // transport_schedules.service_date
	PickupTime  string    // transport_schedules.pickup_time
	Status      string    // transport_schedules.status
	CreatedAt   time.Time // transport_schedules.created_at
	UpdatedAt   time.Time // transport_schedules.updated_at
}

// ScheduleOccupancy is a schedule joined with its vehicle and the
// current number of assigned guests, the shape the listing and the
// reallocation search both consume.
type ScheduleOccupancy struct {
	Schedule    TransportSchedule
	VehicleName string
	VehicleType string
	Capacity    int
	Assigned    int
}

// Free returns the number of seats still available.
func (s *ScheduleOccupancy) Free() int {
	if f := s.Capacity - s.Assigned; f > 0 {
		return f
	}
	return 0
}

// Assignment seats one guest on one schedule.  A guest holds at
// most one assignment per direction, enforced by a unique index.
//
// Fields:
//  ID         – primary key identifier.
//  GuestID    – guest being transported.
//  ScheduleID – schedule the guest rides on.
//  Direction  – arrival or departure, denormalized for the
//               uniqueness constraint.
//  CreatedAt  – timestamp when the record was created.
//  UpdatedAt  – timestamp when the record was last updated.
type Assignment struct {
	ID         uint64    // assignments.id
	GuestID    uint64    // assignments.guest_id
	ScheduleID uint64    // assignments.schedule_id
	Direction  string    // assignments.direction
	CreatedAt  time.Time // assignments.created_at
	UpdatedAt  time.Time // assignments.updated_at
}

// TransportGroup is one pre-planned cluster of flights that share a
// vehicle at a fixed slot.  Groups are reference data loaded from
// the transport plan, never written by this service.
type TransportGroup struct {
	Name        string   `koanf:"name" json:"name"`
	Date        string   `koanf:"date" json:"date"`
	Direction   string   `koanf:"direction" json:"direction"`
	Flights     []string `koanf:"flights" json:"flights"`
	GatherTime  string   `koanf:"gather_time" json:"gather_time"`
	DepartTime  string   `koanf:"depart_time" json:"depart_time"`
	VehicleType string   `koanf:"vehicle_type" json:"vehicle_type"`
	PaxCount    int      `koanf:"pax_count" json:"pax_count"`
}

// TimeCorrection is a manually entered override of one flight's
// scheduled time on one date, used when ops learns of a change
// before the published schedules do.
type TimeCorrection struct {
	Flight string `koanf:"flight" json:"flight"`
	Date   string `koanf:"date" json:"date"`
	Time   string `koanf:"time" json:"time"`
	Note   string `koanf:"note" json:"note"`
}
