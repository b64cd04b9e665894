// Package queue defines message payloads exchanged over the message broker
// and the background consumer for flight status updates.
package queue

// Queue names.  Queues are durable and messages persistent, so events
// survive broker restarts.
const (
	FlightStatusQueue        = "flight.status"
	ImportAppliedQueue       = "import.applied"
	TransportReassignedQueue = "transport.reassigned"
	TransportSuggestionQueue = "transport.suggestion"
)

// Flight status values carried by FlightStatusEvent.
const (
	FlightStatusOnTime    = "on_time"
	FlightStatusDelayed   = "delayed"
	FlightStatusCancelled = "cancelled"
)

// FlightStatusEvent arrives on the flight.status queue from the
// upstream flight tracker.  The payload is treated as opaque input:
// every field is re-validated before any guest lookup happens.
// NewTime is the revised wall-clock time for delays; Note is free
// text shown to dispatchers.
type FlightStatusEvent struct {
	FlightNumber string `json:"flight_number"`
	FlightDate   string `json:"flight_date"`
	Status       string `json:"status"`
	NewTime      string `json:"new_time,omitempty"`
	Note         string `json:"note,omitempty"`
}

// ImportAppliedEvent is published after an import diff has been
// committed to the guest store.  It carries the batch totals so
// downstream consumers can log or notify without querying the
// database.
type ImportAppliedEvent struct {
	SessionID string `json:"session_id"`
	Actor     string `json:"actor"`
	Added     int    `json:"added"`
	Modified  int    `json:"modified"`
	Removed   int    `json:"removed"`
	AppliedAt string `json:"applied_at"`
}

// TransportReassignedEvent is published when a guest is moved between
// transport schedules.
type TransportReassignedEvent struct {
	GuestID        uint64 `json:"guest_id"`
	Direction      string `json:"direction"`
	FromScheduleID uint64 `json:"from_schedule_id"`
	ToScheduleID   uint64 `json:"to_schedule_id"`
	Actor          string `json:"actor"`
	ReassignedAt   string `json:"reassigned_at"`
}

// TransportSuggestionEvent is published by the flight-status consumer
// when a delayed or cancelled flight leaves an assigned guest on a
// schedule that no longer matches their arrival or departure.  It
// names the best-ranked alternative so a dispatcher can act on it.
type TransportSuggestionEvent struct {
	GuestID             uint64 `json:"guest_id"`
	GuestEmail          string `json:"guest_email"`
	Direction           string `json:"direction"`
	FlightNumber        string `json:"flight_number"`
	FlightDate          string `json:"flight_date"`
	FlightTime          string `json:"flight_time"`
	CurrentScheduleID   uint64 `json:"current_schedule_id"`
	SuggestedScheduleID uint64 `json:"suggested_schedule_id,omitempty"`
	SuggestedPickup     string `json:"suggested_pickup,omitempty"`
	Tier                string `json:"tier,omitempty"`
	Reason              string `json:"reason"`
}
