package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/summitops/guest-transport/internal/flight"
	"github.com/summitops/guest-transport/internal/importer"
	"github.com/summitops/guest-transport/internal/metrics"
	"github.com/summitops/guest-transport/internal/middleware"
	"github.com/summitops/guest-transport/internal/model"
	"github.com/summitops/guest-transport/internal/queue"
	"github.com/summitops/guest-transport/internal/repository"
	queue_publisher "github.com/summitops/guest-transport/internal/service"
)

// GuestHandler serves guest reads, version-checked direct edits,
// soft deletes and the transport side of a guest: reallocation
// candidates and reassignment.  Reassignment runs inside a single
// transaction so a guest is never double-assigned or left without a
// seat mid-move.
type GuestHandler struct {
	Guests      *repository.GuestRepo      // guest reads and version-checked writes
	Audit       *repository.AuditRepo      // audit entries for edits, deletes and reassignments
	Assignments *repository.AssignmentRepo // guest transport assignments
	Schedules   *repository.ScheduleRepo   // schedule occupancy and locking
	Matcher     *flight.Matcher            // codeshare and time-correction resolution
	Windows     flight.Windows             // reallocation scoring windows
}

// NewGuestHandler constructs a GuestHandler.  All dependencies must
// be non-nil.
func NewGuestHandler(guests *repository.GuestRepo, audit *repository.AuditRepo, assignments *repository.AssignmentRepo, schedules *repository.ScheduleRepo, matcher *flight.Matcher, windows flight.Windows) *GuestHandler {
	if guests == nil || audit == nil || assignments == nil || schedules == nil || matcher == nil {
		panic("nil dependency passed to NewGuestHandler")
	}
	return &GuestHandler{
		Guests:      guests,
		Audit:       audit,
		Assignments: assignments,
		Schedules:   schedules,
		Matcher:     matcher,
		Windows:     windows,
	}
}

// guestView is the API shape of a guest record.
type guestView struct {
	ID                     uint64 `json:"id"`
	Email                  string `json:"email"`
	FirstName              string `json:"first_name"`
	LastName               string `json:"last_name"`
	Organization           string `json:"organization"`
	ArrivalDate            string `json:"arrival_date"`
	ArrivalTime            string `json:"arrival_time"`
	ArrivalFlightNumber    string `json:"arrival_flight_number"`
	DepartureDate          string `json:"departure_date"`
	DepartureTime          string `json:"departure_time"`
	DepartureFlightNumber  string `json:"departure_flight_number"`
	Hotel                  string `json:"hotel"`
	CheckInDate            string `json:"check_in_date"`
	CheckOutDate           string `json:"check_out_date"`
	NeedsArrivalTransfer   bool   `json:"needs_arrival_transfer"`
	NeedsDepartureTransfer bool   `json:"needs_departure_transfer"`
	ExtendStay             bool   `json:"extend_stay"`
	IsVIP                  bool   `json:"is_vip"`
	RegistrationStatus     string `json:"registration_status"`
	Notes                  string `json:"notes"`
	Version                uint32 `json:"version"`
	CreatedAt              string `json:"created_at"`
	UpdatedAt              string `json:"updated_at"`
}

func toGuestView(g model.Guest) guestView {
	return guestView{
		ID:                     g.ID,
		Email:                  g.Email,
		FirstName:              g.FirstName,
		LastName:               g.LastName,
		Organization:           g.Organization,
		ArrivalDate:            g.ArrivalDate,
		ArrivalTime:            g.ArrivalTime,
		ArrivalFlightNumber:    g.ArrivalFlightNumber,
		DepartureDate:          g.DepartureDate,
		DepartureTime:          g.DepartureTime,
		DepartureFlightNumber:  g.DepartureFlightNumber,
		Hotel:                  g.Hotel,
		CheckInDate:            g.CheckInDate,
		CheckOutDate:           g.CheckOutDate,
		NeedsArrivalTransfer:   g.NeedsArrivalTransfer,
		NeedsDepartureTransfer: g.NeedsDepartureTransfer,
		ExtendStay:             g.ExtendStay,
		IsVIP:                  g.IsVIP,
		RegistrationStatus:     g.RegistrationStatus,
		Notes:                  g.Notes,
		Version:                g.Version,
		CreatedAt:              g.CreatedAt.Format(time.RFC3339),
		UpdatedAt:              g.UpdatedAt.Format(time.RFC3339),
	}
}

// List handles GET /v1/guests.  It returns every active guest.
func (h *GuestHandler) List(c echo.Context) error {
	guests, err := h.Guests.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load guests"})
	}
	items := make([]guestView, 0, len(guests))
	for _, g := range guests {
		items = append(items, toGuestView(g))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get handles GET /v1/guests/:id.
func (h *GuestHandler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid guest id"})
	}
	g, err := h.Guests.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "guest not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load guest"})
	}
	return c.JSON(http.StatusOK, toGuestView(g))
}

// GetByEmail handles GET /v1/guests/by-email?email=.  Lookup is
// case-insensitive, matching the import pipeline's identity rule.
func (h *GuestHandler) GetByEmail(c echo.Context) error {
	email := strings.TrimSpace(c.QueryParam("email"))
	if email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email query parameter is required"})
	}
	g, err := h.Guests.GetByEmail(c.Request().Context(), email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "guest not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load guest"})
	}
	return c.JSON(http.StatusOK, toGuestView(g))
}

// Update handles PATCH /v1/guests/:id.  The body carries canonical
// field names as they appear in mappings and diffs ("firstName",
// "arrivalDate", ...) plus the version the caller last saw.  Values
// run through the same transformers as imported cells, so "14:30",
// "2:30 PM" style input is normalized before comparison.  The update
// only commits if the stored version still matches; otherwise 409
// and the caller re-reads.  Changes are audited with source manual.
func (h *GuestHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid guest id"})
	}
	var body map[string]interface{}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	rawVersion, ok := body["version"]
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "version is required"})
	}
	versionNum, ok := rawVersion.(float64)
	if !ok || versionNum < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "version must be a positive integer"})
	}
	version := uint32(versionNum)
	delete(body, "version")
	if len(body) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no fields to update"})
	}

	ctx := c.Request().Context()
	g, err := h.Guests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "guest not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load guest"})
	}
	if g.Version != version {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":   "guest changed since last read",
			"version": g.Version,
		})
	}

	changes, errResp := editChanges(&g, body)
	if errResp != nil {
		return c.JSON(http.StatusUnprocessableEntity, errResp)
	}
	if len(changes) == 0 {
		return c.JSON(http.StatusOK, toGuestView(g))
	}

	tx, err := h.Guests.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := h.Guests.UpdateFieldsTx(ctx, tx, id, version, changes); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "guest changed since last read"})
		}
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "guest not found"})
		}
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "email already registered"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update guest"})
	}
	entry := &model.AuditEntry{
		GuestID:      id,
		Op:           model.AuditOpUpdate,
		ChangeSource: model.ChangeSourceManual,
		Actor:        middleware.Actor(c),
		Changes:      changes,
	}
	if err := h.Audit.InsertTx(ctx, tx, entry); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to write audit entry"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	updated, err := h.Guests.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to reload guest"})
	}
	return c.JSON(http.StatusOK, toGuestView(updated))
}

// Delete handles DELETE /v1/guests/:id?version=.  The guest is soft
// deleted so a later import of the same person revives the record
// instead of recreating it.  The version query parameter guards
// against deleting over a concurrent edit.
func (h *GuestHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid guest id"})
	}
	version, err := strconv.ParseUint(c.QueryParam("version"), 10, 32)
	if err != nil || version == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "version query parameter is required"})
	}
	ctx := c.Request().Context()
	tx, err := h.Guests.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := h.Guests.SoftDeleteTx(ctx, tx, id, uint32(version)); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "guest changed since last read"})
		}
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "guest not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete guest"})
	}
	entry := &model.AuditEntry{
		GuestID:      id,
		Op:           model.AuditOpDelete,
		ChangeSource: model.ChangeSourceManual,
		Actor:        middleware.Actor(c),
	}
	if err := h.Audit.InsertTx(ctx, tx, entry); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to write audit entry"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true
	return c.NoContent(http.StatusNoContent)
}

// auditView is the API shape of one audit entry.
type auditView struct {
	ID           uint64              `json:"id"`
	GuestID      uint64              `json:"guest_id"`
	Op           string              `json:"op"`
	ChangeSource string              `json:"change_source"`
	SessionID    string              `json:"session_id,omitempty"`
	Actor        string              `json:"actor"`
	Changes      []model.FieldChange `json:"changes"`
	CreatedAt    string              `json:"created_at"`
}

func toAuditView(e model.AuditEntry) auditView {
	return auditView{
		ID:           e.ID,
		GuestID:      e.GuestID,
		Op:           e.Op,
		ChangeSource: e.ChangeSource,
		SessionID:    e.SessionID,
		Actor:        e.Actor,
		Changes:      e.Changes,
		CreatedAt:    e.CreatedAt.Format(time.RFC3339),
	}
}

// AuditLog handles GET /v1/guests/:id/audit.  Newest entries first.
// The history of a soft-deleted guest stays reachable here, so no
// existence check is made; an unknown ID simply yields no items.
func (h *GuestHandler) AuditLog(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid guest id"})
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	entries, err := h.Audit.ListByGuest(c.Request().Context(), id, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load audit log"})
	}
	items := make([]auditView, 0, len(entries))
	for _, e := range entries {
		items = append(items, toAuditView(e))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Reallocation handles GET /v1/guests/:id/reallocation?direction=.
// It ranks the schedules the guest could ride instead, scored by
// minutes between the guest's corrected flight time and each pickup
// time.  Nothing is modified; crew follow up with Reassign once a
// candidate is chosen.
func (h *GuestHandler) Reallocation(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid guest id"})
	}
	direction := strings.ToLower(strings.TrimSpace(c.QueryParam("direction")))
	if direction != model.DirectionArrival && direction != model.DirectionDeparture {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "direction must be arrival or departure"})
	}
	ctx := c.Request().Context()
	g, err := h.Guests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "guest not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load guest"})
	}

	flightNo, flightDate, flightTime := guestLeg(&g, direction)
	if flightDate == "" || flightTime == "" {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"error": "guest has no " + direction + " flight date and time on record",
		})
	}
	effective, note := h.Matcher.EffectiveTime(flightNo, flightDate, flightTime)

	schedules, err := h.Schedules.ListWithOccupancy(ctx, direction, flightDate)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load schedules"})
	}
	ranked, err := flight.RankCandidates(effective, schedules, h.Windows)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	}
	candidates := make([]candidateView, 0, len(ranked))
	for _, r := range ranked {
		candidates = append(candidates, toCandidateView(r))
	}

	resp := echo.Map{
		"guest_id":           g.ID,
		"direction":          direction,
		"flight_number":      flightNo,
		"flight_date":        flightDate,
		"scheduled_time":     flightTime,
		"effective_time":     effective,
		"midnight_surcharge": flight.IsMidnightSurchargeTime(effective),
		"candidates":         candidates,
	}
	if note != "" {
		resp["time_note"] = note
	}
	if a, err := h.Assignments.GetByGuestAndDirection(ctx, g.ID, direction); err == nil {
		resp["current_schedule_id"] = a.ScheduleID
	} else if !errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load assignment"})
	}
	return c.JSON(http.StatusOK, resp)
}

// Reassign handles POST /v1/guests/:id/reassign.  The body names
// the direction, the schedule the caller believes the guest is on
// (fromScheduleId, 0 when unassigned) and the target.  Everything
// runs in one transaction: the target schedule row is locked, its
// occupancy counted under that lock, and the move rejected with 409
// when the vehicle is full or when the guest's assignment no longer
// matches fromScheduleId.  A successful move writes a reassign audit
// entry and publishes a transport.reassigned event after commit.
func (h *GuestHandler) Reassign(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid guest id"})
	}
	var body struct {
		FromScheduleID uint64 `json:"fromScheduleId"`
		ToScheduleID   uint64 `json:"toScheduleId"`
		Direction      string `json:"direction"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	direction := strings.ToLower(strings.TrimSpace(body.Direction))
	if direction != model.DirectionArrival && direction != model.DirectionDeparture {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "direction must be arrival or departure"})
	}
	if body.ToScheduleID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "toScheduleId is required"})
	}

	ctx := c.Request().Context()
	g, err := h.Guests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "guest not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load guest"})
	}

	tx, err := h.Guests.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	schedDirection, status, capacity, err := h.Schedules.LockForAssignTx(ctx, tx, body.ToScheduleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "schedule not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to lock schedule"})
	}
	if schedDirection != direction {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "schedule serves the " + schedDirection + " direction"})
	}
	if status != model.ScheduleStatusActive {
		return c.JSON(http.StatusConflict, echo.Map{"error": "schedule is cancelled"})
	}

	current, err := h.Assignments.GetByGuestAndDirectionTx(ctx, tx, g.ID, direction)
	unassigned := false
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load assignment"})
		}
		unassigned = true
	}
	if unassigned {
		if body.FromScheduleID != 0 {
			return c.JSON(http.StatusConflict, echo.Map{"error": "guest is not assigned to that schedule"})
		}
	} else {
		if body.FromScheduleID != 0 && current.ScheduleID != body.FromScheduleID {
			return c.JSON(http.StatusConflict, echo.Map{
				"error":               "guest assignment changed",
				"current_schedule_id": current.ScheduleID,
			})
		}
		if current.ScheduleID == body.ToScheduleID {
			return c.JSON(http.StatusOK, echo.Map{
				"guest_id":    g.ID,
				"direction":   direction,
				"schedule_id": current.ScheduleID,
				"unchanged":   true,
			})
		}
	}

	assigned, err := h.Schedules.CountAssignedTx(ctx, tx, body.ToScheduleID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to count occupancy"})
	}
	if assigned >= capacity {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":    "schedule is full",
			"capacity": capacity,
		})
	}

	fromID := uint64(0)
	if unassigned {
		a := &model.Assignment{GuestID: g.ID, ScheduleID: body.ToScheduleID, Direction: direction}
		if err := h.Assignments.CreateTx(ctx, tx, a); err != nil {
			if errors.Is(err, repository.ErrVersionConflict) {
				return c.JSON(http.StatusConflict, echo.Map{"error": "guest was assigned concurrently"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create assignment"})
		}
	} else {
		fromID = current.ScheduleID
		if err := h.Assignments.MoveTx(ctx, tx, current.ID, body.ToScheduleID); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to move assignment"})
		}
	}

	entry := &model.AuditEntry{
		GuestID:      g.ID,
		Op:           model.AuditOpUpdate,
		ChangeSource: model.ChangeSourceReassign,
		Actor:        middleware.Actor(c),
		Changes:      []model.FieldChange{reassignChange(direction, fromID, body.ToScheduleID)},
	}
	if err := h.Audit.InsertTx(ctx, tx, entry); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to write audit entry"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	metrics.RecordReassignment()
	_ = queue_publisher.PublishTransportReassigned(ctx, queue.TransportReassignedEvent{
		GuestID:        g.ID,
		Direction:      direction,
		FromScheduleID: fromID,
		ToScheduleID:   body.ToScheduleID,
		Actor:          middleware.Actor(c),
		ReassignedAt:   time.Now().UTC().Format(time.RFC3339),
	})
	return c.JSON(http.StatusOK, echo.Map{
		"guest_id":         g.ID,
		"direction":        direction,
		"from_schedule_id": fromID,
		"to_schedule_id":   body.ToScheduleID,
	})
}

// parseID parses the :id path parameter.
func parseID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// guestLeg picks the flight fields for one travel direction.
func guestLeg(g *model.Guest, direction string) (flightNo, date, tm string) {
	if direction == model.DirectionArrival {
		return g.ArrivalFlightNumber, g.ArrivalDate, g.ArrivalTime
	}
	return g.DepartureFlightNumber, g.DepartureDate, g.DepartureTime
}

// reassignChange renders a schedule move as an audit field change,
// schedule IDs as decimal strings and "" for unassigned.
func reassignChange(direction string, fromID, toID uint64) model.FieldChange {
	field := model.FieldArrivalSchedule
	if direction == model.DirectionDeparture {
		field = model.FieldDepartureSchedule
	}
	old := ""
	if fromID != 0 {
		old = strconv.FormatUint(fromID, 10)
	}
	return model.FieldChange{
		Field:    field,
		OldValue: old,
		NewValue: strconv.FormatUint(toID, 10),
	}
}

// editChanges validates a PATCH body against the current guest
// record and returns the effective field changes.  The second value
// is a ready-to-send 422 body when any field fails validation.
func editChanges(g *model.Guest, body map[string]interface{}) ([]model.FieldChange, echo.Map) {
	changes := make([]model.FieldChange, 0, len(body))
	for _, f := range model.AllCanonicalFields {
		raw, present := body[string(f)]
		if !present {
			continue
		}
		delete(body, string(f))
		v, errMsg := editValue(f, raw)
		if errMsg != "" {
			return nil, echo.Map{"error": errMsg, "field": string(f)}
		}
		old := g.Field(f)
		if v == old {
			continue
		}
		changes = append(changes, model.FieldChange{
			Field:    f,
			OldValue: old,
			NewValue: v,
			Kind:     importer.FieldKind(f),
		})
	}
	for k := range body {
		return nil, echo.Map{"error": "unknown field", "field": k}
	}
	return changes, nil
}

// editValue normalizes one PATCH value to its canonical string
// form.  Empty strings clear optional fields; the required identity
// fields cannot be cleared.  A non-empty error message means the
// value was rejected.
func editValue(f model.CanonicalField, raw interface{}) (string, string) {
	switch t := raw.(type) {
	case bool:
		if importer.FieldKind(f) != model.KindBoolean {
			return "", "field does not take a boolean"
		}
		if t {
			return "true", ""
		}
		return "false", ""
	case string:
		trimmed := strings.TrimSpace(t)
		if trimmed == "" {
			if f == model.FieldEmail || f == model.FieldFirstName || f == model.FieldLastName {
				return "", "field cannot be empty"
			}
			if importer.FieldKind(f) == model.KindBoolean {
				return "", "boolean field requires true or false"
			}
			return "", ""
		}
		v, ok := importer.TransformField(f, trimmed, model.DateOrderDayFirst)
		if !ok {
			return "", "invalid value"
		}
		if f == model.FieldEmail && importer.InferCellKind(v) != model.KindEmail {
			return "", "invalid email address"
		}
		return v, ""
	default:
		return "", "value must be a string or boolean"
	}
}
