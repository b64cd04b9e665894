package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/summitops/guest-transport/internal/flight"
	"github.com/summitops/guest-transport/internal/model"
	"github.com/summitops/guest-transport/internal/repository"
)

// TransportHandler serves the read-only transport views: the fixed
// offline group plan and the live schedules with occupancy.
type TransportHandler struct {
	Schedules *repository.ScheduleRepo // schedule occupancy reads
	Matcher   *flight.Matcher          // codeshare and group resolution
}

// NewTransportHandler constructs a TransportHandler.  Both
// dependencies must be non-nil.
func NewTransportHandler(schedules *repository.ScheduleRepo, matcher *flight.Matcher) *TransportHandler {
	if schedules == nil || matcher == nil {
		panic("nil dependency passed to NewTransportHandler")
	}
	return &TransportHandler{Schedules: schedules, Matcher: matcher}
}

// scheduleView is the API shape of one schedule with occupancy.
type scheduleView struct {
	ID                uint64 `json:"id"`
	VehicleID         uint64 `json:"vehicle_id"`
	VehicleName       string `json:"vehicle_name"`
	VehicleType       string `json:"vehicle_type"`
	Direction         string `json:"direction"`
	ServiceDate       string `json:"service_date"`
	PickupTime        string `json:"pickup_time"`
	Status            string `json:"status"`
	Capacity          int    `json:"capacity"`
	Assigned          int    `json:"assigned"`
	Free              int    `json:"free"`
	MidnightSurcharge bool   `json:"midnight_surcharge"`
}

func toScheduleView(s model.ScheduleOccupancy) scheduleView {
	return scheduleView{
		ID:                s.Schedule.ID,
		VehicleID:         s.Schedule.VehicleID,
		VehicleName:       s.VehicleName,
		VehicleType:       s.VehicleType,
		Direction:         s.Schedule.Direction,
		ServiceDate:       s.Schedule.ServiceDate,
		PickupTime:        s.Schedule.PickupTime,
		Status:            s.Schedule.Status,
		Capacity:          s.Capacity,
		Assigned:          s.Assigned,
		Free:              s.Free(),
		MidnightSurcharge: flight.IsMidnightSurchargeTime(s.Schedule.PickupTime),
	}
}

// candidateView is one ranked reallocation target.
type candidateView struct {
	Schedule    scheduleView `json:"schedule"`
	DeltaMin    int          `json:"delta_min"`
	Tier        flight.Tier  `json:"tier"`
	Recommended bool         `json:"recommended"`
}

func toCandidateView(r flight.RankedCandidate) candidateView {
	return candidateView{
		Schedule:    toScheduleView(r.Schedule),
		DeltaMin:    r.DeltaMin,
		Tier:        r.Tier,
		Recommended: r.Recommended,
	}
}

// Groups handles GET /v1/transport/groups?flight=&date=.  It finds
// the pre-planned transport group covering a flight on a date,
// matching through codeshares, and is the fallback display when no
// live schedule exists yet for that date.  404 when no group covers
// the flight.
func (h *TransportHandler) Groups(c echo.Context) error {
	flightNo := flight.NormalizeFlight(c.QueryParam("flight"))
	if flightNo == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "flight query parameter is required"})
	}
	date := strings.TrimSpace(c.QueryParam("date"))
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}
	group := h.Matcher.FindTransportGroup(flightNo, date)
	if group == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no transport group covers this flight"})
	}
	serviceTime := group.DepartTime
	if serviceTime == "" {
		serviceTime = group.GatherTime
	}
	return c.JSON(http.StatusOK, echo.Map{
		"group":              group,
		"equivalent_flights": h.Matcher.EquivalentFlights(flightNo),
		"midnight_surcharge": flight.IsMidnightSurchargeTime(serviceTime),
	})
}

// ListSchedules handles GET /v1/transport/schedules?direction=&date=.
// It returns the live schedules for one direction and service date
// with vehicle details, current occupancy and free seats.
func (h *TransportHandler) ListSchedules(c echo.Context) error {
	direction := strings.ToLower(strings.TrimSpace(c.QueryParam("direction")))
	if direction != model.DirectionArrival && direction != model.DirectionDeparture {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "direction must be arrival or departure"})
	}
	date := strings.TrimSpace(c.QueryParam("date"))
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}
	schedules, err := h.Schedules.ListWithOccupancy(c.Request().Context(), direction, date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load schedules"})
	}
	items := make([]scheduleView, 0, len(schedules))
	for _, s := range schedules {
		items = append(items, toScheduleView(s))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
