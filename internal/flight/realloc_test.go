package flight_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/summitops/guest-transport/internal/flight"
	"github.com/summitops/guest-transport/internal/model"
)

func occupancy(id uint64, pickup, status string, capacity, assigned int) model.ScheduleOccupancy {
	return model.ScheduleOccupancy{
		Schedule: model.TransportSchedule{
			ID:          id,
			Direction:   model.DirectionArrival,
			ServiceDate: "2026-09-14",
			PickupTime:  pickup,
			Status:      status,
		},
		VehicleName: "Bus",
		Capacity:    capacity,
		Assigned:    assigned,
	}
}

func TestRankCandidates(t *testing.T) {
	Convey("Given schedules around a 14:00 flight", t, func() {
		schedules := []model.ScheduleOccupancy{
			occupancy(1, "14:20", model.ScheduleStatusActive, 10, 3),  // 20 min, good
			occupancy(2, "13:10", model.ScheduleStatusActive, 10, 0),  // 50 min, acceptable
			occupancy(3, "16:00", model.ScheduleStatusActive, 10, 0),  // 120 min, poor
			occupancy(4, "14:00", model.ScheduleStatusActive, 10, 10), // full
			occupancy(5, "14:05", model.ScheduleStatusCancelled, 10, 0),
		}

		ranked, err := flight.RankCandidates("14:00", schedules, flight.DefaultWindows)
		So(err, ShouldBeNil)

		Convey("Then full and cancelled schedules are excluded", func() {
			So(len(ranked), ShouldEqual, 3)
			for _, c := range ranked {
				So(c.Schedule.Schedule.ID, ShouldNotEqual, 4)
				So(c.Schedule.Schedule.ID, ShouldNotEqual, 5)
			}
		})

		Convey("Then candidates sort closest first with tiers", func() {
			So(ranked[0].Schedule.Schedule.ID, ShouldEqual, 1)
			So(ranked[0].DeltaMin, ShouldEqual, 20)
			So(ranked[0].Tier, ShouldEqual, flight.TierGood)

			So(ranked[1].Schedule.Schedule.ID, ShouldEqual, 2)
			So(ranked[1].DeltaMin, ShouldEqual, 50)
			So(ranked[1].Tier, ShouldEqual, flight.TierAcceptable)

			So(ranked[2].Schedule.Schedule.ID, ShouldEqual, 3)
			So(ranked[2].DeltaMin, ShouldEqual, 120)
			So(ranked[2].Tier, ShouldEqual, flight.TierPoor)
		})

		Convey("Then exactly the closest non-poor candidate is recommended", func() {
			So(ranked[0].Recommended, ShouldBeTrue)
			So(ranked[1].Recommended, ShouldBeFalse)
			So(ranked[2].Recommended, ShouldBeFalse)
		})
	})

	Convey("Given only poor candidates", t, func() {
		schedules := []model.ScheduleOccupancy{
			occupancy(1, "18:00", model.ScheduleStatusActive, 10, 0),
			occupancy(2, "19:00", model.ScheduleStatusActive, 10, 0),
		}

		ranked, err := flight.RankCandidates("14:00", schedules, flight.DefaultWindows)
		So(err, ShouldBeNil)

		Convey("Then they are listed but none is recommended", func() {
			So(len(ranked), ShouldEqual, 2)
			So(ranked[0].Recommended, ShouldBeFalse)
			So(ranked[1].Recommended, ShouldBeFalse)
		})
	})

	Convey("Given two candidates at the same distance", t, func() {
		schedules := []model.ScheduleOccupancy{
			occupancy(7, "14:10", model.ScheduleStatusActive, 10, 0),
			occupancy(2, "13:50", model.ScheduleStatusActive, 10, 0),
		}

		ranked, err := flight.RankCandidates("14:00", schedules, flight.DefaultWindows)
		So(err, ShouldBeNil)

		Convey("Then the lower schedule id comes first", func() {
			So(ranked[0].Schedule.Schedule.ID, ShouldEqual, 2)
			So(ranked[1].Schedule.Schedule.ID, ShouldEqual, 7)
		})
	})

	Convey("Given custom windows", t, func() {
		schedules := []model.ScheduleOccupancy{
			occupancy(1, "14:20", model.ScheduleStatusActive, 10, 0),
		}

		ranked, err := flight.RankCandidates("14:00", schedules, flight.Windows{Good: 10, Acceptable: 15})
		So(err, ShouldBeNil)

		Convey("Then the tier boundaries follow them", func() {
			So(ranked[0].Tier, ShouldEqual, flight.TierPoor)
			So(ranked[0].Recommended, ShouldBeFalse)
		})
	})

	Convey("Given an unusable flight time", t, func() {
		_, err := flight.RankCandidates("whenever", nil, flight.DefaultWindows)

		Convey("Then ranking refuses", func() {
			So(err, ShouldNotBeNil)
		})
	})
}
