package flight_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/summitops/guest-transport/internal/flight"
	"github.com/summitops/guest-transport/internal/model"
)

// stubRef is a deliberately one-directional table: only AF1680 has
// a group entry.  The matcher must still answer symmetrically.
type stubRef struct {
	groups      map[string][]string
	corrections map[string]model.TimeCorrection
	transport   map[string][]model.TransportGroup
}

func (s *stubRef) CodeshareGroup(f string) []string { return s.groups[f] }
func (s *stubRef) TimeCorrection(f, date string) (model.TimeCorrection, bool) {
	c, ok := s.corrections[f+"|"+date]
	return c, ok
}
func (s *stubRef) GroupsOn(date string) []model.TransportGroup { return s.transport[date] }

func newStub() *stubRef {
	return &stubRef{
		groups: map[string][]string{
			"AF1680": {"KL2012", "DL8371"},
		},
		corrections: map[string]model.TimeCorrection{
			"BA117|2026-09-14": {Flight: "BA117", Date: "2026-09-14", Time: "16:45", Note: "moved by airline"},
			"LH900|2026-09-14": {Flight: "LH900", Date: "2026-09-14", Time: "11:10"},
		},
		transport: map[string][]model.TransportGroup{
			"2026-09-14": {
				{Name: "Morning Wave", Date: "2026-09-14", Direction: model.DirectionArrival,
					Flights: []string{"AF1680", "BA117"}, GatherTime: "10:30", DepartTime: "11:00",
					VehicleType: "bus", PaxCount: 30},
			},
		},
	}
}

func TestNormalizeFlight(t *testing.T) {
	Convey("Given flight numbers in mixed shapes", t, func() {
		So(flight.NormalizeFlight("ba 117"), ShouldEqual, "BA117")
		So(flight.NormalizeFlight("  Af 16 80 "), ShouldEqual, "AF1680")
		So(flight.NormalizeFlight(""), ShouldEqual, "")
	})
}

func TestAreCodeshares(t *testing.T) {
	Convey("Given a matcher over a one-directional codeshare table", t, func() {
		m := flight.NewMatcher(newStub())

		Convey("Then a flight is a codeshare of itself", func() {
			So(m.AreCodeshares("AF1680", "af 1680"), ShouldBeTrue)
		})

		Convey("Then listed pairs match in both query orders", func() {
			So(m.AreCodeshares("AF1680", "KL2012"), ShouldBeTrue)
			So(m.AreCodeshares("KL2012", "AF1680"), ShouldBeTrue)
		})

		Convey("Then unrelated flights do not match", func() {
			So(m.AreCodeshares("AF1680", "BA117"), ShouldBeFalse)
			So(m.AreCodeshares("", "AF1680"), ShouldBeFalse)
		})
	})
}

func TestEquivalentFlights(t *testing.T) {
	Convey("Given a flight with codeshares", t, func() {
		m := flight.NewMatcher(newStub())

		So(m.EquivalentFlights("af 1680"), ShouldResemble, []string{"AF1680", "KL2012", "DL8371"})
		So(m.EquivalentFlights("BA117"), ShouldResemble, []string{"BA117"})
		So(m.EquivalentFlights(""), ShouldBeNil)
	})
}

func TestEffectiveTime(t *testing.T) {
	Convey("Given scheduled times and manual corrections", t, func() {
		m := flight.NewMatcher(newStub())

		Convey("Then a correction overrides the scheduled time with its note", func() {
			got, note := m.EffectiveTime("ba 117", "2026-09-14", "15:30")
			So(got, ShouldEqual, "16:45")
			So(note, ShouldEqual, "moved by airline")
		})

		Convey("Then a correction without a note gets a standard one", func() {
			got, note := m.EffectiveTime("LH900", "2026-09-14", "10:00")
			So(got, ShouldEqual, "11:10")
			So(note, ShouldNotBeEmpty)
		})

		Convey("Then no correction means the scheduled time stands", func() {
			got, note := m.EffectiveTime("BA117", "2026-09-15", "15:30")
			So(got, ShouldEqual, "15:30")
			So(note, ShouldBeEmpty)
		})
	})
}

func TestFindTransportGroup(t *testing.T) {
	Convey("Given the planned transport groups", t, func() {
		m := flight.NewMatcher(newStub())

		Convey("Then a listed flight finds its group", func() {
			g := m.FindTransportGroup("BA117", "2026-09-14")
			So(g, ShouldNotBeNil)
			So(g.Name, ShouldEqual, "Morning Wave")
		})

		Convey("Then a codeshare of a listed flight finds the same group", func() {
			g := m.FindTransportGroup("KL2012", "2026-09-14")
			So(g, ShouldNotBeNil)
			So(g.Name, ShouldEqual, "Morning Wave")
		})

		Convey("Then the wrong date finds nothing", func() {
			So(m.FindTransportGroup("BA117", "2026-09-15"), ShouldBeNil)
		})

		Convey("Then an unknown flight finds nothing", func() {
			So(m.FindTransportGroup("QF9", "2026-09-14"), ShouldBeNil)
		})
	})
}

func TestIsMidnightSurchargeTime(t *testing.T) {
	Convey("Given the night-rate window", t, func() {
		cases := map[string]bool{
			"23:00": true,
			"23:59": true,
			"00:00": true,
			"03:30": true,
			"06:59": true,
			"07:00": false,
			"12:00": false,
			"22:59": false,
		}
		for in, want := range cases {
			So(flight.IsMidnightSurchargeTime(in), ShouldEqual, want)
		}

		Convey("Then malformed input is never surcharged", func() {
			So(flight.IsMidnightSurchargeTime("late"), ShouldBeFalse)
			So(flight.IsMidnightSurchargeTime(""), ShouldBeFalse)
		})
	})
}
