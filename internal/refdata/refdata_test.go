package refdata_test

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/summitops/guest-transport/internal/model"
	"github.com/summitops/guest-transport/internal/refdata"
)

const planYAML = `good_minutes: 20
acceptable_minutes: 45
codeshares:
  - [AF1680, kl 2012]
corrections:
  - flight: BA117
    date: "2026-09-14"
    time: "16:45"
    note: moved by airline
groups:
  - name: Morning Wave
    date: "2026-09-14"
    direction: arrival
    flights: [AF1680]
    gather_time: "10:30"
    depart_time: "11:00"
    vehicle_type: bus
    pax_count: 30
`

func writePlan(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plan.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	Convey("Given a transport plan file", t, func() {
		p, err := refdata.Load(writePlan(t, planYAML))
		So(err, ShouldBeNil)

		Convey("Then codeshare groups expand symmetrically and normalized", func() {
			So(p.CodeshareGroup("AF1680"), ShouldResemble, []string{"KL2012"})
			So(p.CodeshareGroup("KL2012"), ShouldResemble, []string{"AF1680"})
			So(p.CodeshareGroup("QF9"), ShouldBeNil)
		})

		Convey("Then corrections are keyed by flight and date", func() {
			c, ok := p.TimeCorrection("ba 117", "2026-09-14")
			So(ok, ShouldBeTrue)
			So(c.Time, ShouldEqual, "16:45")

			_, ok = p.TimeCorrection("BA117", "2026-09-15")
			So(ok, ShouldBeFalse)
		})

		Convey("Then groups are served by date", func() {
			groups := p.GroupsOn("2026-09-14")
			So(len(groups), ShouldEqual, 1)
			So(groups[0].Name, ShouldEqual, "Morning Wave")
			So(p.GroupsOn("2026-09-15"), ShouldBeEmpty)
		})

		Convey("Then the reallocation windows come from the plan", func() {
			So(p.Windows().Good, ShouldEqual, 20)
			So(p.Windows().Acceptable, ShouldEqual, 45)
		})
	})

	Convey("Given broken plans", t, func() {
		Convey("Then a missing file fails", func() {
			_, err := refdata.Load(filepath.Join(t.TempDir(), "absent.yaml"))
			So(err, ShouldNotBeNil)
		})

		Convey("Then a one-flight codeshare group fails", func() {
			_, err := refdata.Load(writePlan(t, "codeshares:\n  - [AF1680]\n"))
			So(err, ShouldNotBeNil)
		})

		Convey("Then an invalid correction time fails", func() {
			_, err := refdata.Load(writePlan(t, "corrections:\n  - flight: BA117\n    date: \"2026-09-14\"\n    time: sometime\n"))
			So(err, ShouldNotBeNil)
		})

		Convey("Then an unknown group direction fails", func() {
			_, err := refdata.Load(writePlan(t, "groups:\n  - name: X\n    date: \"2026-09-14\"\n    direction: sideways\n    flights: [AF1680]\n"))
			So(err, ShouldNotBeNil)
		})

		Convey("Then windows out of order fail", func() {
			_, err := refdata.Load(writePlan(t, "good_minutes: 50\nacceptable_minutes: 20\n"))
			So(err, ShouldNotBeNil)
		})
	})
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PLAN_GOOD_MINUTES", "5")
	t.Setenv("PLAN_ACCEPTABLE_MINUTES", "80")

	Convey("Given PLAN_ environment overrides", t, func() {
		p, err := refdata.Load(writePlan(t, planYAML))
		So(err, ShouldBeNil)

		Convey("Then env beats the file", func() {
			So(p.Windows().Good, ShouldEqual, 5)
			So(p.Windows().Acceptable, ShouldEqual, 80)
		})
	})
}

func TestNewStatic(t *testing.T) {
	Convey("Given in-memory tables", t, func() {
		p := refdata.NewStatic(
			[][]string{{"AF1680", "KL2012"}},
			[]model.TimeCorrection{{Flight: "BA117", Date: "2026-09-14", Time: "16:45"}},
			[]model.TransportGroup{{Name: "Wave", Date: "2026-09-14", Direction: model.DirectionArrival, Flights: []string{"AF1680"}}},
		)

		So(p.CodeshareGroup("KL2012"), ShouldResemble, []string{"AF1680"})
		_, ok := p.TimeCorrection("BA117", "2026-09-14")
		So(ok, ShouldBeTrue)
		So(len(p.GroupsOn("2026-09-14")), ShouldEqual, 1)
	})
}
