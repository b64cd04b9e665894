package importer_test

import (
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/summitops/guest-transport/internal/importer"
	"github.com/summitops/guest-transport/internal/model"
)

func findAlert(alerts []model.Alert, title string) *model.Alert {
	for i := range alerts {
		if alerts[i].Title == title {
			return &alerts[i]
		}
	}
	return nil
}

func TestAnalyzeDiff(t *testing.T) {
	Convey("Given a diff with one of everything suspicious", t, func() {
		guests := []model.Guest{
			{ID: 1, Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace",
				ArrivalDate: "2026-09-14", DepartureDate: "2026-09-18", Version: 2},
		}
		diff := &model.ImportDiff{
			Added: []model.CanonicalRow{
				canonicalRow(2, "email", "alan@example.com", "firstName", "Alan", "lastName", "Turing",
					"arrivalDate", "2026-09-18", "departureDate", "2026-09-14"),
				canonicalRow(3, "email", "grace@example.com", "firstName", "Grace", "lastName", "Hopper",
					"needsArrivalTransfer", "true"),
				canonicalRow(4, "email", "jose@example.com", "firstName", "José", "lastName", "García"),
				canonicalRow(5, "email", "day@example.com", "firstName", "Day", "lastName", "Tripper",
					"arrivalDate", "2026-09-15", "departureDate", "2026-09-15"),
			},
			Modified: []model.ModifiedGuest{
				{GuestID: 1, Email: "ada@example.com", Name: "Ada Lovelace", Row: 6, Version: 2,
					Changes: []model.FieldChange{
						{Field: model.FieldArrivalDate, OldValue: "2026-09-14", NewValue: "2026-09-20", Kind: model.KindDate},
					}},
			},
			Unchanged: []model.GuestRef{
				{GuestID: 9, Email: "garcia@example.com", Name: "Jose Garcia", Version: 1},
			},
		}

		alerts := importer.AnalyzeDiff(diff, guests)

		Convey("Then arrival-after-departure flags both added and modified guests", func() {
			a := findAlert(alerts, "Arrival after departure")
			So(a, ShouldNotBeNil)
			So(a.Type, ShouldEqual, model.SeverityError)
			So(len(a.Items), ShouldEqual, 2)
			So(a.Items[0], ShouldContainSubstring, "row 2")
			// Ada's new arrival 2026-09-20 against her untouched departure 2026-09-18
			So(a.Items[1], ShouldContainSubstring, "Ada Lovelace")
		})

		Convey("Then a transfer without a flight number is flagged", func() {
			a := findAlert(alerts, "Transfer requested without flight details")
			So(a, ShouldNotBeNil)
			So(a.Type, ShouldEqual, model.SeverityWarning)
			So(a.Items[0], ShouldContainSubstring, "Grace Hopper")
		})

		Convey("Then duplicate names fold case and diacritics", func() {
			a := findAlert(alerts, "Possible duplicate names")
			So(a, ShouldNotBeNil)
			So(a.Type, ShouldEqual, model.SeverityInfo)
			So(len(a.Items), ShouldEqual, 1)
			So(a.Items[0], ShouldContainSubstring, "appears 2 times")
		})

		Convey("Then changes to critical fields are listed", func() {
			a := findAlert(alerts, "Critical fields changing")
			So(a, ShouldNotBeNil)
			So(a.Items[0], ShouldContainSubstring, "Ada Lovelace")
			So(a.Items[0], ShouldContainSubstring, "arrivalDate")
		})

		Convey("Then same-day trips are noted", func() {
			a := findAlert(alerts, "Same-day arrival and departure")
			So(a, ShouldNotBeNil)
			So(a.Items[0], ShouldContainSubstring, "Day Tripper")
		})

		Convey("Then errors sort ahead of warnings ahead of info", func() {
			So(alerts[0].Type, ShouldEqual, model.SeverityError)
			last := alerts[len(alerts)-1]
			So(last.Type, ShouldEqual, model.SeverityInfo)
		})
	})

	Convey("Given a very large addition batch", t, func() {
		diff := &model.ImportDiff{}
		for i := 0; i < 51; i++ {
			diff.Added = append(diff.Added, canonicalRow(i+2,
				"email", fmt.Sprintf("g%d@example.com", i), "firstName", "G", "lastName", fmt.Sprintf("N%d", i)))
		}

		alerts := importer.AnalyzeDiff(diff, nil)

		Convey("Then the volume heuristic fires", func() {
			So(findAlert(alerts, "Unusually large import"), ShouldNotBeNil)
		})
	})

	Convey("Given far more removals than additions", t, func() {
		diff := &model.ImportDiff{}
		for i := 0; i < 11; i++ {
			diff.Removed = append(diff.Removed, model.GuestRef{GuestID: uint64(i + 1), Email: fmt.Sprintf("r%d@example.com", i)})
		}

		alerts := importer.AnalyzeDiff(diff, nil)

		Convey("Then the imbalance heuristic fires", func() {
			a := findAlert(alerts, "More removals than additions")
			So(a, ShouldNotBeNil)
			So(a.Type, ShouldEqual, model.SeverityWarning)
		})
	})

	Convey("Given more findings than fit in one alert", t, func() {
		diff := &model.ImportDiff{}
		for i := 0; i < 8; i++ {
			diff.Added = append(diff.Added, canonicalRow(i+2,
				"email", fmt.Sprintf("s%d@example.com", i), "firstName", "S", "lastName", fmt.Sprintf("D%d", i),
				"arrivalDate", "2026-09-15", "departureDate", "2026-09-15"))
		}

		alerts := importer.AnalyzeDiff(diff, nil)

		Convey("Then items are capped and the overflow is counted", func() {
			a := findAlert(alerts, "Same-day arrival and departure")
			So(a, ShouldNotBeNil)
			So(len(a.Items), ShouldEqual, 5)
			So(a.Overflow, ShouldEqual, 3)
		})
	})

	Convey("Given a clean diff", t, func() {
		diff := &model.ImportDiff{
			Added: []model.CanonicalRow{
				canonicalRow(2, "email", "ok@example.com", "firstName", "Fine", "lastName", "Guest",
					"arrivalDate", "2026-09-14", "departureDate", "2026-09-18"),
			},
		}

		Convey("Then no alerts are raised", func() {
			So(importer.AnalyzeDiff(diff, nil), ShouldBeEmpty)
		})
	})
}
