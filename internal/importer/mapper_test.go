package importer_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/summitops/guest-transport/internal/importer"
	"github.com/summitops/guest-transport/internal/model"
)

func TestAutoMap(t *testing.T) {
	Convey("Given a typical roster header row", t, func() {
		columns := []string{
			"E-mail", "First Name", "Last Name", "Company",
			"Arrival Date", "Arrival Time", "Flight Number (Arrival)",
			"Departure", "Hotel", "Check-in", "VIP", "Notes", "Badge Color",
		}

		mapping := importer.AutoMap(columns)

		Convey("Then recognizable headers map to their fields", func() {
			So(mapping["E-mail"], ShouldEqual, model.FieldEmail)
			So(mapping["First Name"], ShouldEqual, model.FieldFirstName)
			So(mapping["Last Name"], ShouldEqual, model.FieldLastName)
			So(mapping["Company"], ShouldEqual, model.FieldOrganization)
			So(mapping["Arrival Date"], ShouldEqual, model.FieldArrivalDate)
			So(mapping["Arrival Time"], ShouldEqual, model.FieldArrivalTime)
			So(mapping["Flight Number (Arrival)"], ShouldEqual, model.FieldArrivalFlightNumber)
			So(mapping["Departure"], ShouldEqual, model.FieldDepartureDate)
			So(mapping["Hotel"], ShouldEqual, model.FieldHotel)
			So(mapping["Check-in"], ShouldEqual, model.FieldCheckInDate)
			So(mapping["VIP"], ShouldEqual, model.FieldIsVIP)
			So(mapping["Notes"], ShouldEqual, model.FieldNotes)
		})

		Convey("Then unrecognizable headers stay unmapped", func() {
			_, mapped := mapping["Badge Color"]
			So(mapped, ShouldBeFalse)
		})

		Convey("Then shuffling the file's column order maps the same", func() {
			shuffled := make([]string, len(columns))
			for i, c := range columns {
				shuffled[len(columns)-1-i] = c
			}
			again := importer.AutoMap(shuffled)
			So(len(again), ShouldEqual, len(mapping))
			for col, field := range mapping {
				So(again[col], ShouldEqual, field)
			}
		})
	})

	Convey("Given two columns competing for one field", t, func() {
		mapping := importer.AutoMap([]string{"Assistant Email", "Email"})

		Convey("Then the stronger claim wins and the field is assigned once", func() {
			So(mapping["Email"], ShouldEqual, model.FieldEmail)
			_, mapped := mapping["Assistant Email"]
			So(mapped, ShouldBeFalse)
		})
	})
}

func TestSetColumnKeepsFieldsUnique(t *testing.T) {
	Convey("Given an existing mapping", t, func() {
		mapping := model.ColumnMapping{
			"Email Address": model.FieldEmail,
			"First":         model.FieldFirstName,
		}

		Convey("When a different column claims an assigned field", func() {
			mapping.SetColumn("Contact", model.FieldEmail)

			Convey("Then the previous holder is evicted", func() {
				So(mapping["Contact"], ShouldEqual, model.FieldEmail)
				_, still := mapping["Email Address"]
				So(still, ShouldBeFalse)
				So(mapping["First"], ShouldEqual, model.FieldFirstName)
			})
		})

		Convey("When a column is unmapped", func() {
			mapping.SetColumn("First", "")

			Convey("Then it is simply removed", func() {
				_, still := mapping["First"]
				So(still, ShouldBeFalse)
			})
		})
	})
}

func TestMissingRequired(t *testing.T) {
	Convey("Given a mapping without all required fields", t, func() {
		mapping := model.ColumnMapping{"Email": model.FieldEmail}

		missing := importer.MissingRequired(mapping)

		Convey("Then the absent required fields are listed", func() {
			So(missing, ShouldResemble, []model.CanonicalField{model.FieldFirstName, model.FieldLastName})
		})

		Convey("And a complete mapping lists nothing", func() {
			mapping["First"] = model.FieldFirstName
			mapping["Last"] = model.FieldLastName
			So(importer.MissingRequired(mapping), ShouldBeEmpty)
		})
	})
}

func TestKnownField(t *testing.T) {
	Convey("Given the manual mapping endpoint's field check", t, func() {
		f, ok := importer.KnownField("arrivalDate")
		So(ok, ShouldBeTrue)
		So(f, ShouldEqual, model.FieldArrivalDate)

		_, ok = importer.KnownField("favoriteColor")
		So(ok, ShouldBeFalse)
	})
}
