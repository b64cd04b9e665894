package importer_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/summitops/guest-transport/internal/importer"
	"github.com/summitops/guest-transport/internal/model"
)

func canonicalRow(n int, pairs ...string) model.CanonicalRow {
	r := model.CanonicalRow{Row: n, Fields: make(map[model.CanonicalField]string)}
	for i := 0; i+1 < len(pairs); i += 2 {
		r.Fields[model.CanonicalField(pairs[i])] = pairs[i+1]
	}
	return r
}

func testGuests() []model.Guest {
	return []model.Guest{
		{ID: 1, Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace", Hotel: "Grand", Version: 3},
		{ID: 2, Email: "grace@example.com", FirstName: "Grace", LastName: "Hopper", ArrivalDate: "2026-09-14", Version: 1},
		{ID: 3, Email: "edsger@example.com", FirstName: "Edsger", LastName: "Dijkstra", Version: 5},
	}
}

func TestComputeDiff(t *testing.T) {
	Convey("Given import rows against the current guest list", t, func() {
		rows := []model.CanonicalRow{
			// matches Ada, changes her hotel
			canonicalRow(2, "email", "Ada@Example.com", "firstName", "Ada", "lastName", "Lovelace", "hotel", "Palace"),
			// matches Grace, nothing changes
			canonicalRow(3, "email", "grace@example.com", "firstName", "Grace", "lastName", "Hopper", "arrivalDate", "2026-09-14"),
			// new guest
			canonicalRow(4, "email", "alan@example.com", "firstName", "Alan", "lastName", "Turing"),
			// invalid email
			canonicalRow(5, "email", "not-an-email", "firstName", "X", "lastName", "Y"),
			// duplicate of row 2
			canonicalRow(6, "email", "ada@example.com", "firstName", "Ada", "lastName", "Lovelace"),
			// missing last name
			canonicalRow(7, "email", "solo@example.com", "firstName", "Solo"),
		}
		guests := testGuests()

		diff := importer.ComputeDiff(rows, guests)

		Convey("Then every row lands in exactly one bucket", func() {
			total := len(diff.Added) + len(diff.Modified) + len(diff.Errors)
			// row 3 contributes to Unchanged, not to a row bucket
			So(total, ShouldEqual, 5)
			So(len(diff.Added), ShouldEqual, 1)
			So(len(diff.Modified), ShouldEqual, 1)
			So(len(diff.Errors), ShouldEqual, 3)
		})

		Convey("Then every existing guest is accounted for exactly once", func() {
			So(len(diff.Modified)+len(diff.Removed)+len(diff.Unchanged), ShouldEqual, len(guests))
			So(len(diff.Unchanged), ShouldEqual, 1)
			So(diff.Unchanged[0].GuestID, ShouldEqual, 2)
			So(len(diff.Removed), ShouldEqual, 1)
			So(diff.Removed[0].GuestID, ShouldEqual, 3)
		})

		Convey("Then matching is case-insensitive on email", func() {
			So(diff.Modified[0].GuestID, ShouldEqual, 1)
			So(diff.Modified[0].Version, ShouldEqual, 3)
		})

		Convey("Then only the changed field is reported, with provenance", func() {
			changes := diff.Modified[0].Changes
			So(len(changes), ShouldEqual, 1)
			So(changes[0].Field, ShouldEqual, model.FieldHotel)
			So(changes[0].OldValue, ShouldEqual, "Grand")
			So(changes[0].NewValue, ShouldEqual, "Palace")
			So(changes[0].Kind, ShouldEqual, model.KindText)
		})

		Convey("Then the error rows carry their reasons", func() {
			So(diff.Errors[0].Row, ShouldEqual, 5)
			So(diff.Errors[0].Message, ShouldContainSubstring, "not a valid email")
			So(diff.Errors[1].Row, ShouldEqual, 6)
			So(diff.Errors[1].Message, ShouldContainSubstring, "duplicate email")
			So(diff.Errors[1].Message, ShouldContainSubstring, "row 2")
			So(diff.Errors[2].Row, ShouldEqual, 7)
			So(diff.Errors[2].Field, ShouldEqual, model.FieldLastName)
		})

		Convey("Then computing the diff mutates nothing", func() {
			So(guests[0].Hotel, ShouldEqual, "Grand")
			again := importer.ComputeDiff(rows, guests)
			So(again, ShouldResemble, diff)
		})
	})

	Convey("Given a file narrower than the guest schema", t, func() {
		// Only email and names: Ada's hotel is absent, not blank.
		rows := []model.CanonicalRow{
			canonicalRow(2, "email", "ada@example.com", "firstName", "Ada", "lastName", "Lovelace"),
		}
		diff := importer.ComputeDiff(rows, testGuests())

		Convey("Then absent columns never read as cleared fields", func() {
			So(len(diff.Modified), ShouldEqual, 0)
			So(len(diff.Unchanged), ShouldEqual, 1)
			So(diff.Unchanged[0].GuestID, ShouldEqual, 1)
		})
	})

	Convey("Given a row that only changes the email's casing", t, func() {
		rows := []model.CanonicalRow{
			canonicalRow(2, "email", "ADA@EXAMPLE.COM", "firstName", "Ada", "lastName", "Lovelace"),
		}
		diff := importer.ComputeDiff(rows, testGuests())

		Convey("Then a case-only email difference is not a change", func() {
			So(len(diff.Modified), ShouldEqual, 0)
			So(len(diff.Unchanged), ShouldEqual, 1)
		})
	})

	Convey("Given soft-deleted guests in the snapshot", t, func() {
		guests := testGuests()
		deleted := guests[2]
		now := deleted.CreatedAt
		deleted.DeletedAt = &now
		guests[2] = deleted

		diff := importer.ComputeDiff(nil, guests)

		Convey("Then deleted guests are invisible to the diff", func() {
			So(len(diff.Removed), ShouldEqual, 2)
			for _, ref := range diff.Removed {
				So(ref.GuestID, ShouldNotEqual, 3)
			}
		})
	})
}
