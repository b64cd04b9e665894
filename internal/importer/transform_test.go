package importer_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/summitops/guest-transport/internal/importer"
	"github.com/summitops/guest-transport/internal/model"
)

func TestTransformDate(t *testing.T) {
	Convey("Given the date transformer", t, func() {
		Convey("When the input is already ISO", func() {
			got, ok := importer.TransformDate("2026-09-14", model.DateOrderDayFirst)
			So(ok, ShouldBeTrue)
			So(got, ShouldEqual, "2026-09-14")

			Convey("And a trailing timestamp is dropped", func() {
				got, ok := importer.TransformDate("2026-09-14 10:00", model.DateOrderDayFirst)
				So(ok, ShouldBeTrue)
				So(got, ShouldEqual, "2026-09-14")
			})
		})

		Convey("When the input is a spreadsheet serial number", func() {
			got, ok := importer.TransformDate("45915", model.DateOrderDayFirst)
			So(ok, ShouldBeTrue)
			So(got, ShouldEqual, "2025-09-15")

			Convey("And numbers outside the plausible window stay numbers", func() {
				_, ok := importer.TransformDate("42", model.DateOrderDayFirst)
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When the input is numeric day/month/year", func() {
			Convey("Then day-first reads day first", func() {
				got, ok := importer.TransformDate("05/09/2026", model.DateOrderDayFirst)
				So(ok, ShouldBeTrue)
				So(got, ShouldEqual, "2026-09-05")
			})

			Convey("Then month-first reads month first", func() {
				got, ok := importer.TransformDate("05/09/2026", model.DateOrderMonthFirst)
				So(ok, ShouldBeTrue)
				So(got, ShouldEqual, "2026-05-09")
			})

			Convey("Then a component too large for a month forces the other reading", func() {
				got, ok := importer.TransformDate("14/09/2026", model.DateOrderMonthFirst)
				So(ok, ShouldBeTrue)
				So(got, ShouldEqual, "2026-09-14")
			})

			Convey("Then dots and two-digit years work", func() {
				got, ok := importer.TransformDate("14.09.26", model.DateOrderDayFirst)
				So(ok, ShouldBeTrue)
				So(got, ShouldEqual, "2026-09-14")
			})

			Convey("Then impossible calendar dates fail", func() {
				_, ok := importer.TransformDate("31/02/2026", model.DateOrderDayFirst)
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When the input spells the month", func() {
			got, ok := importer.TransformDate("9 Sep 2026", model.DateOrderDayFirst)
			So(ok, ShouldBeTrue)
			So(got, ShouldEqual, "2026-09-09")

			got, ok = importer.TransformDate("09-September-26", model.DateOrderDayFirst)
			So(ok, ShouldBeTrue)
			So(got, ShouldEqual, "2026-09-09")
		})

		Convey("When the input is not a date", func() {
			for _, raw := range []string{"", "soon", "after lunch", "14:30"} {
				_, ok := importer.TransformDate(raw, model.DateOrderDayFirst)
				So(ok, ShouldBeFalse)
			}
		})
	})
}

func TestTransformTime(t *testing.T) {
	Convey("Given the time transformer", t, func() {
		Convey("Then valid times normalize to zero-padded HH:MM", func() {
			got, ok := importer.TransformTime("9:05")
			So(ok, ShouldBeTrue)
			So(got, ShouldEqual, "09:05")

			got, ok = importer.TransformTime("14:30:59")
			So(ok, ShouldBeTrue)
			So(got, ShouldEqual, "14:30")
		})

		Convey("Then invalid times are rejected", func() {
			for _, raw := range []string{"", "25:00", "12:60", "-1:30", "noon"} {
				_, ok := importer.TransformTime(raw)
				So(ok, ShouldBeFalse)
			}
		})
	})
}

func TestTransformBoolean(t *testing.T) {
	Convey("Given the boolean transformer", t, func() {
		Convey("Then the synonym sets map to canonical forms", func() {
			for _, raw := range []string{"yes", "Y", "TRUE", "1"} {
				got, ok := importer.TransformBoolean(raw)
				So(ok, ShouldBeTrue)
				So(got, ShouldEqual, "true")
			}
			for _, raw := range []string{"no", "n", "False", "0"} {
				got, ok := importer.TransformBoolean(raw)
				So(ok, ShouldBeTrue)
				So(got, ShouldEqual, "false")
			}
		})

		Convey("Then unrecognized input stays unknown rather than false", func() {
			_, ok := importer.TransformBoolean("maybe")
			So(ok, ShouldBeFalse)
			_, ok = importer.TransformBoolean("")
			So(ok, ShouldBeFalse)
		})
	})
}

func TestApplyMapping(t *testing.T) {
	Convey("Given parsed rows and a column mapping", t, func() {
		columns := []string{"E-mail", "First", "Arrival", "Arrive At", "Pickup?", "Badge Color"}
		rows := []model.RawRow{
			rawRow(2, columns, "Ada@Example.com", "Ada", "14/09/2026", "22:40", "yes", "teal"),
			rawRow(3, columns, "grace@example.com", "Grace", "n/a", "bad", "maybe", ""),
		}
		mapping := model.ColumnMapping{
			"E-mail":    model.FieldEmail,
			"First":     model.FieldFirstName,
			"Arrival":   model.FieldArrivalDate,
			"Arrive At": model.FieldArrivalTime,
			"Pickup?":   model.FieldNeedsArrivalTransfer,
		}

		out := importer.ApplyMapping(rows, mapping, model.DateOrderDayFirst)

		Convey("Then mapped cells are transformed into canonical forms", func() {
			So(len(out), ShouldEqual, 2)
			So(out[0].Row, ShouldEqual, 2)
			So(out[0].Fields[model.FieldEmail], ShouldEqual, "Ada@Example.com")
			So(out[0].Fields[model.FieldArrivalDate], ShouldEqual, "2026-09-14")
			So(out[0].Fields[model.FieldArrivalTime], ShouldEqual, "22:40")
			So(out[0].Fields[model.FieldNeedsArrivalTransfer], ShouldEqual, "true")
		})

		Convey("Then unmapped columns survive in the unknown bucket", func() {
			So(out[0].Unknown["Badge Color"], ShouldEqual, "teal")
			_, present := out[1].Unknown["Badge Color"]
			So(present, ShouldBeFalse)
		})

		Convey("Then null-like and untransformable cells yield no entry", func() {
			_, hasDate := out[1].Fields[model.FieldArrivalDate]
			So(hasDate, ShouldBeFalse)
			_, hasTime := out[1].Fields[model.FieldArrivalTime]
			So(hasTime, ShouldBeFalse)
			_, hasTransfer := out[1].Fields[model.FieldNeedsArrivalTransfer]
			So(hasTransfer, ShouldBeFalse)
		})
	})
}
