package importer_test

import (
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/summitops/guest-transport/internal/importer"
	"github.com/summitops/guest-transport/internal/model"
)

func TestInferCellKind(t *testing.T) {
	Convey("Given the cell type inferencer", t, func() {
		cases := map[string]model.CellKind{
			"":                  model.KindEmpty,
			"   ":               model.KindEmpty,
			"ada@example.com":   model.KindEmail,
			"Ada.L+x@ex.co.uk":  model.KindEmail,
			"2026-09-14":        model.KindDate,
			"2026-09-14 10:00":  model.KindDate,
			"14/09/2026":        model.KindDate,
			"14.09.26":          model.KindDate,
			"9 Sep 2026":        model.KindDate,
			"14:30":             model.KindTime,
			"9:05:00":           model.KindTime,
			"-1:30":             model.KindTime,
			"42":                model.KindNumber,
			"-7":                model.KindNumber,
			"3.14":              model.KindDecimal,
			"3,14":              model.KindDecimal,
			"yes":               model.KindBoolean,
			"N":                 model.KindBoolean,
			"TRUE":              model.KindBoolean,
			"null":              model.KindNull,
			"N/A":               model.KindNull,
			"-":                 model.KindNull,
			"none":              model.KindNull,
			"Ada Lovelace":      model.KindText,
			"BA117":             model.KindText,
			"Grand Hotel, 4th":  model.KindText,
		}

		Convey("Then every sample resolves to its expected kind", func() {
			for raw, want := range cases {
				So(importer.InferCellKind(raw), ShouldEqual, want)
			}
		})

		Convey("Then ambiguous values resolve by the fixed order", func() {
			// "1" is a number before it is a boolean synonym.
			So(importer.InferCellKind("1"), ShouldEqual, model.KindNumber)
			So(importer.InferCellKind("0"), ShouldEqual, model.KindNumber)
		})
	})
}

func TestExpectedKindForHeader(t *testing.T) {
	Convey("Given the header expectation heuristics", t, func() {
		cases := map[string]model.CellKind{
			"Email":               model.KindEmail,
			"E-mail Address":      model.KindEmail,
			"Arrival Date":        model.KindDate,
			"Departure":           model.KindDate,
			"Hotel Check-in":      model.KindDate,
			"Arrival Time":        model.KindTime,
			"First Name":          model.KindText,
			"Surname (Last)":      model.KindText,
			"Guest ID":            model.KindNumber,
			"Room Count":          model.KindNumber,
			"Hotel":               "",
			"Notes":               "",
			"Paid":                "",
			"Arrival Flight":      "",
			"Flight Number (Dep)": "",
		}
		Convey("Then headers map to the right expectation", func() {
			for header, want := range cases {
				So(importer.ExpectedKindForHeader(header), ShouldEqual, want)
			}
		})
	})
}

func TestValidateCells(t *testing.T) {
	Convey("Given rows with suspicious cells", t, func() {
		columns := []string{"Email", "Arrival Date", "Arrival Time", "Notes"}
		rows := []model.RawRow{
			rawRow(2, columns, "ada@example.com", "2026-09-14", "14:30", "fine"),
			rawRow(3, columns, "not-an-email", "soon", "later", "2026-01-01"),
			rawRow(4, columns, "n/a", "45915", "", "yes"),
		}

		issues := importer.ValidateCells(columns, rows)

		Convey("Then the email and date violations are errors", func() {
			So(findIssue(issues, 3, "Email"), ShouldNotBeNil)
			So(findIssue(issues, 3, "Email").Severity, ShouldEqual, model.SeverityError)
			So(findIssue(issues, 3, "Arrival Date"), ShouldNotBeNil)
			So(findIssue(issues, 3, "Arrival Date").Severity, ShouldEqual, model.SeverityError)
		})

		Convey("Then the time violation is only a warning", func() {
			issue := findIssue(issues, 3, "Arrival Time")
			So(issue, ShouldNotBeNil)
			So(issue.Severity, ShouldEqual, model.SeverityWarning)
		})

		Convey("Then benign cells raise nothing", func() {
			// clean row
			So(findIssue(issues, 2, "Email"), ShouldBeNil)
			// null synonym in an email column
			So(findIssue(issues, 4, "Email"), ShouldBeNil)
			// spreadsheet serial number in a date column
			So(findIssue(issues, 4, "Arrival Date"), ShouldBeNil)
			// a date in a free-text column
			So(findIssue(issues, 3, "Notes"), ShouldBeNil)
		})

		Convey("Then errors sort before warnings", func() {
			So(len(issues), ShouldBeGreaterThanOrEqualTo, 2)
			So(issues[0].Severity, ShouldEqual, model.SeverityError)
		})
	})

	Convey("Given a column that mixes many value types", t, func() {
		columns := []string{"Chaos"}
		rows := []model.RawRow{
			rawRow(2, columns, "hello"),
			rawRow(3, columns, "42"),
			rawRow(4, columns, "2026-09-14"),
			rawRow(5, columns, "yes"),
		}

		issues := importer.ValidateCells(columns, rows)

		Convey("Then a column-level info issue reports the mix", func() {
			So(len(issues), ShouldEqual, 1)
			So(issues[0].Row, ShouldEqual, 0)
			So(issues[0].Column, ShouldEqual, "Chaos")
			So(issues[0].Severity, ShouldEqual, model.SeverityInfo)
		})
	})

	Convey("Given a file with failures on every row", t, func() {
		columns := []string{"Email"}
		var rows []model.RawRow
		for i := 0; i < 80; i++ {
			rows = append(rows, rawRow(i+2, columns, fmt.Sprintf("broken value %d", i)))
		}

		issues := importer.ValidateCells(columns, rows)

		Convey("Then the report is capped", func() {
			So(len(issues), ShouldEqual, 50)
		})
	})
}

func rawRow(n int, columns []string, values ...string) model.RawRow {
	cells := make(map[string]model.Cell, len(columns))
	for i, col := range columns {
		v := ""
		if i < len(values) {
			v = values[i]
		}
		cells[col] = model.Cell{Kind: importer.InferCellKind(v), Raw: v}
	}
	return model.RawRow{Row: n, Cells: cells}
}

func findIssue(issues []model.CellIssue, row int, column string) *model.CellIssue {
	for i := range issues {
		if issues[i].Row == row && issues[i].Column == column {
			return &issues[i]
		}
	}
	return nil
}
