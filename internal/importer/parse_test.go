package importer_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/xuri/excelize/v2"

	"github.com/summitops/guest-transport/internal/importer"
	"github.com/summitops/guest-transport/internal/model"
)

func TestParseSpreadsheetCSV(t *testing.T) {
	Convey("Given a plain CSV upload", t, func() {
		data := []byte("Email,First Name,Arrival Date\nada@example.com,Ada,2026-09-14\nalan@example.com,Alan,45915\n")

		res, err := importer.ParseSpreadsheet("roster.csv", data)

		Convey("Then headers and typed rows come back", func() {
			So(err, ShouldBeNil)
			So(res.Columns, ShouldResemble, []string{"Email", "First Name", "Arrival Date"})
			So(len(res.Rows), ShouldEqual, 2)
			So(res.Rows[0].Row, ShouldEqual, 2)
			So(res.Rows[0].Cells["Email"].Kind, ShouldEqual, model.KindEmail)
			So(res.Rows[0].Cells["Arrival Date"].Kind, ShouldEqual, model.KindDate)
			So(res.Rows[1].Cells["Arrival Date"].Kind, ShouldEqual, model.KindNumber)
			So(res.Rows[1].Cells["Arrival Date"].Raw, ShouldEqual, "45915")
		})
	})

	Convey("Given a semicolon-separated export", t, func() {
		data := []byte("Email;First Name\nada@example.com;Ada\n")

		res, err := importer.ParseSpreadsheet("roster.csv", data)

		Convey("Then the delimiter is sniffed", func() {
			So(err, ShouldBeNil)
			So(res.Columns, ShouldResemble, []string{"Email", "First Name"})
			So(res.Rows[0].Cells["First Name"].Raw, ShouldEqual, "Ada")
		})
	})

	Convey("Given a UTF-8 BOM", t, func() {
		data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Email\nada@example.com\n")...)

		res, err := importer.ParseSpreadsheet("roster.csv", data)

		Convey("Then the BOM does not corrupt the first header", func() {
			So(err, ShouldBeNil)
			So(res.Columns, ShouldResemble, []string{"Email"})
		})
	})

	Convey("Given a UTF-16 little-endian export", t, func() {
		data := utf16le("Email,First Name\nada@example.com,Ada\n")

		res, err := importer.ParseSpreadsheet("roster.csv", data)

		Convey("Then it decodes transparently", func() {
			So(err, ShouldBeNil)
			So(res.Columns, ShouldResemble, []string{"Email", "First Name"})
			So(res.Rows[0].Cells["Email"].Raw, ShouldEqual, "ada@example.com")
		})
	})

	Convey("Given ragged rows", t, func() {
		data := []byte("Email,First Name,Hotel\nada@example.com,Ada\nalan@example.com,Alan,Grand,EXTRA\n")

		res, err := importer.ParseSpreadsheet("roster.csv", data)

		Convey("Then short rows pad, long rows truncate, both with warnings", func() {
			So(err, ShouldBeNil)
			So(len(res.Rows), ShouldEqual, 2)
			So(res.Rows[0].Cells["Hotel"].Kind, ShouldEqual, model.KindEmpty)
			So(res.Rows[1].Cells["Hotel"].Raw, ShouldEqual, "Grand")
			So(len(res.Warnings), ShouldEqual, 2)
		})
	})

	Convey("Given duplicate headers", t, func() {
		data := []byte("Email,Email,Name\na@example.com,b@example.com,Ada\n")

		res, err := importer.ParseSpreadsheet("roster.csv", data)

		Convey("Then the second occurrence is disambiguated", func() {
			So(err, ShouldBeNil)
			So(res.Columns, ShouldResemble, []string{"Email", "Email (2)", "Name"})
			So(res.Rows[0].Cells["Email (2)"].Raw, ShouldEqual, "b@example.com")
		})
	})

	Convey("Given unusable files", t, func() {
		Convey("Then an empty file is rejected", func() {
			_, err := importer.ParseSpreadsheet("roster.csv", nil)
			So(err, ShouldEqual, importer.ErrEmptyFile)
		})

		Convey("Then a header-only file is rejected", func() {
			_, err := importer.ParseSpreadsheet("roster.csv", []byte("Email,First Name\n"))
			So(err, ShouldEqual, importer.ErrNoDataRows)

			Convey("And blank lines under the header do not count as data", func() {
				_, err := importer.ParseSpreadsheet("roster.csv", []byte("Email,First Name\n,\n,\n"))
				So(err, ShouldEqual, importer.ErrNoDataRows)
			})
		})
	})
}

func TestParseSpreadsheetXLSX(t *testing.T) {
	Convey("Given a workbook with an instructions tab and a roster tab", t, func() {
		f := excelize.NewFile()
		_, err := f.NewSheet("Roster")
		So(err, ShouldBeNil)
		So(f.SetCellValue("Sheet1", "A1", "read me first"), ShouldBeNil)

		for i, line := range [][]interface{}{
			{"Email", "First Name", "Arrival Date"},
			{"ada@example.com", "Ada", "2026-09-14"},
			{"alan@example.com", "Alan", 45915},
		} {
			for j, v := range line {
				cell, err := excelize.CoordinatesToCellName(j+1, i+1)
				So(err, ShouldBeNil)
				So(f.SetCellValue("Roster", cell, v), ShouldBeNil)
			}
		}

		buf, err := f.WriteToBuffer()
		So(err, ShouldBeNil)
		So(f.Close(), ShouldBeNil)

		res, err := importer.ParseSpreadsheet("roster.xlsx", buf.Bytes())

		Convey("Then the data-rich sheet wins and cells come back raw", func() {
			So(err, ShouldBeNil)
			So(res.Columns, ShouldResemble, []string{"Email", "First Name", "Arrival Date"})
			So(len(res.Rows), ShouldEqual, 2)
			So(res.Rows[0].Cells["Email"].Raw, ShouldEqual, "ada@example.com")
			So(res.Rows[1].Cells["Arrival Date"].Kind, ShouldEqual, model.KindNumber)
		})
	})
}

// utf16le encodes ASCII text as UTF-16LE with a byte order mark.
func utf16le(s string) []byte {
	b := []byte{0xFF, 0xFE}
	for _, r := range s {
		b = append(b, byte(r), 0x00)
	}
	return b
}
