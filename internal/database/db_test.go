package database

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestOptionsDSN(t *testing.T) {
	Convey("Given connection options", t, func() {
		opts := Options{User: "coord", Host: "db.internal", Port: "3306", Name: "guest_transport"}

		Convey("Without a password the auth part is just the user", func() {
			So(opts.DSN(), ShouldEqual,
				"coord@tcp(db.internal:3306)/guest_transport?charset=utf8mb4&parseTime=true&loc=UTC")
		})

		Convey("With a password the auth part becomes user:pass", func() {
			opts.Pass = "s3cret"
			So(opts.DSN(), ShouldStartWith, "coord:s3cret@tcp(db.internal:3306)/")
		})
	})
}
