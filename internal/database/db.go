package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Options describes the MySQL connection.  Pool defaults are sized for
// this service's profile: short bursts of repository calls while an
// import is applied, near-idle the rest of the time.
type Options struct {
	User, Pass   string
	Host, Port   string
	Name         string
	MaxOpen      int           // 0 means 15
	MaxIdle      int           // 0 means 5
	ConnLifetime time.Duration // 0 means 30 minutes
}

// DSN renders the driver connection string.  parseTime maps DATETIME to
// time.Time and loc=UTC keeps scanned times consistent.  The guest store
// leans on the server's default utf8mb4 case-insensitive collation for
// its unique email index, so no collation override is passed.
func (o Options) DSN() string {
	auth := o.User
	if o.Pass != "" {
		auth = fmt.Sprintf("%s:%s", o.User, o.Pass)
	}
	return fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, o.Host, o.Port, o.Name)
}

// Open connects to MySQL and verifies the connection.
func Open(opts Options) (*sql.DB, error) {
	db, err := sql.Open("mysql", opts.DSN())
	if err != nil {
		return nil, err
	}

	maxOpen, maxIdle, lifetime := opts.MaxOpen, opts.MaxIdle, opts.ConnLifetime
	if maxOpen <= 0 {
		maxOpen = 15
	}
	if maxIdle <= 0 {
		maxIdle = 5
	}
	if lifetime <= 0 {
		lifetime = 30 * time.Minute
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(lifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}
