package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaDDL lists the CREATE statements for the service's tables, one
// statement per entry because the MySQL driver executes single
// statements only.  Every statement is idempotent so EnsureSchema can
// run on every start.
//
// Notes on the guests table: the import pipeline stores dates, times
// and flight numbers in their canonical string forms, so those
// columns are short VARCHARs rather than DATE/TIME; partial records
// keep empty strings, never NULLs.  The unique email key under the
// accent- and case-insensitive utf8mb4 collation is what makes guest
// identity case-insensitive while preserving the case the guest
// registered with.  Soft-deleted rows keep their email in the index,
// which is what forces a later import of the same person through the
// revive path instead of a blind insert.
var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS guests (
		id                       BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		email                    VARCHAR(255) NOT NULL,
		first_name               VARCHAR(120) NOT NULL DEFAULT '',
		last_name                VARCHAR(120) NOT NULL DEFAULT '',
		organization             VARCHAR(255) NOT NULL DEFAULT '',
		arrival_date             VARCHAR(10) NOT NULL DEFAULT '',
		arrival_time             VARCHAR(5) NOT NULL DEFAULT '',
		arrival_flight_number    VARCHAR(16) NOT NULL DEFAULT '',
		departure_date           VARCHAR(10) NOT NULL DEFAULT '',
		departure_time           VARCHAR(5) NOT NULL DEFAULT '',
		departure_flight_number  VARCHAR(16) NOT NULL DEFAULT '',
		hotel                    VARCHAR(255) NOT NULL DEFAULT '',
		check_in_date            VARCHAR(10) NOT NULL DEFAULT '',
		check_out_date           VARCHAR(10) NOT NULL DEFAULT '',
		needs_arrival_transfer   TINYINT(1) NOT NULL DEFAULT 0,
		needs_departure_transfer TINYINT(1) NOT NULL DEFAULT 0,
		extend_stay              TINYINT(1) NOT NULL DEFAULT 0,
		is_vip                   TINYINT(1) NOT NULL DEFAULT 0,
		registration_status      VARCHAR(64) NOT NULL DEFAULT '',
		notes                    TEXT NOT NULL,
		version                  INT UNSIGNED NOT NULL DEFAULT 1,
		deleted_at               DATETIME NULL,
		created_at               DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at               DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_guests_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_0900_ai_ci`,

	`CREATE TABLE IF NOT EXISTS vehicles (
		id       BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		name     VARCHAR(120) NOT NULL,
		type     VARCHAR(32) NOT NULL DEFAULT 'bus',
		capacity INT NOT NULL,
		PRIMARY KEY (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS transport_schedules (
		id           BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		vehicle_id   BIGINT UNSIGNED NOT NULL,
		direction    ENUM('arrival','departure') NOT NULL,
		service_date DATE NOT NULL,
		pickup_time  TIME NOT NULL,
		status       ENUM('active','cancelled') NOT NULL DEFAULT 'active',
		created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_schedules_direction_date (direction, service_date),
		CONSTRAINT fk_schedules_vehicle FOREIGN KEY (vehicle_id) REFERENCES vehicles (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS assignments (
		id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		guest_id    BIGINT UNSIGNED NOT NULL,
		schedule_id BIGINT UNSIGNED NOT NULL,
		direction   ENUM('arrival','departure') NOT NULL,
		created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_assignments_guest_direction (guest_id, direction),
		KEY idx_assignments_schedule (schedule_id),
		CONSTRAINT fk_assignments_guest FOREIGN KEY (guest_id) REFERENCES guests (id),
		CONSTRAINT fk_assignments_schedule FOREIGN KEY (schedule_id) REFERENCES transport_schedules (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS audit_log (
		id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		guest_id      BIGINT UNSIGNED NOT NULL,
		op            VARCHAR(16) NOT NULL,
		change_source VARCHAR(16) NOT NULL,
		session_id    VARCHAR(64) NOT NULL DEFAULT '',
		actor         VARCHAR(255) NOT NULL DEFAULT '',
		changes       JSON NOT NULL,
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_audit_guest (guest_id),
		KEY idx_audit_session (session_id),
		CONSTRAINT fk_audit_guest FOREIGN KEY (guest_id) REFERENCES guests (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema creates any missing tables.  It runs at startup before
// the server accepts traffic; vehicles and transport schedules are
// seeded by the operations team, so no rows are inserted here.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaDDL {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	return nil
}
