package mysqlrepo

import (
	"context"
	"database/sql"
	"fmt"
)

// schema creates the three tables when missing.  Friends carry a stored
// generated column active_email which is NULL for removed rows, so the
// unique key on (owner_id, active_email) only constrains active friends.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		first_name    VARCHAR(100)    NOT NULL,
		last_name     VARCHAR(100)    NOT NULL,
		email         VARCHAR(255)    NOT NULL,
		password_hash VARCHAR(255)    NOT NULL,
		is_active     TINYINT(1)      NOT NULL DEFAULT 1,
		last_login    DATETIME(6)     NULL,
		created_at    DATETIME(6)     NOT NULL,
		updated_at    DATETIME(6)     NOT NULL,
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS friends (
		id           BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		owner_id     BIGINT UNSIGNED NOT NULL,
		username     VARCHAR(50)     NOT NULL,
		email        VARCHAR(255)    NOT NULL,
		lat          DOUBLE          NOT NULL,
		lng          DOUBLE          NOT NULL,
		status       VARCHAR(20)     NOT NULL DEFAULT 'Unknown',
		last_updated DATETIME(6)     NOT NULL,
		is_active    TINYINT(1)      NOT NULL DEFAULT 1,
		active_email VARCHAR(255)    AS (IF(is_active = 1, email, NULL)) STORED,
		created_at   DATETIME(6)     NOT NULL,
		updated_at   DATETIME(6)     NOT NULL,
		UNIQUE KEY uq_friends_owner_active_email (owner_id, active_email),
		KEY idx_friends_owner (owner_id, is_active, created_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS locations (
		id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		owner_id    BIGINT UNSIGNED NOT NULL,
		name        VARCHAR(255)    NOT NULL,
		type        VARCHAR(32)     NOT NULL DEFAULT 'Other',
		lat         DOUBLE          NOT NULL,
		lng         DOUBLE          NOT NULL,
		description TEXT            NOT NULL,
		created_at  DATETIME(6)     NOT NULL,
		updated_at  DATETIME(6)     NOT NULL,
		KEY idx_locations_owner (owner_id, created_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate applies the schema.  Every statement is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	return nil
}
