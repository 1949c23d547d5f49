package database

import (
	"context"
	"database/sql"
)

// schema holds the DDL for every table the API touches.  Statements are
// idempotent so EnsureSchema can run on every startup.  Order matters:
// tasks references both users and categories.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id              BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		email           VARCHAR(255)    NOT NULL,
		password_hash   VARCHAR(255)    NOT NULL,
		is_active       TINYINT(1)      NOT NULL DEFAULT 1,
		created_at      DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS categories (
		id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		name        VARCHAR(100)    NOT NULL,
		description VARCHAR(500)    NULL,
		created_at  DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS tasks (
		id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		owner_id    BIGINT UNSIGNED NOT NULL,
		category_id BIGINT UNSIGNED NULL,
		title       VARCHAR(200)    NOT NULL,
		description VARCHAR(1000)   NULL,
		priority    VARCHAR(10)     NOT NULL DEFAULT 'Media',
		completed   TINYINT(1)      NOT NULL DEFAULT 0,
		created_at  DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at  DATETIME        NULL,
		PRIMARY KEY (id),
		KEY idx_tasks_owner (owner_id),
		KEY idx_tasks_category (category_id),
		CONSTRAINT fk_tasks_owner FOREIGN KEY (owner_id) REFERENCES users (id),
		CONSTRAINT fk_tasks_category FOREIGN KEY (category_id) REFERENCES categories (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		user_id    BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64)        NOT NULL,
		expires_at DATETIME        NOT NULL,
		revoked_at DATETIME        NULL,
		created_at DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_refresh_tokens_hash (token_hash),
		KEY idx_refresh_tokens_user (user_id),
		CONSTRAINT fk_refresh_tokens_user FOREIGN KEY (user_id) REFERENCES users (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema creates any missing tables.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
