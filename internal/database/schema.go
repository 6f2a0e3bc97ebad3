package database

import (
	"context"
	"fmt"
)

// Timestamps are stored as unix milliseconds (BIGINT) so ordering and the
// message pagination cursor behave identically on every dialect.

var schemaMySQL = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            VARCHAR(36)  NOT NULL PRIMARY KEY,
		username      VARCHAR(64)  CHARACTER SET utf8mb4 COLLATE utf8mb4_bin NOT NULL,
		password_hash VARCHAR(100) NOT NULL,
		created_at    BIGINT       NOT NULL,
		UNIQUE KEY uq_users_username (username)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS campaigns (
		id          VARCHAR(36)  NOT NULL PRIMARY KEY,
		name        VARCHAR(255) NOT NULL,
		description TEXT         NOT NULL,
		owner_id    VARCHAR(36)  NOT NULL,
		owner_name  VARCHAR(64)  NOT NULL,
		max_players INT          NOT NULL,
		created_at  BIGINT       NOT NULL,
		KEY idx_campaigns_created (created_at),
		CONSTRAINT fk_campaigns_owner FOREIGN KEY (owner_id) REFERENCES users (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS campaign_players (
		campaign_id VARCHAR(36) NOT NULL,
		player_id   VARCHAR(36) NOT NULL,
		player_name VARCHAR(64) NOT NULL,
		joined_at   BIGINT      NOT NULL,
		PRIMARY KEY (campaign_id, player_id),
		KEY idx_campaign_players_player (player_id),
		CONSTRAINT fk_players_campaign FOREIGN KEY (campaign_id) REFERENCES campaigns (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS characters (
		id                 BIGINT AUTO_INCREMENT PRIMARY KEY,
		user_id            VARCHAR(36)  NOT NULL,
		campaign_id        VARCHAR(36)  NULL,
		name               VARCHAR(255) NOT NULL,
		char_class         VARCHAR(64)  NOT NULL,
		level              INT          NOT NULL,
		race               VARCHAR(64)  NULL,
		background         VARCHAR(255) NULL,
		alignment          VARCHAR(64)  NULL,
		backstory          TEXT         NULL,
		notes              TEXT         NULL,
		strength           INT NOT NULL,
		dexterity          INT NOT NULL,
		constitution       INT NOT NULL,
		intelligence       INT NOT NULL,
		wisdom             INT NOT NULL,
		charisma           INT NOT NULL,
		armor_class        INT NOT NULL,
		max_hp             INT NOT NULL,
		current_hp         INT NOT NULL,
		speed              INT NOT NULL,
		proficiency_bonus  INT NOT NULL,
		hit_dice_total     INT NOT NULL,
		hit_dice_remaining INT NOT NULL,
		hit_die_type       VARCHAR(8) NOT NULL,
		created_at         BIGINT NOT NULL,
		KEY idx_characters_user (user_id),
		KEY idx_characters_campaign (campaign_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS chat_messages (
		id           VARCHAR(36) NOT NULL PRIMARY KEY,
		campaign_id  VARCHAR(36) NOT NULL,
		sender_id    VARCHAR(36) NOT NULL,
		sender_name  VARCHAR(64) NOT NULL,
		content      TEXT        NOT NULL,
		message_type VARCHAR(8)  NOT NULL,
		sent_at      BIGINT      NOT NULL,
		is_to_gm     BOOLEAN     NOT NULL DEFAULT FALSE,
		KEY idx_chat_messages_campaign_ts (campaign_id, sent_at),
		CONSTRAINT fk_messages_campaign FOREIGN KEY (campaign_id) REFERENCES campaigns (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

var schemaSQLite = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT    NOT NULL PRIMARY KEY,
		username      TEXT    NOT NULL UNIQUE,
		password_hash TEXT    NOT NULL,
		created_at    INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS campaigns (
		id          TEXT    NOT NULL PRIMARY KEY,
		name        TEXT    NOT NULL,
		description TEXT    NOT NULL DEFAULT '',
		owner_id    TEXT    NOT NULL REFERENCES users (id),
		owner_name  TEXT    NOT NULL,
		max_players INTEGER NOT NULL,
		created_at  INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_campaigns_created ON campaigns (created_at)`,
	`CREATE TABLE IF NOT EXISTS campaign_players (
		campaign_id TEXT    NOT NULL REFERENCES campaigns (id) ON DELETE CASCADE,
		player_id   TEXT    NOT NULL,
		player_name TEXT    NOT NULL,
		joined_at   INTEGER NOT NULL,
		PRIMARY KEY (campaign_id, player_id)
	)`,
	`CREATE TABLE IF NOT EXISTS characters (
		id                 INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id            TEXT    NOT NULL,
		campaign_id        TEXT    NULL,
		name               TEXT    NOT NULL,
		char_class         TEXT    NOT NULL,
		level              INTEGER NOT NULL,
		race               TEXT    NULL,
		background         TEXT    NULL,
		alignment          TEXT    NULL,
		backstory          TEXT    NULL,
		notes              TEXT    NULL,
		strength           INTEGER NOT NULL,
		dexterity          INTEGER NOT NULL,
		constitution       INTEGER NOT NULL,
		intelligence       INTEGER NOT NULL,
		wisdom             INTEGER NOT NULL,
		charisma           INTEGER NOT NULL,
		armor_class        INTEGER NOT NULL,
		max_hp             INTEGER NOT NULL,
		current_hp         INTEGER NOT NULL,
		speed              INTEGER NOT NULL,
		proficiency_bonus  INTEGER NOT NULL,
		hit_dice_total     INTEGER NOT NULL,
		hit_dice_remaining INTEGER NOT NULL,
		hit_die_type       TEXT    NOT NULL,
		created_at         INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_characters_user ON characters (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_characters_campaign ON characters (campaign_id)`,
	`CREATE TABLE IF NOT EXISTS chat_messages (
		id           TEXT    NOT NULL PRIMARY KEY,
		campaign_id  TEXT    NOT NULL REFERENCES campaigns (id) ON DELETE CASCADE,
		sender_id    TEXT    NOT NULL,
		sender_name  TEXT    NOT NULL,
		content      TEXT    NOT NULL,
		message_type TEXT    NOT NULL,
		sent_at      INTEGER NOT NULL,
		is_to_gm     BOOLEAN NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_chat_messages_campaign_ts ON chat_messages (campaign_id, sent_at)`,
}

var schemaPostgres = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            VARCHAR(36)  NOT NULL PRIMARY KEY,
		username      VARCHAR(64)  NOT NULL UNIQUE,
		password_hash VARCHAR(100) NOT NULL,
		created_at    BIGINT       NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS campaigns (
		id          VARCHAR(36)  NOT NULL PRIMARY KEY,
		name        VARCHAR(255) NOT NULL,
		description TEXT         NOT NULL DEFAULT '',
		owner_id    VARCHAR(36)  NOT NULL REFERENCES users (id),
		owner_name  VARCHAR(64)  NOT NULL,
		max_players INTEGER      NOT NULL,
		created_at  BIGINT       NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_campaigns_created ON campaigns (created_at)`,
	`CREATE TABLE IF NOT EXISTS campaign_players (
		campaign_id VARCHAR(36) NOT NULL REFERENCES campaigns (id) ON DELETE CASCADE,
		player_id   VARCHAR(36) NOT NULL,
		player_name VARCHAR(64) NOT NULL,
		joined_at   BIGINT      NOT NULL,
		PRIMARY KEY (campaign_id, player_id)
	)`,
	`CREATE TABLE IF NOT EXISTS characters (
		id                 BIGSERIAL PRIMARY KEY,
		user_id            VARCHAR(36)  NOT NULL,
		campaign_id        VARCHAR(36)  NULL,
		name               VARCHAR(255) NOT NULL,
		char_class         VARCHAR(64)  NOT NULL,
		level              INTEGER      NOT NULL,
		race               VARCHAR(64)  NULL,
		background         VARCHAR(255) NULL,
		alignment          VARCHAR(64)  NULL,
		backstory          TEXT         NULL,
		notes              TEXT         NULL,
		strength           INTEGER NOT NULL,
		dexterity          INTEGER NOT NULL,
		constitution       INTEGER NOT NULL,
		intelligence       INTEGER NOT NULL,
		wisdom             INTEGER NOT NULL,
		charisma           INTEGER NOT NULL,
		armor_class        INTEGER NOT NULL,
		max_hp             INTEGER NOT NULL,
		current_hp         INTEGER NOT NULL,
		speed              INTEGER NOT NULL,
		proficiency_bonus  INTEGER NOT NULL,
		hit_dice_total     INTEGER NOT NULL,
		hit_dice_remaining INTEGER NOT NULL,
		hit_die_type       VARCHAR(8) NOT NULL,
		created_at         BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_characters_user ON characters (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_characters_campaign ON characters (campaign_id)`,
	`CREATE TABLE IF NOT EXISTS chat_messages (
		id           VARCHAR(36) NOT NULL PRIMARY KEY,
		campaign_id  VARCHAR(36) NOT NULL REFERENCES campaigns (id) ON DELETE CASCADE,
		sender_id    VARCHAR(36) NOT NULL,
		sender_name  VARCHAR(64) NOT NULL,
		content      TEXT        NOT NULL,
		message_type VARCHAR(8)  NOT NULL,
		sent_at      BIGINT      NOT NULL,
		is_to_gm     BOOLEAN     NOT NULL DEFAULT FALSE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_chat_messages_campaign_ts ON chat_messages (campaign_id, sent_at)`,
}

// Migrate creates the tables if they do not exist yet.
func Migrate(ctx context.Context, db *DB) error {
	var stmts []string
	switch db.dialect {
	case MySQL:
		stmts = schemaMySQL
	case Postgres:
		stmts = schemaPostgres
	default:
		stmts = schemaSQLite
	}
	for i, stmt := range stmts {
		if _, err := db.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate statement %d: %w", i+1, err)
		}
	}
	return nil
}
