package sqlite

// Schema is the embedded SQLite schema, applied on open. All statements are
// idempotent so reopening an existing database is safe.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
	id             TEXT PRIMARY KEY,
	email          TEXT NOT NULL UNIQUE,
	username       TEXT NOT NULL UNIQUE,
	password_hash  TEXT NOT NULL,
	full_name      TEXT NOT NULL DEFAULT '',
	joined_at      TIMESTAMP NOT NULL,
	last_active_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS companion_states (
	user_id            TEXT PRIMARY KEY,
	mood               TEXT NOT NULL,
	energy             INTEGER NOT NULL,
	bond_level         INTEGER NOT NULL,
	trust_level        INTEGER NOT NULL,
	intimacy_level     INTEGER NOT NULL,
	last_interaction   TIMESTAMP NOT NULL,
	total_interactions INTEGER NOT NULL DEFAULT 0,
	personality        TEXT NOT NULL,
	experience_points  INTEGER NOT NULL DEFAULT 0,
	skills             TEXT NOT NULL DEFAULT '{}',
	created_at         TIMESTAMP NOT NULL,
	updated_at         TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	content    TEXT NOT NULL,
	is_user    INTEGER NOT NULL,
	emotion    TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_user_created
	ON messages(user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS memories (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	content    TEXT NOT NULL,
	topic      TEXT NOT NULL DEFAULT '',
	emotion    TEXT NOT NULL DEFAULT '',
	embedding  BLOB,
	created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_memories_user_created
	ON memories(user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS settings (
	scope      TEXT NOT NULL DEFAULT '',
	key        TEXT NOT NULL,
	value      TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (scope, key)
);
`
