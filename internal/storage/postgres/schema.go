// Package postgres provides a PostgreSQL memory store with pgvector
// similarity recall. It only covers memories; the rest of the data lives in
// SQLite regardless of the memory engine.
package postgres

// Schema is applied on open. All statements use IF NOT EXISTS so reopening an
// existing database is safe. The embedding column is added by a separate
// migration that only runs when the pgvector extension is present.
const Schema = `
CREATE TABLE IF NOT EXISTS memories (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	content    TEXT NOT NULL,
	topic      TEXT NOT NULL DEFAULT '',
	emotion    TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_pg_memories_user_created
	ON memories(user_id, created_at DESC);
`

// MigrationPgvector adds the vector column used for similarity recall.
// 768 dimensions matches nomic-embed-text, the default embedding model.
const MigrationPgvector = `
ALTER TABLE memories ADD COLUMN IF NOT EXISTS embedding vector(768);
`
