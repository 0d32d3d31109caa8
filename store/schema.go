package store

// Schema holds every document kind in one table. version is only bumped for
// positions; journal entries are written once and stay at zero.
const Schema = `
CREATE TABLE IF NOT EXISTS documents (
	kind TEXT NOT NULL,
	id TEXT NOT NULL,
	position_id TEXT NOT NULL DEFAULT '',
	version INTEGER NOT NULL,
	codec TEXT NOT NULL,
	body BLOB NOT NULL,
	updated_at DATETIME NOT NULL,
	PRIMARY KEY (kind, id)
);

CREATE INDEX IF NOT EXISTS idx_documents_position ON documents(kind, position_id);
`

const (
	kindPosition = "position"
	kindJournal  = "journal"
)
