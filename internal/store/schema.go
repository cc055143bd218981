package store

// schemaVersion1 is the initial schema.
const schemaVersion1 = 1

// currentSchemaVersion is the target schema version for this build.
const currentSchemaVersion = schemaVersion1

var schemaV1 = `
CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL);

CREATE TABLE IF NOT EXISTS datasets (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	name        TEXT NOT NULL UNIQUE,
	source      TEXT,
	imported_at TEXT NOT NULL
);

-- n is stored as decimal text: trial inputs are arbitrary precision
-- and SQLite INTEGER caps at 64 bits.
CREATE TABLE IF NOT EXISTS trials (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	dataset_id     INTEGER NOT NULL REFERENCES datasets(id) ON DELETE CASCADE,
	n              TEXT NOT NULL,
	bit_len        INTEGER NOT NULL,
	probably_prime INTEGER NOT NULL,
	elapsed_ns     INTEGER NOT NULL,
	witness        TEXT,
	really_prime   INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trials_dataset_bits ON trials(dataset_id, bit_len);
`
