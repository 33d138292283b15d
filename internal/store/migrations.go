package store

// migration represents a single schema migration.
type migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered list of all schema migrations.
var migrations = []migration{
	{
		Version: 1,
		Name:    "create queries and agent results",
		SQL: `
			CREATE TABLE queries (
				id           TEXT PRIMARY KEY,
				text         TEXT NOT NULL,
				mode         TEXT NOT NULL,
				language     TEXT NOT NULL DEFAULT 'en',
				status       TEXT NOT NULL,
				combined     TEXT NOT NULL DEFAULT '',
				duration_ms  INTEGER NOT NULL DEFAULT 0,
				created_at   TEXT NOT NULL DEFAULT (datetime('now'))
			);

			CREATE INDEX idx_queries_created ON queries (created_at);
			CREATE INDEX idx_queries_mode ON queries (mode);

			CREATE TABLE agent_results (
				id           INTEGER PRIMARY KEY AUTOINCREMENT,
				query_id     TEXT NOT NULL REFERENCES queries(id) ON DELETE CASCADE,
				agent_id     TEXT NOT NULL,
				kind         TEXT NOT NULL,
				content      TEXT NOT NULL DEFAULT '',
				failed       INTEGER NOT NULL DEFAULT 0,
				error        TEXT NOT NULL DEFAULT '',
				duration_ms  INTEGER NOT NULL DEFAULT 0,
				position     INTEGER NOT NULL DEFAULT 0
			);

			CREATE INDEX idx_agent_results_query ON agent_results (query_id, position);
		`,
	},
}
