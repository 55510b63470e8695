package sqlite

import "github.com/bryanwahyu/codeguard/internal/infra/db/sqlstore"

var Dialect = sqlstore.Dialect{
	Name:      "sqlite",
	SeqColumn: "rowid",
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS code_analyses (
  id             TEXT PRIMARY KEY,
  filename       TEXT NOT NULL,
  language       TEXT NOT NULL,
  code           TEXT NOT NULL,
  status         TEXT NOT NULL DEFAULT 'pending',
  results        TEXT,
  critical       INTEGER NOT NULL DEFAULT 0,
  high           INTEGER NOT NULL DEFAULT 0,
  medium         INTEGER NOT NULL DEFAULT 0,
  low            INTEGER NOT NULL DEFAULT 0,
  findings_total INTEGER NOT NULL DEFAULT 0,
  duration_ms    INTEGER,
  failure_reason TEXT NOT NULL DEFAULT '',
  report_url     TEXT NOT NULL DEFAULT '',
  created_at     INTEGER NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_code_analyses_created ON code_analyses(created_at)`,
		`CREATE TABLE IF NOT EXISTS code_analysis_errors (
  id           INTEGER PRIMARY KEY AUTOINCREMENT,
  analysis_id  TEXT NOT NULL,
  phase        TEXT NOT NULL,
  message      TEXT NOT NULL,
  details_json TEXT NOT NULL,
  created_at   INTEGER NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_code_analysis_errors_analysis ON code_analysis_errors(analysis_id)`,
		`CREATE TABLE IF NOT EXISTS code_analysis_reviews (
  id          TEXT PRIMARY KEY,
  analysis_id TEXT NOT NULL,
  model       TEXT NOT NULL,
  content     TEXT NOT NULL,
  created_at  INTEGER NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_code_analysis_reviews_analysis ON code_analysis_reviews(analysis_id)`,
	},
}
