package postgres

import "github.com/bryanwahyu/codeguard/internal/infra/db/sqlstore"

var Dialect = sqlstore.Dialect{
	Name:      "postgres",
	Numbered:  true,
	Returning: true, // lib/pq has no LastInsertId
	SeqColumn: "seq",
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS code_analyses (
  seq            BIGSERIAL,
  id             VARCHAR(64)  PRIMARY KEY,
  filename       TEXT         NOT NULL,
  language       VARCHAR(32)  NOT NULL,
  code           TEXT         NOT NULL,
  status         VARCHAR(16)  NOT NULL DEFAULT 'pending',
  results        TEXT,
  critical       INT          NOT NULL DEFAULT 0,
  high           INT          NOT NULL DEFAULT 0,
  medium         INT          NOT NULL DEFAULT 0,
  low            INT          NOT NULL DEFAULT 0,
  findings_total INT          NOT NULL DEFAULT 0,
  duration_ms    BIGINT,
  failure_reason VARCHAR(32)  NOT NULL DEFAULT '',
  report_url     TEXT         NOT NULL DEFAULT '',
  created_at     BIGINT       NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_code_analyses_created ON code_analyses (created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_code_analyses_status ON code_analyses (status)`,
		`CREATE TABLE IF NOT EXISTS code_analysis_errors (
  id           BIGSERIAL    PRIMARY KEY,
  analysis_id  VARCHAR(64)  NOT NULL,
  phase        VARCHAR(32)  NOT NULL,
  message      TEXT         NOT NULL,
  details_json JSONB        NOT NULL,
  created_at   BIGINT       NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_code_analysis_errors_analysis ON code_analysis_errors (analysis_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS code_analysis_reviews (
  id          VARCHAR(64)  PRIMARY KEY,
  analysis_id VARCHAR(64)  NOT NULL,
  model       VARCHAR(128) NOT NULL,
  content     TEXT         NOT NULL,
  created_at  BIGINT       NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_code_analysis_reviews_analysis ON code_analysis_reviews (analysis_id, created_at)`,
	},
}
