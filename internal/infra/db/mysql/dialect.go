package mysql

import "github.com/bryanwahyu/codeguard/internal/infra/db/sqlstore"

// Dialect for MySQL 8. Timestamps are unix nanoseconds.
var Dialect = sqlstore.Dialect{
	Name:      "mysql",
	SeqColumn: "seq",
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS code_analyses (
  seq            BIGINT        NOT NULL AUTO_INCREMENT UNIQUE,
  id             VARCHAR(64)   NOT NULL PRIMARY KEY,
  filename       VARCHAR(512)  NOT NULL,
  language       VARCHAR(32)   NOT NULL,
  code           LONGTEXT      NOT NULL,
  status         VARCHAR(16)   NOT NULL DEFAULT 'pending',
  results        LONGTEXT      NULL,
  critical       INT           NOT NULL DEFAULT 0,
  high           INT           NOT NULL DEFAULT 0,
  medium         INT           NOT NULL DEFAULT 0,
  low            INT           NOT NULL DEFAULT 0,
  findings_total INT           NOT NULL DEFAULT 0,
  duration_ms    BIGINT        NULL,
  failure_reason VARCHAR(32)   NOT NULL DEFAULT '',
  report_url     VARCHAR(1024) NOT NULL DEFAULT '',
  created_at     BIGINT        NOT NULL,
  INDEX idx_code_analyses_created (created_at),
  INDEX idx_code_analyses_status (status)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS code_analysis_errors (
  id           BIGINT       NOT NULL AUTO_INCREMENT PRIMARY KEY,
  analysis_id  VARCHAR(64)  NOT NULL,
  phase        VARCHAR(32)  NOT NULL,
  message      TEXT         NOT NULL,
  details_json JSON         NOT NULL,
  created_at   BIGINT       NOT NULL,
  INDEX idx_code_analysis_errors_analysis (analysis_id, created_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS code_analysis_reviews (
  id          VARCHAR(64)  NOT NULL PRIMARY KEY,
  analysis_id VARCHAR(64)  NOT NULL,
  model       VARCHAR(128) NOT NULL,
  content     LONGTEXT     NOT NULL,
  created_at  BIGINT       NOT NULL,
  INDEX idx_code_analysis_reviews_analysis (analysis_id, created_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	},
}
