package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bryanwahyu/codeguard/internal/config"
	"github.com/bryanwahyu/codeguard/internal/domain/analyses"
	"github.com/bryanwahyu/codeguard/internal/domain/reviews"
	"github.com/bryanwahyu/codeguard/internal/domain/scanerrors"
	"github.com/bryanwahyu/codeguard/internal/infra/db/memory"
	"github.com/bryanwahyu/codeguard/internal/infra/db/mysql"
	"github.com/bryanwahyu/codeguard/internal/infra/db/postgres"
	"github.com/bryanwahyu/codeguard/internal/infra/db/sqlite"
	"github.com/bryanwahyu/codeguard/internal/infra/db/sqlstore"
)

// Stores groups the repositories of one backend.
type Stores struct {
	Analyses   analyses.Repository
	ScanErrors scanerrors.Repository
	Reviews    reviews.Repository

	db *sql.DB
}

// Ping reports backend readiness; memory is always ready.
func (s *Stores) Ping(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	return s.db.PingContext(ctx)
}

func (s *Stores) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Open connects the configured backend and ensures its schema.
func Open(ctx context.Context, cfg *config.Config) (*Stores, error) {
	var (
		conn *sql.DB
		d    sqlstore.Dialect
		err  error
	)
	dsn := cfg.StoreDSN()
	switch cfg.Store.Driver {
	case "memory":
		return &Stores{
			Analyses:   memory.NewAnalysisRepository(),
			ScanErrors: memory.NewScanErrorRepository(),
			Reviews:    memory.NewReviewRepository(),
		}, nil
	case "mysql":
		conn, err = mysql.Connect(ctx, dsn)
		d = mysql.Dialect
	case "postgres":
		conn, err = postgres.Connect(ctx, dsn)
		d = postgres.Dialect
	case "sqlite":
		conn, err = sqlite.Open(ctx, dsn)
		d = sqlite.Dialect
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("%s connect: %w", cfg.Store.Driver, err)
	}
	if err := sqlstore.EnsureSchema(ctx, conn, d); err != nil {
		conn.Close()
		return nil, err
	}
	return &Stores{
		Analyses:   sqlstore.NewAnalysisRepository(conn, d),
		ScanErrors: sqlstore.NewScanErrorRepository(conn, d),
		Reviews:    sqlstore.NewReviewRepository(conn, d),
		db:         conn,
	}, nil
}
