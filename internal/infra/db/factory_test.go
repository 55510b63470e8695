package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/bryanwahyu/codeguard/internal/config"
	"github.com/bryanwahyu/codeguard/internal/domain/analyses"
)

func TestOpenMemory(t *testing.T) {
	st, err := Open(context.Background(), config.Default())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer st.Close()
	if err := st.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if _, err := st.Analyses.Get(context.Background(), "x"); err != analyses.ErrNotFound {
		t.Fatalf("Get = %v", err)
	}
}

func TestOpenSQLite(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Driver = "sqlite"
	cfg.Store.DSN = filepath.Join(t.TempDir(), "cg.db")
	st, err := Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer st.Close()
	if err := st.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	stats, err := st.Analyses.Stats(context.Background())
	if err != nil || stats != (analyses.Stats{}) {
		t.Fatalf("empty stats = %+v, %v", stats, err)
	}
}
