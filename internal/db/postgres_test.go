package db

import (
	"context"
	"testing"

	"github.com/ricirt/sender-queue/internal/config"
)

func TestMigrationURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"postgres://u:p@localhost:5432/dtp?sslmode=disable", "pgx5://u:p@localhost:5432/dtp?sslmode=disable"},
		{"postgresql://u:p@db/dtp", "pgx5://u:p@db/dtp"},
		{"u:p@db/dtp", "pgx5://u:p@db/dtp"},
	}
	for _, tc := range tests {
		if got := migrationURL(tc.in); got != tc.want {
			t.Fatalf("migrationURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := migrations.ReadDir("migrations")
	if err != nil {
		t.Fatalf("read embedded migrations: %v", err)
	}
	if len(entries) == 0 || len(entries)%2 != 0 {
		t.Fatalf("expected up/down pairs, got %d files", len(entries))
	}
}

func TestConnect_IsLazy(t *testing.T) {
	cfg := config.DBConfig{URL: "postgres://nobody@127.0.0.1:1/none?sslmode=disable&connect_timeout=1", MaxConns: 2}
	pool, err := Connect(context.Background(), cfg)
	if err != nil {
		t.Fatalf("connect should not dial: %v", err)
	}
	defer pool.Close()

	if err := Ping(context.Background(), pool); err == nil {
		t.Fatal("expected ping to an unreachable server to fail")
	}
}

func TestConnect_BadURL(t *testing.T) {
	if _, err := Connect(context.Background(), config.DBConfig{URL: "postgres://%zz"}); err == nil {
		t.Fatal("expected parse error")
	}
}
