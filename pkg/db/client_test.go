package db

import (
	"context"
	"testing"

	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/angelmondragon/storefront/pkg/db/models"
)

func TestNewSQLiteClient(t *testing.T) {
	ctx := context.Background()
	client, err := New(ctx, config.DBConfig{DSN: "file:dbclient?mode=memory&cache=shared", SQLite: true, MaxOpenConns: 1}, nil)
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	if client.Dialect() != "sqlite3" {
		t.Fatalf("expected sqlite3 dialect, got %s", client.Dialect())
	}
	if err := client.Ping(ctx); err != nil {
		t.Fatalf("ping failed: %v", err)
	}
	if err := client.DB().AutoMigrate(&models.CartSnapshot{}); err != nil {
		t.Fatalf("automigrate failed: %v", err)
	}
	if !client.DB().Migrator().HasTable("cart_snapshots") {
		t.Fatalf("expected cart_snapshots table")
	}
}

func TestNewRequiresDSN(t *testing.T) {
	if _, err := New(context.Background(), config.DBConfig{}, nil); err == nil {
		t.Fatal("expected missing dsn error")
	}
}
