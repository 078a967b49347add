package db

import (
	"context"
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	return &Client{conn: conn}
}

func TestWithTxCommits(t *testing.T) {
	client := newTestClient(t)
	if err := client.conn.Exec("CREATE TABLE tx_scratch (id INTEGER PRIMARY KEY)").Error; err != nil {
		t.Fatalf("create table: %v", err)
	}

	err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		return tx.Exec("INSERT INTO tx_scratch (id) VALUES (1)").Error
	})
	if err != nil {
		t.Fatalf("tx should commit: %v", err)
	}

	var count int64
	if err := client.conn.Raw("SELECT COUNT(*) FROM tx_scratch").Scan(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected committed row, got %d", count)
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	client := newTestClient(t)
	if err := client.conn.Exec("CREATE TABLE tx_scratch2 (id INTEGER PRIMARY KEY)").Error; err != nil {
		t.Fatalf("create table: %v", err)
	}

	boom := errors.New("boom")
	err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		if err := tx.Exec("INSERT INTO tx_scratch2 (id) VALUES (1)").Error; err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	var count int64
	if err := client.conn.Raw("SELECT COUNT(*) FROM tx_scratch2").Scan(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected rollback, got %d rows", count)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	err := errors.New(`duplicate key value violates unique constraint "customers_stripe_customer_id_key"`)
	if !IsUniqueViolation(err, "") {
		t.Fatalf("expected generic detection")
	}
	if !IsUniqueViolation(err, "customers_stripe_customer_id_key") {
		t.Fatalf("expected constraint-name detection")
	}
	if IsUniqueViolation(err, "other_constraint") {
		t.Fatalf("unexpected match on other constraint")
	}
	if IsUniqueViolation(nil, "") {
		t.Fatalf("nil error should not match")
	}
}
