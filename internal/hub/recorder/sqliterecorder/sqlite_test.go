package sqliterecorder_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/terminalhub/hub/internal/hub/recorder"
	"github.com/terminalhub/hub/internal/hub/recorder/sqliterecorder"
)

func TestRecordAppendsRow(t *testing.T) {
	dir := t.TempDir()
	r, err := sqliterecorder.Open(filepath.Join(dir, "recorder.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer r.Close()

	entry := recorder.Entry{Kind: recorder.KindSubmoduleOperate, SubmoduleName: "lamp", Detail: "register"}
	if err := r.Record(context.Background(), entry); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := r.Record(context.Background(), entry); err != nil {
		t.Fatalf("record second: %v", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "recorder.db"))
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM operation_log`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 rows, got %d", count)
	}
}

func TestOpenCreatesSchemaIdempotently(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "recorder.db")

	r1, err := sqliterecorder.Open(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	r1.Close()

	r2, err := sqliterecorder.Open(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer r2.Close()
}
