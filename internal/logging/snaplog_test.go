package logging

import (
	"bytes"
	"database/sql"
	"log/slog"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// #region helpers
func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	_, err = db.Exec(`CREATE TABLE snap_log (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id  TEXT NOT NULL,
		action      TEXT NOT NULL,
		progress    REAL NOT NULL,
		target      REAL,
		region_id   TEXT,
		duration_ms INTEGER NOT NULL,
		reason      TEXT,
		created_at  TEXT NOT NULL
	)`)
	if err != nil {
		t.Fatalf("create table: %v", err)
	}
	return db
}

// #endregion helpers

// #region log-decision-tests
func TestLogDecision_Snap(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	entry := SnapEntry{
		SessionID:  "s1",
		Action:     "snap",
		Progress:   0.16,
		Target:     0.15,
		RegionID:   "hero",
		DurationMS: 161,
		Reason:     "nearest center",
		CreatedAt:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := LogDecision(db, entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := Decisions(db, "s1")
	if err != nil {
		t.Fatalf("Decisions: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 row, got %d", len(got))
	}
	if got[0].RegionID != "hero" || got[0].Target != 0.15 || got[0].DurationMS != 161 {
		t.Errorf("unexpected row %+v", got[0])
	}
	if !got[0].CreatedAt.Equal(entry.CreatedAt) {
		t.Errorf("created_at mismatch: %v", got[0].CreatedAt)
	}
}

func TestLogDecision_FreeStoresNullTarget(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	err := LogDecision(db, SnapEntry{SessionID: "s1", Action: "free", Progress: 0.4, Target: 0.4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var target, regionID, reason sql.NullString
	db.QueryRow("SELECT target, region_id, reason FROM snap_log").Scan(&target, &regionID, &reason)
	if target.Valid {
		t.Error("expected NULL target for a free decision")
	}
	if regionID.Valid || reason.Valid {
		t.Error("expected NULL for empty optional fields")
	}
}

func TestLogDecision_ZeroCreatedAt(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	before := time.Now().UTC()
	if err := LogDecision(db, SnapEntry{SessionID: "s2", Action: "disabled"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var createdAtStr string
	db.QueryRow("SELECT created_at FROM snap_log").Scan(&createdAtStr)
	createdAt, err := time.Parse(time.RFC3339Nano, createdAtStr)
	if err != nil {
		t.Fatalf("parse created_at: %v", err)
	}
	if createdAt.Before(before) {
		t.Error("expected auto-filled created_at to be >= test start time")
	}
}

func TestDecisions_FiltersBySession(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	_ = LogDecision(db, SnapEntry{SessionID: "a", Action: "free"})
	_ = LogDecision(db, SnapEntry{SessionID: "b", Action: "snap", RegionID: "hero"})
	_ = LogDecision(db, SnapEntry{SessionID: "a", Action: "snap", RegionID: "showcase"})

	got, err := Decisions(db, "a")
	if err != nil {
		t.Fatalf("Decisions: %v", err)
	}
	if len(got) != 2 || got[0].Action != "free" || got[1].RegionID != "showcase" {
		t.Fatalf("unexpected decisions %+v", got)
	}
}

func TestLogDecision_Error(t *testing.T) {
	db := setupDB(t)
	db.Close() // close to force error

	if err := LogDecision(db, SnapEntry{SessionID: "s", Action: "snap"}); err == nil {
		t.Fatal("expected error on closed db")
	}
}

// #endregion log-decision-tests

// #region slog-tests
func TestNew_LevelAndFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "warn", "json")
	logger.Info("hidden")
	logger.Warn("shown", "region_id", "hero")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info record passed a warn-level handler")
	}
	if !strings.Contains(out, `"region_id":"hero"`) {
		t.Errorf("expected JSON attribute, got %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNullIfEmpty(t *testing.T) {
	if nullIfEmpty("") != nil {
		t.Error("expected nil for empty string")
	}
	if nullIfEmpty("x") != "x" {
		t.Error("expected passthrough for non-empty string")
	}
}

// #endregion slog-tests
