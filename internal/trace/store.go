package trace

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/nerdyexternal/landing/scroll-controller/internal/coordinator"
	"github.com/nerdyexternal/landing/scroll-controller/internal/logging"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS scroll_sessions (
	session_id      TEXT PRIMARY KEY,
	label           TEXT,
	extent          REAL NOT NULL,
	viewport_height REAL NOT NULL,
	regions_json    TEXT NOT NULL,
	config_json     TEXT NOT NULL,
	created_at      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS scroll_events (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id    TEXT NOT NULL,
	kind          TEXT NOT NULL,
	at            TEXT NOT NULL,
	scroll_offset REAL,
	extent        REAL,
	height        REAL,
	scene_id      TEXT,
	generation    INTEGER,
	detail        TEXT,
	FOREIGN KEY (session_id) REFERENCES scroll_sessions(session_id)
);

CREATE TABLE IF NOT EXISTS snap_log (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id  TEXT NOT NULL,
	action      TEXT NOT NULL,
	progress    REAL NOT NULL,
	target      REAL,
	region_id   TEXT,
	duration_ms INTEGER NOT NULL,
	reason      TEXT,
	created_at  TEXT NOT NULL,
	FOREIGN KEY (session_id) REFERENCES scroll_sessions(session_id)
);

CREATE INDEX IF NOT EXISTS idx_scroll_events_session ON scroll_events(session_id, id);
`
// #endregion schema

// #region store-struct
// Store persists recorded scroll sessions in SQLite.
type Store struct {
	db *sql.DB
}
// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}
// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use by other packages (e.g. logging).
func (s *Store) DB() *sql.DB {
	return s.db
}
// #endregion close

// #region sessions
// CreateSession inserts a session, assigning an id and creation time when
// they are unset.
func (s *Store) CreateSession(sess Session) (Session, error) {
	if sess.ID == "" {
		sess.ID = uuid.New().String()
	}
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now().UTC()
	}

	regionsJSON, err := json.Marshal(sess.Regions)
	if err != nil {
		return Session{}, fmt.Errorf("marshal regions: %w", err)
	}
	configJSON, err := json.Marshal(sess.Config)
	if err != nil {
		return Session{}, fmt.Errorf("marshal config: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO scroll_sessions (session_id, label, extent, viewport_height, regions_json, config_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, nullIfEmpty(sess.Label), sess.Extent, sess.ViewportHeight,
		string(regionsJSON), string(configJSON), sess.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return Session{}, fmt.Errorf("insert session: %w", err)
	}
	return sess, nil
}

// GetSession retrieves a session by id.
func (s *Store) GetSession(id string) (Session, error) {
	row := s.db.QueryRow(
		`SELECT session_id, label, extent, viewport_height, regions_json, config_json, created_at
		 FROM scroll_sessions WHERE session_id = ?`, id,
	)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("get session %s: %w", id, ErrSessionNotFound)
	}
	if err != nil {
		return Session{}, fmt.Errorf("get session %s: %w", id, err)
	}
	return sess, nil
}

// LatestSession returns the most recently created session.
func (s *Store) LatestSession() (Session, error) {
	row := s.db.QueryRow(
		`SELECT session_id, label, extent, viewport_height, regions_json, config_json, created_at
		 FROM scroll_sessions ORDER BY created_at DESC LIMIT 1`,
	)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("latest session: %w", ErrSessionNotFound)
	}
	if err != nil {
		return Session{}, fmt.Errorf("latest session: %w", err)
	}
	return sess, nil
}

// ListSessions returns the most recent sessions with their counts.
func (s *Store) ListSessions(limit int) ([]SessionSummary, error) {
	rows, err := s.db.Query(
		`SELECT s.session_id, s.label, s.extent, s.viewport_height, s.regions_json, s.config_json, s.created_at,
		        (SELECT COUNT(*) FROM scroll_events e WHERE e.session_id = s.session_id),
		        (SELECT COUNT(*) FROM snap_log l WHERE l.session_id = s.session_id)
		 FROM scroll_sessions s ORDER BY s.created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionSummary
	for rows.Next() {
		var sum SessionSummary
		var label sql.NullString
		var regionsJSON, configJSON, createdStr string
		if err := rows.Scan(&sum.ID, &label, &sum.Extent, &sum.ViewportHeight,
			&regionsJSON, &configJSON, &createdStr, &sum.Events, &sum.Decisions); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if err := decodeSession(&sum.Session, label, regionsJSON, configJSON, createdStr); err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (Session, error) {
	var sess Session
	var label sql.NullString
	var regionsJSON, configJSON, createdStr string
	if err := row.Scan(&sess.ID, &label, &sess.Extent, &sess.ViewportHeight,
		&regionsJSON, &configJSON, &createdStr); err != nil {
		return Session{}, err
	}
	if err := decodeSession(&sess, label, regionsJSON, configJSON, createdStr); err != nil {
		return Session{}, err
	}
	return sess, nil
}

func decodeSession(sess *Session, label sql.NullString, regionsJSON, configJSON, createdStr string) error {
	sess.Label = label.String
	if err := json.Unmarshal([]byte(regionsJSON), &sess.Regions); err != nil {
		return fmt.Errorf("unmarshal regions: %w", err)
	}
	if err := json.Unmarshal([]byte(configJSON), &sess.Config); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	sess.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return nil
}
// #endregion sessions

// #region events
// AppendEvent stores a lifecycle event and returns its sequence number.
func (s *Store) AppendEvent(sessionID string, ev coordinator.Event) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO scroll_events (session_id, kind, at, scroll_offset, extent, height, scene_id, generation, detail)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID, string(ev.Kind), ev.At.UTC().Format(time.RFC3339Nano),
		ev.Offset, ev.Extent, ev.Height, nullIfEmpty(ev.SceneID), int64(ev.Generation), nullIfEmpty(ev.Detail),
	)
	if err != nil {
		return 0, fmt.Errorf("append event: %w", err)
	}
	return res.LastInsertId()
}

// Events returns a session's events in recording order.
func (s *Store) Events(sessionID string) ([]Record, error) {
	rows, err := s.db.Query(
		`SELECT id, kind, at, scroll_offset, extent, height, scene_id, generation, detail
		 FROM scroll_events WHERE session_id = ? ORDER BY id`, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var kind, atStr string
		var sceneID, detail sql.NullString
		var gen int64
		if err := rows.Scan(&rec.Seq, &kind, &atStr, &rec.Offset, &rec.Extent, &rec.Height,
			&sceneID, &gen, &detail); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		rec.Kind = coordinator.EventKind(kind)
		rec.At, _ = time.Parse(time.RFC3339Nano, atStr)
		rec.SceneID = sceneID.String
		rec.Generation = uint64(gen)
		rec.Detail = detail.String
		out = append(out, rec)
	}
	return out, rows.Err()
}
// Decisions returns a session's snap decisions in recording order.
func (s *Store) Decisions(sessionID string) ([]logging.SnapEntry, error) {
	return logging.Decisions(s.db, sessionID)
}
// #endregion events

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
// #endregion helpers
