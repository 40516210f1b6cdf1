package logging

import (
	"database/sql"
	"fmt"
	"time"
)

// #region log-decision
// LogDecision writes a snap decision to the snap_log table.
func LogDecision(db *sql.DB, entry SnapEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	var target interface{}
	if entry.Action == "snap" {
		target = entry.Target
	}

	_, err := db.Exec(
		`INSERT INTO snap_log (session_id, action, progress, target, region_id, duration_ms, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.SessionID,
		entry.Action,
		entry.Progress,
		target,
		nullIfEmpty(entry.RegionID),
		entry.DurationMS,
		nullIfEmpty(entry.Reason),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log decision: %w", err)
	}
	return nil
}
// #endregion log-decision

// #region read-decisions
// Decisions returns a session's snap_log rows in insertion order.
func Decisions(db *sql.DB, sessionID string) ([]SnapEntry, error) {
	rows, err := db.Query(
		`SELECT session_id, action, progress, target, region_id, duration_ms, reason, created_at
		 FROM snap_log WHERE session_id = ? ORDER BY id`, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query decisions: %w", err)
	}
	defer rows.Close()

	var out []SnapEntry
	for rows.Next() {
		var e SnapEntry
		var target sql.NullFloat64
		var regionID, reason sql.NullString
		var createdStr string
		if err := rows.Scan(&e.SessionID, &e.Action, &e.Progress, &target, &regionID, &e.DurationMS, &reason, &createdStr); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		e.Target = target.Float64
		e.RegionID = regionID.String
		e.Reason = reason.String
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		out = append(out, e)
	}
	return out, rows.Err()
}
// #endregion read-decisions

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
// #endregion helpers
