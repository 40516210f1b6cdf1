package logging

import "time"

// #region snap-entry
// SnapEntry is a single row in the snap_log table: one resolver evaluation
// taken after the user settled.
type SnapEntry struct {
	SessionID  string
	Action     string // "snap" | "free" | "disabled"
	Progress   float64
	Target     float64 // normalized target, 0 unless Action == "snap"
	RegionID   string
	DurationMS int64
	Reason     string
	CreatedAt  time.Time
}
// #endregion snap-entry
