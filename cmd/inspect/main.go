package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/nerdyexternal/landing/scroll-controller/internal/logging"
	"github.com/nerdyexternal/landing/scroll-controller/internal/registry"
	"github.com/nerdyexternal/landing/scroll-controller/internal/trace"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to scroll_trace.db")
	last := flag.Int("last", 20, "show N most recent sessions")
	session := flag.String("session", "", "show single session detail")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/scroll_trace.db [--last N] [--session id] [--json]")
		os.Exit(2)
	}

	store, err := trace.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if *session != "" {
		err = runDetailMode(store, *session, *jsonOut)
	} else {
		err = runListMode(store, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	SessionID string  `json:"session_id"`
	Label     string  `json:"label,omitempty"`
	Extent    float64 `json:"extent"`
	Height    float64 `json:"viewport_height"`
	Regions   int     `json:"regions"`
	Events    int     `json:"events"`
	Decisions int     `json:"decisions"`
	CreatedAt string  `json:"created_at"`
}

func runListMode(store *trace.Store, last int, jsonOut bool) error {
	sessions, err := store.ListSessions(last)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Fprintln(os.Stderr, "no sessions found")
		return nil
	}

	rows := make([]listRow, len(sessions))
	for i, s := range sessions {
		rows[i] = listRow{
			SessionID: s.ID,
			Label:     s.Label,
			Extent:    s.Extent,
			Height:    s.ViewportHeight,
			Regions:   len(s.Regions),
			Events:    s.Events,
			Decisions: s.Decisions,
			CreatedAt: s.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
	}

	if jsonOut {
		return printJSON(rows)
	}

	fmt.Printf("%-10s  %-14s  %8s  %7s  %7s  %6s  %9s  %s\n",
		"Session", "Label", "Extent", "Height", "Regions", "Events", "Decisions", "Time")
	fmt.Printf("%-10s+-%-14s+-%8s+-%7s+-%7s+-%6s+-%9s+-%s\n",
		"----------", "--------------", "--------", "-------", "-------", "------", "---------", "--------------------")
	for _, r := range rows {
		fmt.Printf("%-10s  %-14s  %8.0f  %7.0f  %7d  %6d  %9d  %s\n",
			shortID(r.SessionID), r.Label, r.Extent, r.Height, r.Regions, r.Events, r.Decisions, r.CreatedAt)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

type eventRow struct {
	Seq        int64   `json:"seq"`
	Kind       string  `json:"kind"`
	At         string  `json:"at"`
	Offset     float64 `json:"offset,omitempty"`
	Extent     float64 `json:"extent,omitempty"`
	SceneID    string  `json:"scene_id,omitempty"`
	Generation uint64  `json:"generation"`
	Detail     string  `json:"detail,omitempty"`
}

type detailOutput struct {
	SessionID string              `json:"session_id"`
	Label     string              `json:"label,omitempty"`
	CreatedAt string              `json:"created_at"`
	Extent    float64             `json:"extent"`
	Height    float64             `json:"viewport_height"`
	Regions   []registry.Region   `json:"regions"`
	Events    []eventRow          `json:"events"`
	Decisions []logging.SnapEntry `json:"decisions"`
}

func runDetailMode(store *trace.Store, id string, jsonOut bool) error {
	sess, err := store.GetSession(id)
	if errors.Is(err, trace.ErrSessionNotFound) {
		return fmt.Errorf("session %s not found", id)
	}
	if err != nil {
		return err
	}
	records, err := store.Events(sess.ID)
	if err != nil {
		return err
	}
	decisions, err := store.Decisions(sess.ID)
	if err != nil {
		return err
	}

	out := detailOutput{
		SessionID: sess.ID,
		Label:     sess.Label,
		CreatedAt: sess.CreatedAt.Format("2006-01-02T15:04:05Z"),
		Extent:    sess.Extent,
		Height:    sess.ViewportHeight,
		Regions:   sess.Regions,
		Decisions: decisions,
	}
	for _, r := range records {
		out.Events = append(out.Events, eventRow{
			Seq:        r.Seq,
			Kind:       string(r.Kind),
			At:         r.At.Format("15:04:05.000"),
			Offset:     r.Offset,
			Extent:     r.Extent,
			SceneID:    r.SceneID,
			Generation: r.Generation,
			Detail:     r.Detail,
		})
	}

	if jsonOut {
		return printJSON(out)
	}

	fmt.Printf("Session:  %s\n", out.SessionID)
	fmt.Printf("Label:    %s\n", out.Label)
	fmt.Printf("Created:  %s\n", out.CreatedAt)
	fmt.Printf("Viewport: %.0f extent, %.0f height\n", out.Extent, out.Height)

	fmt.Printf("\nRegions:\n")
	for _, r := range out.Regions {
		fmt.Printf("  %-12s [%.0f, %.0f]\n", r.ID, r.StartOffset, r.EndOffset)
	}

	fmt.Printf("\nEvents:\n")
	for _, e := range out.Events {
		fmt.Printf("  %4d  %s  %-14s gen=%d offset=%.0f extent=%.0f %s %s\n",
			e.Seq, e.At, e.Kind, e.Generation, e.Offset, e.Extent, e.SceneID, e.Detail)
	}

	fmt.Printf("\nDecisions:\n")
	for _, d := range out.Decisions {
		fmt.Printf("  %s  %-8s progress=%.4f target=%.4f region=%s ease=%dms  %s\n",
			d.CreatedAt.Format("15:04:05.000"), d.Action, d.Progress, d.Target, d.RegionID, d.DurationMS, d.Reason)
	}
	return nil
}

// #endregion detail-mode

// #region output

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output
